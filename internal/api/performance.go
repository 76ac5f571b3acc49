package api

import (
	"net/http"
	"time"

	"github.com/shaharia-lab/oxo/internal/metrics"
	"github.com/shaharia-lab/oxo/internal/service"
)

type performanceResponse struct {
	metrics.Snapshot
	CacheStats service.CacheStats `json:"cacheStats"`
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("getPerformanceStats")()
	writeJSON(w, http.StatusOK, performanceResponse{
		Snapshot:   s.stats.Snapshot(),
		CacheStats: s.gameSvc.CacheStats(),
	})
}

func (s *Server) handleRunDemonstration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	res, err := s.demo.Run(r.Context())
	if err != nil {
		s.stats.Record("runDemonstration_Error", time.Since(start))
		s.logger.Error("performance demonstration failed", "error", err)
		writeError(w, http.StatusInternalServerError,
			"Demonstration execution failed due to an internal server error: "+err.Error())
		return
	}
	s.stats.Record("runDemonstration", time.Since(start))
	writeJSON(w, http.StatusOK, res)
}
