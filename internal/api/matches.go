package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/oxo/internal/service"
)

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("listMatches")()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	matches, err := s.matchSvc.List(r.Context(), limit)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error("list matches failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("getMatch")()

	id := chi.URLParam(r, "id")
	m, err := s.matchSvc.Get(r.Context(), id)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, nf.Error())
			return
		}
		s.logger.Error("get match failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get match")
		return
	}
	writeJSON(w, http.StatusOK, m)
}
