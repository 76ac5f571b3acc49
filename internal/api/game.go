package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaharia-lab/oxo/internal/game"
)

type moveRequest struct {
	Command string `json:"command"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("getGameState")()
	writeJSON(w, http.StatusOK, s.gameSvc.State(r.Context()))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("makeMove")()

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := s.gameSvc.Move(r.Context(), req.Command)
	if err != nil {
		var me *game.MoveError
		if errors.As(err, &me) {
			writeError(w, http.StatusBadRequest, "Invalid Move: "+me.Message)
			return
		}
		s.logger.Error("move failed", "command", req.Command, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSetPlayers(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("setPlayers")()

	count, err := queryInt(r, "count")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.gameSvc.SetPlayers(r.Context(), count))
}

func (s *Server) handleSetSize(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("setBoardSize")()

	rows, err := queryInt(r, "rows")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cols, err := queryInt(r, "cols")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.gameSvc.SetBoardSize(r.Context(), rows, cols))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	defer s.stats.Track("resetGame")()
	writeJSON(w, http.StatusOK, s.gameSvc.Reset(r.Context()))
}
