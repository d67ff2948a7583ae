package server

import (
	"errors"
	"net/http"

	"reflexa/internal/rounds"
	"reflexa/internal/signer"
)

type startRequest struct {
	Wallet string `json:"wallet"`
}

type submitRequest struct {
	Wallet       string `json:"wallet"`
	RoundID      string `json:"roundId"`
	ReactionTime *int   `json:"reactionTime"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	wallet, ok := walletParam(req.Wallet)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid wallet address")
		return
	}

	round, err := s.Rounds.Start(r.Context(), wallet)
	if err != nil {
		s.internalError(w, r, "Failed to start game", err)
		return
	}
	s.writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	wallet, ok := walletParam(req.Wallet)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid wallet address")
		return
	}
	if req.RoundID == "" || req.ReactionTime == nil {
		s.writeError(w, http.StatusBadRequest, "roundId and reactionTime are required")
		return
	}

	res, err := s.Rounds.Submit(r.Context(), rounds.Submission{
		Wallet:         wallet,
		RoundID:        req.RoundID,
		ReactionTimeMs: *req.ReactionTime,
	})
	switch {
	case errors.Is(err, rounds.ErrInvalidSession):
		s.writeError(w, http.StatusBadRequest, "Invalid Session")
	case errors.Is(err, rounds.ErrCheatDetected):
		s.writeError(w, http.StatusBadRequest, "Cheat Detected")
	case errors.Is(err, signer.ErrUnconfigured):
		s.writeError(w, http.StatusServiceUnavailable, "Signer not configured")
	case err != nil:
		s.internalError(w, r, "Failed to submit score", err)
	default:
		s.writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":           "ok",
		"signerConfigured": s.Signer.Configured(),
		"liveSubscribers":  s.Hub.Count(),
	}
	if err := s.Store.Ping(r.Context()); err != nil {
		status["status"] = "db_error"
		status["error"] = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}
