package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"reflexa/internal/analytics"
	"reflexa/internal/signer"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	top, err := s.Queries.Leaderboard(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to load leaderboard", err)
		return
	}
	s.writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Queries.GlobalStats(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to fetch global stats", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(r.PathValue("wallet"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid wallet address")
		return
	}

	profile, err := s.Queries.PlayerProfile(r.Context(), wallet)
	if err != nil {
		s.internalError(w, r, "Failed to fetch user stats", err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	badges := make([]analytics.Badge, 0, len(analytics.BadgeOrder))
	for _, id := range analytics.BadgeOrder {
		badges = append(badges, analytics.AllBadges[id])
	}
	s.writeJSON(w, http.StatusOK, badges)
}

func (s *Server) handleEligibleBadges(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(r.PathValue("wallet"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid wallet address")
		return
	}

	badges, err := s.Queries.EligibleBadges(r.Context(), analytics.EligibilityRequest{Wallet: wallet})
	if err != nil {
		s.internalError(w, r, "Failed to check eligibility", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"eligibleBadges": badges})
}

type claimRequest struct {
	Wallet  string `json:"wallet"`
	BadgeID string `json:"badgeId"`
}

func (s *Server) handleClaimSignature(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	wallet, ok := walletParam(req.Wallet)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid wallet address")
		return
	}

	res, err := s.Claimer.Claim(r.Context(), wallet, req.BadgeID)
	switch {
	case errors.Is(err, analytics.ErrUnknownBadge):
		s.writeError(w, http.StatusBadRequest, "Unknown badge")
	case errors.Is(err, analytics.ErrNotEligible):
		s.writeError(w, http.StatusForbidden, "Not eligible for this badge")
	case errors.Is(err, signer.ErrUnconfigured):
		s.writeError(w, http.StatusServiceUnavailable, "Signer not configured")
	case err != nil:
		s.internalError(w, r, "Failed to generate claim signature", err)
	default:
		s.Log.Info("badge claim signed", zap.String("wallet", wallet), zap.String("badge", string(res.BadgeID)))
		s.writeJSON(w, http.StatusOK, res)
	}
}
