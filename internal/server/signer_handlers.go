package server

import (
	"net/http"

	"reflexa/internal/signer"
)

type signerInfo struct {
	Address    *string `json:"address"`
	ChainID    int64   `json:"chainId"`
	Verifier   string  `json:"verifier,omitempty"`
	Configured bool    `json:"configured"`
}

func (s *Server) handleSignerInfo(w http.ResponseWriter, r *http.Request) {
	info := signerInfo{ChainID: s.ChainID, Verifier: s.Verifier, Configured: s.Signer.Configured()}
	if info.Configured {
		addr := s.Signer.Address().Hex()
		info.Address = &addr
	}
	s.writeJSON(w, http.StatusOK, info)
}

// verifyRequest carries either a score attestation (roundId + score) or a
// badge attestation (badgeId).
type verifyRequest struct {
	Wallet    string `json:"wallet"`
	RoundID   string `json:"roundId"`
	Score     *int   `json:"score"`
	BadgeID   string `json:"badgeId"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Valid     bool   `json:"valid"`
	Recovered string `json:"recovered"`
}

func (s *Server) handleVerifySignature(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	wallet, err := signer.ParseAddress(req.Wallet)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid wallet address")
		return
	}

	var digest []byte
	switch {
	case req.RoundID != "" && req.Score != nil && *req.Score >= 0:
		digest = signer.ScoreDigest(wallet, req.RoundID, *req.Score)
	case req.BadgeID != "":
		digest = signer.BadgeDigest(wallet, req.BadgeID)
	default:
		s.writeError(w, http.StatusBadRequest, "roundId and score, or badgeId, are required")
		return
	}

	recovered, err := signer.Recover(digest, req.Signature)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}
	s.writeJSON(w, http.StatusOK, verifyResponse{
		Valid:     s.Signer.Configured() && recovered == s.Signer.Address(),
		Recovered: recovered.Hex(),
	})
}
