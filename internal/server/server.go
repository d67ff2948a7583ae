package server

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"reflexa/internal/analytics"
	"reflexa/internal/db"
	"reflexa/internal/logger"
	"reflexa/internal/rounds"
	"reflexa/internal/signer"
	"reflexa/internal/wshub"
)

type Server struct {
	Store   db.Store
	Rounds  *rounds.Service
	Queries *analytics.Queries
	Claimer *analytics.Claimer
	Signer  *signer.Signer
	Hub     *wshub.Hub
	Log     *logger.Logger

	ChainID        int64
	Verifier       string
	AllowedOrigins []string
}

// Routes builds the API handler with its middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /game/start", s.handleStart)
	mux.HandleFunc("POST /game/submit", s.handleSubmit)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /leaderboard/stats", s.handleGlobalStats)
	mux.HandleFunc("GET /leaderboard/live", s.handleLive)
	mux.HandleFunc("GET /user/{wallet}", s.handleUser)
	mux.HandleFunc("GET /badge", s.handleBadges)
	mux.HandleFunc("GET /badge/eligible/{wallet}", s.handleEligibleBadges)
	mux.HandleFunc("POST /badge/claim-signature", s.handleClaimSignature)
	mux.HandleFunc("GET /signer", s.handleSignerInfo)
	mux.HandleFunc("POST /signer/verify", s.handleVerifySignature)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	h = s.instrument(h)
	h = s.cors(h)
	h = s.requestLogger(h)
	h = middleware.Recoverer(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return h
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Log.Warn("writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// internalError logs err against the request and answers with a generic 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.Log.Error(message, err,
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())))
	s.writeError(w, http.StatusInternalServerError, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	return dec.Decode(v)
}

// walletParam validates and lower-cases a wallet address from the request.
func walletParam(raw string) (string, bool) {
	wallet, err := signer.NormalizeAddress(raw)
	if err != nil {
		return "", false
	}
	return wallet, true
}
