package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoundsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reflexa_rounds_issued_total",
		Help: "The total number of rounds issued to players",
	})
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reflexa_submissions_total",
		Help: "Score submissions by outcome (verified, invalid_session, cheat_detected, error)",
	}, []string{"outcome"})
	ReactionTimeMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reflexa_reaction_time_ms",
		Help:    "Reaction times of verified submissions",
		Buckets: []float64{120, 150, 180, 200, 250, 300, 350, 400, 500, 750, 1000, 2000},
	})
	BadgeClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reflexa_badge_claims_total",
		Help: "Badge claim signature requests by badge and outcome",
	}, []string{"badge", "outcome"})
	SignaturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reflexa_signatures_total",
		Help: "Signatures produced by kind (score, badge)",
	}, []string{"kind"})
	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reflexa_events_dropped_total",
		Help: "Live feed events dropped because the bus was full",
	})
	PublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reflexa_publish_errors_total",
		Help: "Errors publishing events to Kafka",
	})
	LiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reflexa_live_clients",
		Help: "Connected live leaderboard WebSocket clients",
	})
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reflexa_http_request_duration_seconds",
		Help:    "Latency of HTTP requests by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
