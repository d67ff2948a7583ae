package rounds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reflexa/internal/analytics"
	"reflexa/internal/db"
	"reflexa/internal/events"
	"reflexa/internal/game"
	"reflexa/internal/logger"
	"reflexa/internal/metrics"
	"reflexa/internal/signer"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrCheatDetected  = errors.New("cheat detected")
)

type Round struct {
	RoundID string `json:"roundId"`
	DelayMs int    `json:"delay"`
}

type Submission struct {
	Wallet         string
	RoundID        string
	ReactionTimeMs int
}

type Result struct {
	Score          int                 `json:"score"`
	Signature      string              `json:"signature"`
	Tier           game.Tier           `json:"tier"`
	EligibleBadges []analytics.BadgeID `json:"eligibleBadges"`
}

// Service runs the round lifecycle: issue, validate, score, sign, record.
type Service struct {
	store   db.Store
	signer  *signer.Signer
	queries *analytics.Queries
	bus     *events.Bus
	cfg     game.Config
	log     *logger.Logger
	now     func() time.Time
}

// NewService builds the round service. bus may be nil, in which case
// verified scores are not published to the live feed.
func NewService(store db.Store, s *signer.Signer, q *analytics.Queries, bus *events.Bus, cfg game.Config, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		signer:  s,
		queries: q,
		bus:     bus,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// Start issues a new round for wallet.
func (s *Service) Start(ctx context.Context, wallet string) (*Round, error) {
	delay, err := DrawDelay(s.cfg.MinDelayMs, s.cfg.MaxDelayMs)
	if err != nil {
		return nil, fmt.Errorf("drawing delay: %w", err)
	}

	r := db.RoundRecord{
		RoundID:   NewRoundID(),
		Wallet:    wallet,
		DelayMs:   delay,
		StartedAt: s.now().UTC(),
		Status:    db.RoundStarted,
	}
	if err := s.store.CreateRound(ctx, r); err != nil {
		return nil, err
	}
	metrics.RoundsIssuedTotal.Inc()
	s.log.Debug("round issued", zap.String("wallet", wallet), zap.String("round_id", r.RoundID), zap.Int("delay_ms", delay))

	return &Round{RoundID: r.RoundID, DelayMs: delay}, nil
}

// Submit verifies a reaction for a previously issued round. Each round can
// be consumed once; implausible reactions burn the round.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	res, err := s.submit(ctx, sub)
	metrics.SubmissionsTotal.WithLabelValues(outcome(err)).Inc()
	return res, err
}

func (s *Service) submit(ctx context.Context, sub Submission) (*Result, error) {
	round, err := s.store.GetRound(ctx, sub.Wallet, sub.RoundID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	if round.Status != db.RoundStarted {
		return nil, ErrInvalidSession
	}

	if !game.IsPlausible(sub.ReactionTimeMs) {
		if err := s.store.CompleteRound(ctx, sub.Wallet, sub.RoundID); err != nil && !isConsumed(err) {
			return nil, err
		}
		s.log.Warn("implausible reaction",
			zap.String("wallet", sub.Wallet),
			zap.String("round_id", sub.RoundID),
			zap.Int("reaction_ms", sub.ReactionTimeMs))
		return nil, ErrCheatDetected
	}

	score := game.Score(sub.ReactionTimeMs)
	sig, err := s.signer.SignScore(sub.Wallet, sub.RoundID, score)
	if err != nil {
		return nil, err
	}
	metrics.SignaturesTotal.WithLabelValues("score").Inc()

	now := s.now().UTC()
	err = s.store.RecordScore(ctx, db.ScoreRecord{
		Wallet:       sub.Wallet,
		RoundID:      sub.RoundID,
		ReactionTime: sub.ReactionTimeMs,
		Score:        score,
		Verified:     true,
		Signature:    sig,
		CreatedAt:    now,
	})
	if isConsumed(err) {
		// Lost a race with a concurrent submission of the same round.
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	metrics.ReactionTimeMs.Observe(float64(sub.ReactionTimeMs))

	reaction := sub.ReactionTimeMs
	badges, err := s.queries.EligibleBadges(ctx, analytics.EligibilityRequest{
		Wallet:            sub.Wallet,
		CurrentReactionMs: &reaction,
	})
	if err != nil {
		// The score is already recorded; badges can be re-fetched later.
		s.log.Error("evaluating badges", err, zap.String("wallet", sub.Wallet))
		badges = []analytics.BadgeID{}
	}

	if s.bus != nil && !s.bus.Publish(events.Event{
		Type:         events.ScoreVerified,
		Wallet:       sub.Wallet,
		RoundID:      sub.RoundID,
		Score:        score,
		ReactionTime: sub.ReactionTimeMs,
		At:           now,
	}) {
		metrics.EventsDroppedTotal.Inc()
	}

	s.log.Info("score verified",
		zap.String("wallet", sub.Wallet),
		zap.String("round_id", sub.RoundID),
		zap.Int("reaction_ms", sub.ReactionTimeMs),
		zap.Int("score", score))

	return &Result{
		Score:          score,
		Signature:      sig,
		Tier:           game.TierFor(sub.ReactionTimeMs),
		EligibleBadges: badges,
	}, nil
}

func isConsumed(err error) bool {
	return errors.Is(err, db.ErrRoundCompleted) || errors.Is(err, db.ErrNotFound)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "verified"
	case errors.Is(err, ErrInvalidSession):
		return "invalid_session"
	case errors.Is(err, ErrCheatDetected):
		return "cheat_detected"
	case errors.Is(err, signer.ErrUnconfigured):
		return "signer_unconfigured"
	default:
		return "error"
	}
}
