package db

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrRoundCompleted = errors.New("round already completed")
)

// Store is the persistence surface shared by the PostgreSQL, MongoDB and
// in-memory back ends.
type Store interface {
	CreateRound(ctx context.Context, r RoundRecord) error
	GetRound(ctx context.Context, wallet, roundID string) (*RoundRecord, error)
	// CompleteRound moves a STARTED round to COMPLETED. It returns ErrNotFound
	// for an unknown (wallet, roundID) and ErrRoundCompleted if it was already consumed.
	CompleteRound(ctx context.Context, wallet, roundID string) error
	// RecordScore completes the score's round, stores the score and folds it
	// into the player's stats as a single unit.
	RecordScore(ctx context.Context, s ScoreRecord) error

	GetPlayerStats(ctx context.Context, wallet string) (*PlayerStatsRecord, error)
	CountPlayers(ctx context.Context) (int, error)
	TopBestScores(ctx context.Context, limit int) ([]int, error)
	HasVerifiedReactionAtMost(ctx context.Context, wallet string, maxMs int) (bool, error)
	TopScores(ctx context.Context, limit int) ([]ScoreRecord, error)
	RecentScores(ctx context.Context, wallet string, limit int) ([]ScoreRecord, error)
	GlobalStats(ctx context.Context) (*GlobalStats, error)

	RecordBadgeClaim(ctx context.Context, c BadgeClaimRecord) error

	Ping(ctx context.Context) error
	Close() error
}
