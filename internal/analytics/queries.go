package analytics

import (
	"context"
	"errors"
	"fmt"

	"reflexa/internal/db"
)

type Queries struct {
	Store db.Store
}

func NewQueries(store db.Store) *Queries {
	return &Queries{Store: store}
}

// EligibleBadges gathers the badge inputs for a wallet and evaluates them.
// A wallet with no recorded games is eligible for nothing.
func (q *Queries) EligibleBadges(ctx context.Context, req EligibilityRequest) ([]BadgeID, error) {
	stats, err := q.Store.GetPlayerStats(ctx, req.Wallet)
	if errors.Is(err, db.ErrNotFound) {
		return []BadgeID{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting player stats: %w", err)
	}

	in := BadgeInputs{
		TotalGames:        stats.TotalGames,
		BestScore:         stats.BestScore,
		CurrentReactionMs: req.CurrentReactionMs,
	}

	if req.CurrentReactionMs == nil || *req.CurrentReactionMs > PerfectReactionMs {
		in.HasPerfectReaction, err = q.Store.HasVerifiedReactionAtMost(ctx, req.Wallet, PerfectReactionMs)
		if err != nil {
			return nil, fmt.Errorf("checking perfect reactions: %w", err)
		}
	}

	in.TotalPlayers, err = q.Store.CountPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}
	if in.TotalPlayers >= MinPlayersForTopPercent {
		top, err := q.Store.TopBestScores(ctx, TopSliceSize(in.TotalPlayers))
		if err != nil {
			return nil, fmt.Errorf("getting top best scores: %w", err)
		}
		if len(top) == 0 {
			// Nothing to compare against
			in.TotalPlayers = 0
		} else {
			in.TopThreshold = top[len(top)-1]
		}
	}

	return EvaluateBadges(in), nil
}

// IsEligible re-runs eligibility for a single badge.
func (q *Queries) IsEligible(ctx context.Context, wallet string, id BadgeID) (bool, error) {
	badges, err := q.EligibleBadges(ctx, EligibilityRequest{Wallet: wallet})
	if err != nil {
		return false, err
	}
	for _, b := range badges {
		if b == id {
			return true, nil
		}
	}
	return false, nil
}

func (q *Queries) Leaderboard(ctx context.Context) ([]db.ScoreRecord, error) {
	scores, err := q.Store.TopScores(ctx, LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	return scores, nil
}

func (q *Queries) GlobalStats(ctx context.Context) (*db.GlobalStats, error) {
	g, err := q.Store.GlobalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting global stats: %w", err)
	}
	return g, nil
}

// PlayerProfile returns zeroed stats for a wallet that has never played.
func (q *Queries) PlayerProfile(ctx context.Context, wallet string) (*PlayerProfile, error) {
	p := &PlayerProfile{Stats: db.PlayerStatsRecord{Wallet: wallet}}

	stats, err := q.Store.GetPlayerStats(ctx, wallet)
	switch {
	case errors.Is(err, db.ErrNotFound):
		p.RecentGames = []db.ScoreRecord{}
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("getting player stats: %w", err)
	}
	p.Stats = *stats

	p.RecentGames, err = q.Store.RecentScores(ctx, wallet, RecentGamesSize)
	if err != nil {
		return nil, fmt.Errorf("getting recent games: %w", err)
	}
	return p, nil
}
