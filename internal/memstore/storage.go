package memstore

import (
	"context"
	"sort"
	"sync"

	"reflexa/internal/db"
)

type roundKey struct {
	wallet  string
	roundID string
}

type claimKey struct {
	wallet  string
	badgeID string
}

// Store keeps rounds, scores and player stats in process memory. It is used
// when no database is configured and in tests.
type Store struct {
	mu      sync.Mutex
	rounds  map[roundKey]*db.RoundRecord
	scores  []db.ScoreRecord
	players map[string]*db.PlayerStatsRecord
	claims  map[claimKey]db.BadgeClaimRecord
}

var _ db.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		rounds:  make(map[roundKey]*db.RoundRecord),
		players: make(map[string]*db.PlayerStatsRecord),
		claims:  make(map[claimKey]db.BadgeClaimRecord),
	}
}

func (s *Store) CreateRound(_ context.Context, r db.RoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == "" {
		r.Status = db.RoundStarted
	}
	s.rounds[roundKey{r.Wallet, r.RoundID}] = &r
	return nil
}

func (s *Store) GetRound(_ context.Context, wallet, roundID string) (*db.RoundRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[roundKey{wallet, roundID}]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) CompleteRound(_ context.Context, wallet, roundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeRound(wallet, roundID)
}

func (s *Store) completeRound(wallet, roundID string) error {
	r, ok := s.rounds[roundKey{wallet, roundID}]
	if !ok {
		return db.ErrNotFound
	}
	if r.Status != db.RoundStarted {
		return db.ErrRoundCompleted
	}
	r.Status = db.RoundCompleted
	return nil
}

func (s *Store) RecordScore(_ context.Context, rec db.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.completeRound(rec.Wallet, rec.RoundID); err != nil {
		return err
	}
	s.scores = append(s.scores, rec)

	p, ok := s.players[rec.Wallet]
	if !ok {
		p = &db.PlayerStatsRecord{Wallet: rec.Wallet}
		s.players[rec.Wallet] = p
	}
	p.TotalGames++
	if rec.Score > p.BestScore {
		p.BestScore = rec.Score
	}
	playedAt := rec.CreatedAt
	p.LastPlayedAt = &playedAt
	return nil
}

func (s *Store) GetPlayerStats(_ context.Context, wallet string) (*db.PlayerStatsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[wallet]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) CountPlayers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players), nil
}

func (s *Store) TopBestScores(_ context.Context, limit int) ([]int, error) {
	s.mu.Lock()
	best := make([]int, 0, len(s.players))
	for _, p := range s.players {
		best = append(best, p.BestScore)
	}
	s.mu.Unlock()

	sort.Sort(sort.Reverse(sort.IntSlice(best)))
	if len(best) > limit {
		best = best[:limit]
	}
	return best, nil
}

func (s *Store) HasVerifiedReactionAtMost(_ context.Context, wallet string, maxMs int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.scores {
		if sc.Wallet == wallet && sc.Verified && sc.ReactionTime <= maxMs {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) TopScores(_ context.Context, limit int) ([]db.ScoreRecord, error) {
	s.mu.Lock()
	top := make([]db.ScoreRecord, 0, len(s.scores))
	for _, sc := range s.scores {
		if sc.Verified {
			top = append(top, sc)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Score != top[j].Score {
			return top[i].Score > top[j].Score
		}
		return top[i].CreatedAt.Before(top[j].CreatedAt)
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *Store) RecentScores(_ context.Context, wallet string, limit int) ([]db.ScoreRecord, error) {
	s.mu.Lock()
	recent := []db.ScoreRecord{}
	for _, sc := range s.scores {
		if sc.Wallet == wallet {
			recent = append(recent, sc)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (s *Store) GlobalStats(_ context.Context) (*db.GlobalStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &db.GlobalStats{
		TotalPlayers:       len(s.players),
		RewardsDistributed: len(s.claims),
	}
	for _, p := range s.players {
		g.TotalGames += p.TotalGames
	}
	return g, nil
}

func (s *Store) RecordBadgeClaim(_ context.Context, c db.BadgeClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := claimKey{c.Wallet, c.BadgeID}
	if _, exists := s.claims[k]; !exists {
		s.claims[k] = c
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
