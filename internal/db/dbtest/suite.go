// Package dbtest holds the behavioural contract every db.Store back end must satisfy.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflexa/internal/db"
)

const (
	WalletA = "0x00000000000000000000000000000000000000aa"
	WalletB = "0x00000000000000000000000000000000000000bb"
	WalletC = "0x00000000000000000000000000000000000000cc"
)

// Factory returns an empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) db.Store

func RunStoreTests(t *testing.T, newStore Factory) {
	t.Run("RoundLifecycle", func(t *testing.T) { testRoundLifecycle(t, newStore(t)) })
	t.Run("RecordScore", func(t *testing.T) { testRecordScore(t, newStore(t)) })
	t.Run("RecordScoreConsumesRound", func(t *testing.T) { testRecordScoreConsumesRound(t, newStore(t)) })
	t.Run("Leaderboard", func(t *testing.T) { testLeaderboard(t, newStore(t)) })
	t.Run("RecentScores", func(t *testing.T) { testRecentScores(t, newStore(t)) })
	t.Run("PlayerAggregates", func(t *testing.T) { testPlayerAggregates(t, newStore(t)) })
	t.Run("BadgeClaims", func(t *testing.T) { testBadgeClaims(t, newStore(t)) })
}

func baseTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func startRound(t *testing.T, s db.Store, wallet, roundID string) {
	t.Helper()
	err := s.CreateRound(context.Background(), db.RoundRecord{
		RoundID:   roundID,
		Wallet:    wallet,
		DelayMs:   2500,
		StartedAt: baseTime(),
		Status:    db.RoundStarted,
	})
	require.NoError(t, err)
}

// Play starts a round and records a verified score for it.
func Play(t *testing.T, s db.Store, wallet, roundID string, reaction, score int, at time.Time) {
	t.Helper()
	startRound(t, s, wallet, roundID)
	err := s.RecordScore(context.Background(), db.ScoreRecord{
		Wallet:       wallet,
		RoundID:      roundID,
		ReactionTime: reaction,
		Score:        score,
		Verified:     true,
		Signature:    "0xsig-" + roundID,
		CreatedAt:    at,
	})
	require.NoError(t, err)
}

func testRoundLifecycle(t *testing.T, s db.Store) {
	ctx := context.Background()
	startRound(t, s, WalletA, "round-1")

	r, err := s.GetRound(ctx, WalletA, "round-1")
	require.NoError(t, err)
	assert.Equal(t, "round-1", r.RoundID)
	assert.Equal(t, WalletA, r.Wallet)
	assert.Equal(t, 2500, r.DelayMs)
	assert.Equal(t, db.RoundStarted, r.Status)

	_, err = s.GetRound(ctx, WalletB, "round-1")
	assert.ErrorIs(t, err, db.ErrNotFound, "round must not be visible to another wallet")

	_, err = s.GetRound(ctx, WalletA, "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, s.CompleteRound(ctx, WalletA, "round-1"))
	assert.ErrorIs(t, s.CompleteRound(ctx, WalletA, "round-1"), db.ErrRoundCompleted)
	assert.ErrorIs(t, s.CompleteRound(ctx, WalletA, "missing"), db.ErrNotFound)

	r, err = s.GetRound(ctx, WalletA, "round-1")
	require.NoError(t, err)
	assert.Equal(t, db.RoundCompleted, r.Status)
}

func testRecordScore(t *testing.T, s db.Store) {
	ctx := context.Background()
	Play(t, s, WalletA, "round-1", 180, 920, baseTime())
	Play(t, s, WalletA, "round-2", 400, 550, baseTime().Add(time.Minute))

	p, err := s.GetPlayerStats(ctx, WalletA)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalGames)
	assert.Equal(t, 920, p.BestScore, "best score must never decrease")
	require.NotNil(t, p.LastPlayedAt)
	assert.True(t, p.LastPlayedAt.Equal(baseTime().Add(time.Minute)))

	_, err = s.GetPlayerStats(ctx, WalletB)
	assert.ErrorIs(t, err, db.ErrNotFound)

	err = s.RecordScore(ctx, db.ScoreRecord{Wallet: WalletB, RoundID: "never-issued", Score: 1000, Verified: true, CreatedAt: baseTime()})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testRecordScoreConsumesRound(t *testing.T, s db.Store) {
	ctx := context.Background()
	Play(t, s, WalletA, "round-1", 180, 920, baseTime())

	err := s.RecordScore(ctx, db.ScoreRecord{
		Wallet: WalletA, RoundID: "round-1", ReactionTime: 150, Score: 950,
		Verified: true, Signature: "0xreplay", CreatedAt: baseTime().Add(time.Second),
	})
	assert.ErrorIs(t, err, db.ErrRoundCompleted)

	p, err := s.GetPlayerStats(ctx, WalletA)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalGames, "replayed round must not count")
	assert.Equal(t, 920, p.BestScore)

	recent, err := s.RecentScores(ctx, WalletA, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func testLeaderboard(t *testing.T, s db.Store) {
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		Play(t, s, WalletA, fmt.Sprintf("a-%02d", i), 300+i, 700-i, baseTime().Add(time.Duration(i)*time.Second))
	}
	Play(t, s, WalletB, "b-1", 150, 950, baseTime().Add(time.Hour))
	Play(t, s, WalletC, "c-1", 150, 950, baseTime().Add(2*time.Hour))

	top, err := s.TopScores(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, WalletB, top[0].Wallet, "earlier score wins a tie")
	assert.Equal(t, WalletC, top[1].Wallet)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
	}
	assert.True(t, top[0].Verified)
	assert.Equal(t, "0xsig-b-1", top[0].Signature)
}

func testRecentScores(t *testing.T, s db.Store) {
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		Play(t, s, WalletA, fmt.Sprintf("r-%d", i), 200+i, 900-2*i, baseTime().Add(time.Duration(i)*time.Minute))
	}
	Play(t, s, WalletB, "other", 200, 900, baseTime().Add(time.Hour))

	recent, err := s.RecentScores(ctx, WalletA, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "r-6", recent[0].RoundID)
	assert.Equal(t, "r-2", recent[4].RoundID)

	none, err := s.RecentScores(ctx, WalletC, 5)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testPlayerAggregates(t *testing.T, s db.Store) {
	ctx := context.Background()
	Play(t, s, WalletA, "a-1", 180, 920, baseTime())
	Play(t, s, WalletA, "a-2", 130, 1000, baseTime().Add(time.Second))
	Play(t, s, WalletB, "b-1", 400, 550, baseTime())
	Play(t, s, WalletC, "c-1", 260, 780, baseTime())

	n, err := s.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	best, err := s.TopBestScores(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 780}, best)

	ok, err := s.HasVerifiedReactionAtMost(ctx, WalletA, 130)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.HasVerifiedReactionAtMost(ctx, WalletB, 130)
	require.NoError(t, err)
	assert.False(t, ok)

	g, err := s.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, g.TotalPlayers)
	assert.Equal(t, 4, g.TotalGames)
	assert.Equal(t, 0, g.RewardsDistributed)
}

func testBadgeClaims(t *testing.T, s db.Store) {
	ctx := context.Background()
	claim := db.BadgeClaimRecord{Wallet: WalletA, BadgeID: "FIVE_GAMES", Signature: "0x01", ClaimedAt: baseTime()}
	require.NoError(t, s.RecordBadgeClaim(ctx, claim))
	claim.Signature = "0x02"
	require.NoError(t, s.RecordBadgeClaim(ctx, claim), "repeat claim is a no-op")
	require.NoError(t, s.RecordBadgeClaim(ctx, db.BadgeClaimRecord{Wallet: WalletB, BadgeID: "FIVE_GAMES", Signature: "0x03", ClaimedAt: baseTime()}))

	g, err := s.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, g.RewardsDistributed)
}
