package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflexa/internal/db/dbtest"
	"reflexa/internal/memstore"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func wallet(i int) string {
	return fmt.Sprintf("0x%040x", i+1)
}

func TestEligibleBadges_UnknownWallet(t *testing.T) {
	q := NewQueries(memstore.NewStore())
	badges, err := q.EligibleBadges(context.Background(), EligibilityRequest{Wallet: dbtest.WalletA})
	require.NoError(t, err)
	assert.NotNil(t, badges)
	assert.Empty(t, badges)
}

func TestEligibleBadges_FiveGames(t *testing.T) {
	store := memstore.NewStore()
	for i := 0; i < 5; i++ {
		dbtest.Play(t, store, dbtest.WalletA, fmt.Sprintf("r%d", i), 300, 700, t0.Add(time.Duration(i)*time.Minute))
	}
	q := NewQueries(store)

	badges, err := q.EligibleBadges(context.Background(), EligibilityRequest{Wallet: dbtest.WalletA})
	require.NoError(t, err)
	assert.Equal(t, []BadgeID{BadgeFiveGames}, badges)
}

func TestEligibleBadges_PerfectFromHistory(t *testing.T) {
	store := memstore.NewStore()
	dbtest.Play(t, store, dbtest.WalletA, "r1", 95, 1000, t0)
	q := NewQueries(store)

	badges, err := q.EligibleBadges(context.Background(), EligibilityRequest{Wallet: dbtest.WalletA, CurrentReactionMs: intPtr(400)})
	require.NoError(t, err)
	assert.Contains(t, badges, BadgePerfectScore)
}

func TestEligibleBadges_PerfectFromCurrentRound(t *testing.T) {
	store := memstore.NewStore()
	dbtest.Play(t, store, dbtest.WalletA, "r1", 400, 550, t0)
	q := NewQueries(store)

	badges, err := q.EligibleBadges(context.Background(), EligibilityRequest{Wallet: dbtest.WalletA, CurrentReactionMs: intPtr(90)})
	require.NoError(t, err)
	assert.Contains(t, badges, BadgePerfectScore)

	badges, err = q.EligibleBadges(context.Background(), EligibilityRequest{Wallet: dbtest.WalletA})
	require.NoError(t, err)
	assert.NotContains(t, badges, BadgePerfectScore)
}

func TestEligibleBadges_NoTopPercentUnderTenPlayers(t *testing.T) {
	store := memstore.NewStore()
	for i := 0; i < 9; i++ {
		dbtest.Play(t, store, wallet(i), fmt.Sprintf("r%d", i), 200, 900-i, t0)
	}
	q := NewQueries(store)

	badges, err := q.EligibleBadges(context.Background(), EligibilityRequest{Wallet: wallet(0)})
	require.NoError(t, err)
	assert.NotContains(t, badges, BadgeTopOnePct)
}

func TestEligibleBadges_TopPercentTieInclusive(t *testing.T) {
	store := memstore.NewStore()
	for i := 0; i < 10; i++ {
		score := 500
		if i < 2 {
			score = 900
		}
		dbtest.Play(t, store, wallet(i), fmt.Sprintf("r%d", i), 200, score, t0)
	}
	q := NewQueries(store)
	ctx := context.Background()

	// Slice size is 1, so both players tied at 900 qualify.
	for i := 0; i < 2; i++ {
		badges, err := q.EligibleBadges(ctx, EligibilityRequest{Wallet: wallet(i)})
		require.NoError(t, err)
		assert.Contains(t, badges, BadgeTopOnePct, "wallet %d", i)
	}

	badges, err := q.EligibleBadges(ctx, EligibilityRequest{Wallet: wallet(5)})
	require.NoError(t, err)
	assert.NotContains(t, badges, BadgeTopOnePct)
}

func TestLeaderboard_TopTen(t *testing.T) {
	store := memstore.NewStore()
	for i := 0; i < 12; i++ {
		dbtest.Play(t, store, dbtest.WalletA, fmt.Sprintf("r%d", i), 200+i*10, 900-i*10, t0.Add(time.Duration(i)*time.Second))
	}
	q := NewQueries(store)

	top, err := q.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, top, LeaderboardSize)
	assert.Equal(t, 900, top[0].Score)
	assert.Equal(t, 810, top[9].Score)
}

func TestPlayerProfile_UnknownWallet(t *testing.T) {
	q := NewQueries(memstore.NewStore())

	p, err := q.PlayerProfile(context.Background(), dbtest.WalletB)
	require.NoError(t, err)
	assert.Equal(t, dbtest.WalletB, p.Stats.Wallet)
	assert.Zero(t, p.Stats.TotalGames)
	assert.Zero(t, p.Stats.BestScore)
	assert.Nil(t, p.Stats.LastPlayedAt)
	assert.NotNil(t, p.RecentGames)
	assert.Empty(t, p.RecentGames)
}

func TestPlayerProfile_RecentGames(t *testing.T) {
	store := memstore.NewStore()
	for i := 0; i < 7; i++ {
		dbtest.Play(t, store, dbtest.WalletA, fmt.Sprintf("r%d", i), 300, 700+i, t0.Add(time.Duration(i)*time.Minute))
	}
	q := NewQueries(store)

	p, err := q.PlayerProfile(context.Background(), dbtest.WalletA)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stats.TotalGames)
	assert.Equal(t, 706, p.Stats.BestScore)
	require.Len(t, p.RecentGames, RecentGamesSize)
	assert.Equal(t, "r6", p.RecentGames[0].RoundID)
}

func TestGlobalStats(t *testing.T) {
	store := memstore.NewStore()
	dbtest.Play(t, store, dbtest.WalletA, "r1", 300, 700, t0)
	dbtest.Play(t, store, dbtest.WalletA, "r2", 300, 700, t0)
	dbtest.Play(t, store, dbtest.WalletB, "r3", 300, 700, t0)
	q := NewQueries(store)

	g, err := q.GlobalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, g.TotalPlayers)
	assert.Equal(t, 3, g.TotalGames)
	assert.Equal(t, 0, g.RewardsDistributed)
}
