package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflexa/internal/db/dbtest"
	"reflexa/internal/events"
	"reflexa/internal/memstore"
	"reflexa/internal/signer"
)

const testKey = "0x0000000000000000000000000000000000000000000000000000000000000001"

func newClaimer(t *testing.T, key string) (*Claimer, *memstore.Store, *events.Bus) {
	t.Helper()
	s, err := signer.New(key)
	require.NoError(t, err)
	store := memstore.NewStore()
	bus := events.NewBus()
	c := NewClaimer(NewQueries(store), s, bus)
	c.now = func() time.Time { return t0 }
	return c, store, bus
}

func TestClaim_IssuesRecoverableSignature(t *testing.T) {
	c, store, bus := newClaimer(t, testKey)
	for i := 0; i < 5; i++ {
		dbtest.Play(t, store, dbtest.WalletA, fmt.Sprintf("r%d", i), 300, 700, t0)
	}

	res, err := c.Claim(context.Background(), dbtest.WalletA, "FIVE_GAMES")
	require.NoError(t, err)
	assert.Equal(t, dbtest.WalletA, res.Wallet)
	assert.Equal(t, BadgeFiveGames, res.BadgeID)

	addr, err := signer.ParseAddress(dbtest.WalletA)
	require.NoError(t, err)
	recovered, err := signer.Recover(signer.BadgeDigest(addr, "FIVE_GAMES"), res.Signature)
	require.NoError(t, err)
	assert.Equal(t, "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", recovered.Hex())

	g, err := store.GlobalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, g.RewardsDistributed)

	select {
	case ev := <-bus.C:
		assert.Equal(t, events.BadgeClaimed, ev.Type)
		assert.Equal(t, "FIVE_GAMES", ev.BadgeID)
	default:
		t.Fatal("expected a badge_claimed event")
	}
}

func TestClaim_RepeatCountsOnce(t *testing.T) {
	c, store, _ := newClaimer(t, testKey)
	for i := 0; i < 5; i++ {
		dbtest.Play(t, store, dbtest.WalletA, fmt.Sprintf("r%d", i), 300, 700, t0)
	}

	first, err := c.Claim(context.Background(), dbtest.WalletA, "FIVE_GAMES")
	require.NoError(t, err)
	second, err := c.Claim(context.Background(), dbtest.WalletA, "FIVE_GAMES")
	require.NoError(t, err)
	assert.Equal(t, first.Signature, second.Signature)

	g, err := store.GlobalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, g.RewardsDistributed)
}

func TestClaim_NotEligible(t *testing.T) {
	c, store, _ := newClaimer(t, testKey)
	dbtest.Play(t, store, dbtest.WalletA, "r1", 300, 700, t0)

	_, err := c.Claim(context.Background(), dbtest.WalletA, "FIVE_GAMES")
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = c.Claim(context.Background(), dbtest.WalletB, "FIVE_GAMES")
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestClaim_UnknownBadge(t *testing.T) {
	c, _, _ := newClaimer(t, testKey)
	_, err := c.Claim(context.Background(), dbtest.WalletA, "SIX_GAMES")
	assert.ErrorIs(t, err, ErrUnknownBadge)
}

func TestClaim_UnconfiguredSigner(t *testing.T) {
	c, store, _ := newClaimer(t, "")
	for i := 0; i < 5; i++ {
		dbtest.Play(t, store, dbtest.WalletA, fmt.Sprintf("r%d", i), 300, 700, t0)
	}

	_, err := c.Claim(context.Background(), dbtest.WalletA, "FIVE_GAMES")
	assert.ErrorIs(t, err, signer.ErrUnconfigured)

	g, err := store.GlobalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, g.RewardsDistributed)
}

func TestClaim_NilBus(t *testing.T) {
	s, err := signer.New(testKey)
	require.NoError(t, err)
	store := memstore.NewStore()
	for i := 0; i < 5; i++ {
		dbtest.Play(t, store, dbtest.WalletA, fmt.Sprintf("r%d", i), 300, 700, t0)
	}
	c := NewClaimer(NewQueries(store), s, nil)

	res, err := c.Claim(context.Background(), dbtest.WalletA, "FIVE_GAMES")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Signature)
}
