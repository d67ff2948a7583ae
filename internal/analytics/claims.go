package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reflexa/internal/db"
	"reflexa/internal/events"
	"reflexa/internal/metrics"
	"reflexa/internal/signer"
)

var (
	ErrNotEligible  = errors.New("not eligible for badge")
	ErrUnknownBadge = errors.New("unknown badge")
)

type ClaimResult struct {
	Wallet    string  `json:"wallet"`
	BadgeID   BadgeID `json:"badgeId"`
	Signature string  `json:"signature"`
}

// Claimer issues badge mint signatures. Eligibility is always recomputed here;
// nothing the client says about its badges is trusted.
type Claimer struct {
	queries *Queries
	signer  *signer.Signer
	bus     *events.Bus
	now     func() time.Time
}

// NewClaimer builds a Claimer. bus may be nil, in which case claims are not
// published to the live feed.
func NewClaimer(q *Queries, s *signer.Signer, bus *events.Bus) *Claimer {
	return &Claimer{queries: q, signer: s, bus: bus, now: time.Now}
}

func (c *Claimer) Claim(ctx context.Context, wallet, badge string) (*ClaimResult, error) {
	id, ok := ParseBadgeID(badge)
	if !ok {
		metrics.BadgeClaimsTotal.WithLabelValues("unknown", "unknown_badge").Inc()
		return nil, ErrUnknownBadge
	}

	eligible, err := c.queries.IsEligible(ctx, wallet, id)
	if err != nil {
		metrics.BadgeClaimsTotal.WithLabelValues(string(id), "error").Inc()
		return nil, err
	}
	if !eligible {
		metrics.BadgeClaimsTotal.WithLabelValues(string(id), "not_eligible").Inc()
		return nil, ErrNotEligible
	}

	sig, err := c.signer.SignBadge(wallet, string(id))
	if err != nil {
		metrics.BadgeClaimsTotal.WithLabelValues(string(id), "error").Inc()
		return nil, err
	}
	metrics.SignaturesTotal.WithLabelValues("badge").Inc()

	now := c.now().UTC()
	if err := c.queries.Store.RecordBadgeClaim(ctx, db.BadgeClaimRecord{
		Wallet:    wallet,
		BadgeID:   string(id),
		Signature: sig,
		ClaimedAt: now,
	}); err != nil {
		metrics.BadgeClaimsTotal.WithLabelValues(string(id), "error").Inc()
		return nil, fmt.Errorf("recording claim: %w", err)
	}
	metrics.BadgeClaimsTotal.WithLabelValues(string(id), "issued").Inc()

	if c.bus != nil && !c.bus.Publish(events.Event{Type: events.BadgeClaimed, Wallet: wallet, BadgeID: string(id), At: now}) {
		metrics.EventsDroppedTotal.Inc()
	}

	return &ClaimResult{Wallet: wallet, BadgeID: id, Signature: sig}, nil
}
