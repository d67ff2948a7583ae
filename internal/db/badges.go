package db

import (
	"context"
	"fmt"
	"time"
)

type BadgeClaimRecord struct {
	Wallet    string
	BadgeID   string
	Signature string
	ClaimedAt time.Time
}

// RecordBadgeClaim keeps the first claim per (wallet, badge); repeats are no-ops.
func (d *DB) RecordBadgeClaim(ctx context.Context, c BadgeClaimRecord) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO badge_claims (wallet, badge_id, signature, claimed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet, badge_id) DO NOTHING
	`, c.Wallet, c.BadgeID, c.Signature, c.ClaimedAt)
	if err != nil {
		return fmt.Errorf("recording badge claim: %w", err)
	}
	return nil
}
