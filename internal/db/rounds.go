package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type RoundStatus string

const (
	RoundStarted   = RoundStatus("STARTED")
	RoundCompleted = RoundStatus("COMPLETED")
)

type RoundRecord struct {
	RoundID   string
	Wallet    string
	DelayMs   int
	StartedAt time.Time
	Status    RoundStatus
}

func (d *DB) CreateRound(ctx context.Context, r RoundRecord) error {
	if r.Status == "" {
		r.Status = RoundStarted
	}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO rounds (round_id, wallet, delay_ms, started_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`, r.RoundID, r.Wallet, r.DelayMs, r.StartedAt, string(r.Status))
	if err != nil {
		return fmt.Errorf("creating round: %w", err)
	}
	return nil
}

func (d *DB) GetRound(ctx context.Context, wallet, roundID string) (*RoundRecord, error) {
	return getRound(ctx, d.conn, wallet, roundID)
}

func (d *DB) CompleteRound(ctx context.Context, wallet, roundID string) error {
	return completeRound(ctx, d.conn, wallet, roundID)
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRound(ctx context.Context, q queryer, wallet, roundID string) (*RoundRecord, error) {
	var r RoundRecord
	var status string
	err := q.QueryRowContext(ctx, `
		SELECT round_id, wallet, delay_ms, started_at, status
		FROM rounds WHERE round_id = $1 AND wallet = $2
	`, roundID, wallet).Scan(&r.RoundID, &r.Wallet, &r.DelayMs, &r.StartedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting round: %w", err)
	}
	r.Status = RoundStatus(status)
	return &r, nil
}

func completeRound(ctx context.Context, q queryer, wallet, roundID string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE rounds SET status = $3
		WHERE round_id = $1 AND wallet = $2 AND status = $4
	`, roundID, wallet, string(RoundCompleted), string(RoundStarted))
	if err != nil {
		return fmt.Errorf("completing round: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("completing round: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := getRound(ctx, q, wallet, roundID); err != nil {
		return err
	}
	return ErrRoundCompleted
}
