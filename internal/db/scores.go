package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ScoreRecord struct {
	Wallet       string    `json:"wallet"`
	RoundID      string    `json:"roundId"`
	ReactionTime int       `json:"reactionTime"`
	Score        int       `json:"score"`
	Verified     bool      `json:"verified"`
	Signature    string    `json:"signature"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (d *DB) RecordScore(ctx context.Context, s ScoreRecord) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := completeRound(ctx, tx, s.Wallet, s.RoundID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scores (wallet, round_id, reaction_time, score, verified, signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.Wallet, s.RoundID, s.ReactionTime, s.Score, s.Verified, s.Signature, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting score: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (wallet, total_games, best_score, last_played_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (wallet) DO UPDATE SET
			total_games = players.total_games + 1,
			best_score = GREATEST(players.best_score, EXCLUDED.best_score),
			last_played_at = EXCLUDED.last_played_at
	`, s.Wallet, s.Score, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting player stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing score: %w", err)
	}
	return nil
}

func (d *DB) TopScores(ctx context.Context, limit int) ([]ScoreRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT wallet, round_id, reaction_time, score, verified, signature, created_at
		FROM scores
		WHERE verified = true
		ORDER BY score DESC, created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("getting top scores: %w", err)
	}
	return scanScores(rows)
}

func (d *DB) RecentScores(ctx context.Context, wallet string, limit int) ([]ScoreRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT wallet, round_id, reaction_time, score, verified, signature, created_at
		FROM scores
		WHERE wallet = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("getting recent scores: %w", err)
	}
	return scanScores(rows)
}

func (d *DB) HasVerifiedReactionAtMost(ctx context.Context, wallet string, maxMs int) (bool, error) {
	var exists bool
	err := d.conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM scores WHERE wallet = $1 AND verified = true AND reaction_time <= $2
		)
	`, wallet, maxMs).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking reaction history: %w", err)
	}
	return exists, nil
}

func scanScores(rows *sql.Rows) ([]ScoreRecord, error) {
	defer rows.Close()

	scores := []ScoreRecord{}
	for rows.Next() {
		var s ScoreRecord
		if err := rows.Scan(&s.Wallet, &s.RoundID, &s.ReactionTime, &s.Score, &s.Verified, &s.Signature, &s.CreatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
