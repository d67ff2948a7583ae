package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PlayerStatsRecord struct {
	Wallet       string     `json:"wallet"`
	TotalGames   int        `json:"totalGames"`
	BestScore    int        `json:"bestScore"`
	LastPlayedAt *time.Time `json:"lastPlayedAt"`
}

type GlobalStats struct {
	TotalPlayers       int `json:"totalPlayers"`
	TotalGames         int `json:"totalGames"`
	RewardsDistributed int `json:"rewardsDistributed"`
}

func (d *DB) GetPlayerStats(ctx context.Context, wallet string) (*PlayerStatsRecord, error) {
	var p PlayerStatsRecord
	err := d.conn.QueryRowContext(ctx, `
		SELECT wallet, total_games, best_score, last_played_at FROM players WHERE wallet = $1
	`, wallet).Scan(&p.Wallet, &p.TotalGames, &p.BestScore, &p.LastPlayedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting player stats: %w", err)
	}
	return &p, nil
}

func (d *DB) CountPlayers(ctx context.Context) (int, error) {
	var n int
	if err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return n, nil
}

func (d *DB) TopBestScores(ctx context.Context, limit int) ([]int, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT best_score FROM players ORDER BY best_score DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("getting top best scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (d *DB) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	var g GlobalStats
	err := d.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM players),
			(SELECT COALESCE(SUM(total_games), 0) FROM players),
			(SELECT COUNT(*) FROM badge_claims)
	`).Scan(&g.TotalPlayers, &g.TotalGames, &g.RewardsDistributed)
	if err != nil {
		return nil, fmt.Errorf("getting global stats: %w", err)
	}
	return &g, nil
}
