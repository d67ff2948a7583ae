package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the PostgreSQL Store.
type DB struct {
	conn *sql.DB
}

var _ Store = (*DB)(nil)

func Connect(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{conn: conn}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

// Migrate applies every embedded migration in name order. Migrations are
// written to be idempotent so this runs on every start.
func (d *DB) Migrate(ctx context.Context) ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	applied := make([]string, 0, len(entries))
	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return applied, fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := d.conn.ExecContext(ctx, string(content)); err != nil {
			return applied, fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		applied = append(applied, entry.Name())
	}
	return applied, nil
}

// Truncate removes every row. Test helper.
func (d *DB) Truncate(ctx context.Context) error {
	_, err := d.conn.ExecContext(ctx, `TRUNCATE badge_claims, scores, players, rounds`)
	if err != nil {
		return fmt.Errorf("truncating tables: %w", err)
	}
	return nil
}
