package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresChecker pings PostgreSQL over a dedicated database/sql handle so a
// saturated application pool does not mask connectivity
type PostgresChecker struct {
	BaseChecker
	db *sql.DB
}

// NewPostgresChecker opens a small lib/pq handle for health checks
func NewPostgresChecker(dsn string) (*PostgresChecker, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(time.Minute)

	return &PostgresChecker{
		BaseChecker: BaseChecker{name: "postgres"},
		db:          db,
	}, nil
}

// HealthCheck verifies PostgreSQL connectivity and that the schema is applied
func (p *PostgresChecker) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return err
	}

	var applied int
	if err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&applied); err != nil {
		return fmt.Errorf("schema not migrated: %w", err)
	}
	if applied == 0 {
		return fmt.Errorf("schema not migrated: no migrations applied")
	}
	return nil
}

// Close closes the health check handle
func (p *PostgresChecker) Close() error {
	return p.db.Close()
}
