package querylog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL query log repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Record stores an entry.
func (r *PostgresRepository) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO query_log (
			id, network, parameter, period,
			station_id, station_name,
			reading_count, bucket_count, granularity,
			duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Network,
		entry.Parameter,
		entry.Period,
		entry.StationID,
		entry.StationName,
		entry.ReadingCount,
		entry.BucketCount,
		entry.Granularity,
		entry.Duration.Milliseconds(),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert query log entry: %w", err)
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT
			id, network, parameter, period,
			station_id, station_name,
			reading_count, bucket_count, granularity,
			duration_ms, created_at
		FROM query_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var durationMs int64

		err := rows.Scan(
			&entry.ID,
			&entry.Network,
			&entry.Parameter,
			&entry.Period,
			&entry.StationID,
			&entry.StationName,
			&entry.ReadingCount,
			&entry.BucketCount,
			&entry.Granularity,
			&durationMs,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan query log entry: %w", err)
		}

		entry.Duration = durationFromMs(durationMs)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query log entries: %w", err)
	}

	return entries, nil
}

// durationFromMs converts stored milliseconds back to a duration.
func durationFromMs(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
