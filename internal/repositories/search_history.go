package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/crate/internal/shared"
)

// SearchEntry is one recorded search.
type SearchEntry struct {
	ID          int64     `json:"id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// SearchHistoryRepository records submitted searches.
type SearchHistoryRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSearchHistoryRepository creates a new SearchHistoryRepository with the given database connection
func NewSearchHistoryRepository(db *sql.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db, now: time.Now}
}

// Record appends a search. Blank queries are ignored.
func (r *SearchHistoryRepository) Record(ctx context.Context, query string, resultCount int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_history (query, result_count, searched_at) VALUES (?, ?, ?)`,
		query, resultCount, r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to record search: %v", shared.ErrPersistence, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit returns everything.
func (r *SearchHistoryRepository) Recent(ctx context.Context, limit int) ([]SearchEntry, error) {
	query := `
		SELECT id, query, result_count, searched_at
		FROM search_history
		ORDER BY searched_at DESC, id DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query search history: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	var entries []SearchEntry
	for rows.Next() {
		var e SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.ResultCount, &e.SearchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Clear deletes all history and reports how many entries were removed.
func (r *SearchHistoryRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM search_history`)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to clear search history: %v", shared.ErrPersistence, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
