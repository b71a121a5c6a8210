// Package repository provides data access layer for the browser application.
package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"ytsbrowser/database"
	"ytsbrowser/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// ViewEventRepository handles view event data operations
type ViewEventRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewViewEventRepository creates a new view event repository
func NewViewEventRepository(db *database.DB) *ViewEventRepository {
	return &ViewEventRepository{db: db, now: time.Now}
}

// Create records a view event
func (r *ViewEventRepository) Create(event *models.ViewEvent) error {
	if event.RouteName == "" || event.Path == "" {
		return fmt.Errorf("view event requires a route name and a path")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}
	event.CreatedAt = event.CreatedAt.UTC().Truncate(time.Second)

	query := `INSERT INTO view_events (movie_id, title, route_name, path, created_at) VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query,
		nullString(event.MovieID), nullString(event.Title),
		event.RouteName, event.Path, event.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create view event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	event.ID = int(id)
	return nil
}

// RecentMovies returns the most recently viewed distinct movies
func (r *ViewEventRepository) RecentMovies(limit int) ([]models.RecentMovie, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT movie_id, title, MAX(created_at) AS last_viewed, COUNT(*), MAX(id) AS last_id
			  FROM view_events
			  WHERE movie_id IS NOT NULL AND movie_id != ''
			  GROUP BY movie_id
			  ORDER BY last_viewed DESC, last_id DESC
			  LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent movies: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Failed to close rows: %v", err)
		}
	}()

	movies := []models.RecentMovie{}
	for rows.Next() {
		var movie models.RecentMovie
		var title sql.NullString
		var lastViewed string
		var lastID int

		if err := rows.Scan(&movie.MovieID, &title, &lastViewed, &movie.Views, &lastID); err != nil {
			return nil, fmt.Errorf("failed to scan recent movie: %w", err)
		}

		if title.Valid {
			movie.Title = title.String
		}
		movie.LastViewedAt = parseTimestamp(lastViewed)

		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent movies: %w", err)
	}

	return movies, nil
}

// CountByRoute returns how many views each route has served
func (r *ViewEventRepository) CountByRoute() ([]models.RouteStats, error) {
	rows, err := r.db.Query(`SELECT route_name, COUNT(*) FROM view_events GROUP BY route_name ORDER BY COUNT(*) DESC, route_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count views: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Failed to close rows: %v", err)
		}
	}()

	stats := []models.RouteStats{}
	for rows.Next() {
		var s models.RouteStats
		if err := rows.Scan(&s.RouteName, &s.Views); err != nil {
			return nil, fmt.Errorf("failed to scan route stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route stats: %w", err)
	}

	return stats, nil
}

// DeleteOldEvents removes events older than the specified duration
func (r *ViewEventRepository) DeleteOldEvents(olderThan time.Duration) (int64, error) {
	cutoff := r.now().UTC().Add(-olderThan)
	result, err := r.db.Exec(`DELETE FROM view_events WHERE created_at < ?`, cutoff.Format(timestampLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted events: %w", err)
	}
	return deleted, nil
}

// parseTimestamp accepts both the stored layout and the driver's RFC 3339 rendering.
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
