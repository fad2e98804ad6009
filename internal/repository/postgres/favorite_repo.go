package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusengage/internal/domain"
)

type favoriteRepository struct {
	DB *sql.DB
}

func NewFavoriteRepository(db *sql.DB) domain.FavoriteRepository {
	return &favoriteRepository{DB: db}
}

func (r *favoriteRepository) Toggle(ctx context.Context, eventID, userID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return false, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		query := `
			INSERT INTO favorites (event_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (event_id, user_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, eventID, userID); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return removed == 0, nil
}

func (r *favoriteRepository) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM favorites f
		JOIN events e ON e.id = f.event_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *favoriteRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.FavoriteReminderTarget, error) {
	query := `SELECT ` + eventColumns + `, f.user_id
		FROM favorites f
		JOIN events e ON e.id = f.event_id
		WHERE e.status = 'active' AND e.archived = FALSE
		  AND e.starts_at >= $1 AND e.starts_at < $2
		ORDER BY e.starts_at, f.user_id
	`
	rows, err := r.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	targets := make([]*domain.FavoriteReminderTarget, 0)
	for rows.Next() {
		var userID string
		e, err := scanEvent(rows, &userID)
		if err != nil {
			return nil, err
		}
		targets = append(targets, &domain.FavoriteReminderTarget{UserID: userID, Event: e})
	}
	return targets, rows.Err()
}
