package postgres

import (
	"context"
	"database/sql"

	"campusengage/internal/domain"
)

type recommendationHistoryRepository struct {
	DB *sql.DB
}

func NewRecommendationHistoryRepository(db *sql.DB) domain.RecommendationHistoryRepository {
	return &recommendationHistoryRepository{DB: db}
}

func (r *recommendationHistoryRepository) Record(ctx context.Context, userID, eventID, action string) (bool, error) {
	query := `
		INSERT INTO recommendation_history (user_id, event_id, action)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id, action) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, userID, eventID, action)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *recommendationHistoryRepository) ListEventIDs(ctx context.Context, userID, action string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT event_id FROM recommendation_history WHERE user_id = $1 AND action = $2`, userID, action)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
