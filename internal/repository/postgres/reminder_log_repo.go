package postgres

import (
	"context"
	"database/sql"

	"campusengage/internal/domain"
)

type reminderLogRepository struct {
	DB *sql.DB
}

func NewReminderLogRepository(db *sql.DB) domain.ReminderLogRepository {
	return &reminderLogRepository{DB: db}
}

func (r *reminderLogRepository) Claim(ctx context.Context, key domain.ClaimKey) (bool, error) {
	query := `
		INSERT INTO reminder_logs (user_id, event_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id, kind) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, key.UserID, key.EventID, string(key.Kind))
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
