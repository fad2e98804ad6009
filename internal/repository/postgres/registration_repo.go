package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusengage/internal/domain"

	"github.com/lib/pq"
)

// pgUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) (domain.CapacitySnapshot, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.CapacitySnapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	snap, err := lockEventCapacity(ctx, tx, reg.EventID)
	if err != nil {
		return domain.CapacitySnapshot{}, err
	}
	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`, reg.EventID, reg.UserID).Scan(&exists)
	if err != nil {
		return domain.CapacitySnapshot{}, err
	}
	if exists {
		return domain.CapacitySnapshot{}, domain.ErrAlreadyRegistered
	}
	if snap.IsFull() {
		return domain.CapacitySnapshot{}, domain.ErrEventFull
	}

	query := `
		INSERT INTO registrations (event_id, user_id, check_in_token_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query, reg.EventID, reg.UserID, reg.CheckInTokenHash, reg.CreatedAt).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.CapacitySnapshot{}, domain.ErrAlreadyRegistered
		}
		return domain.CapacitySnapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.CapacitySnapshot{}, fmt.Errorf("commit tx: %w", err)
	}
	snap.Count++
	return snap, nil
}

func (r *registrationRepository) Delete(ctx context.Context, eventID, userID string) (domain.CapacitySnapshot, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.CapacitySnapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	snap, err := lockEventCapacity(ctx, tx, eventID)
	if err != nil {
		return domain.CapacitySnapshot{}, err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return domain.CapacitySnapshot{}, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.CapacitySnapshot{}, err
	}
	if rows == 0 {
		return domain.CapacitySnapshot{}, domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return domain.CapacitySnapshot{}, fmt.Errorf("commit tx: %w", err)
	}
	snap.Count--
	return snap, nil
}

const registrationColumns = `id, event_id, user_id, check_in_token_hash, checked_in, checked_in_at, created_at`

func scanRegistration(s rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var checkedInAt sql.NullTime
	if err := s.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CheckInTokenHash, &reg.CheckedIn, &checkedInAt, &reg.CreatedAt); err != nil {
		return nil, err
	}
	if checkedInAt.Valid {
		reg.CheckedInAt = &checkedInAt.Time
	}
	return reg, nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND user_id = $2`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListUserIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT user_id FROM registrations WHERE event_id = $1 ORDER BY created_at`, eventID)
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

func (r *registrationRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count)
	return count, err
}

func (r *registrationRepository) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RegisteredEvent, error) {
	query := `SELECT ` + eventColumns + `, r.id, r.checked_in, r.checked_in_at, r.created_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.RegisteredEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{UserID: userID}
		var checkedInAt sql.NullTime
		e, err := scanEvent(rows, &reg.ID, &reg.CheckedIn, &checkedInAt, &reg.CreatedAt)
		if err != nil {
			return nil, err
		}
		reg.EventID = e.ID
		if checkedInAt.Valid {
			reg.CheckedInAt = &checkedInAt.Time
		}
		out = append(out, &domain.RegisteredEvent{Registration: reg, Event: e})
	}
	return out, rows.Err()
}

func (r *registrationRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE registrations SET checked_in = TRUE, checked_in_at = $2
		WHERE id = $1 AND checked_in = FALSE
	`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAlreadyCheckedIn
	}
	return nil
}
