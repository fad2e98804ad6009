package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusengage/internal/domain"
)

// eventColumns is the select list shared by every event query. Queries alias events as e.
const eventColumns = `e.id, e.organizer_id, e.title, e.category_id, e.unit_id, e.starts_at,
		e.registration_deadline, e.capacity, e.status, e.archived, e.created_at, e.updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent scans eventColumns followed by any extra destinations.
func scanEvent(s rowScanner, extra ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var categoryNull, unitNull sql.NullString
	var deadlineNull sql.NullTime
	var capacityNull sql.NullInt64
	var status string
	dest := []any{
		&e.ID, &e.OrganizerID, &e.Title, &categoryNull, &unitNull, &e.StartsAt,
		&deadlineNull, &capacityNull, &status, &e.Archived, &e.CreatedAt, &e.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	if categoryNull.Valid {
		e.CategoryID = &categoryNull.String
	}
	if unitNull.Valid {
		e.UnitID = &unitNull.String
	}
	if deadlineNull.Valid {
		e.RegistrationDeadline = &deadlineNull.Time
	}
	if capacityNull.Valid {
		c := int(capacityNull.Int64)
		e.Capacity = &c
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		WHERE e.id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListRecommendationCandidates(ctx context.Context, userID string, now time.Time, limit int) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		WHERE e.status = 'active' AND e.archived = FALSE AND e.starts_at > $2
		  AND NOT EXISTS (
		    SELECT 1 FROM registrations r WHERE r.event_id = e.id AND r.user_id = $1
		  )
		ORDER BY e.starts_at ASC, e.id ASC
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, now, limit)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) ListConcluded(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		WHERE e.status = 'active' AND e.archived = FALSE AND e.starts_at < $1
		ORDER BY e.starts_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) UpdateCapacity(ctx context.Context, eventID string, capacity *int) (*domain.Event, domain.CapacitySnapshot, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.CapacitySnapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	snap, err := lockEventCapacity(ctx, tx, eventID)
	if err != nil {
		return nil, domain.CapacitySnapshot{}, err
	}
	if capacity != nil && *capacity < snap.Count {
		return nil, domain.CapacitySnapshot{}, domain.ErrCapacityBelowCount
	}

	query := `UPDATE events e SET capacity = $1, updated_at = NOW()
		WHERE e.id = $2
		RETURNING ` + eventColumns
	var capArg any
	if capacity != nil {
		capArg = *capacity
	}
	e, err := scanEvent(tx.QueryRowContext(ctx, query, capArg, eventID))
	if err != nil {
		return nil, domain.CapacitySnapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.CapacitySnapshot{}, fmt.Errorf("commit tx: %w", err)
	}
	return e, snap, nil
}

// lockEventCapacity takes the event row lock that serializes registration writes for one event
// and returns the current registration count and capacity.
func lockEventCapacity(ctx context.Context, tx *sql.Tx, eventID string) (domain.CapacitySnapshot, error) {
	var capacityNull sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacityNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CapacitySnapshot{}, domain.ErrNotFound
		}
		return domain.CapacitySnapshot{}, err
	}
	snap := domain.CapacitySnapshot{}
	if capacityNull.Valid {
		c := int(capacityNull.Int64)
		snap.Capacity = &c
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&snap.Count); err != nil {
		return domain.CapacitySnapshot{}, err
	}
	return snap, nil
}
