package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusengage/internal/domain"
)

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepository(db *sql.DB) domain.FeedbackRepository {
	return &feedbackRepository{DB: db}
}

func (r *feedbackRepository) Create(ctx context.Context, fb *domain.Feedback) (domain.FeedbackStats, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Serializes feedback writes per event so the returned stats are exactly post-insert.
	var id string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, fb.EventID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.FeedbackStats{}, domain.ErrNotFound
		}
		return domain.FeedbackStats{}, err
	}

	query := `
		INSERT INTO feedback (event_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query, fb.EventID, fb.UserID, fb.Rating, fb.Comment, fb.CreatedAt).Scan(&fb.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.FeedbackStats{}, domain.ErrFeedbackExists
		}
		return domain.FeedbackStats{}, err
	}

	var stats domain.FeedbackStats
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM feedback WHERE event_id = $1`, fb.EventID).
		Scan(&stats.Count, &stats.Average)
	if err != nil {
		return domain.FeedbackStats{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("commit tx: %w", err)
	}
	return stats, nil
}

func (r *feedbackRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM feedback WHERE event_id = $1 AND user_id = $2)`, eventID, userID).
		Scan(&exists)
	return exists, err
}

func (r *feedbackRepository) ListRatedEventsByUserID(ctx context.Context, userID string) ([]*domain.RatedEvent, error) {
	query := `SELECT ` + eventColumns + `, f.rating
		FROM feedback f
		JOIN events e ON e.id = f.event_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rated := make([]*domain.RatedEvent, 0)
	for rows.Next() {
		var rating int
		e, err := scanEvent(rows, &rating)
		if err != nil {
			return nil, err
		}
		rated = append(rated, &domain.RatedEvent{Event: e, Rating: rating})
	}
	return rated, rows.Err()
}

func (r *feedbackRepository) RatingDistribution(ctx context.Context, eventID string) (map[int]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT rating, COUNT(*) FROM feedback WHERE event_id = $1 GROUP BY rating`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		dist[rating] = count
	}
	return dist, rows.Err()
}

const feedbackColumns = `id, event_id, user_id, rating, comment, created_at`

func (r *feedbackRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Feedback, error) {
	return r.list(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *feedbackRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Feedback, error) {
	return r.list(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
}

func (r *feedbackRepository) list(ctx context.Context, query string, arg string) ([]*domain.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Feedback, 0)
	for rows.Next() {
		fb := &domain.Feedback{}
		var comment sql.NullString
		if err := rows.Scan(&fb.ID, &fb.EventID, &fb.UserID, &fb.Rating, &comment, &fb.CreatedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			fb.Comment = &comment.String
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}
