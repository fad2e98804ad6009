package domain

import (
	"context"
	"time"
)

// Feedback is a user's rating of an event they attended.
// swagger:model Feedback
type Feedback struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackStats are the aggregate feedback figures of an event after a write.
type FeedbackStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// RatedEvent is an event with the rating a user gave it.
type RatedEvent struct {
	Event  *Event
	Rating int
}

// FeedbackSummary is the organizer view of an event's feedback.
// swagger:model FeedbackSummary
type FeedbackSummary struct {
	EventID            string      `json:"event_id"`
	TotalRegistered    int         `json:"total_registered"`
	FeedbackCount      int         `json:"feedback_count"`
	AverageRating      float64     `json:"average_rating"`
	EngagementRate     float64     `json:"engagement_rate"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// FeedbackRepository defines storage operations for feedback.
type FeedbackRepository interface {
	// Create inserts the feedback and returns the event's stats including it. Returns
	// ErrFeedbackExists if the user already rated the event.
	Create(ctx context.Context, fb *Feedback) (FeedbackStats, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	ListRatedEventsByUserID(ctx context.Context, userID string) ([]*RatedEvent, error)
	// RatingDistribution returns rating -> count for the event.
	RatingDistribution(ctx context.Context, eventID string) (map[int]int, error)
	// ListByUserID and ListByEventID return feedback newest first.
	ListByUserID(ctx context.Context, userID string) ([]*Feedback, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Feedback, error)
}

// FeedbackService defines feedback operations.
type FeedbackService interface {
	GiveFeedback(ctx context.Context, eventID, userID string, rating int, comment *string) (*Feedback, error)
	GetEventSummary(ctx context.Context, eventID, organizerID string) (*FeedbackSummary, error)
	ListMyFeedback(ctx context.Context, userID string) ([]*Feedback, error)
	// ListEventFeedback returns every rating of the event. Only the event organizer may read it.
	ListEventFeedback(ctx context.Context, eventID, organizerID string) ([]*Feedback, error)
}
