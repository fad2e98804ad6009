package domain

import (
	"context"
	"time"
)

// Favorite marks an event the user wants to be reminded about.
type Favorite struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteReminderTarget is a favorited event together with the user who favorited it.
type FavoriteReminderTarget struct {
	UserID string
	Event  *Event
}

// FavoriteRepository defines storage operations for favorites.
type FavoriteRepository interface {
	// Toggle removes the favorite if present, otherwise adds it. Returns the resulting state.
	Toggle(ctx context.Context, eventID, userID string) (favorited bool, err error)
	ListEventsByUserID(ctx context.Context, userID string) ([]*Event, error)
	// ListStartingBetween returns favorites of active, non-archived events with a start time in
	// [from, to).
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*FavoriteReminderTarget, error)
}
