package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an event. Transitions are owned by the event management
// and approval flows; this service only observes them.
type EventStatus string

const (
	EventStatusDraft    EventStatus = "draft"
	EventStatusPending  EventStatus = "pending"
	EventStatusActive   EventStatus = "active"
	EventStatusRejected EventStatus = "rejected"
	EventStatusInactive EventStatus = "inactive"
)

// Event is a campus event owned by an organizer.
// swagger:model Event
type Event struct {
	ID                   string      `json:"id"`
	OrganizerID          string      `json:"organizer_id"`
	Title                string      `json:"title"`
	CategoryID           *string     `json:"category_id"`
	UnitID               *string     `json:"unit_id"`
	StartsAt             time.Time   `json:"starts_at"`
	RegistrationDeadline *time.Time  `json:"registration_deadline"`
	Capacity             *int        `json:"capacity"`
	Status               EventStatus `json:"status"`
	Archived             bool        `json:"archived"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// IsOpen reports whether the event is published and not archived.
func (e *Event) IsOpen() bool {
	return e.Status == EventStatusActive && !e.Archived
}

// CapacitySnapshot is the registration count of an event and its capacity, read inside the same
// transaction as the write that produced it. Capacity nil means unlimited.
type CapacitySnapshot struct {
	Count    int  `json:"count"`
	Capacity *int `json:"capacity"`
}

// IsFull reports whether the snapshot has reached a configured capacity.
func (s CapacitySnapshot) IsFull() bool {
	return s.Capacity != nil && s.Count >= *s.Capacity
}

// EventRepository defines the event queries this service needs.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListRecommendationCandidates returns active, non-archived events starting after now that the
	// user is not registered for, ordered by start time, at most limit rows.
	ListRecommendationCandidates(ctx context.Context, userID string, now time.Time, limit int) ([]*Event, error)
	// ListConcluded returns active, non-archived events that started before now.
	ListConcluded(ctx context.Context, now time.Time) ([]*Event, error)
	// UpdateCapacity changes the capacity under a row lock and returns the updated event together
	// with the count and capacity seen under that lock before the change. Returns ErrInvalidInput
	// if the new capacity is below the current count.
	UpdateCapacity(ctx context.Context, eventID string, capacity *int) (*Event, CapacitySnapshot, error)
}

// EventService defines organizer-facing event operations handled by this service.
type EventService interface {
	UpdateCapacity(ctx context.Context, eventID, organizerID string, capacity *int) (*Event, error)
}
