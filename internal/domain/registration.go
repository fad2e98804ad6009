package domain

import (
	"context"
	"time"
)

// Registration is a user's registration for an event. The check-in token itself is only handed to
// the user once; the repository keeps its hash.
// swagger:model Registration
type Registration struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	UserID           string     `json:"user_id"`
	CheckInTokenHash string     `json:"-"`
	CheckedIn        bool       `json:"checked_in"`
	CheckedInAt      *time.Time `json:"checked_in_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewRegistration creates a new Registration. ID is set by the repository on create.
func NewRegistration(eventID, userID, checkInTokenHash string, createdAt time.Time) *Registration {
	return &Registration{
		EventID:          eventID,
		UserID:           userID,
		CheckInTokenHash: checkInTokenHash,
		CreatedAt:        createdAt,
	}
}

// RegistrationReceipt is returned when a registration is created. CheckInToken is the plain token
// the attendee presents at the door; it is not retrievable later.
// swagger:model RegistrationReceipt
type RegistrationReceipt struct {
	Registration *Registration `json:"registration"`
	CheckInToken string        `json:"check_in_token"`
}

// RegisteredEvent is one of a user's registrations together with its event.
// swagger:model RegisteredEvent
type RegisteredEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// CreateWithinCapacity inserts the registration only if the event has a free slot, in one
	// transaction that locks the event row. An existing registration for the user wins over a
	// full event: ErrAlreadyRegistered is checked before ErrEventFull. Returns the post-insert
	// snapshot on success.
	CreateWithinCapacity(ctx context.Context, reg *Registration) (CapacitySnapshot, error)
	// Delete removes the registration and returns the post-delete snapshot. ErrNotFound if absent.
	Delete(ctx context.Context, eventID, userID string) (CapacitySnapshot, error)
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListUserIDsByEvent(ctx context.Context, eventID string) ([]string, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	// ListEventsByUserID returns the events the user is registered for.
	ListEventsByUserID(ctx context.Context, userID string) ([]*Event, error)
	// ListByUserID returns the user's registrations with their events, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*RegisteredEvent, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
}

// SecretHasher hashes short-lived secrets such as check-in tokens.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) error
}

// AttendeeService defines attendee-facing registration operations.
type AttendeeService interface {
	RegisterForEvent(ctx context.Context, eventID, userID string) (*RegistrationReceipt, error)
	UnregisterFromEvent(ctx context.Context, eventID, userID string) error
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegisteredEvent, error)
	// ToggleFavorite adds or removes the event from the user's favorites and reports the new state.
	ToggleFavorite(ctx context.Context, eventID, userID string) (bool, error)
	// CheckIn marks a registration as checked in. Only the event organizer may do this.
	CheckIn(ctx context.Context, registrationID, organizerID, token string) (*Registration, error)
}
