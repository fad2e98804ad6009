package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NotificationKind identifies what triggered a notification.
type NotificationKind string

const (
	NotificationEventRecommended      NotificationKind = "EVENT_RECOMMENDED"
	NotificationFeedbackRequested     NotificationKind = "FEEDBACK_REQUESTED"
	NotificationRegistrationMilestone NotificationKind = "REGISTRATION_MILESTONE"
	NotificationEventFull             NotificationKind = "EVENT_FULL"
	NotificationSlotFreed             NotificationKind = "SLOT_FREED"
	NotificationFirstFeedback         NotificationKind = "FIRST_FEEDBACK"
	NotificationThresholdReached      NotificationKind = "THRESHOLD_REACHED"
	NotificationLowRatingAlert        NotificationKind = "LOW_RATING_ALERT"
)

// FavoriteReminderKind returns the reminder kind for a lead time, e.g. FAVORITE_REMINDER_24H,
// FAVORITE_REMINDER_1H or FAVORITE_REMINDER_30M.
func FavoriteReminderKind(lead time.Duration) NotificationKind {
	return NotificationKind("FAVORITE_REMINDER_" + LeadTimeLabel(lead))
}

// LeadTimeLabel formats a lead time as whole hours ("24H") when possible, else minutes ("90M").
func LeadTimeLabel(lead time.Duration) string {
	if lead%time.Hour == 0 {
		return fmt.Sprintf("%dH", int(lead/time.Hour))
	}
	return fmt.Sprintf("%dM", int(lead/time.Minute))
}

// IsFavoriteReminder reports whether k is one of the favorite reminder kinds.
func (k NotificationKind) IsFavoriteReminder() bool {
	return strings.HasPrefix(string(k), "FAVORITE_REMINDER_")
}

// Notification is a message delivered to a single user's inbox. ReadAt is nil while unread.
// swagger:model Notification
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	EventID   *string          `json:"event_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at"`
}

// NewNotification returns an unread notification about eventID (may be empty).
func NewNotification(userID, eventID string, kind NotificationKind, title, message string) *Notification {
	n := &Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
	}
	if eventID != "" {
		n.EventID = &eventID
	}
	return n
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// ListByUserID returns the user's notifications newest first and the total count.
	ListByUserID(ctx context.Context, userID string, params PaginationParams) ([]*Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkRead sets read_at if unset. Returns ErrNotFound if the notification does not belong to userID.
	MarkRead(ctx context.Context, id, userID string, at time.Time) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	// Delete returns ErrNotFound if the notification does not belong to userID.
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
	ExistsForEvent(ctx context.Context, userID, eventID string, kind NotificationKind) (bool, error)
}

// NotificationService ingests notifications from the engagement components and serves the inbox.
type NotificationService interface {
	// Emit stores n. Failures are logged and counted, never returned; the result reports success.
	Emit(ctx context.Context, n *Notification) bool
	List(ctx context.Context, userID string, params PaginationParams) (*Page[*Notification], error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
}
