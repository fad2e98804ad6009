package domain

import "context"

// ClaimKey identifies one (user, event, trigger) firing.
type ClaimKey struct {
	UserID  string
	EventID string
	Kind    NotificationKind
}

// ReminderLogRepository records reminder firings. A row is never updated or deleted.
type ReminderLogRepository interface {
	// Claim inserts the log row for key. acquired is false if the row already existed, in which
	// case the caller must not fire.
	Claim(ctx context.Context, key ClaimKey) (acquired bool, err error)
}
