package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventReminderEmailData holds data for the favorite event reminder email.
type EventReminderEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
	StartsAt   time.Time
	LeadTime   string
}

// FeedbackRequestEmailData holds data for the post-event feedback request email.
type FeedbackRequestEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventReminder(ctx context.Context, data *EventReminderEmailData) error
	SendFeedbackRequest(ctx context.Context, data *FeedbackRequestEmailData) error
}
