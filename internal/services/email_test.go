package services

import (
	"context"
	"errors"
	"testing"

	"campusengage/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	to, subject, html, text string
	err                     error
}

func (m *recordingMailer) Send(to, subject, htmlBody, textBody string) error {
	m.to, m.subject, m.html, m.text = to, subject, htmlBody, textBody
	return m.err
}

type stubRenderer struct {
	template string
	err      error
}

func (r *stubRenderer) Render(templateName string, data any) (string, string, string, error) {
	r.template = templateName
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject:" + templateName, "<p>html</p>", "text", nil
}

func TestEmailService_SendEventReminder(t *testing.T) {
	mailer := &recordingMailer{}
	renderer := &stubRenderer{}
	svc := NewEmailService(mailer, renderer, testLogger())

	err := svc.SendEventReminder(context.Background(), &domain.EventReminderEmailData{
		Email:      "ana@campus.edu",
		FirstName:  "Ana",
		EventTitle: "Robotics Fair",
		LeadTime:   "24 hours",
	})
	require.NoError(t, err)
	assert.Equal(t, "event_reminder", renderer.template)
	assert.Equal(t, "ana@campus.edu", mailer.to)
	assert.Equal(t, "subject:event_reminder", mailer.subject)
	assert.Equal(t, "<p>html</p>", mailer.html)
	assert.Equal(t, "text", mailer.text)
}

func TestEmailService_SendFeedbackRequest(t *testing.T) {
	tests := []struct {
		name      string
		data      *domain.FeedbackRequestEmailData
		renderErr error
		sendErr   error
		wantErr   string
	}{
		{name: "success", data: &domain.FeedbackRequestEmailData{Email: "ana@campus.edu"}},
		{name: "nil data", wantErr: "feedback request data is nil"},
		{name: "render failure", data: &domain.FeedbackRequestEmailData{Email: "a@b.c"}, renderErr: errors.New("boom"), wantErr: "failed to render feedback_request template"},
		{name: "send failure", data: &domain.FeedbackRequestEmailData{Email: "a@b.c"}, sendErr: errors.New("throttled"), wantErr: "failed to send feedback_request email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEmailService(&recordingMailer{err: tt.sendErr}, &stubRenderer{err: tt.renderErr}, testLogger())
			err := svc.SendFeedbackRequest(context.Background(), tt.data)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
