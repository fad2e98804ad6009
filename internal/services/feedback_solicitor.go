package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campusengage/internal/domain"
	"campusengage/internal/metrics"
)

// FeedbackSolicitor asks registered attendees of concluded events for feedback. Dedup is an
// exists check on feedback and prior requests, so it relies on a single runner per tick.
type FeedbackSolicitor struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	feedbackRepo     domain.FeedbackRepository
	notificationRepo domain.NotificationRepository
	notifications    domain.NotificationService
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	emailEnabled     bool
	logger           *slog.Logger
}

// NewFeedbackSolicitor returns a FeedbackSolicitor. userRepo and emailService are only used when
// emailEnabled is set.
func NewFeedbackSolicitor(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	feedbackRepo domain.FeedbackRepository,
	notificationRepo domain.NotificationRepository,
	notifications domain.NotificationService,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	emailEnabled bool,
	logger *slog.Logger,
) *FeedbackSolicitor {
	return &FeedbackSolicitor{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		feedbackRepo:     feedbackRepo,
		notificationRepo: notificationRepo,
		notifications:    notifications,
		userRepo:         userRepo,
		emailService:     emailService,
		emailEnabled:     emailEnabled,
		logger:           logger,
	}
}

// Tick requests feedback for every event that started before now.
func (s *FeedbackSolicitor) Tick(ctx context.Context, now time.Time) error {
	events, err := s.eventRepo.ListConcluded(ctx, now)
	if err != nil {
		return fmt.Errorf("list concluded events: %w", err)
	}

	requested := 0
	for _, ev := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		userIDs, err := s.registrationRepo.ListUserIDsByEvent(ctx, ev.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "list registrations for feedback", "event_id", ev.ID, "error", err)
			continue
		}
		for _, userID := range userIDs {
			if s.solicit(ctx, ev, userID) {
				requested++
			}
		}
	}
	if requested > 0 {
		s.logger.InfoContext(ctx, "feedback requests sent", "events", len(events), "requested", requested)
	}
	return nil
}

func (s *FeedbackSolicitor) solicit(ctx context.Context, ev *domain.Event, userID string) bool {
	given, err := s.feedbackRepo.Exists(ctx, ev.ID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "check feedback", "event_id", ev.ID, "user_id", userID, "error", err)
		return false
	}
	if given {
		return false
	}
	asked, err := s.notificationRepo.ExistsForEvent(ctx, userID, ev.ID, domain.NotificationFeedbackRequested)
	if err != nil {
		s.logger.ErrorContext(ctx, "check feedback request", "event_id", ev.ID, "user_id", userID, "error", err)
		return false
	}
	if asked {
		metrics.RecordDedupSkip(string(domain.NotificationFeedbackRequested))
		return false
	}

	ok := s.notifications.Emit(ctx, domain.NewNotification(
		userID,
		ev.ID,
		domain.NotificationFeedbackRequested,
		"How was "+ev.Title+"?",
		fmt.Sprintf("Tell the organizers what you thought of %s. Rate it from 1 to 5.", ev.Title),
	))
	if ok && s.emailEnabled {
		s.sendEmail(ctx, ev, userID)
	}
	return ok
}

func (s *FeedbackSolicitor) sendEmail(ctx context.Context, ev *domain.Event, userID string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "feedback email skipped: user lookup failed", "user_id", userID, "error", err)
		return
	}
	err = s.emailService.SendFeedbackRequest(ctx, &domain.FeedbackRequestEmailData{
		Email:      user.Email,
		FirstName:  user.Name,
		EventTitle: ev.Title,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "feedback email failed", "user_id", userID, "event_id", ev.ID, "error", err)
	}
}
