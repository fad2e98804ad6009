package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"campusengage/internal/domain"
)

type feedbackService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	feedbackRepo     domain.FeedbackRepository
	thresholds       domain.ThresholdNotifier
	now              func() time.Time
	contextTimeout   time.Duration
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	feedbackRepo domain.FeedbackRepository,
	thresholds domain.ThresholdNotifier,
	timeout time.Duration,
) domain.FeedbackService {
	return &feedbackService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		feedbackRepo:     feedbackRepo,
		thresholds:       thresholds,
		now:              time.Now,
		contextTimeout:   timeout,
	}
}

func (s *feedbackService) GiveFeedback(ctx context.Context, eventID, userID string, rating int, comment *string) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !ev.IsOpen() {
		return nil, domain.ErrEventUnavailable
	}
	now := s.now()
	if now.Before(ev.StartsAt) {
		return nil, domain.ErrFeedbackTooEarly
	}
	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	fb := &domain.Feedback{
		EventID:   eventID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
	}
	stats, err := s.feedbackRepo.Create(ctx, fb)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	s.thresholds.FeedbackCreated(ctx, ev, fb, stats)
	return fb, nil
}

// ownedEvent loads the event and checks that organizerID runs it.
func (s *feedbackService) ownedEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	return ev, nil
}

func (s *feedbackService) GetEventSummary(ctx context.Context, eventID, organizerID string) (*domain.FeedbackSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, organizerID); err != nil {
		return nil, err
	}

	registered, err := s.registrationRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	dist, err := s.feedbackRepo.RatingDistribution(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	return summarize(eventID, registered, dist), nil
}

func (s *feedbackService) ListMyFeedback(ctx context.Context, userID string) ([]*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.feedbackRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return list, nil
}

func (s *feedbackService) ListEventFeedback(ctx context.Context, eventID, organizerID string) ([]*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	list, err := s.feedbackRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event feedback: %w", err)
	}
	return list, nil
}

// summarize derives count, average and engagement rate (percent of registered users who rated,
// two decimals) from a rating distribution.
func summarize(eventID string, registered int, dist map[int]int) *domain.FeedbackSummary {
	count, sum := 0, 0
	for rating, n := range dist {
		count += n
		sum += rating * n
	}
	summary := &domain.FeedbackSummary{
		EventID:            eventID,
		TotalRegistered:    registered,
		FeedbackCount:      count,
		RatingDistribution: dist,
	}
	if count > 0 {
		summary.AverageRating = round2(float64(sum) / float64(count))
	}
	if registered > 0 {
		summary.EngagementRate = round2(float64(count) / float64(registered) * 100)
	}
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
