package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusengage/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	thresholds     domain.ThresholdNotifier
	contextTimeout time.Duration
}

// NewEventService creates the organizer-facing EventService.
func NewEventService(eventRepo domain.EventRepository, thresholds domain.ThresholdNotifier, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		thresholds:     thresholds,
		contextTimeout: timeout,
	}
}

// UpdateCapacity sets or clears (nil) the capacity of an event owned by organizerID.
func (s *eventService) UpdateCapacity(ctx context.Context, eventID, organizerID string, capacity *int) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if capacity != nil && *capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
	}
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

	updated, before, err := s.eventRepo.UpdateCapacity(ctx, eventID, capacity)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update capacity: %w", err)
	}
	s.thresholds.CapacityChanged(ctx, updated, before)
	return updated, nil
}
