package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusengage/internal/domain"

	"github.com/google/uuid"
)

type attendeeService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	favoriteRepo     domain.FavoriteRepository
	hasher           domain.SecretHasher
	thresholds       domain.ThresholdNotifier
	now              func() time.Time
	newToken         func() string
	contextTimeout   time.Duration
}

// NewAttendeeService creates an AttendeeService with the given repositories.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	favoriteRepo domain.FavoriteRepository,
	hasher domain.SecretHasher,
	thresholds domain.ThresholdNotifier,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		favoriteRepo:     favoriteRepo,
		hasher:           hasher,
		thresholds:       thresholds,
		now:              time.Now,
		newToken:         uuid.NewString,
		contextTimeout:   timeout,
	}
}

func (s *attendeeService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

func (s *attendeeService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.RegistrationReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.IsOpen() {
		return nil, domain.ErrEventUnavailable
	}
	now := s.now()
	if ev.RegistrationDeadline != nil && now.After(*ev.RegistrationDeadline) {
		return nil, domain.ErrRegistrationClosed
	}

	token := s.newToken()
	hash, err := s.hasher.Hash(token)
	if err != nil {
		return nil, fmt.Errorf("hash check-in token: %w", err)
	}
	reg := domain.NewRegistration(eventID, userID, hash, now)
	snap, err := s.registrationRepo.CreateWithinCapacity(ctx, reg)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	ev.Capacity = snap.Capacity
	s.thresholds.RegistrationCreated(ctx, ev, snap.Count)
	return &domain.RegistrationReceipt{Registration: reg, CheckInToken: token}, nil
}

func (s *attendeeService) UnregisterFromEvent(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	snap, err := s.registrationRepo.Delete(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}

	ev.Capacity = snap.Capacity
	s.thresholds.RegistrationDeleted(ctx, ev, snap.Count)
	return nil
}

func (s *attendeeService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegisteredEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

func (s *attendeeService) ToggleFavorite(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getEvent(ctx, eventID); err != nil {
		return false, err
	}
	favorited, err := s.favoriteRepo.Toggle(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorited, nil
}

func (s *attendeeService) CheckIn(ctx context.Context, registrationID, organizerID, token string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	ev, err := s.getEvent(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	if reg.CheckedIn {
		return nil, domain.ErrAlreadyCheckedIn
	}
	if err := s.hasher.Compare(reg.CheckInTokenHash, token); err != nil {
		return nil, domain.ErrInvalidCheckIn
	}

	at := s.now()
	if err := s.registrationRepo.MarkCheckedIn(ctx, reg.ID, at); err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			return nil, err
		}
		return nil, fmt.Errorf("mark checked in: %w", err)
	}
	reg.CheckedIn = true
	reg.CheckedInAt = &at
	return reg, nil
}
