package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusengage/internal/domain"
	"campusengage/internal/metrics"
)

type notificationService struct {
	repo           domain.NotificationRepository
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewNotificationService returns the NotificationService backed by repo.
func NewNotificationService(repo domain.NotificationRepository, logger *slog.Logger, timeout time.Duration) domain.NotificationService {
	return &notificationService{
		repo:           repo,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *notificationService) Emit(ctx context.Context, n *domain.Notification) bool {
	if n == nil || n.UserID == "" {
		s.logger.WarnContext(ctx, "notification dropped: missing recipient")
		return false
	}
	err := s.repo.Create(ctx, n)
	metrics.RecordNotification(string(n.Kind), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "notification not stored",
			"kind", n.Kind,
			"user_id", n.UserID,
			"error", err,
		)
		return false
	}
	s.logger.DebugContext(ctx, "notification stored", "kind", n.Kind, "user_id", n.UserID, "id", n.ID)
	return true
}

func (s *notificationService) List(ctx context.Context, userID string, params domain.PaginationParams) (*domain.Page[*domain.Notification], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if params.Page < 1 {
		params.Page = 1
	}
	params.PageSize = params.Limit()
	items, total, err := s.repo.ListByUserID(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return &domain.Page[*domain.Notification]{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.repo.MarkRead(ctx, id, userID, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.repo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all notifications: %w", err)
	}
	return n, nil
}
