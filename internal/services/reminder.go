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

// ReminderConfig configures the favorite reminder scan.
type ReminderConfig struct {
	LeadTimes []time.Duration
	// Period is the tick period and the window width.
	Period       time.Duration
	EmailEnabled bool
}

// DefaultReminderConfig returns 24h and 1h reminders on a one minute tick.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		LeadTimes: []time.Duration{24 * time.Hour, time.Hour},
		Period:    time.Minute,
	}
}

// ReminderService sends one reminder per (user, favorited event, lead time).
type ReminderService struct {
	favoriteRepo  domain.FavoriteRepository
	reminderLogs  domain.ReminderLogRepository
	notifications domain.NotificationService
	userRepo      domain.UserRepository
	emailService  domain.EmailService
	cfg           ReminderConfig
	logger        *slog.Logger
}

// NewReminderService returns a ReminderService. userRepo and emailService are only used when
// cfg.EmailEnabled is set.
func NewReminderService(
	favoriteRepo domain.FavoriteRepository,
	reminderLogs domain.ReminderLogRepository,
	notifications domain.NotificationService,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	cfg ReminderConfig,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		favoriteRepo:  favoriteRepo,
		reminderLogs:  reminderLogs,
		notifications: notifications,
		userRepo:      userRepo,
		emailService:  emailService,
		cfg:           cfg,
		logger:        logger,
	}
}

// Window returns the start-time window [now+lead, now+lead+period) scanned for lead at tick time
// now. Ticks one period apart scan adjacent windows; the reminder log absorbs any overlap.
func (s *ReminderService) Window(now time.Time, lead time.Duration) (from, to time.Time) {
	from = now.Add(lead)
	return from, from.Add(s.cfg.Period)
}

// Tick scans every lead time once. Pair failures are logged and skipped; the returned error only
// reports lead times whose scan could not run.
func (s *ReminderService) Tick(ctx context.Context, now time.Time) error {
	var errs []error
	for _, lead := range s.cfg.LeadTimes {
		if err := s.scan(ctx, now, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ReminderService) scan(ctx context.Context, now time.Time, lead time.Duration) error {
	from, to := s.Window(now, lead)
	kind := domain.FavoriteReminderKind(lead)

	targets, err := s.favoriteRepo.ListStartingBetween(ctx, from, to)
	if err != nil {
		s.logger.ErrorContext(ctx, "list favorites for reminder", "kind", kind, "error", err)
		return fmt.Errorf("list favorites starting between %s and %s: %w", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}

	sent := 0
	for _, target := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.remind(ctx, target, lead, kind) {
			sent++
		}
	}
	if len(targets) > 0 {
		s.logger.InfoContext(ctx, "reminder scan done", "kind", kind, "candidates", len(targets), "sent", sent)
	}
	return nil
}

func (s *ReminderService) remind(ctx context.Context, target *domain.FavoriteReminderTarget, lead time.Duration, kind domain.NotificationKind) bool {
	ev := target.Event
	acquired, err := s.reminderLogs.Claim(ctx, domain.ClaimKey{UserID: target.UserID, EventID: ev.ID, Kind: kind})
	if err != nil {
		s.logger.ErrorContext(ctx, "claim reminder", "kind", kind, "user_id", target.UserID, "event_id", ev.ID, "error", err)
		return false
	}
	if !acquired {
		metrics.RecordDedupSkip(string(kind))
		return false
	}

	label := domain.LeadTimeLabel(lead)
	s.notifications.Emit(ctx, domain.NewNotification(
		target.UserID,
		ev.ID,
		kind,
		fmt.Sprintf("Reminder: %s starts in %s", ev.Title, label),
		fmt.Sprintf("%s starts at %s.", ev.Title, ev.StartsAt.Format(time.RFC1123)),
	))

	if s.cfg.EmailEnabled {
		s.sendEmail(ctx, target, label)
	}
	return true
}

func (s *ReminderService) sendEmail(ctx context.Context, target *domain.FavoriteReminderTarget, label string) {
	user, err := s.userRepo.GetByID(ctx, target.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "reminder email skipped: user lookup failed", "user_id", target.UserID, "error", err)
		return
	}
	err = s.emailService.SendEventReminder(ctx, &domain.EventReminderEmailData{
		Email:      user.Email,
		FirstName:  user.Name,
		EventTitle: target.Event.Title,
		StartsAt:   target.Event.StartsAt,
		LeadTime:   label,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "reminder email failed", "user_id", target.UserID, "event_id", target.Event.ID, "error", err)
	}
}
