package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campusengage/internal/domain"
	"campusengage/internal/metrics"
)

// RecommendationConfig tunes ranking and emission.
type RecommendationConfig struct {
	Weights        ScoringWeights
	TopN           int
	DropZero       bool
	CandidateLimit int
	// LeaseTTL bounds how long one run may hold the per-user emission lease.
	LeaseTTL time.Duration
}

// DefaultRecommendationConfig returns the calibrated defaults.
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		Weights:        DefaultScoringWeights,
		TopN:           10,
		CandidateLimit: 200,
		LeaseTTL:       30 * time.Second,
	}
}

type recommendationService struct {
	profiles       domain.PreferenceService
	eventRepo      domain.EventRepository
	historyRepo    domain.RecommendationHistoryRepository
	notifications  domain.NotificationService
	locker         domain.Locker
	cfg            RecommendationConfig
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRecommendationService returns a RecommendationService. New recommendations are announced
// through notifications at most once per (user, event).
func NewRecommendationService(
	profiles domain.PreferenceService,
	eventRepo domain.EventRepository,
	historyRepo domain.RecommendationHistoryRepository,
	notifications domain.NotificationService,
	locker domain.Locker,
	cfg RecommendationConfig,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RecommendationService {
	return &recommendationService{
		profiles:       profiles,
		eventRepo:      eventRepo,
		historyRepo:    historyRepo,
		notifications:  notifications,
		locker:         locker,
		cfg:            cfg,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *recommendationService) GetRecommendations(ctx context.Context, userID string, now time.Time) ([]*domain.ScoredEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build preference profile: %w", err)
	}
	candidates, err := s.eventRepo.ListRecommendationCandidates(ctx, userID, now, s.cfg.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	ranked := RankCandidates(profile, candidates, s.cfg.Weights, s.cfg.TopN, s.cfg.DropZero)
	metrics.RecommendationsServed.Observe(float64(len(ranked)))
	s.announceNew(ctx, userID, ranked)
	return ranked, nil
}

// announceNew notifies the user about ranked events not recommended before. The history row is
// inserted first and acts as the dedup gate; only the run that inserted it notifies.
func (s *recommendationService) announceNew(ctx context.Context, userID string, ranked []*domain.ScoredEvent) {
	if len(ranked) == 0 {
		return
	}

	unlock, acquired, err := s.locker.TryLock(ctx, "recommend:"+userID, s.cfg.LeaseTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "recommendation lease unavailable", "user_id", userID, "error", err)
		return
	}
	if !acquired {
		s.logger.DebugContext(ctx, "recommendation run already in progress", "user_id", userID)
		return
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release recommendation lease", "user_id", userID, "error", err)
		}
	}()

	seenIDs, err := s.historyRepo.ListEventIDs(ctx, userID, domain.RecommendationActionRecommended)
	if err != nil {
		s.logger.ErrorContext(ctx, "list recommendation history", "user_id", userID, "error", err)
		return
	}
	seen := make(map[string]struct{}, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = struct{}{}
	}

	for _, se := range ranked {
		if _, ok := seen[se.Event.ID]; ok {
			continue
		}
		inserted, err := s.historyRepo.Record(ctx, userID, se.Event.ID, domain.RecommendationActionRecommended)
		if err != nil {
			s.logger.ErrorContext(ctx, "record recommendation", "user_id", userID, "event_id", se.Event.ID, "error", err)
			continue
		}
		if !inserted {
			metrics.RecordDedupSkip(string(domain.NotificationEventRecommended))
			continue
		}
		s.notifications.Emit(ctx, domain.NewNotification(
			userID,
			se.Event.ID,
			domain.NotificationEventRecommended,
			"Recommended for you: "+se.Event.Title,
			fmt.Sprintf("%s starts %s (%s).", se.Event.Title, se.Event.StartsAt.Format(time.RFC1123), se.Reason),
		))
	}
}
