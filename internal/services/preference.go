package services

import (
	"context"
	"fmt"
	"time"

	"campusengage/internal/domain"
)

// Signal weights of the preference profile.
const (
	favoriteCategoryWeight     = 5.0
	favoriteUnitWeight         = 3.0
	registrationCategoryWeight = 3.0
	registrationUnitWeight     = 2.0
	// unitRatingFactor scales a rating delta when applied to the unit axis.
	unitRatingFactor = 0.5
)

// ratingDelta maps a 1-5 rating to its signed profile contribution. 0 means no rating.
func ratingDelta(rating int) float64 {
	switch {
	case rating >= 4:
		return 3
	case rating == 3:
		return 1
	case rating >= 1:
		return -2
	default:
		return 0
	}
}

// BuildPreferenceProfile folds a user's favorites, registrations and rated events into category
// and unit scores. Events without a category or unit contribute nothing on that axis.
func BuildPreferenceProfile(favorites, registrations []*domain.Event, rated []*domain.RatedEvent) domain.PreferenceProfile {
	p := domain.NewPreferenceProfile()
	add := func(ev *domain.Event, category, unit float64) {
		if ev == nil {
			return
		}
		if ev.CategoryID != nil {
			p.CategoryScores[*ev.CategoryID] += category
		}
		if ev.UnitID != nil {
			p.UnitScores[*ev.UnitID] += unit
		}
	}

	for _, ev := range favorites {
		add(ev, favoriteCategoryWeight, favoriteUnitWeight)
	}
	for _, ev := range registrations {
		add(ev, registrationCategoryWeight, registrationUnitWeight)
	}
	for _, r := range rated {
		if r == nil {
			continue
		}
		d := ratingDelta(r.Rating)
		if d == 0 {
			continue
		}
		add(r.Event, d, d*unitRatingFactor)
	}
	return p
}

type preferenceService struct {
	favoriteRepo     domain.FavoriteRepository
	registrationRepo domain.RegistrationRepository
	feedbackRepo     domain.FeedbackRepository
	contextTimeout   time.Duration
}

// NewPreferenceService returns a PreferenceService reading the three interaction sources.
func NewPreferenceService(
	favoriteRepo domain.FavoriteRepository,
	registrationRepo domain.RegistrationRepository,
	feedbackRepo domain.FeedbackRepository,
	timeout time.Duration,
) domain.PreferenceService {
	return &preferenceService{
		favoriteRepo:     favoriteRepo,
		registrationRepo: registrationRepo,
		feedbackRepo:     feedbackRepo,
		contextTimeout:   timeout,
	}
}

func (s *preferenceService) Profile(ctx context.Context, userID string) (domain.PreferenceProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	favorites, err := s.favoriteRepo.ListEventsByUserID(ctx, userID)
	if err != nil {
		return domain.PreferenceProfile{}, fmt.Errorf("list favorites: %w", err)
	}
	registrations, err := s.registrationRepo.ListEventsByUserID(ctx, userID)
	if err != nil {
		return domain.PreferenceProfile{}, fmt.Errorf("list registrations: %w", err)
	}
	rated, err := s.feedbackRepo.ListRatedEventsByUserID(ctx, userID)
	if err != nil {
		return domain.PreferenceProfile{}, fmt.Errorf("list rated events: %w", err)
	}
	return BuildPreferenceProfile(favorites, registrations, rated), nil
}
