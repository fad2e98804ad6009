package domain

import (
	"context"
	"time"
)

// RecommendationActionRecommended is the history action recorded when an event is recommended.
const RecommendationActionRecommended = "recommended"

// PreferenceProfile holds a user's affinity per category and per unit. Both maps are non-nil.
type PreferenceProfile struct {
	CategoryScores map[string]float64 `json:"category_scores"`
	UnitScores     map[string]float64 `json:"unit_scores"`
}

// NewPreferenceProfile returns an empty profile.
func NewPreferenceProfile() PreferenceProfile {
	return PreferenceProfile{
		CategoryScores: map[string]float64{},
		UnitScores:     map[string]float64{},
	}
}

// IsEmpty reports whether the profile carries no signal.
func (p PreferenceProfile) IsEmpty() bool {
	return len(p.CategoryScores) == 0 && len(p.UnitScores) == 0
}

// ScoredEvent is a candidate event with its score and a human-readable reason.
// swagger:model ScoredEvent
type ScoredEvent struct {
	Event  *Event  `json:"event"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RecommendationHistoryRepository stores which events were recommended to which users.
type RecommendationHistoryRepository interface {
	// Record inserts (userID, eventID, action). inserted is false if the row already existed.
	Record(ctx context.Context, userID, eventID, action string) (inserted bool, err error)
	ListEventIDs(ctx context.Context, userID, action string) ([]string, error)
}

// PreferenceService builds preference profiles from stored interactions.
type PreferenceService interface {
	Profile(ctx context.Context, userID string) (PreferenceProfile, error)
}

// RecommendationService ranks candidate events for a user and notifies about new ones.
type RecommendationService interface {
	GetRecommendations(ctx context.Context, userID string, now time.Time) ([]*ScoredEvent, error)
}
