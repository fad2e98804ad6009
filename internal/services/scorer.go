package services

import (
	"sort"
	"strings"

	"campusengage/internal/domain"
)

// Reasons attached to a scored event.
const (
	ReasonSimilarType = "similar in type to events you liked"
	ReasonSameUnit    = "from the same faculty as events you liked"
	ReasonGeneral     = "general recommendation"
)

// ScoringWeights weigh the category and unit affinities. Type must be >= Unit.
type ScoringWeights struct {
	Type float64
	Unit float64
}

// DefaultScoringWeights are the weights used when none are configured.
var DefaultScoringWeights = ScoringWeights{Type: 1.0, Unit: 0.6}

// ScoreEvent scores one candidate against a profile.
func ScoreEvent(profile domain.PreferenceProfile, ev *domain.Event, w ScoringWeights) *domain.ScoredEvent {
	var typeScore, unitScore float64
	if ev.CategoryID != nil {
		typeScore = profile.CategoryScores[*ev.CategoryID]
	}
	if ev.UnitID != nil {
		unitScore = profile.UnitScores[*ev.UnitID]
	}

	reasons := make([]string, 0, 2)
	if typeScore > 0 {
		reasons = append(reasons, ReasonSimilarType)
	}
	if unitScore > 0 {
		reasons = append(reasons, ReasonSameUnit)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneral)
	}

	return &domain.ScoredEvent{
		Event:  ev,
		Score:  typeScore*w.Type + unitScore*w.Unit,
		Reason: strings.Join(reasons, ", "),
	}
}

// RankCandidates scores every candidate, sorts by score descending with ties going to the earlier
// start (then the smaller ID) and keeps the first topN. With dropZero, events scoring <= 0 are
// removed before truncation.
func RankCandidates(profile domain.PreferenceProfile, candidates []*domain.Event, w ScoringWeights, topN int, dropZero bool) []*domain.ScoredEvent {
	scored := make([]*domain.ScoredEvent, 0, len(candidates))
	for _, ev := range candidates {
		if ev == nil {
			continue
		}
		se := ScoreEvent(profile, ev, w)
		if dropZero && se.Score <= 0 {
			continue
		}
		scored = append(scored, se)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Event.StartsAt.Equal(b.Event.StartsAt) {
			return a.Event.StartsAt.Before(b.Event.StartsAt)
		}
		return a.Event.ID < b.Event.ID
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}
