package services

import (
	"context"
	"fmt"
	"log/slog"

	"campusengage/internal/domain"
)

// LowRatingMode selects whether the low rating alert repeats while the condition holds.
type LowRatingMode string

const (
	// LowRatingRepeat fires on every feedback while count >= min sample and avg <= threshold.
	LowRatingRepeat LowRatingMode = "repeat"
	// LowRatingOnce fires only on the feedback that makes the condition true.
	LowRatingOnce LowRatingMode = "once"
)

// ThresholdRules configures the organizer alerts.
type ThresholdRules struct {
	RegistrationMilestones []int
	FeedbackMilestones     []int
	LowRatingMinSample     int
	LowRatingThreshold     float64
	LowRatingMode          LowRatingMode
}

// DefaultThresholdRules returns the default alert configuration.
func DefaultThresholdRules() ThresholdRules {
	return ThresholdRules{
		RegistrationMilestones: []int{1},
		FeedbackMilestones:     []int{5, 10, 25},
		LowRatingMinSample:     3,
		LowRatingThreshold:     3.0,
		LowRatingMode:          LowRatingRepeat,
	}
}

// ratingEpsilon absorbs float noise when comparing averages with the threshold.
const ratingEpsilon = 1e-9

// ThresholdNotifier turns post-write counters into organizer notifications.
type ThresholdNotifier struct {
	notifications domain.NotificationService
	rules         ThresholdRules
	logger        *slog.Logger
}

var _ domain.ThresholdNotifier = (*ThresholdNotifier)(nil)

// NewThresholdNotifier returns a ThresholdNotifier emitting through notifications.
func NewThresholdNotifier(notifications domain.NotificationService, rules ThresholdRules, logger *slog.Logger) *ThresholdNotifier {
	return &ThresholdNotifier{
		notifications: notifications,
		rules:         rules,
		logger:        logger,
	}
}

// RegistrationCreated checks registration milestones and full capacity against countAfter.
func (t *ThresholdNotifier) RegistrationCreated(ctx context.Context, ev *domain.Event, countAfter int) {
	for _, m := range t.rules.RegistrationMilestones {
		if countAfter == m {
			t.notifyOrganizer(ctx, ev, domain.NotificationRegistrationMilestone,
				"Registration milestone",
				fmt.Sprintf("%q reached %d registration(s).", ev.Title, countAfter))
		}
	}
	if ev.Capacity != nil && countAfter == *ev.Capacity {
		t.notifyFull(ctx, ev)
	}
}

// RegistrationDeleted announces a freed slot when the count drops to capacity-1.
func (t *ThresholdNotifier) RegistrationDeleted(ctx context.Context, ev *domain.Event, countAfter int) {
	if ev.Capacity != nil && countAfter == *ev.Capacity-1 {
		t.notifyOrganizer(ctx, ev, domain.NotificationSlotFreed,
			"Slot freed",
			fmt.Sprintf("A registration for %q was withdrawn; %d of %d places are taken.", ev.Title, countAfter, *ev.Capacity))
	}
}

// CapacityChanged announces a full event when the new capacity equals the current count and the
// event was not already full before the change.
func (t *ThresholdNotifier) CapacityChanged(ctx context.Context, ev *domain.Event, before domain.CapacitySnapshot) {
	if ev.Capacity == nil || before.Count != *ev.Capacity || before.IsFull() {
		return
	}
	t.notifyFull(ctx, ev)
}

// FeedbackCreated checks first feedback, feedback milestones and the low rating alert.
func (t *ThresholdNotifier) FeedbackCreated(ctx context.Context, ev *domain.Event, fb *domain.Feedback, stats domain.FeedbackStats) {
	if stats.Count == 1 {
		t.notifyOrganizer(ctx, ev, domain.NotificationFirstFeedback,
			"First feedback",
			fmt.Sprintf("%q received its first feedback (rating %d).", ev.Title, fb.Rating))
	}
	for _, m := range t.rules.FeedbackMilestones {
		if stats.Count == m {
			t.notifyOrganizer(ctx, ev, domain.NotificationThresholdReached,
				"Feedback milestone reached",
				fmt.Sprintf("%q has %d ratings with an average of %.2f.", ev.Title, stats.Count, stats.Average))
		}
	}
	if t.lowRatingFires(fb.Rating, stats) {
		t.notifyOrganizer(ctx, ev, domain.NotificationLowRatingAlert,
			"Low rating alert",
			fmt.Sprintf("%q is averaging %.2f over %d ratings.", ev.Title, stats.Average, stats.Count))
	}
}

func (t *ThresholdNotifier) lowRating(count int, avg float64) bool {
	return count >= t.rules.LowRatingMinSample && avg <= t.rules.LowRatingThreshold+ratingEpsilon
}

func (t *ThresholdNotifier) lowRatingFires(lastRating int, stats domain.FeedbackStats) bool {
	if !t.lowRating(stats.Count, stats.Average) {
		return false
	}
	if t.rules.LowRatingMode != LowRatingOnce {
		return true
	}
	prevCount := stats.Count - 1
	if prevCount == 0 {
		return true
	}
	prevAvg := (stats.Average*float64(stats.Count) - float64(lastRating)) / float64(prevCount)
	return !t.lowRating(prevCount, prevAvg)
}

func (t *ThresholdNotifier) notifyFull(ctx context.Context, ev *domain.Event) {
	t.notifyOrganizer(ctx, ev, domain.NotificationEventFull,
		"Event full",
		fmt.Sprintf("%q reached its capacity of %d.", ev.Title, *ev.Capacity))
}

func (t *ThresholdNotifier) notifyOrganizer(ctx context.Context, ev *domain.Event, kind domain.NotificationKind, title, message string) {
	t.logger.InfoContext(ctx, "threshold crossed", "kind", kind, "event_id", ev.ID)
	t.notifications.Emit(ctx, domain.NewNotification(ev.OrganizerID, ev.ID, kind, title, message))
}
