package domain

import "context"

// ThresholdNotifier reacts to writes that change an event's counters. Each hook receives the
// counts produced by the write itself and never fails the triggering operation.
type ThresholdNotifier interface {
	RegistrationCreated(ctx context.Context, ev *Event, countAfter int)
	RegistrationDeleted(ctx context.Context, ev *Event, countAfter int)
	CapacityChanged(ctx context.Context, ev *Event, before CapacitySnapshot)
	FeedbackCreated(ctx context.Context, ev *Event, fb *Feedback, stats FeedbackStats)
}
