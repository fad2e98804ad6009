package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"campusengage/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

// memStore is an in-memory backing store shared by the fake repositories below. A single mutex
// plays the role of the database row locks.
type memStore struct {
	mu            sync.Mutex
	seq           int
	events        map[string]*domain.Event
	users         map[string]*domain.User
	registrations map[string]*domain.Registration
	favorites     map[[2]string]time.Time
	feedback      []*domain.Feedback
	notifications []*domain.Notification
	reminderLogs  map[domain.ClaimKey]struct{}
	history       map[[3]string]struct{}

	failNotifications bool
	failEventsList    error
}

func newMemStore() *memStore {
	return &memStore{
		events:        map[string]*domain.Event{},
		users:         map[string]*domain.User{},
		registrations: map[string]*domain.Registration{},
		favorites:     map[[2]string]time.Time{},
		reminderLogs:  map[domain.ClaimKey]struct{}{},
		history:       map[[3]string]struct{}{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addEvent(ev *domain.Event) *domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = ev
	return ev
}

func (m *memStore) copyEvent(id string) *domain.Event {
	ev := *m.events[id]
	return &ev
}

func (m *memStore) countRegistrations(eventID string) int {
	n := 0
	for _, r := range m.registrations {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

// notificationsFor returns the stored notifications of userID with the given kind.
func (m *memStore) notificationsFor(userID string, kind domain.NotificationKind) []*domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) notificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

// events

type memEventRepo struct{ *memStore }

func (r memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return r.copyEvent(id), nil
}

func (r memEventRepo) ListRecommendationCandidates(ctx context.Context, userID string, now time.Time, limit int) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failEventsList != nil {
		return nil, r.failEventsList
	}
	registered := map[string]bool{}
	for _, reg := range r.registrations {
		if reg.UserID == userID {
			registered[reg.EventID] = true
		}
	}
	var out []*domain.Event
	for id, ev := range r.events {
		if ev.IsOpen() && ev.StartsAt.After(now) && !registered[id] {
			out = append(out, r.copyEvent(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memEventRepo) ListConcluded(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failEventsList != nil {
		return nil, r.failEventsList
	}
	var out []*domain.Event
	for id, ev := range r.events {
		if ev.IsOpen() && ev.StartsAt.Before(now) {
			out = append(out, r.copyEvent(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEventRepo) UpdateCapacity(ctx context.Context, eventID string, capacity *int) (*domain.Event, domain.CapacitySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventID]
	if !ok {
		return nil, domain.CapacitySnapshot{}, domain.ErrNotFound
	}
	count := r.countRegistrations(eventID)
	if capacity != nil && *capacity < count {
		return nil, domain.CapacitySnapshot{}, domain.ErrCapacityBelowCount
	}
	before := domain.CapacitySnapshot{Count: count, Capacity: ev.Capacity}
	ev.Capacity = capacity
	return r.copyEvent(eventID), before, nil
}

// registrations

type memRegistrationRepo struct{ *memStore }

func (r memRegistrationRepo) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) (domain.CapacitySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[reg.EventID]
	if !ok {
		return domain.CapacitySnapshot{}, domain.ErrNotFound
	}
	for _, existing := range r.registrations {
		if existing.EventID == reg.EventID && existing.UserID == reg.UserID {
			return domain.CapacitySnapshot{}, domain.ErrAlreadyRegistered
		}
	}
	snap := domain.CapacitySnapshot{Count: r.countRegistrations(reg.EventID), Capacity: ev.Capacity}
	if snap.IsFull() {
		return domain.CapacitySnapshot{}, domain.ErrEventFull
	}
	reg.ID = r.nextID("reg")
	stored := *reg
	r.registrations[reg.ID] = &stored
	snap.Count++
	return snap, nil
}

func (r memRegistrationRepo) Delete(ctx context.Context, eventID, userID string) (domain.CapacitySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, reg := range r.registrations {
		if reg.EventID == eventID && reg.UserID == userID {
			delete(r.registrations, id)
			return domain.CapacitySnapshot{Count: r.countRegistrations(eventID), Capacity: r.events[eventID].Capacity}, nil
		}
	}
	return domain.CapacitySnapshot{}, domain.ErrNotFound
}

func (r memRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r memRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.registrations {
		if reg.EventID == eventID && reg.UserID == userID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memRegistrationRepo) ListUserIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, reg := range r.registrations {
		if reg.EventID == eventID {
			ids = append(ids, reg.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r memRegistrationRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countRegistrations(eventID), nil
}

func (r memRegistrationRepo) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Event
	for _, reg := range r.registrations {
		if reg.UserID == userID {
			out = append(out, r.copyEvent(reg.EventID))
		}
	}
	return out, nil
}

func (r memRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.RegisteredEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.RegisteredEvent, 0)
	for _, reg := range r.registrations {
		if reg.UserID == userID {
			cp := *reg
			out = append(out, &domain.RegisteredEvent{Registration: &cp, Event: r.copyEvent(reg.EventID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registration.CreatedAt.After(out[j].Registration.CreatedAt) })
	return out, nil
}

func (r memRegistrationRepo) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	if reg.CheckedIn {
		return domain.ErrAlreadyCheckedIn
	}
	reg.CheckedIn = true
	reg.CheckedInAt = &at
	return nil
}

// favorites

type memFavoriteRepo struct{ *memStore }

func (r memFavoriteRepo) Toggle(ctx context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{eventID, userID}
	if _, ok := r.favorites[key]; ok {
		delete(r.favorites, key)
		return false, nil
	}
	r.favorites[key] = time.Now()
	return true, nil
}

func (r memFavoriteRepo) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Event
	for key := range r.favorites {
		if key[1] == userID {
			out = append(out, r.copyEvent(key[0]))
		}
	}
	return out, nil
}

func (r memFavoriteRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.FavoriteReminderTarget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.FavoriteReminderTarget
	for key := range r.favorites {
		ev := r.events[key[0]]
		if ev.IsOpen() && !ev.StartsAt.Before(from) && ev.StartsAt.Before(to) {
			out = append(out, &domain.FavoriteReminderTarget{UserID: key[1], Event: r.copyEvent(key[0])})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// feedback

type memFeedbackRepo struct{ *memStore }

func (r memFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) (domain.FeedbackStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, count := 0, 0
	for _, existing := range r.feedback {
		if existing.EventID != fb.EventID {
			continue
		}
		if existing.UserID == fb.UserID {
			return domain.FeedbackStats{}, domain.ErrFeedbackExists
		}
		sum += existing.Rating
		count++
	}
	fb.ID = r.nextID("fb")
	stored := *fb
	r.feedback = append(r.feedback, &stored)
	sum += fb.Rating
	count++
	return domain.FeedbackStats{Count: count, Average: float64(sum) / float64(count)}, nil
}

func (r memFeedbackRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fb := range r.feedback {
		if fb.EventID == eventID && fb.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r memFeedbackRepo) ListRatedEventsByUserID(ctx context.Context, userID string) ([]*domain.RatedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RatedEvent
	for _, fb := range r.feedback {
		if fb.UserID == userID {
			out = append(out, &domain.RatedEvent{Event: r.copyEvent(fb.EventID), Rating: fb.Rating})
		}
	}
	return out, nil
}

func (r memFeedbackRepo) RatingDistribution(ctx context.Context, eventID string) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, fb := range r.feedback {
		if fb.EventID == eventID {
			dist[fb.Rating]++
		}
	}
	return dist, nil
}

func (r memFeedbackRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Feedback, error) {
	return r.listWhere(func(fb *domain.Feedback) bool { return fb.UserID == userID }), nil
}

func (r memFeedbackRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Feedback, error) {
	return r.listWhere(func(fb *domain.Feedback) bool { return fb.EventID == eventID }), nil
}

func (r memFeedbackRepo) listWhere(match func(*domain.Feedback) bool) []*domain.Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Feedback, 0)
	for i := len(r.feedback) - 1; i >= 0; i-- {
		if match(r.feedback[i]) {
			cp := *r.feedback[i]
			out = append(out, &cp)
		}
	}
	return out
}

// notifications

type memNotificationRepo struct{ *memStore }

func (r memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNotifications {
		return errors.New("insert notification: connection refused")
	}
	n.ID = r.nextID("n")
	n.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
	stored := *n
	r.notifications = append(r.notifications, &stored)
	return nil
}

func (r memNotificationRepo) ListByUserID(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID == userID {
			cp := *r.notifications[i]
			all = append(all, &cp)
		}
	}
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r memNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notifications {
		if x.UserID == userID && x.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func (r memNotificationRepo) MarkRead(ctx context.Context, id, userID string, at time.Time) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.notifications {
		if x.ID == id && x.UserID == userID {
			if x.ReadAt == nil {
				x.ReadAt = &at
			}
			cp := *x
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memNotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notifications {
		if x.UserID == userID && x.ReadAt == nil {
			x.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (r memNotificationRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.notifications {
		if x.ID == id && x.UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r memNotificationRepo) DeleteAll(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	n := 0
	for _, x := range r.notifications {
		if x.UserID == userID {
			n++
			continue
		}
		kept = append(kept, x)
	}
	r.notifications = kept
	return n, nil
}

func (r memNotificationRepo) ExistsForEvent(ctx context.Context, userID, eventID string, kind domain.NotificationKind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.notifications {
		if x.UserID == userID && x.EventID != nil && *x.EventID == eventID && x.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

// reminder logs, recommendation history, users

type memReminderLogRepo struct{ *memStore }

func (r memReminderLogRepo) Claim(ctx context.Context, key domain.ClaimKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reminderLogs[key]; ok {
		return false, nil
	}
	r.reminderLogs[key] = struct{}{}
	return true, nil
}

type memHistoryRepo struct{ *memStore }

func (r memHistoryRepo) Record(ctx context.Context, userID, eventID, action string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [3]string{userID, eventID, action}
	if _, ok := r.history[key]; ok {
		return false, nil
	}
	r.history[key] = struct{}{}
	return true, nil
}

func (r memHistoryRepo) ListEventIDs(ctx context.Context, userID, action string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for key := range r.history {
		if key[0] == userID && key[2] == action {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

type memUserRepo struct{ *memStore }

func (r memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// fakeHasher stores the token behind a fixed prefix.
type fakeHasher struct{}

func (fakeHasher) Hash(secret string) (string, error) { return "hashed:" + secret, nil }

func (fakeHasher) Compare(hash, secret string) error {
	if hash != "hashed:"+secret {
		return errors.New("mismatch")
	}
	return nil
}

// fakeLocker is an in-process Locker. busy keys are reported as held by someone else.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	busy map[string]bool
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}, busy: map[string]bool{}}
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (domain.UnlockFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held[key] || l.busy[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	mu        sync.Mutex
	reminders []*domain.EventReminderEmailData
	requests  []*domain.FeedbackRequestEmailData
}

func (f *fakeEmailService) SendEventReminder(ctx context.Context, data *domain.EventReminderEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, data)
	return nil
}

func (f *fakeEmailService) SendFeedbackRequest(ctx context.Context, data *domain.FeedbackRequestEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, data)
	return nil
}

// newEvent returns an open event organized by "org-1".
func newEvent(id, category, unit string, startsAt time.Time) *domain.Event {
	ev := &domain.Event{
		ID:          id,
		OrganizerID: "org-1",
		Title:       "Event " + id,
		StartsAt:    startsAt,
		Status:      domain.EventStatusActive,
	}
	if category != "" {
		ev.CategoryID = strPtr(category)
	}
	if unit != "" {
		ev.UnitID = strPtr(unit)
	}
	return ev
}
