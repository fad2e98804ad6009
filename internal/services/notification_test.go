package services

import (
	"context"
	"testing"
	"time"

	"campusengage/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture() (*memStore, *notificationService) {
	store := newMemStore()
	svc := NewNotificationService(memNotificationRepo{store}, testLogger(), time.Second).(*notificationService)
	return store, svc
}

func TestNotificationService_Emit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores", func(t *testing.T) {
		store, svc := newNotificationFixture()
		ok := svc.Emit(ctx, domain.NewNotification("u1", "ev-1", domain.NotificationEventFull, "t", "m"))
		assert.True(t, ok)
		assert.Equal(t, 1, store.notificationCount())
	})

	t.Run("missing recipient", func(t *testing.T) {
		store, svc := newNotificationFixture()
		assert.False(t, svc.Emit(ctx, domain.NewNotification("", "ev-1", domain.NotificationEventFull, "t", "m")))
		assert.False(t, svc.Emit(ctx, nil))
		assert.Zero(t, store.notificationCount())
	})

	t.Run("storage failure is reported, not returned", func(t *testing.T) {
		store, svc := newNotificationFixture()
		store.failNotifications = true
		assert.False(t, svc.Emit(ctx, domain.NewNotification("u1", "", domain.NotificationEventFull, "t", "m")))
	})
}

func TestNotificationService_ReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, svc := newNotificationFixture()
	readAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return readAt }

	for i := 0; i < 3; i++ {
		require.True(t, svc.Emit(ctx, domain.NewNotification("u1", "", domain.NotificationFeedbackRequested, "t", "m")))
	}
	require.True(t, svc.Emit(ctx, domain.NewNotification("u2", "", domain.NotificationFeedbackRequested, "t", "m")))
	require.True(t, svc.Emit(ctx, domain.NewNotification("u2", "", domain.NotificationFeedbackRequested, "t", "m")))

	page, err := svc.List(ctx, "u1", domain.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, domain.DefaultPageSize, page.PageSize)

	unread, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	n, err := svc.MarkRead(ctx, page.Items[0].ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, n.ReadAt)
	assert.Equal(t, readAt, *n.ReadAt)

	unread, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	// marking again does not change the count
	_, err = svc.MarkRead(ctx, page.Items[0].ID, "u1")
	require.NoError(t, err)
	unread, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	// another user's notification is not visible
	_, err = svc.MarkRead(ctx, page.Items[1].ID, "u2")
	require.ErrorIs(t, err, domain.ErrNotFound)

	marked, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	unread, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, unread)
	other, err := svc.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, other)
}

func TestNotificationService_ListNewestFirstAndPaged(t *testing.T) {
	ctx := context.Background()
	_, svc := newNotificationFixture()
	for _, title := range []string{"first", "second", "third"} {
		require.True(t, svc.Emit(ctx, domain.NewNotification("u1", "", domain.NotificationEventRecommended, title, "m")))
	}

	page, err := svc.List(ctx, "u1", domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "third", page.Items[0].Title)
	assert.Equal(t, "second", page.Items[1].Title)

	page, err = svc.List(ctx, "u1", domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "first", page.Items[0].Title)
	assert.Equal(t, 3, page.Total)
}

func TestNotificationService_Delete(t *testing.T) {
	ctx := context.Background()
	store, svc := newNotificationFixture()
	for i := 0; i < 2; i++ {
		require.True(t, svc.Emit(ctx, domain.NewNotification("u1", "", domain.NotificationEventRecommended, "t", "m")))
	}
	require.True(t, svc.Emit(ctx, domain.NewNotification("u2", "", domain.NotificationEventRecommended, "t", "m")))

	page, err := svc.List(ctx, "u1", domain.PaginationParams{})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, page.Items[0].ID, "u2"), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, page.Items[0].ID, "u1"))
	assert.Equal(t, 2, store.notificationCount())

	n, err := svc.DeleteAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.notificationCount())
}
