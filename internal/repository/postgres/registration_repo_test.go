package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"campusengage/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func expectCapacityLock(mock sqlmock.Sqlmock, eventID string, capacity any, count int) {
	mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(capacity))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations WHERE event_id = \$1`).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func expectExistingRegistration(mock sqlmock.Sqlmock, eventID, userID string, exists bool) {
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM registrations WHERE event_id = \$1 AND user_id = \$2\)`).
		WithArgs(eventID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func intPtr(v int) *int { return &v }

func TestRegistrationRepository_CreateWithinCapacity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantSnap domain.CapacitySnapshot
		wantID   string
		errIs    error
	}{
		{
			name: "success returns post-insert count",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				expectCapacityLock(mock, "ev-1", 3, 2)
				expectExistingRegistration(mock, "ev-1", "user-1", false)
				mock.ExpectQuery(`INSERT INTO registrations \(event_id, user_id, check_in_token_hash, created_at\)`).
					WithArgs("ev-1", "user-1", "hash", testTime).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
				mock.ExpectCommit()
			},
			wantSnap: domain.CapacitySnapshot{Count: 3, Capacity: intPtr(3)},
			wantID:   "reg-1",
		},
		{
			name: "unlimited capacity",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				expectCapacityLock(mock, "ev-1", nil, 500)
				expectExistingRegistration(mock, "ev-1", "user-1", false)
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-2"))
				mock.ExpectCommit()
			},
			wantSnap: domain.CapacitySnapshot{Count: 501},
			wantID:   "reg-2",
		},
		{
			name: "full",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				expectCapacityLock(mock, "ev-1", 3, 3)
				expectExistingRegistration(mock, "ev-1", "user-1", false)
				mock.ExpectRollback()
			},
			errIs: domain.ErrEventFull,
		},
		{
			name: "already registered on a full event",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				expectCapacityLock(mock, "ev-1", 3, 3)
				expectExistingRegistration(mock, "ev-1", "user-1", true)
				mock.ExpectRollback()
			},
			errIs: domain.ErrAlreadyRegistered,
		},
		{
			name: "duplicate registration racing the insert",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				expectCapacityLock(mock, "ev-1", 3, 1)
				expectExistingRegistration(mock, "ev-1", "user-1", false)
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			errIs: domain.ErrAlreadyRegistered,
		},
		{
			name: "event not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events`).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			errIs: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			reg := domain.NewRegistration("ev-1", "user-1", "hash", testTime)
			snap, err := repo.CreateWithinCapacity(ctx, reg)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantSnap, snap)
			require.Equal(t, tt.wantID, reg.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantSnap domain.CapacitySnapshot
		errIs    error
	}{
		{
			name: "success returns post-delete count",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				expectCapacityLock(mock, "ev-1", 3, 3)
				mock.ExpectExec(`DELETE FROM registrations WHERE event_id = \$1 AND user_id = \$2`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantSnap: domain.CapacitySnapshot{Count: 2, Capacity: intPtr(3)},
		},
		{
			name: "not registered",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				expectCapacityLock(mock, "ev-1", 3, 3)
				mock.ExpectExec(`DELETE FROM registrations`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			errIs: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			snap, err := repo.Delete(ctx, "ev-1", "user-1")
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantSnap, snap)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	cols := []string{"id", "event_id", "user_id", "check_in_token_hash", "checked_in", "checked_in_at", "created_at"}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, user_id, check_in_token_hash, checked_in, checked_in_at, created_at FROM registrations WHERE id = \$1`).
			WithArgs("reg-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("reg-1", "ev-1", "user-1", "hash", true, testTime, testTime))

		got, err := NewRegistrationRepository(db).GetByID(ctx, "reg-1")
		require.NoError(t, err)
		require.Equal(t, &domain.Registration{
			ID: "reg-1", EventID: "ev-1", UserID: "user-1", CheckInTokenHash: "hash",
			CheckedIn: true, CheckedInAt: &testTime, CreatedAt: testTime,
		}, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM registrations WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := NewRegistrationRepository(db).GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrationRepository_ListUserIDsByEvent(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id FROM registrations WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1").AddRow("user-2"))

	got, err := NewRegistrationRepository(db).ListUserIDsByEvent(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, []string{"user-1", "user-2"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_ListEventsByUserID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM registrations r\s+JOIN events e ON e.id = r.event_id\s+WHERE r.user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(eventValues("ev-1", testTime)...))

	got, err := NewRegistrationRepository(db).ListEventsByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, []*domain.Event{wantEvent("ev-1", testTime)}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	checkedInAt := testTime.Add(2 * time.Hour)
	cols := append(append([]string{}, eventCols...), "id", "checked_in", "checked_in_at", "created_at")
	mock.ExpectQuery(`r.id, r.checked_in, r.checked_in_at, r.created_at\s+FROM registrations r\s+JOIN events e ON e.id = r.event_id\s+WHERE r.user_id = \$1\s+ORDER BY r.created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(append(eventValues("ev-2", testTime), "reg-2", false, nil, testTime.Add(time.Hour))...).
			AddRow(append(eventValues("ev-1", testTime), "reg-1", true, checkedInAt, testTime)...))

	got, err := NewRegistrationRepository(db).ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, []*domain.RegisteredEvent{
		{
			Registration: &domain.Registration{ID: "reg-2", EventID: "ev-2", UserID: "user-1", CreatedAt: testTime.Add(time.Hour)},
			Event:        wantEvent("ev-2", testTime),
		},
		{
			Registration: &domain.Registration{ID: "reg-1", EventID: "ev-1", UserID: "user-1", CheckedIn: true, CheckedInAt: &checkedInAt, CreatedAt: testTime},
			Event:        wantEvent("ev-1", testTime),
		},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_ListByUserIDEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM registrations r`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, eventCols...), "id", "checked_in", "checked_in_at", "created_at")))

	got, err := NewRegistrationRepository(db).ListByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_MarkCheckedIn(t *testing.T) {
	ctx := context.Background()
	at := testTime.Add(time.Hour)

	tests := []struct {
		name  string
		rows  int64
		errIs error
	}{
		{name: "success", rows: 1},
		{name: "already checked in", rows: 0, errIs: domain.ErrAlreadyCheckedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`UPDATE registrations SET checked_in = TRUE, checked_in_at = \$2\s+WHERE id = \$1 AND checked_in = FALSE`).
				WithArgs("reg-1", at).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err = NewRegistrationRepository(db).MarkCheckedIn(ctx, "reg-1", at)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
