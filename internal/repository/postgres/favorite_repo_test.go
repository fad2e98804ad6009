package postgres

import (
	"context"
	"testing"
	"time"

	"campusengage/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestFavoriteRepository_Toggle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		mock func(mock sqlmock.Sqlmock)
		want bool
	}{
		{
			name: "adds when absent",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM favorites WHERE event_id = \$1 AND user_id = \$2`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO favorites \(event_id, user_id\)`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			want: true,
		},
		{
			name: "removes when present",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM favorites`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewFavoriteRepository(db).Toggle(ctx, "ev-1", "user-1")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFavoriteRepository_ListStartingBetween(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := testTime.Add(24 * time.Hour)
	to := from.Add(time.Minute)
	cols := append(append([]string{}, eventCols...), "user_id")
	mock.ExpectQuery(`FROM favorites f\s+JOIN events e ON e.id = f.event_id\s+WHERE e.status = 'active' AND e.archived = FALSE\s+AND e.starts_at >= \$1 AND e.starts_at < \$2`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(append(eventValues("ev-1", from), "user-1")...).
			AddRow(append(eventValues("ev-1", from), "user-2")...))

	got, err := NewFavoriteRepository(db).ListStartingBetween(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, []*domain.FavoriteReminderTarget{
		{UserID: "user-1", Event: wantEvent("ev-1", from)},
		{UserID: "user-2", Event: wantEvent("ev-1", from)},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ListEventsByUserID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM favorites f\s+JOIN events e ON e.id = f.event_id\s+WHERE f.user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(eventValues("ev-1", testTime)...))

	got, err := NewFavoriteRepository(db).ListEventsByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, []*domain.Event{wantEvent("ev-1", testTime)}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
