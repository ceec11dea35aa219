package dao

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceDAO_CountDuplicate(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewAttendanceDAO(db)

	// The triple is compared trimmed and case-insensitive on both sides.
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT count(*) FROM "attendances" WHERE event_id = $1 AND LOWER(TRIM(guest_name)) = LOWER(TRIM($2)) AND LOWER(TRIM(institution)) = LOWER(TRIM($3))`,
	)).
		WithArgs(7, "  budi SANTOSO ", "sma negeri 1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := d.CountDuplicate(context.Background(), 7, "  budi SANTOSO ", "sma negeri 1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceDAO_Insert(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewAttendanceDAO(db)

	mock.ExpectQuery(`INSERT INTO "attendances"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))

	created, err := d.Insert(context.Background(), Attendance{
		EventID:             7,
		GuestName:           "Budi Santoso",
		Institution:         "SMA Negeri 1",
		RepresentativeCount: 1,
		Category:            "guest",
		ArrivalTime:         time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, uint(101), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceDAO_Delete(t *testing.T) {
	t.Run("existing row", func(t *testing.T) {
		db, mock := newTestDB(t)
		d := NewAttendanceDAO(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "attendances" WHERE "attendances"."id" = $1`)).
			WithArgs(55).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := d.Delete(context.Background(), 55)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := newTestDB(t)
		d := NewAttendanceDAO(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "attendances" WHERE "attendances"."id" = $1`)).
			WithArgs(999).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := d.Delete(context.Background(), 999)

		assert.ErrorIs(t, err, ErrAttendanceNotFound)
	})
}

func TestAttendanceDAO_FindByID_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewAttendanceDAO(db)

	mock.ExpectQuery(`SELECT attendances\.\*, events\.name AS event_name`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.FindByID(context.Background(), 999)

	assert.ErrorIs(t, err, ErrAttendanceNotFound)
}

func TestAttendanceDAO_CountByInstitutionID(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewAttendanceDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "attendances" WHERE institution_id = $1`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := d.CountByInstitutionID(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
