package dao

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Spins up a throwaway Postgres via Docker. Opt in with
// GUESTBOOK_INTEGRATION=1 so the regular unit run stays hermetic.
func newIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("GUESTBOOK_INTEGRATION") == "" {
		t.Skip("set GUESTBOOK_INTEGRATION=1 to run Docker-backed tests")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=guestbook",
		"POSTGRES_PASSWORD=guestbook",
		"POSTGRES_DB=guestbook_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Purge(resource)
	})

	dsn := fmt.Sprintf("host=localhost port=%v user=guestbook password=guestbook dbname=guestbook_test sslmode=disable",
		resource.GetPort("5432/tcp"))

	var db *gorm.DB
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn))
		return openErr
	})
	require.NoError(t, err)

	require.NoError(t, InitTables(db))

	return db
}

func TestAttendanceLifecycle_Integration(t *testing.T) {
	db := newIntegrationDB(t)
	ctx := context.Background()

	eventDAO := NewEventDAO(db)
	attendanceDAO := NewAttendanceDAO(db)

	event, err := eventDAO.Insert(ctx, Event{
		Name:     "Campus Open House 2026",
		Slug:     "open-house-2026",
		Date:     time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC),
		Location: "Main Auditorium",
	})
	require.NoError(t, err)

	_, err = eventDAO.Insert(ctx, Event{
		Name: "Duplicate Slug",
		Slug: "open-house-2026",
		Date: time.Now(),
	})
	assert.ErrorIs(t, err, ErrEventSlugExists)

	first, err := attendanceDAO.Insert(ctx, Attendance{
		EventID:             event.ID,
		GuestName:           "Budi Santoso",
		Institution:         "SMA Negeri 1",
		RepresentativeCount: 2,
		Category:            "guest",
		ArrivalTime:         time.Now().UTC(),
	})
	require.NoError(t, err)

	count, err := attendanceDAO.CountDuplicate(ctx, event.ID, "  BUDI santoso ", "sma negeri 1  ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = attendanceDAO.CountDuplicate(ctx, event.ID, "Budi Santoso", "Universitas Indonesia")
	require.NoError(t, err)
	assert.Zero(t, count)

	row, err := attendanceDAO.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "open-house-2026", row.EventSlug)
	assert.Equal(t, "Campus Open House 2026", row.EventName)

	stats, err := attendanceDAO.Stats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalAttendees)
	assert.Equal(t, int64(2), stats.TotalRepresented)

	// Deleting the event takes its attendance records with it.
	require.NoError(t, eventDAO.Delete(ctx, event.ID))

	_, err = attendanceDAO.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrAttendanceNotFound)
}
