package dao

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDAO_Insert_SlugViolation(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewEventDAO(db)

	mock.ExpectQuery(`INSERT INTO "events"`).
		WillReturnError(&pgconn.PgError{
			Code:    "23505",
			Message: `duplicate key value violates unique constraint "uni_events_slug"`,
		})

	_, err := d.Insert(context.Background(), Event{
		Name: "Campus Open House 2026",
		Slug: "open-house-2026",
		Date: time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(t, err, ErrEventSlugExists)
}

func TestEventDAO_Insert(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewEventDAO(db)

	mock.ExpectQuery(`INSERT INTO "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	created, err := d.Insert(context.Background(), Event{
		Name: "Campus Open House 2026",
		Slug: "open-house-2026",
		Date: time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, uint(7), created.ID)
}

func TestEventDAO_FindBySlug_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewEventDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE slug = $1`)).
		WithArgs("no-such-event", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.FindBySlug(context.Background(), "no-such-event")

	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventDAO_Update_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewEventDAO(db)

	mock.ExpectExec(`UPDATE "events"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := d.Update(context.Background(), Event{
		ID:   999,
		Name: "Renamed",
		Slug: "renamed",
		Date: time.Now(),
	})

	assert.ErrorIs(t, err, ErrEventNotFound)
}
