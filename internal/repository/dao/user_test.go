package dao

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDAO_Insert_EmailViolation(t *testing.T) {
	db, mock := newTestDB(t)
	d := NewUserDAO(db)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{
			Code:    "23505",
			Message: `duplicate key value violates unique constraint "uni_users_email"`,
		})

	_, err := d.Insert(context.Background(), User{
		Name:     "Operator",
		Email:    "operator@campus.ac.id",
		Password: "hash",
	})

	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestUserDAO_FindByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newTestDB(t)
		d := NewUserDAO(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
			WithArgs("operator@campus.ac.id", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
				AddRow(1, "Operator", "operator@campus.ac.id", "admin"))

		user, err := d.FindByEmail(context.Background(), "operator@campus.ac.id")

		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newTestDB(t)
		d := NewUserDAO(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
			WithArgs("nobody@campus.ac.id", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := d.FindByEmail(context.Background(), "nobody@campus.ac.id")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
