package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

func newPostgresStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	backend := NewPostgresBackend(sqlx.NewDb(db, "postgres"), "hide_high_scores")
	return New(backend, WithLogger(quietLogger())), mock
}

func TestPostgresEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS high_scores").WillReturnResult(sqlmock.NewResult(0, 0))

	backend := NewPostgresBackend(sqlx.NewDb(db, "postgres"), "hs")
	require.NoError(t, backend.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSeedsMissingRow(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectQuery("SELECT records FROM high_scores").
		WithArgs("hide_high_scores", "1", "1").
		WillReturnRows(sqlmock.NewRows([]string{"records"}))
	mock.ExpectExec("INSERT INTO high_scores").
		WithArgs("hide_high_scores", "1", "1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.Defaults(), list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreReadsExistingRow(t *testing.T) {
	s, mock := newPostgresStore(t)

	rows := sqlmock.NewRows([]string{"records"}).
		AddRow([]byte(`[{"name":"Zoe","score":10000}]`))
	mock.ExpectQuery("SELECT records FROM high_scores").
		WithArgs("hide_high_scores", "1", "1").
		WillReturnRows(rows)

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.List{{Name: "Zoe", Score: 10000}}, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreWriteFailure(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectExec("INSERT INTO high_scores").
		WillReturnError(errors.New("connection reset"))

	err := s.Save(context.Background(), scope, scores.Defaults())
	assert.ErrorIs(t, err, scores.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
