package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/gemini-chat/backend/repositories"
	"go.uber.org/zap"
)

const getDocumentQuery = `SELECT data FROM documents WHERE collection = \$1 AND id = \$2`

func newMockStore(t *testing.T) (*DocumentStore, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := &DB{DB: sqlDB, logger: zap.NewNop()}
	return NewDocumentStore(db, zap.NewNop()), mock
}

func TestDocumentStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored fields verbatim", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(getDocumentQuery).
			WithArgs("users", "u123").
			WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"name":"Alice","plan":"pro"}`)))

		doc, err := store.Get(ctx, "users", "u123")
		require.NoError(t, err)

		out, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Alice","plan":"pro"}`, string(out))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps large integers exact", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(getDocumentQuery).
			WithArgs("users", "u123").
			WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"credits":9007199254740993}`)))

		doc, err := store.Get(ctx, "users", "u123")
		require.NoError(t, err)

		out, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.Equal(t, `{"credits":9007199254740993}`, string(out))
	})

	t.Run("missing row is ErrDocumentNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(getDocumentQuery).
			WithArgs("users", "ghost").
			WillReturnRows(sqlmock.NewRows([]string{"data"}))

		doc, err := store.Get(ctx, "users", "ghost")
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, repositories.ErrDocumentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(getDocumentQuery).
			WithArgs("users", "u123").
			WillReturnError(dbErr)

		_, err := store.Get(ctx, "users", "u123")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, repositories.ErrDocumentNotFound)
	})

	t.Run("non-object document is an error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(getDocumentQuery).
			WithArgs("users", "u123").
			WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`["not","an","object"]`)))

		_, err := store.Get(ctx, "users", "u123")
		assert.Error(t, err)
	})
}

func TestDocumentStore_HealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	store := NewDocumentStore(&DB{DB: sqlDB, logger: zap.NewNop()}, zap.NewNop())

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	assert.NoError(t, store.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_InitSchema(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{DB: sqlDB, logger: zap.NewNop()}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS documents").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, db.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
