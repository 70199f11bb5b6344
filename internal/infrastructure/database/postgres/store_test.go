package postgres

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"credit-portal/internal/pkg/apperrors"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*DocumentStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDocumentStore(mock, logger), mock
}

func TestDocumentStoreListDocuments(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, fields FROM documents WHERE collection = $1 ORDER BY created_at, id`)).
		WithArgs("bankCredits").
		WillReturnRows(pgxmock.NewRows([]string{"id", "fields"}).
			AddRow("d1", []byte(`{"amount":100000}`)).
			AddRow("d2", []byte(`{"amount":200000}`)))

	docs, err := store.ListDocuments(context.Background(), "bankCredits")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d1", docs[0].ID)
	assert.Equal(t, float64(100000), docs[0].Fields["amount"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreGetDocumentNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT fields FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs("users", "missing").
		WillReturnRows(pgxmock.NewRows([]string{"fields"}))

	_, err := store.GetDocument(context.Background(), "users", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreAddDocument(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO documents (collection, fields) VALUES ($1, $2) RETURNING id`)).
		WithArgs("userLoans", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("new-id"))

	id, err := store.AddDocument(context.Background(), "userLoans", map[string]any{"amount": 1})
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreAddDocumentCapped(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`)).
		WithArgs("userLoans", `{"userId":"u1"}`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`INSERT INTO documents`).
		WithArgs("userLoans", pgxmock.AnyArg(), pgxmock.AnyArg(), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("new-id"))
	mock.ExpectCommit()

	id, err := store.AddDocumentCapped(context.Background(), "userLoans",
		map[string]any{"userId": "u1"}, "userId", "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreAddDocumentCappedRejectsWhenFull(t *testing.T) {
	store, mock := newTestStore(t)

	// The per-owner advisory lock is taken before the conditional insert so
	// a concurrent origination cannot count the same free slot.
	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("userLoans", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`INSERT INTO documents`).
		WithArgs("userLoans", pgxmock.AnyArg(), pgxmock.AnyArg(), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := store.AddDocumentCapped(context.Background(), "userLoans",
		map[string]any{"userId": "u1"}, "userId", "u1", 2)
	assert.ErrorIs(t, err, apperrors.ErrLimitExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreUpdateDocument(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET fields = fields || $3::jsonb WHERE collection = $1 AND id = $2`)).
		WithArgs("userLoans", "d1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.UpdateDocument(context.Background(), "userLoans", "d1", map[string]any{"amount": 2})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreUpdateDocumentNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents`).
		WithArgs("userLoans", "missing", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.UpdateDocument(context.Background(), "userLoans", "missing", map[string]any{"amount": 2})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreDeleteDocument(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs("userLoans", "d1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, store.DeleteDocument(context.Background(), "userLoans", "d1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreQueryDocuments(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, fields FROM documents WHERE collection = $1 AND fields @> $2::jsonb ORDER BY created_at, id`)).
		WithArgs("userLoans", []byte(`{"userId":"u1"}`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "fields"}).
			AddRow("d1", []byte(`{"userId":"u1","amount":50000}`)))

	docs, err := store.QueryDocuments(context.Background(), "userLoans", "userId", "u1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "u1", docs[0].Fields["userId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreQueryFailureWrapsStoreError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT id, fields FROM documents`).
		WithArgs("userLoans", pgxmock.AnyArg()).
		WillReturnError(assert.AnError)

	_, err := store.QueryDocuments(context.Background(), "userLoans", "userId", "u1")
	assert.ErrorIs(t, err, apperrors.ErrDatabase)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "STORE_ERROR", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStoreArrayUnionAlreadyPresent(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents`).
		WithArgs("users", "u1", "creditIds", []byte(`["loan-1"]`)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT fields FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs("users", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"fields"}).AddRow([]byte(`{"creditIds":["loan-1"]}`)))

	err := store.ArrayUnion(context.Background(), "users", "u1", "creditIds", "loan-1")
	assert.NoError(t, err, "no-op union on an existing value is not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
