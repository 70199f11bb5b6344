package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-portal/internal/docstore"
	"credit-portal/internal/infrastructure/monitoring"
	"credit-portal/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

// DocumentStore implements docstore.Store on a single documents table:
//
//	documents(collection text, id uuid, fields jsonb, created_at timestamptz)
//
// Field-equality queries go through jsonb containment so the gin index on
// fields serves them.
type DocumentStore struct {
	db     DBPool
	logger *slog.Logger
}

var _ docstore.Store = (*DocumentStore)(nil)

func NewDocumentStore(db DBPool, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{db: db, logger: logger.With("component", "DocumentStore")}
}

func (s *DocumentStore) ListDocuments(ctx context.Context, collection string) ([]docstore.Document, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx,
		`SELECT id, fields FROM documents WHERE collection = $1 ORDER BY created_at, id`,
		collection)
	if err != nil {
		monitoring.RecordStoreOp("list", "error", time.Since(start))
		s.logger.ErrorContext(ctx, "Failed to list documents", "collection", collection, "error", err)
		return nil, apperrors.WrapStoreError(err, fmt.Sprintf("listing %s", collection))
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		monitoring.RecordStoreOp("list", "error", time.Since(start))
		return nil, err
	}
	monitoring.RecordStoreOp("list", "ok", time.Since(start))
	return docs, nil
}

func (s *DocumentStore) GetDocument(ctx context.Context, collection, id string) (docstore.Document, error) {
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT fields FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Document{}, fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get document", "collection", collection, "id", id, "error", err)
		return docstore.Document{}, apperrors.WrapStoreError(err, fmt.Sprintf("getting %s/%s", collection, id))
	}

	fields, err := unmarshalFields(raw)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}

func (s *DocumentStore) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: encoding fields: %v", apperrors.ErrInternalServer, err)
	}

	var id string
	err = s.db.QueryRow(ctx,
		`INSERT INTO documents (collection, fields) VALUES ($1, $2) RETURNING id`,
		collection, raw).Scan(&id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add document", "collection", collection, "error", err)
		return "", apperrors.WrapStoreError(err, fmt.Sprintf("adding to %s", collection))
	}
	return id, nil
}

func (s *DocumentStore) AddDocumentCapped(ctx context.Context, collection string, fields map[string]any, fieldPath string, equals any, maxCount int) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: encoding fields: %v", apperrors.ErrInternalServer, err)
	}
	filter, err := containmentFilter(fieldPath, equals)
	if err != nil {
		return "", err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin capped insert", "collection", collection, "error", err)
		return "", apperrors.WrapStoreError(err, fmt.Sprintf("capped insert into %s", collection))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Under READ COMMITTED two concurrent conditional inserts for the same
	// owner each count against their own statement snapshot and neither
	// blocks the other, so both could observe a free slot. The advisory
	// lock serializes capped inserts per (collection, filter); it releases
	// at commit.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`,
		collection, string(filter)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to lock capped insert", "collection", collection, "error", err)
		return "", apperrors.WrapStoreError(err, fmt.Sprintf("capped insert into %s", collection))
	}

	var id string
	err = tx.QueryRow(ctx,
		`INSERT INTO documents (collection, fields)
		 SELECT $1, $2::jsonb
		 WHERE (SELECT count(*) FROM documents WHERE collection = $1 AND fields @> $3::jsonb) < $4
		 RETURNING id`,
		collection, raw, filter, maxCount).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: all %d slots in use", apperrors.ErrLimitExceeded, maxCount)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed capped insert", "collection", collection, "error", err)
		return "", apperrors.WrapStoreError(err, fmt.Sprintf("capped insert into %s", collection))
	}
	if err := tx.Commit(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit capped insert", "collection", collection, "error", err)
		return "", apperrors.WrapStoreError(err, fmt.Sprintf("capped insert into %s", collection))
	}
	return id, nil
}

func (s *DocumentStore) UpdateDocument(ctx context.Context, collection, id string, patch map[string]any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("%w: encoding patch: %v", apperrors.ErrInternalServer, err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE documents SET fields = fields || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update document", "collection", collection, "id", id, "error", err)
		return apperrors.WrapStoreError(err, fmt.Sprintf("updating %s/%s", collection, id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	return nil
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, collection, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete document", "collection", collection, "id", id, "error", err)
		return apperrors.WrapStoreError(err, fmt.Sprintf("deleting %s/%s", collection, id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	return nil
}

func (s *DocumentStore) QueryDocuments(ctx context.Context, collection, fieldPath string, equals any) ([]docstore.Document, error) {
	start := time.Now()
	filter, err := containmentFilter(fieldPath, equals)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, fields FROM documents WHERE collection = $1 AND fields @> $2::jsonb ORDER BY created_at, id`,
		collection, filter)
	if err != nil {
		monitoring.RecordStoreOp("query", "error", time.Since(start))
		s.logger.ErrorContext(ctx, "Failed to query documents", "collection", collection, "field", fieldPath, "error", err)
		return nil, apperrors.WrapStoreError(err, fmt.Sprintf("querying %s by %s", collection, fieldPath))
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		monitoring.RecordStoreOp("query", "error", time.Since(start))
		return nil, err
	}
	monitoring.RecordStoreOp("query", "ok", time.Since(start))
	return docs, nil
}

func (s *DocumentStore) ArrayUnion(ctx context.Context, collection, id, fieldPath string, value any) error {
	element, err := json.Marshal([]any{value})
	if err != nil {
		return fmt.Errorf("%w: encoding array element: %v", apperrors.ErrInternalServer, err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE documents
		 SET fields = jsonb_set(fields, ARRAY[$3], coalesce(fields->$3, '[]'::jsonb) || $4::jsonb, true)
		 WHERE collection = $1 AND id = $2
		   AND NOT coalesce(fields->$3, '[]'::jsonb) @> $4::jsonb`,
		collection, id, fieldPath, element)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed array union", "collection", collection, "id", id, "field", fieldPath, "error", err)
		return apperrors.WrapStoreError(err, fmt.Sprintf("array union on %s/%s", collection, id))
	}
	if tag.RowsAffected() == 0 {
		// Either the document is missing or the value is already present.
		if _, getErr := s.GetDocument(ctx, collection, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

func containmentFilter(fieldPath string, equals any) ([]byte, error) {
	filter, err := json.Marshal(map[string]any{fieldPath: equals})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding filter: %v", apperrors.ErrInternalServer, err)
	}
	return filter, nil
}

func scanDocuments(rows pgx.Rows) ([]docstore.Document, error) {
	var docs []docstore.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, apperrors.WrapStoreError(err, "scanning document")
		}
		fields, err := unmarshalFields(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapStoreError(err, "iterating documents")
	}
	return docs, nil
}

func unmarshalFields(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: decoding stored fields: %v", apperrors.ErrInternalServer, err)
	}
	return fields, nil
}
