package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"credit-portal/internal/pkg/apperrors"
)

// Document is a schemaless record inside a named collection.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store is the persistence collaborator of the portal. The portal owns no
// schema beyond named collections of documents queried by field equality;
// everything else (filtering, sorting, derived summaries) happens in
// memory on the fetched result set.
type Store interface {
	ListDocuments(ctx context.Context, collection string) ([]Document, error)

	GetDocument(ctx context.Context, collection, id string) (Document, error)

	AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error)

	// AddDocumentCapped atomically inserts a document only while the number
	// of documents whose fieldPath equals `equals` stays below maxCount.
	// Returns apperrors.ErrLimitExceeded when the cap is already reached.
	// This is the reserve-a-slot operation backing the loan limit; the
	// check and the insert are a single store round-trip, not a read
	// followed by a write.
	AddDocumentCapped(ctx context.Context, collection string, fields map[string]any, fieldPath string, equals any, maxCount int) (string, error)

	// UpdateDocument merges patch into the document's fields.
	UpdateDocument(ctx context.Context, collection, id string, patch map[string]any) error

	DeleteDocument(ctx context.Context, collection, id string) error

	// QueryDocuments returns documents whose fieldPath equals the given
	// value, in insertion order.
	QueryDocuments(ctx context.Context, collection, fieldPath string, equals any) ([]Document, error)

	// ArrayUnion appends value to the array field at fieldPath unless the
	// array already contains it.
	ArrayUnion(ctx context.Context, collection, id, fieldPath string, value any) error
}

// Decode maps a document's fields onto a struct via JSON tags and fills in
// the document id through the given pointer.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("%w: encoding document %s: %v", apperrors.ErrInternalServer, doc.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decoding document %s: %v", apperrors.ErrInternalServer, doc.ID, err)
	}
	return nil
}

// Fields flattens a struct into a document field map via JSON tags.
func Fields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding fields: %v", apperrors.ErrInternalServer, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: decoding fields: %v", apperrors.ErrInternalServer, err)
	}
	return fields, nil
}
