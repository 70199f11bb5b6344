package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"credit-portal/internal/docstore"
	"credit-portal/internal/pkg/apperrors"
)

const CollectionLoans = "userLoans"

type Repository interface {
	// ListByUser returns the user's loans in insertion order.
	ListByUser(ctx context.Context, userID string) ([]ActiveLoan, error)

	Get(ctx context.Context, id string) (ActiveLoan, error)

	// CreateCapped inserts the loan only while the owner holds fewer than
	// maxCount loans. The count and the insert are one atomic store
	// operation; returns apperrors.ErrLimitExceeded at the cap.
	CreateCapped(ctx context.Context, l *ActiveLoan, maxCount int) error

	// UpdateTerms persists amount, interest rate and term after an edit.
	UpdateTerms(ctx context.Context, l *ActiveLoan) error

	// UpdateProgress persists paid months and status after a payment.
	UpdateProgress(ctx context.Context, l *ActiveLoan) error

	Delete(ctx context.Context, id string) error

	// ListAll returns every stored loan. Used by the overdue scan only.
	ListAll(ctx context.Context) ([]ActiveLoan, error)
}

type storeRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewRepository(store docstore.Store, logger *slog.Logger) Repository {
	return &storeRepository{store: store, logger: logger.With("component", "LoanRepository")}
}

func (r *storeRepository) ListByUser(ctx context.Context, userID string) ([]ActiveLoan, error) {
	docs, err := r.store.QueryDocuments(ctx, CollectionLoans, "userId", userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query user loans", "userID", userID, "error", err)
		return nil, err
	}
	return decodeLoans(docs)
}

func (r *storeRepository) Get(ctx context.Context, id string) (ActiveLoan, error) {
	doc, err := r.store.GetDocument(ctx, CollectionLoans, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return ActiveLoan{}, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return ActiveLoan{}, err
	}

	var l ActiveLoan
	if err := docstore.Decode(doc, &l); err != nil {
		return ActiveLoan{}, err
	}
	l.ID = doc.ID
	return l, nil
}

func (r *storeRepository) CreateCapped(ctx context.Context, l *ActiveLoan, maxCount int) error {
	fields, err := docstore.Fields(l)
	if err != nil {
		return err
	}

	id, err := r.store.AddDocumentCapped(ctx, CollectionLoans, fields, "userId", l.UserID, maxCount)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (r *storeRepository) UpdateTerms(ctx context.Context, l *ActiveLoan) error {
	patch := map[string]any{
		"amount":       l.Amount,
		"interestRate": l.InterestRate,
		"term":         l.TermMonths,
	}
	return r.store.UpdateDocument(ctx, CollectionLoans, l.ID, patch)
}

func (r *storeRepository) UpdateProgress(ctx context.Context, l *ActiveLoan) error {
	patch := map[string]any{
		"paidMonths": l.PaidMonths,
		"status":     l.Status,
	}
	return r.store.UpdateDocument(ctx, CollectionLoans, l.ID, patch)
}

func (r *storeRepository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteDocument(ctx, CollectionLoans, id)
}

func (r *storeRepository) ListAll(ctx context.Context) ([]ActiveLoan, error) {
	docs, err := r.store.ListDocuments(ctx, CollectionLoans)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list loans", "error", err)
		return nil, err
	}
	return decodeLoans(docs)
}

func decodeLoans(docs []docstore.Document) ([]ActiveLoan, error) {
	loans := make([]ActiveLoan, 0, len(docs))
	for _, doc := range docs {
		var l ActiveLoan
		if err := docstore.Decode(doc, &l); err != nil {
			return nil, err
		}
		l.ID = doc.ID
		loans = append(loans, l)
	}
	return loans, nil
}
