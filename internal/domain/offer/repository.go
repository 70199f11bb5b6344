package offer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"credit-portal/internal/docstore"
	"credit-portal/internal/pkg/apperrors"
)

const (
	CollectionBank    = "bankCredits"
	CollectionPrivate = "privateCredits"
)

type Repository interface {
	ListBank(ctx context.Context) ([]Offer, error)

	ListPrivate(ctx context.Context) ([]Offer, error)

	// Get looks the offer up in both catalogs.
	Get(ctx context.Context, id string) (Offer, error)
}

type storeRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewRepository(store docstore.Store, logger *slog.Logger) Repository {
	return &storeRepository{store: store, logger: logger.With("component", "OfferRepository")}
}

func (r *storeRepository) ListBank(ctx context.Context) ([]Offer, error) {
	return r.list(ctx, CollectionBank, KindBank)
}

func (r *storeRepository) ListPrivate(ctx context.Context) ([]Offer, error) {
	return r.list(ctx, CollectionPrivate, KindPrivate)
}

func (r *storeRepository) list(ctx context.Context, collection string, kind Kind) ([]Offer, error) {
	docs, err := r.store.ListDocuments(ctx, collection)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list catalog", "collection", collection, "error", err)
		return nil, err
	}

	offers := make([]Offer, 0, len(docs))
	for _, doc := range docs {
		var o Offer
		if err := docstore.Decode(doc, &o); err != nil {
			return nil, err
		}
		o.ID = doc.ID
		o.Kind = kind
		offers = append(offers, o)
	}
	return offers, nil
}

func (r *storeRepository) Get(ctx context.Context, id string) (Offer, error) {
	doc, err := r.store.GetDocument(ctx, CollectionBank, id)
	kind := KindBank
	if errors.Is(err, apperrors.ErrNotFound) {
		doc, err = r.store.GetDocument(ctx, CollectionPrivate, id)
		kind = KindPrivate
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return Offer{}, fmt.Errorf("%w: offer %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return Offer{}, err
	}

	var o Offer
	if err := docstore.Decode(doc, &o); err != nil {
		return Offer{}, err
	}
	o.ID = doc.ID
	o.Kind = kind
	return o, nil
}
