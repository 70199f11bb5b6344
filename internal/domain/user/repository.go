package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"credit-portal/internal/docstore"
	"credit-portal/internal/pkg/apperrors"
)

const CollectionUsers = "users"

type Repository interface {
	Create(ctx context.Context, u *User) error

	Get(ctx context.Context, id string) (User, error)

	// FindByEmail returns apperrors.ErrNotFound when no account exists.
	FindByEmail(ctx context.Context, email string) (User, error)

	// AppendCreditID adds a loan id to the user's creditIds unless it is
	// already present.
	AppendCreditID(ctx context.Context, userID, loanID string) error
}

type storeRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewRepository(store docstore.Store, logger *slog.Logger) Repository {
	return &storeRepository{store: store, logger: logger.With("component", "UserRepository")}
}

func (r *storeRepository) Create(ctx context.Context, u *User) error {
	fields, err := docstore.Fields(u)
	if err != nil {
		return err
	}

	id, err := r.store.AddDocument(ctx, CollectionUsers, fields)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create user document", "error", err)
		return err
	}
	u.ID = id
	return nil
}

func (r *storeRepository) Get(ctx context.Context, id string) (User, error) {
	doc, err := r.store.GetDocument(ctx, CollectionUsers, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return User{}, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return User{}, err
	}

	var u User
	if err := docstore.Decode(doc, &u); err != nil {
		return User{}, err
	}
	u.ID = doc.ID
	return u, nil
}

func (r *storeRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	docs, err := r.store.QueryDocuments(ctx, CollectionUsers, "email", email)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query user by email", "error", err)
		return User{}, err
	}
	if len(docs) == 0 {
		return User{}, fmt.Errorf("%w: no account for email", apperrors.ErrNotFound)
	}

	var u User
	if err := docstore.Decode(docs[0], &u); err != nil {
		return User{}, err
	}
	u.ID = docs[0].ID
	return u, nil
}

func (r *storeRepository) AppendCreditID(ctx context.Context, userID, loanID string) error {
	return r.store.ArrayUnion(ctx, CollectionUsers, userID, "creditIds", loanID)
}
