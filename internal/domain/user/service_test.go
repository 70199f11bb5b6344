package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"credit-portal/internal/domain/user"
	"credit-portal/internal/pkg/apperrors"
)

func setupTest() (*user.MockRepository, user.Service) {
	mockRepo := new(user.MockRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := user.NewService(mockRepo, nil, logger)
	return mockRepo, service
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("FindByEmail", ctx, "new@example.com").
			Return(user.User{}, apperrors.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(u *user.User) bool {
			hashOK := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) == nil
			match := u.Email == "new@example.com" &&
				u.FullName == "New User" &&
				u.Role == user.RoleUser &&
				hashOK &&
				len(u.CreditIDs) == 0 &&
				!u.CreatedAt.IsZero()
			if match {
				u.ID = "user-1"
			}
			return match
		})).Return(nil).Once()

		got, err := service.Register(ctx, "  New@Example.COM ", "secret123", " New User ", "+380501112233")

		require.NoError(t, err)
		assert.Equal(t, "user-1", got.ID)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Equal(t, "New User", got.FullName)
		assert.Equal(t, user.RoleUser, got.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Email Taken", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("FindByEmail", ctx, "taken@example.com").
			Return(user.User{ID: "user-1", Email: "taken@example.com"}, nil).Once()

		_, err := service.Register(ctx, "taken@example.com", "secret123", "Some User", "")
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Invalid Email", func(t *testing.T) {
		mockRepo, service := setupTest()

		_, err := service.Register(ctx, "not-an-email", "secret123", "Some User", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Error - Short Password", func(t *testing.T) {
		mockRepo, service := setupTest()

		_, err := service.Register(ctx, "ok@example.com", "short", "Some User", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Missing Name", func(t *testing.T) {
		_, service := setupTest()

		_, err := service.Register(ctx, "ok@example.com", "secret123", "   ", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := user.User{
		ID:           "user-1",
		Email:        "known@example.com",
		FullName:     "Known User",
		Role:         user.RoleUser,
		PasswordHash: string(hash),
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByEmail", ctx, "known@example.com").Return(stored, nil).Once()

		got, err := service.Authenticate(ctx, "Known@Example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.ID)
		assert.Equal(t, "Known User", got.FullName)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Wrong Password", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByEmail", ctx, "known@example.com").Return(stored, nil).Once()

		_, err := service.Authenticate(ctx, "known@example.com", "wrong-pass")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error - Unknown Email", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByEmail", ctx, "ghost@example.com").
			Return(user.User{}, apperrors.ErrNotFound).Once()

		_, err := service.Authenticate(ctx, "ghost@example.com", "secret123")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestUserService_AttachCredit(t *testing.T) {
	ctx := context.Background()
	mockRepo, service := setupTest()

	mockRepo.On("AppendCreditID", ctx, "user-1", "loan-1").Return(nil).Once()

	require.NoError(t, service.AttachCredit(ctx, "user-1", "loan-1"))
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()
	mockRepo, service := setupTest()

	mockRepo.On("Get", ctx, "missing").Return(user.User{}, apperrors.ErrNotFound).Once()

	_, err := service.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
