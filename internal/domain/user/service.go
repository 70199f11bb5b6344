package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"credit-portal/internal/event"
	"credit-portal/internal/pkg/apperrors"
)

const minPasswordLength = 6

type Service interface {
	// Register creates an account. The email must not already be taken;
	// the password is stored only as a bcrypt hash.
	Register(ctx context.Context, email, password, fullName, phone string) (SessionUser, error)

	// Authenticate verifies credentials. Unknown email and wrong
	// password both return apperrors.ErrUnauthorized, never revealing
	// which one failed.
	Authenticate(ctx context.Context, email, password string) (SessionUser, error)

	GetUser(ctx context.Context, userID string) (User, error)

	// AttachCredit records a loan id on the user's account.
	AttachCredit(ctx context.Context, userID, loanID string) error
}

var _ Service = (*userService)(nil)

type userService struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, pub event.Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("user repository cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	return &userService{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "userService")),
		now:    time.Now,
	}
}

func (s *userService) Register(ctx context.Context, email, password, fullName, phone string) (SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)

	if email == "" || !strings.Contains(email, "@") {
		return SessionUser{}, apperrors.NewValidationError("email", "a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return SessionUser{}, apperrors.NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if fullName == "" {
		return SessionUser{}, apperrors.NewValidationError("fullName", "full name is required")
	}

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		s.logger.WarnContext(ctx, "Registration rejected, email already taken")
		return SessionUser{}, fmt.Errorf("%w: an account with this email already exists", apperrors.ErrAlreadyExists)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return SessionUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return SessionUser{}, fmt.Errorf("%w: hashing password", apperrors.ErrInternalServer)
	}

	u := &User{
		Email:        email,
		FullName:     fullName,
		Phone:        strings.TrimSpace(phone),
		Role:         RoleUser,
		PasswordHash: string(hash),
		CreditIDs:    []string{},
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to create user", slog.Any("error", err))
		return SessionUser{}, err
	}

	evt := event.UserRegisteredEvent{UserID: u.ID, Email: u.Email, Timestamp: s.now()}
	if pubErr := s.pub.PublishUserRegistered(ctx, evt); pubErr != nil {
		s.logger.ErrorContext(ctx, "User registered, but failed to publish event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully registered user", slog.String("userID", u.ID))
	return u.Session(), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "Login failed, unknown email")
		return SessionUser{}, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return SessionUser{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Login failed, wrong password", slog.String("userID", u.ID))
		return SessionUser{}, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	s.logger.InfoContext(ctx, "User authenticated", slog.String("userID", u.ID))
	return u.Session(), nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *userService) AttachCredit(ctx context.Context, userID, loanID string) error {
	return s.repo.AppendCreditID(ctx, userID, loanID)
}
