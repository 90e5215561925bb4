package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/leaselink/leaselink/internal/auth"
	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/internal/event"
	"github.com/leaselink/leaselink/internal/repository"
	apperrors "github.com/leaselink/leaselink/pkg/errors"
	"github.com/leaselink/leaselink/pkg/validate"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// resetTokenBytes is the entropy of a password reset token in bytes.
const resetTokenBytes = 32

// AuthService implements the business logic for account and session operations.
type AuthService struct {
	userRepo      repository.UserRepository
	resetTokens   repository.ResetTokenStore
	jwtManager    *auth.JWTManager
	producer      *event.Producer
	resetTokenTTL time.Duration
	logger        *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	resetTokens repository.ResetTokenStore,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	resetTokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		resetTokens:   resetTokens,
		jwtManager:    jwtManager,
		producer:      producer,
		resetTokenTTL: resetTokenTTL,
		logger:        logger,
	}
}

// SignupInput holds the parameters for creating a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// LoginInput holds the parameters for authenticating a user.
// Role is the role the caller claims to hold; a mismatch is treated the same
// as a wrong password so account roles cannot be probed.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// AuthResult pairs an authenticated user with their access token.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Signup creates a new account, hashes the password, and returns the user with
// a signed access token.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if !validate.Email(input.Email) {
		return nil, apperrors.InvalidInput("invalid email address")
	}
	if !validate.Password(input.Password) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", validate.MinPasswordLength))
	}
	if !validate.Phone(input.Phone) {
		return nil, apperrors.InvalidInput("phone must be exactly 10 digits")
	}
	if !domain.IsValidRole(input.Role) {
		return nil, apperrors.InvalidInput("role must be owner or tenant")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Phone:        input.Phone,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", user.Role),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user with email, password, and role.
// Unknown email, wrong password, and role mismatch all produce the same
// unauthorized error so none of them can be distinguished by a caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	if input.Role != "" && input.Role != user.Role {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the current account for the given user ID. The record is always
// re-fetched so revoked or changed accounts are reflected immediately.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Unauthorized("account no longer exists")
	}
	return user, nil
}

// ValidateToken checks a raw access token and returns its claims. It is used
// by the HTTP auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// ForgotPassword initiates a password reset. For a known account a short-lived
// token is stored and a reset event published; for an unknown email nothing
// happens. Both paths return nil so account existence is never revealed.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if !validate.Email(email) {
		return apperrors.InvalidInput("invalid email address")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.InfoContext(ctx, "password reset requested for unknown email",
			slog.String("email", email),
		)
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.resetTokens.Save(ctx, token, user.ID, s.resetTokenTTL); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	// Publish reset event (notification consumer delivers the email).
	if err := s.producer.PublishPasswordReset(ctx, user.ID, user.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", user.ID),
	)

	return nil
}

// ResetPassword redeems a reset token and replaces the account password.
// The token is consumed whether or not the update succeeds afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.InvalidInput("reset token is required")
	}
	if !validate.Password(newPassword) {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", validate.MinPasswordLength))
	}

	userID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired reset token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for password reset: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("user_id", user.ID),
	)

	return nil
}

// newResetToken returns a cryptographically random hex token.
func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
