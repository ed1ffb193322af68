package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/travel-request-service/internal/auth"
	"github.com/spec-kit/travel-request-service/internal/config"
	"github.com/spec-kit/travel-request-service/internal/domain"
	"github.com/spec-kit/travel-request-service/internal/events"
	"github.com/spec-kit/travel-request-service/internal/repository"
	apperrors "github.com/spec-kit/travel-request-service/pkg/util"
)

const (
	maxNameLength     = 100
	maxEmailLength    = 100
	minPasswordLength = 6
)

// CodeGenerator produces a 6-digit numeric reset code. Injected so tests can
// make generation deterministic.
type CodeGenerator func() string

// DefaultCodeGenerator draws a uniformly random 6-digit code from crypto/rand.
func DefaultCodeGenerator() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// rand.Reader failing means the platform entropy source is broken
		panic(fmt.Sprintf("reset code generation: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// LoginResult carries the issued token alongside the user's profile fields.
type LoginResult struct {
	Token string
	Name  string
	Email string
	Role  domain.Role
}

// AuthService coordinates registration, login and password recovery flows.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	genCode    CodeGenerator
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	CodeGenerator CodeGenerator
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	genCode := deps.CodeGenerator
	if genCode == nil {
		genCode = DefaultCodeGenerator
	}
	return &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.JWTSecret,
			cfg.Auth.JWTIssuer,
			cfg.Auth.JWTAudience,
			cfg.Auth.AccessTokenTTL(),
		),
		genCode:    genCode,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Auth.ResetCodeTTL(),
	}
}

// Register creates a new user account with the requested role.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (string, error) {
	if len(name) > maxNameLength {
		return "", apperrors.NewValidationError("name exceeds 100 characters", nil)
	}
	if len(email) > maxEmailLength {
		return "", apperrors.NewValidationError("email exceeds 100 characters", nil)
	}
	if len(password) < minPasswordLength {
		return "", apperrors.NewValidationError("password must be at least 6 characters", nil)
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return "", apperrors.NewValidationError("role must be 'Requester' or 'Approver'", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return "", apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         parsedRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventUserRegistered,
		UserID: user.ID,
		Payload: events.UserRegisteredPayload{
			Email: user.Email,
			Role:  user.Role,
		},
	})
	return "User registered successfully", nil
}

// Login authenticates a user and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, _, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

// ForgotPassword stores a short-lived recovery code on the user record.
// The code rides the response body rather than an out-of-band channel.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperrors.NewNotFound("user", nil)
		}
		return "", apperrors.MapError(err)
	}

	code := s.genCode()
	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.users.SetResetCode(ctx, user.ID, code, expiresAt); err != nil {
		return "", apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventPasswordResetRequested,
		UserID: user.ID,
		Payload: events.PasswordResetRequestedPayload{
			Email:     user.Email,
			ExpiresAt: expiresAt,
		},
	})

	minutes := int(s.resetTTL / time.Minute)
	return fmt.Sprintf("Recovery code: %s (valid for %d minutes)", code, minutes), nil
}

// ResetPassword verifies the recovery code and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (string, error) {
	if len(newPassword) < minPasswordLength {
		return "", apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperrors.NewNotFound("user", nil)
		}
		return "", apperrors.MapError(err)
	}

	if user.ResetCode == nil || user.ResetCodeExpiresAt == nil ||
		*user.ResetCode != code || time.Now().After(*user.ResetCodeExpiresAt) {
		return "", apperrors.NewUnauthorized("invalid or expired reset code")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return "", apperrors.MapError(err)
	}
	return "Password updated successfully", nil
}

// ListUsers returns every user record. Authorization is enforced at the
// boundary; the service trusts the verified caller.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
