package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/jobboard/internal/auth"
	"github.com/spec-kit/jobboard/internal/domain"
	"github.com/spec-kit/jobboard/internal/events"
	"github.com/spec-kit/jobboard/internal/repository"
	apperrors "github.com/spec-kit/jobboard/pkg/util"
)

// Accepted plaintext password lengths. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID string, role domain.Role) (string, time.Time, error)
}

// AuthService coordinates registration, login and credential updates.
type AuthService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	dummyHash  string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     TokenIssuer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// UserPatch describes a profile update. A password change requires the
// current password.
type UserPatch struct {
	Name            *string
	Password        *string
	CurrentPassword string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) (*AuthService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := deps.BcryptCost
	if cost == 0 {
		cost = auth.DefaultBcryptCost
	}
	// Compared against on unknown emails so that both login failures cost
	// one bcrypt comparison.
	dummy, err := auth.HashPassword("unused-login-placeholder", cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cost,
		dummyHash:  dummy,
	}, nil
}

// Register creates a new account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)
	role := input.Role
	if role == "" {
		role = domain.RoleCandidate
	}

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("name, email, password required", map[string]any{"missing": missing})
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role must be recruiter or candidate", map[string]any{"role": string(role)})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup email: %w", err))
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail()
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("create user: %w", err))
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.EventUserRegistered, user.ID, user.ID,
		events.UserRegisteredPayload{Email: user.Email, Role: string(user.Role)})
	return result, nil
}

// Login authenticates by email and password. Missing fields, unknown emails
// and wrong passwords all return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = auth.ComparePassword(s.dummyHash, password)
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup email: %w", err))
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.NewInvalidCredentials()
	}
	return s.issue(user)
}

// VerifyPassword reports whether candidate matches the stored hash.
func (s *AuthService) VerifyPassword(user *domain.User, candidate string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return auth.ComparePassword(user.PasswordHash, candidate) == nil
}

// GetUser loads an account by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup user: %w", err))
	}
	return user, nil
}

// UpdateUser applies a profile patch. The password hash is recomputed only
// when a new password is supplied.
func (s *AuthService) UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name == nil && patch.Password == nil {
		return user, nil
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		user.Name = name
	}

	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		if !s.VerifyPassword(user, patch.CurrentPassword) {
			return nil, apperrors.NewInvalidCredentials()
		}
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("update user: %w", err))
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue token: %w", err))
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength), nil)
	}
	if len(password) > MaxPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength), nil)
	}
	return nil
}
