package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/ports"
)

// LoginThrottle limits repeated failed login attempts per username. Backed
// by Redis in production; a nil throttle disables the check.
type LoginThrottle interface {
	TooMany(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AuthService implements registration, login and the bootstrap flows.
type AuthService struct {
	repo     ports.AuthRepository
	tokens   ports.TokenService
	throttle LoginThrottle
	log      zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, tokens ports.TokenService, throttle LoginThrottle, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, throttle: throttle, log: log}
}

// Register creates a new account after checking that neither the username
// nor the email is taken. The pre-check is racy by nature; the store's
// unique indexes are the real guarantee, so a duplicate-key error from
// Create maps to the same conflict outcome.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register precheck: %w", err)
	}
	if taken {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		DateOfBirth:  in.DateOfBirth,
		NeptunCode:   in.NeptunCode,
		Department:   in.Department,
		IsUser:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login authenticates the username/password pair and issues a token. An
// unknown username and a wrong password produce the identical
// ErrInvalidCredentials so the response never reveals which part failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttled(ctx, username) {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.denied(ctx, username)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.denied(ctx, username)
	}

	roles, err := s.repo.ListRoles(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	token, expiry, err := s.tokens.Issue(user, roles, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Msg("throttle reset failed")
		}
	}

	return &ports.LoginResult{Token: token, Expiration: expiry, User: user}, nil
}

// throttled asks the throttle whether this username is blocked. Throttle
// outages degrade open: a broken Redis must not lock everyone out.
func (s *AuthService) throttled(ctx context.Context, username string) bool {
	if s.throttle == nil {
		return false
	}
	blocked, err := s.throttle.TooMany(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Msg("throttle check failed, allowing attempt")
		return false
	}
	return blocked
}

// denied records a failed attempt and returns the uniform credential error.
func (s *AuthService) denied(ctx context.Context, username string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, username); err != nil {
			s.log.Warn().Err(err).Msg("throttle record failed")
		}
	}
	return domain.ErrInvalidCredentials
}

// InitRoles seeds the fixed role set. Safe to run any number of times.
func (s *AuthService) InitRoles(ctx context.Context) error {
	for _, name := range domain.SeededRoles {
		if err := s.repo.EnsureRole(ctx, name); err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
	}
	return nil
}

// sampleUsers are the accounts InitUsers guarantees, one per seeded role.
// Environment bootstrap only; the passwords are throwaway dev credentials.
var sampleUsers = []struct {
	input ports.RegisterInput
	role  string
}{
	{
		input: ports.RegisterInput{
			Username:    "admin",
			Email:       "admin@example.com",
			Password:    "Admin?123",
			Name:        "Sample Admin",
			DateOfBirth: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
			Department:  "IT",
		},
		role: domain.RoleAdmin,
	},
	{
		input: ports.RegisterInput{
			Username:    "user",
			Email:       "user@example.com",
			Password:    "User?123",
			Name:        "Sample User",
			DateOfBirth: time.Date(1995, time.June, 15, 0, 0, 0, 0, time.UTC),
			Department:  "General",
		},
		role: domain.RoleUser,
	},
}

// InitUsers seeds one account per seeded role and assigns the role.
// Re-running against an already seeded store changes nothing and reports no
// error.
func (s *AuthService) InitUsers(ctx context.Context) error {
	if err := s.InitRoles(ctx); err != nil {
		return err
	}

	for _, sample := range sampleUsers {
		_, err := s.Register(ctx, sample.input)
		if err != nil && !errors.Is(err, domain.ErrUserExists) {
			return fmt.Errorf("seed user %s: %w", sample.input.Username, err)
		}
		if err := s.repo.AssignRole(ctx, sample.input.Username, sample.role); err != nil {
			return fmt.Errorf("assign role %s to %s: %w", sample.role, sample.input.Username, err)
		}
	}
	return nil
}
