package ports

import (
	"context"
	"time"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
)

// RegisterInput carries the registration payload. The password arrives in
// plaintext and is hashed before anything touches the store.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Name        string
	DateOfBirth time.Time
	NeptunCode  string
	Department  string
}

// LoginResult is a freshly issued bearer token and its expiry.
type LoginResult struct {
	Token      string
	Expiration time.Time
	User       *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// InitRoles seeds the fixed role set. Idempotent.
	InitRoles(ctx context.Context) error
	// InitUsers seeds one sample account per seeded role. Idempotent.
	InitUsers(ctx context.Context) error
}
