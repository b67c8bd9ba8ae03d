package ports

import (
	"context"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
)

// AuthRepository is the credential store: it owns accounts, password hashes
// and role assignments. Uniqueness of username and email is enforced at the
// storage layer; the application-level pre-check in the registration flow is
// an optimization, not the arbiter.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// ExistsByUsernameOrEmail reports whether any account already holds the
	// given username or the given email.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// EnsureRole creates the named role when absent. Idempotent.
	EnsureRole(ctx context.Context, name string) error
	ListRoles(ctx context.Context, username string) ([]string, error)
	// AssignRole grants the named role to the user. Assigning a role the
	// user already holds is a no-op.
	AssignRole(ctx context.Context, username, role string) error
}
