package ports

import (
	"time"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
)

// TokenService mints and verifies the signed bearer tokens issued at login.
// Both operations are pure computations; nothing is persisted server-side,
// so an issued token stays valid until its expiry regardless of later
// account changes.
type TokenService interface {
	// Issue signs a token for the user with its current role memberships,
	// using now as the issuance instant. Returns the compact token and its
	// expiry.
	Issue(user *domain.User, roles []string, now time.Time) (string, time.Time, error)
	// Verify checks signature, validity window, issuer and audience, and
	// returns the embedded claims. Any failure yields
	// domain.ErrInvalidToken.
	Verify(raw string, now time.Time) (*domain.AuthClaims, error)
}
