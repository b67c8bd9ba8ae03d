package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
)

const defaultTokenTTL = 4 * time.Hour

// TokenService mints and verifies HS256-signed JWTs. The secret, issuer and
// audience are fixed at construction and safely shared across concurrent
// requests; both Issue and Verify are pure computations.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenService builds a TokenService. A missing secret is a fatal
// configuration error: callers must treat it as a startup failure, never a
// per-request condition. A non-positive ttl falls back to 4 hours.
func NewTokenService(secret, issuer, audience string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token service: signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// buildClaims assembles the claims set for an authenticated user: subject
// name, a fresh jti so repeated logins never collide, the base-user flag as
// a string, and one entry per held role. Pure construction, no side effects
// beyond drawing the random token ID.
func buildClaims(user *domain.User, roles []string, issuer, audience string, now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   user.Username,
		"jti":   uuid.NewString(),
		"actor": strconv.FormatBool(user.IsUser),
		"roles": roles,
		"iss":   issuer,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
}

// Issue signs a token for the user with its role memberships as of now.
// Returns the compact token and its expiry.
func (s *TokenService) Issue(user *domain.User, roles []string, now time.Time) (string, time.Time, error) {
	claims := buildClaims(user, roles, s.issuer, s.audience, now, s.ttl)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, now.Add(s.ttl), nil
}

// Verify validates signature, validity window, issuer and audience, and
// returns the embedded claims. Every failure maps to domain.ErrInvalidToken
// so callers cannot leak which check tripped.
func (s *TokenService) Verify(raw string, now time.Time) (*domain.AuthClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.AuthClaims{
		Username: sub,
		Roles:    claimRoles(claims),
	}
	out.TokenID, _ = claims["jti"].(string)
	out.Actor, _ = claims["actor"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Expiry = exp.Time
	}
	return out, nil
}

// claimRoles extracts the roles claim, which json decoding hands back as
// []interface{}.
func claimRoles(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
