package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/ports"
)

// stubAuthRepo is an in-memory credential store enforcing the same
// uniqueness rules as the Mongo indexes.
type stubAuthRepo struct {
	users     map[string]*domain.User
	roles     map[string]struct{}
	userRoles map[string]map[string]struct{}
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		users:     make(map[string]*domain.User),
		roles:     make(map[string]struct{}),
		userRoles: make(map[string]map[string]struct{}),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	copy.ID = user.Username
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) EnsureRole(_ context.Context, name string) error {
	r.roles[name] = struct{}{}
	return nil
}

func (r *stubAuthRepo) ListRoles(_ context.Context, username string) ([]string, error) {
	roles := make([]string, 0)
	for role := range r.userRoles[username] {
		roles = append(roles, role)
	}
	return roles, nil
}

func (r *stubAuthRepo) AssignRole(_ context.Context, username, role string) error {
	if r.userRoles[username] == nil {
		r.userRoles[username] = make(map[string]struct{})
	}
	r.userRoles[username][role] = struct{}{}
	return nil
}

func newTestAuthService(t *testing.T, repo ports.AuthRepository) *AuthService {
	t.Helper()
	return NewAuthService(repo, newTestTokenService(t), nil, zerolog.Nop())
}

func registerInput(username, email string) ports.RegisterInput {
	return ports.RegisterInput{
		Username:    username,
		Email:       email,
		Password:    "P@ssw0rd",
		Name:        "Test Person",
		DateOfBirth: time.Date(1999, time.March, 3, 0, 0, 0, 0, time.UTC),
		NeptunCode:  "ABC123",
		Department:  "IT",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	user, err := svc.Register(context.Background(), registerInput("alice", "a@x.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user == nil {
		t.Fatalf("expected user, got nil")
	}
	if user.PasswordHash == "P@ssw0rd" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("P@ssw0rd")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !user.IsUser {
		t.Fatalf("expected base-user flag set on registration")
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc := newTestAuthService(t, newStubAuthRepo())

	for _, in := range []ports.RegisterInput{
		{Email: "a@x.com", Password: "pw"},
		{Username: "alice", Password: "pw"},
		{Username: "alice", Email: "a@x.com"},
	} {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
}

func TestAuthService_Register_Conflict(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput("alice", "a@x.com")); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Same username, different email.
	if _, err := svc.Register(context.Background(), registerInput("alice", "b@x.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for username conflict, got %v", err)
	}
	// Same email, different username.
	if _, err := svc.Register(context.Background(), registerInput("bob", "a@x.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for email conflict, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("conflicting registration must not create an account, have %d", len(repo.users))
	}

	// Distinct username and email registers fine.
	if _, err := svc.Register(context.Background(), registerInput("bob", "b@x.com")); err != nil {
		t.Fatalf("distinct Register: %v", err)
	}
}

func TestAuthService_Register_StoreIsArbiter(t *testing.T) {
	// The pre-check passing does not make creation safe: a concurrent
	// duplicate surfaces as a duplicate-key error from the store and must
	// map to the same conflict outcome.
	repo := &racingAuthRepo{stubAuthRepo: newStubAuthRepo()}
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput("alice", "a@x.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists from storage layer, got %v", err)
	}
}

// racingAuthRepo simulates a duplicate slipping in between the existence
// pre-check and the insert.
type racingAuthRepo struct {
	*stubAuthRepo
}

func (r *racingAuthRepo) ExistsByUsernameOrEmail(context.Context, string, string) (bool, error) {
	return false, nil
}

func (r *racingAuthRepo) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, domain.ErrUserExists
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput("carol", "c@x.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := repo.AssignRole(context.Background(), "carol", domain.RoleUser); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}

	result, err := svc.Login(context.Background(), "carol", "P@ssw0rd")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}
	if !result.Expiration.After(time.Now()) {
		t.Fatalf("expiration %v not in the future", result.Expiration)
	}

	claims, err := newTestTokenService(t).Verify(result.Token, time.Now().UTC())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Username != "carol" {
		t.Fatalf("subject = %q, want carol", claims.Username)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleUser {
		t.Fatalf("roles = %v, want [User]", claims.Roles)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput("dave", "d@x.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Unknown user and wrong password must be indistinguishable.
	_, unknownErr := svc.Login(context.Background(), "ghost", "P@ssw0rd")
	_, wrongPwErr := svc.Login(context.Background(), "dave", "wrong")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", unknownErr)
	}
	if !errors.Is(wrongPwErr, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", wrongPwErr)
	}
	if unknownErr.Error() != wrongPwErr.Error() {
		t.Fatalf("failure shapes differ: %q vs %q", unknownErr, wrongPwErr)
	}
}

func TestAuthService_Login_RepeatedLoginsIndependent(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput("erin", "e@x.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	first, err := svc.Login(context.Background(), "erin", "P@ssw0rd")
	if err != nil {
		t.Fatalf("first Login: %v", err)
	}
	second, err := svc.Login(context.Background(), "erin", "P@ssw0rd")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if first.Token == second.Token {
		t.Fatalf("expected distinct tokens per login")
	}

	// The earlier token still verifies after the later login.
	if _, err := newTestTokenService(t).Verify(first.Token, time.Now().UTC()); err != nil {
		t.Fatalf("first token no longer valid: %v", err)
	}
}

// blockedThrottle always reports the username as exhausted.
type blockedThrottle struct{}

func (blockedThrottle) TooMany(context.Context, string) (bool, error) { return true, nil }
func (blockedThrottle) RecordFailure(context.Context, string) error   { return nil }
func (blockedThrottle) Reset(context.Context, string) error           { return nil }

// brokenThrottle fails every call, simulating a Redis outage.
type brokenThrottle struct{}

func (brokenThrottle) TooMany(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenThrottle) RecordFailure(context.Context, string) error { return errors.New("redis down") }
func (brokenThrottle) Reset(context.Context, string) error         { return errors.New("redis down") }

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubAuthRepo()
	svc := NewAuthService(repo, newTestTokenService(t), blockedThrottle{}, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("frank", "f@x.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(context.Background(), "frank", "P@ssw0rd"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleOutageDegradesOpen(t *testing.T) {
	repo := newStubAuthRepo()
	svc := NewAuthService(repo, newTestTokenService(t), brokenThrottle{}, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("grace", "g@x.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(context.Background(), "grace", "P@ssw0rd"); err != nil {
		t.Fatalf("login should succeed despite throttle outage, got %v", err)
	}
}

func TestAuthService_InitRoles_Idempotent(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	for i := 0; i < 2; i++ {
		if err := svc.InitRoles(context.Background()); err != nil {
			t.Fatalf("InitRoles run %d: %v", i+1, err)
		}
	}
	if len(repo.roles) != len(domain.SeededRoles) {
		t.Fatalf("have %d roles, want %d", len(repo.roles), len(domain.SeededRoles))
	}
	for _, name := range domain.SeededRoles {
		if _, ok := repo.roles[name]; !ok {
			t.Fatalf("role %s not seeded", name)
		}
	}
}

func TestAuthService_InitUsers_Idempotent(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	for i := 0; i < 2; i++ {
		if err := svc.InitUsers(context.Background()); err != nil {
			t.Fatalf("InitUsers run %d: %v", i+1, err)
		}
	}

	if len(repo.users) != 2 {
		t.Fatalf("have %d seeded users, want 2", len(repo.users))
	}

	adminRoles, _ := repo.ListRoles(context.Background(), "admin")
	if len(adminRoles) != 1 || adminRoles[0] != domain.RoleAdmin {
		t.Fatalf("admin roles = %v", adminRoles)
	}
	userRoles, _ := repo.ListRoles(context.Background(), "user")
	if len(userRoles) != 1 || userRoles[0] != domain.RoleUser {
		t.Fatalf("user roles = %v", userRoles)
	}

	// The seeded accounts can actually log in.
	if _, err := svc.Login(context.Background(), "admin", "Admin?123"); err != nil {
		t.Fatalf("seeded admin login: %v", err)
	}
}

func TestAuthService_Scenario(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("alice", "a@x.com")); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := svc.Register(ctx, registerInput("alice", "other@x.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("conflict created an account")
	}

	if err := repo.AssignRole(ctx, "alice", domain.RoleUser); err != nil {
		t.Fatalf("assign role: %v", err)
	}

	result, err := svc.Login(ctx, "alice", "P@ssw0rd")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := newTestTokenService(t).Verify(result.Token, time.Now().UTC())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("subject = %q", claims.Username)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// alice holds only User; an Admin-gated check must fail.
	if claims.HasRole(domain.RoleAdmin) {
		t.Fatalf("alice must not hold Admin")
	}
	if !claims.HasRole(domain.RoleUser) {
		t.Fatalf("alice must hold User")
	}
}
