package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sanyister/SubjectTeacherApi/internal/api/middleware"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/ports"
)

type stubAuthService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn     func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	initRolesFn func(ctx context.Context) error
	initUsersFn func(ctx context.Context) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) InitRoles(ctx context.Context) error { return s.initRolesFn(ctx) }
func (s *stubAuthService) InitUsers(ctx context.Context) error { return s.initUsersFn(ctx) }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const registerBody = `{
	"username": "alice",
	"email": "a@x.com",
	"password": "P@ssw0rd",
	"name": "Alice",
	"date_of_birth": "1999-03-03",
	"neptun_code": "ABC123",
	"department": "IT"
}`

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "a@x.com" || in.NeptunCode != "ABC123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if !in.DateOfBirth.Equal(time.Date(1999, time.March, 3, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected dob: %v", in.DateOfBirth)
			}
			return &domain.User{Username: in.Username, Email: in.Email}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/register", registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/register", registerBody)
	_ = h.Register(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"missing fields", `{"username": "alice"}`},
		{"bad email", `{"username":"alice","email":"nope","password":"P@ssw0rd","name":"A","date_of_birth":"1999-03-03"}`},
		{"short password", `{"username":"alice","email":"a@x.com","password":"abc","name":"A","date_of_birth":"1999-03-03"}`},
		{"bad date", `{"username":"alice","email":"a@x.com","password":"P@ssw0rd","name":"A","date_of_birth":"03/03/1999"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON(e, "/auth/register", tc.body)
			_ = h.Register(c)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	expiry := time.Now().UTC().Add(4 * time.Hour).Truncate(time.Second)
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
			if username != "alice" || password != "P@ssw0rd" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.LoginResult{Token: "token123", Expiration: expiry}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", `{"username":"alice","password":"P@ssw0rd"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Token      string    `json:"token"`
		Expiration time.Time `json:"expiration"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" {
		t.Fatalf("token = %q", resp.Token)
	}
	if !resp.Expiration.Equal(expiry) {
		t.Fatalf("expiration = %v, want %v", resp.Expiration, expiry)
	}
}

func TestAuthHandler_Login_UniformUnauthorized(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	// Same outcome and body regardless of which credential part was wrong.
	var bodies []string
	for _, body := range []string{
		`{"username":"ghost","password":"P@ssw0rd"}`,
		`{"username":"alice","password":"wrong"}`,
	} {
		c, rec := postJSON(e, "/auth/login", body)
		_ = h.Login(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("responses differ: %q vs %q", bodies[0], bodies[1])
	}
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrTooManyAttempts
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", `{"username":"alice","password":"P@ssw0rd"}`)
	_ = h.Login(c)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, rec := postJSON(e, "/auth/logout", "")
	c.Set(middleware.ClaimsKey, &domain.AuthClaims{Username: "alice"})
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout_NoClaims(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := postJSON(e, "/auth/logout", "")
	err := h.Logout(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_InitEndpoints(t *testing.T) {
	e := newEcho()
	rolesCalls, usersCalls := 0, 0
	stub := &stubAuthService{
		initRolesFn: func(context.Context) error { rolesCalls++; return nil },
		initUsersFn: func(context.Context) error { usersCalls++; return nil },
	}
	h := NewAuthHandler(stub)

	// Both endpoints are safe to hit repeatedly.
	for i := 0; i < 2; i++ {
		c, rec := postJSON(e, "/auth/init-roles", "")
		if err := h.InitRoles(c); err != nil {
			t.Fatalf("InitRoles: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		c, rec = postJSON(e, "/auth/init-users", "")
		if err := h.InitUsers(c); err != nil {
			t.Fatalf("InitUsers: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
	if rolesCalls != 2 || usersCalls != 2 {
		t.Fatalf("calls = %d/%d", rolesCalls, usersCalls)
	}
}
