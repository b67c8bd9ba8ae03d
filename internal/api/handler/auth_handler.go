package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sanyister/SubjectTeacherApi/internal/api/metrics"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/ports"
)

const dateOfBirthLayout = "2006-01-02"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Name        string `json:"name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	NeptunCode  string `json:"neptun_code"`
	Department  string `json:"department"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  registerRequest  true  "User registration details"
// @Success      201
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	dob, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date_of_birth must be YYYY-MM-DD"})
	}

	_, err = h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		DateOfBirth: dob,
		NeptunCode:  req.NeptunCode,
		Department:  req.Department,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid registration data"})
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.NoContent(http.StatusCreated)
}

// Login authenticates a user and returns a signed bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			// Unknown user and wrong password share this branch on purpose.
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many failed attempts"})
		default:
			return err
		}
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: result.Token, Expiration: result.Expiration})
}

// Logout acknowledges a logout. Tokens are stateless and there is no
// server-side session or revocation list, so a previously issued token
// stays valid until its expiry; clients discard it.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      200
// @Failure      401   {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// InitRoles seeds the default Admin and User roles. Idempotent bootstrap
// endpoint; deployments must fence it off outside environment setup.
//
// @Summary      Seed default roles
// @Tags         auth
// @Success      200
// @Failure      500   {object}  map[string]string
// @Router       /auth/init-roles [post]
func (h *AuthHandler) InitRoles(c echo.Context) error {
	if err := h.authService.InitRoles(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// InitUsers seeds one sample account per default role. Idempotent bootstrap
// endpoint.
//
// @Summary      Seed sample users
// @Tags         auth
// @Success      200
// @Failure      500   {object}  map[string]string
// @Router       /auth/init-users [post]
func (h *AuthHandler) InitUsers(c echo.Context) error {
	if err := h.authService.InitUsers(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
