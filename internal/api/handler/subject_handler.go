package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/ports"
)

// SubjectHandler exposes plain CRUD over subjects through the generic
// repository. Reads are open to any authenticated user; writes are gated to
// Admin by the router.
type SubjectHandler struct {
	repo ports.Repository[domain.Subject]
}

func NewSubjectHandler(repo ports.Repository[domain.Subject]) *SubjectHandler {
	return &SubjectHandler{repo: repo}
}

type subjectRequest struct {
	Name        string `json:"name" validate:"required"`
	NeptunCode  string `json:"neptun_code" validate:"required"`
	Credits     int    `json:"credits" validate:"gt=0"`
	Department  string `json:"department"`
	TeacherName string `json:"teacher_name"`
}

// List returns all subjects that are not soft-deleted.
//
// @Summary      List subjects
// @Tags         subjects
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  domain.Subject
// @Router       /subjects [get]
func (h *SubjectHandler) List(c echo.Context) error {
	subjects, err := h.repo.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subjects)
}

// Get returns a single subject by id.
//
// @Summary      Get a subject
// @Tags         subjects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Subject ID"
// @Success      200  {object}  domain.Subject
// @Failure      404  {object}  map[string]string
// @Router       /subjects/{id} [get]
func (h *SubjectHandler) Get(c echo.Context) error {
	subject, err := h.repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subject)
}

// Create adds a new subject. Admin only.
//
// @Summary      Create a subject
// @Tags         subjects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      subjectRequest  true  "Subject"
// @Success      201   {object}  domain.Subject
// @Failure      400   {object}  map[string]string
// @Router       /subjects [post]
func (h *SubjectHandler) Create(c echo.Context) error {
	var req subjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	now := time.Now().UTC()
	created, err := h.repo.Create(c.Request().Context(), &domain.Subject{
		Name:        req.Name,
		NeptunCode:  req.NeptunCode,
		Credits:     req.Credits,
		Department:  req.Department,
		TeacherName: req.TeacherName,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces a subject's mutable fields. Admin only.
//
// @Summary      Update a subject
// @Tags         subjects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Subject ID"
// @Param        body  body      subjectRequest  true  "Subject"
// @Success      200   {object}  domain.Subject
// @Failure      404   {object}  map[string]string
// @Router       /subjects/{id} [put]
func (h *SubjectHandler) Update(c echo.Context) error {
	var req subjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := h.repo.Update(c.Request().Context(), c.Param("id"), &domain.Subject{
		Name:        req.Name,
		NeptunCode:  req.NeptunCode,
		Credits:     req.Credits,
		Department:  req.Department,
		TeacherName: req.TeacherName,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a subject. Soft delete by default, physical removal with
// ?hard=true. Admin only.
//
// @Summary      Delete a subject
// @Tags         subjects
// @Security     BearerAuth
// @Param        id    path   string  true   "Subject ID"
// @Param        hard  query  bool    false  "Physically remove the record"
// @Success      204
// @Failure      404   {object}  map[string]string
// @Router       /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var err error
	if c.QueryParam("hard") == "true" {
		err = h.repo.Delete(ctx, id)
	} else {
		_, err = h.repo.DeleteSoft(ctx, id)
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
