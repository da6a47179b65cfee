package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
)

// StudentHandler handles HTTP requests for student records.
type StudentHandler struct {
	service ports.StudentService
	now     func() time.Time
}

func NewStudentHandler(service ports.StudentService) *StudentHandler {
	return &StudentHandler{service: service, now: time.Now}
}

// List handles GET /v1/students.
//
// @Summary      List students
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  studentListResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/students [get]
func (h *StudentHandler) List(c echo.Context) error {
	students, err := h.service.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentListResponse(students))
}

// Get handles GET /v1/students/:id.
//
// @Summary      Get a student
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Student id"
// @Success      200  {object}  studentResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/students/{id} [get]
func (h *StudentHandler) Get(c echo.Context) error {
	s, err := h.service.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentResponse(s))
}

// Create handles POST /v1/students. The record is normalized before it is stored and
// the student gets a portal account.
//
// @Summary      Create a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      studentRequest  true  "Student record"
// @Success      201   {object}  studentResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/students [post]
func (h *StudentHandler) Create(c echo.Context) error {
	var req studentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	saved, err := h.service.Save(c.Request().Context(), toStudent(req, h.now().Year()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStudentResponse(saved))
}

// Update handles PUT /v1/students/:id.
//
// @Summary      Update a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Student id"
// @Param        body  body      studentRequest  true  "Student record"
// @Success      200   {object}  studentResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/students/{id} [put]
func (h *StudentHandler) Update(c echo.Context) error {
	var req studentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.service.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	s := toStudent(req, h.now().Year())
	s.ID = existing.ID
	s.CreatedAt = existing.CreatedAt

	saved, err := h.service.Save(ctx, s)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentResponse(saved))
}

// CreateBatch handles POST /v1/students/batch. Nothing is stored unless every record
// passes normalization.
//
// @Summary      Create students in bulk
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      batchStudentRequest  true  "Student records"
// @Success      201   {object}  studentListResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/students/batch [post]
func (h *StudentHandler) CreateBatch(c echo.Context) error {
	var req batchStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	year := h.now().Year()
	batch := make([]*domain.Student, 0, len(req.Students))
	for _, r := range req.Students {
		batch = append(batch, toStudent(r, year))
	}

	saved, err := h.service.SaveAll(c.Request().Context(), batch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStudentListResponse(saved))
}

// Delete handles DELETE /v1/students/:id.
//
// @Summary      Delete a student
// @Tags         students
// @Security     BearerAuth
// @Param        id   path  string  true  "Student id"
// @Success      204
// @Router       /v1/students/{id} [delete]
func (h *StudentHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteByID(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReconcileAccounts handles POST /v1/admin/accounts/reconcile.
//
// @Summary      Backfill portal accounts
// @Description  Ensures every stored student has a portal account with the student role.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ReconcileReport
// @Failure      403  {object}  map[string]string
// @Router       /v1/admin/accounts/reconcile [post]
func (h *StudentHandler) ReconcileAccounts(c echo.Context) error {
	report, err := h.service.ReconcileAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
