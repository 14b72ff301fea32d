package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Enroll(ctx context.Context, req service.EnrollRequest) (*models.EnrollmentDetail, error)
	Drop(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Update(ctx context.Context, id string, req service.UpdateEnrollmentRequest) (*models.EnrollmentDetail, error)
	Delete(ctx context.Context, id string) error
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param course_id query string false "Filter by course"
// @Param status query string false "enrolled, dropped or completed"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	ids, ok := idQueries(c, "student_id", "course_id")
	if !ok {
		return
	}
	filter := models.EnrollmentFilter{
		StudentID:   ids["student_id"],
		CourseID:    ids["course_id"],
		Status:      models.EnrollmentStatus(c.Query("status")),
		PageRequest: pageRequest(c),
	}
	items, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listed("enrollments", items, pagination), "")
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "enrollment")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment, "")
}

// Create godoc
// @Summary Enroll a student into a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment, "student enrolled")
}

// Update godoc
// @Summary Drop, complete or annotate an enrollment
// @Description action=drop or action=complete with grade; status=completed with grade is accepted as a shortcut and status=enrolled is rejected. Without either only notes change.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateEnrollmentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "enrollment")
	if !ok {
		return
	}
	var req service.UpdateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment, "enrollment updated")
}

// Drop godoc
// @Summary Drop an enrollment, keeping the row
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	id, ok := idParam(c, "enrollment")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Drop(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment, "enrollment dropped")
}

// Purge godoc
// @Summary Permanently delete a dropped or completed enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enrollments/{id}/purge [delete]
func (h *EnrollmentHandler) Purge(c *gin.Context) {
	id, ok := idParam(c, "enrollment")
	if !ok {
		return
	}
	if err := h.enrollments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "enrollment deleted")
}
