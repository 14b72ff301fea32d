package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/pkg/response"
)

type borrowService interface {
	List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, *models.Pagination, error)
	ListOverdue(ctx context.Context, page models.PageRequest) ([]models.BorrowRecordDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.BorrowRecordDetail, error)
	Borrow(ctx context.Context, req service.BorrowRequest) (*models.BorrowRecordDetail, error)
	Update(ctx context.Context, id string, req service.UpdateBorrowRequest) (*models.BorrowRecordDetail, error)
	Delete(ctx context.Context, id string) error
	UpdateOverdueStatus(ctx context.Context) (int64, error)
}

// BorrowHandler exposes loan endpoints.
type BorrowHandler struct {
	borrows borrowService
}

// NewBorrowHandler constructs BorrowHandler.
func NewBorrowHandler(borrows borrowService) *BorrowHandler {
	return &BorrowHandler{borrows: borrows}
}

// List godoc
// @Summary List borrow records, newest first
// @Tags Borrows
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param book_id query string false "Filter by book"
// @Param status query string false "borrowed, returned, overdue or lost"
// @Param overdue_only query bool false "Only active loans past due"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /borrows [get]
func (h *BorrowHandler) List(c *gin.Context) {
	ids, ok := idQueries(c, "student_id", "book_id")
	if !ok {
		return
	}
	filter := models.BorrowFilter{
		StudentID:   ids["student_id"],
		BookID:      ids["book_id"],
		Status:      models.BorrowStatus(c.Query("status")),
		OverdueOnly: boolQuery(c, "overdue_only"),
		PageRequest: pageRequest(c),
	}
	records, pagination, err := h.borrows.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listed("borrow_records", records, pagination), "")
}

// Overdue godoc
// @Summary List overdue loans, most overdue first
// @Tags Borrows
// @Produce json
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /borrows/overdue [get]
func (h *BorrowHandler) Overdue(c *gin.Context) {
	records, pagination, err := h.borrows.ListOverdue(c.Request.Context(), pageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listed("borrow_records", records, pagination), "")
}

// Get godoc
// @Summary Get borrow record
// @Tags Borrows
// @Produce json
// @Param id path string true "Borrow record ID"
// @Success 200 {object} response.Envelope
// @Router /borrows/{id} [get]
func (h *BorrowHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "borrow record")
	if !ok {
		return
	}
	record, err := h.borrows.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record, "")
}

// Create godoc
// @Summary Lend a book to a student
// @Tags Borrows
// @Accept json
// @Produce json
// @Param payload body service.BorrowRequest true "Borrow payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /borrows [post]
func (h *BorrowHandler) Create(c *gin.Context) {
	var req service.BorrowRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.borrows.Borrow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record, "book borrowed")
}

// Update godoc
// @Summary Return, extend, mark lost, pay fine or edit a borrow record
// @Description action is one of return, extend, lost, pay_fine. Without an action notes and due_date are updated.
// @Tags Borrows
// @Accept json
// @Produce json
// @Param id path string true "Borrow record ID"
// @Param payload body service.UpdateBorrowRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /borrows/{id} [put]
func (h *BorrowHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "borrow record")
	if !ok {
		return
	}
	var req service.UpdateBorrowRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.borrows.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record, "borrow record updated")
}

// Delete godoc
// @Summary Delete a returned or lost borrow record
// @Tags Borrows
// @Produce json
// @Param id path string true "Borrow record ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /borrows/{id} [delete]
func (h *BorrowHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "borrow record")
	if !ok {
		return
	}
	if err := h.borrows.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "borrow record deleted")
}

// MarkOverdue godoc
// @Summary Flip every past-due loan to overdue
// @Tags Borrows
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /borrows/maintenance/overdue [post]
func (h *BorrowHandler) MarkOverdue(c *gin.Context) {
	flipped, err := h.borrows.UpdateOverdueStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"updated": flipped}, "overdue status updated")
}
