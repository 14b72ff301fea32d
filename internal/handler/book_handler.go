package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/pkg/response"
)

type bookService interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.Book, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, req service.CreateBookRequest) (*models.Book, error)
	Update(ctx context.Context, id string, req service.UpdateBookRequest) (*models.Book, error)
	Delete(ctx context.Context, id string) error
}

// BookHandler exposes catalogue endpoints.
type BookHandler struct {
	books bookService
}

// NewBookHandler constructs BookHandler.
func NewBookHandler(books bookService) *BookHandler {
	return &BookHandler{books: books}
}

// List godoc
// @Summary List books
// @Tags Books
// @Produce json
// @Param search query string false "Substring of ISBN, title, author, publisher or category"
// @Param category query string false "Filter by category"
// @Param status query string false "available or unavailable"
// @Param available_only query bool false "Only titles with a copy on the shelf"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /books [get]
func (h *BookHandler) List(c *gin.Context) {
	filter := models.BookFilter{
		Search:        search(c),
		Category:      c.Query("category"),
		Status:        models.BookStatus(c.Query("status")),
		AvailableOnly: boolQuery(c, "available_only"),
		PageRequest:   pageRequest(c),
	}
	books, pagination, err := h.books.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listed("books", books, pagination), "")
}

// Get godoc
// @Summary Get book
// @Tags Books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "book")
	if !ok {
		return
	}
	book, err := h.books.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, book, "")
}

// Create godoc
// @Summary Create book
// @Tags Books
// @Accept json
// @Produce json
// @Param payload body service.CreateBookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req service.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.books.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book, "book created")
}

// Update godoc
// @Summary Update book
// @Tags Books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param payload body service.UpdateBookRequest true "Book payload"
// @Success 200 {object} response.Envelope
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "book")
	if !ok {
		return
	}
	var req service.UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.books.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, book, "book updated")
}

// Delete godoc
// @Summary Delete book with no copies on loan
// @Tags Books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "book")
	if !ok {
		return
	}
	if err := h.books.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "book deleted")
}
