package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, dataset, format, search string) (*service.ExportResult, error)
}

// ExportHandler streams dataset exports.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Export a dataset
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param dataset path string true "students, courses, books, enrollments, borrows or overdue"
// @Param format query string false "csv (default), pdf or xlsx"
// @Param search query string false "Search applied to students, courses and books"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{dataset} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	result, err := h.exports.Export(c.Request.Context(), c.Param("dataset"), c.Query("format"), search(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
