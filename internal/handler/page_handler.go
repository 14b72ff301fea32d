package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
	"github.com/noah-isme/campus-registrar-api/pkg/export"
)

type pageSource interface {
	Page(ctx context.Context, dataset, search string, page models.PageRequest) (export.Dataset, *models.Pagination, error)
}

type section struct {
	Path   string
	Label  string
	Export string
}

var sections = []section{
	{"/dashboard", "Dashboard", ""},
	{"/students", "Students", service.DatasetStudents},
	{"/courses", "Courses", service.DatasetCourses},
	{"/books", "Books", service.DatasetBooks},
	{"/enrollments", "Enrollments", service.DatasetEnrollments},
	{"/borrows", "Borrow records", service.DatasetBorrows},
	{"/borrows/overdue", "Overdue loans", service.DatasetOverdue},
}

// PageHandler renders the HTML admin pages.
type PageHandler struct {
	pages     pageSource
	dashboard dashboardService
	apiPrefix string
}

// NewPageHandler constructs PageHandler. apiPrefix is used to link the export downloads.
func NewPageHandler(pages pageSource, dashboard dashboardService, apiPrefix string) *PageHandler {
	return &PageHandler{pages: pages, dashboard: dashboard, apiPrefix: apiPrefix}
}

// Index renders the landing page.
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     "Campus Registrar",
		"Sections":  sections,
		"APIPrefix": h.apiPrefix,
	})
}

// Dashboard renders the dashboard page.
func (h *PageHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Summary": summary})
}

// Table renders one paged dataset. Search is offered only for datasets that support it.
func (h *PageHandler) Table(dataset, title string) gin.HandlerFunc {
	searchable := dataset == service.DatasetStudents || dataset == service.DatasetCourses || dataset == service.DatasetBooks
	return func(c *gin.Context) {
		term := search(c)
		data, pagination, err := h.pages.Page(c.Request.Context(), dataset, term, pageRequest(c))
		if err != nil {
			h.renderError(c, err)
			return
		}
		c.HTML(http.StatusOK, "table.html", gin.H{
			"Title":      title,
			"Dataset":    dataset,
			"Searchable": searchable,
			"Search":     term,
			"Data":       data,
			"Pagination": pagination,
			"APIPrefix":  h.apiPrefix,
		})
	}
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.HTML(appErr.Status, "error.html", gin.H{"Title": http.StatusText(appErr.Status), "Message": appErr.Message})
}
