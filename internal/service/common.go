package service

import (
	"context"
	"strings"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
	"github.com/noah-isme/campus-registrar-api/pkg/database"
)

// transactor scopes a unit of work to one transaction.
type transactor interface {
	WithinTx(ctx context.Context, fn database.TxFunc) error
}

// DefaultPaging applies when a service is built without explicit paging settings.
var DefaultPaging = config.PagingConfig{DefaultPerPage: 10, MaxPerPage: 100}

func window(req models.PageRequest, paging config.PagingConfig) models.PageRequest {
	if paging.DefaultPerPage <= 0 {
		paging = DefaultPaging
	}
	return req.Normalize(paging.DefaultPerPage, paging.MaxPerPage)
}

func paginate(req models.PageRequest, total int) *models.Pagination {
	p := models.NewPagination(req.Page, req.PerPage, total)
	return &p
}

// emptyToNil keeps blank optional unique columns out of their unique index.
func emptyToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
