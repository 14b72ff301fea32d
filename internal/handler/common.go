package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
	"github.com/noah-isme/campus-registrar-api/pkg/response"
)

// bindJSON decodes the body and answers 400 when it is not valid JSON for target.
func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// idParam reads the :id segment. Anything that is not a UUID cannot name a row, so it answers 404.
func idParam(c *gin.Context, resource string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, resource+" not found"))
		return "", false
	}
	return id, true
}

// idQueries reads optional UUID filters and answers 400 on the first malformed one.
func idQueries(c *gin.Context, keys ...string) (map[string]string, bool) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		v := strings.TrimSpace(c.Query(key))
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, key+" must be a valid UUID"))
			return nil, false
		}
		out[key] = v
	}
	return out, true
}

func pageRequest(c *gin.Context) models.PageRequest {
	var page models.PageRequest
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		page.PerPage = v
	}
	return page
}

func search(c *gin.Context) string {
	return strings.TrimSpace(c.Query("search"))
}

func boolQuery(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// listed wraps a collection under its plural name next to the pagination block.
func listed(name string, items interface{}, pagination *models.Pagination) gin.H {
	return gin.H{name: items, "pagination": pagination}
}
