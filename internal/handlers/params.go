package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/storefront/internal/httperr"
)

// idParam parses a positive numeric path parameter or writes a 404.
func idParam(c *gin.Context, name, notFoundCode string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.NotFound(c, notFoundCode, "Resource not found.")
		return 0, false
	}
	return uint(id), true
}

// bind validates the body (JSON or form, by content type) and writes the
// error response when it fails.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		httperr.Validation(c, err)
		return false
	}
	return true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.Validation(c, err)
		return false
	}
	return true
}

// boolQuery reads 1/0/true/false; anything else is "not set".
func boolQuery(c *gin.Context, name string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.HasPrefix(c.ContentType(), "application/json")
}
