package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"campushub/internal/http/middleware"
	"campushub/internal/utils"

	"github.com/gin-gonic/gin"
)

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"error":      message,
		"code":       codeForStatus(status),
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil && status < http.StatusInternalServerError {
		payload["details"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

// parseID reads a positive int64 path parameter.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// formFloat parses an optional numeric form field; blank means zero.
func formFloat(c *gin.Context, name string) (float64, bool) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0, true
	}
	v, err := utils.ParseAmount(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid "+name, err)
		return 0, false
	}
	return v, true
}

func agentID(c *gin.Context) (int64, bool) {
	id, ok := middleware.AgentID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
	}
	return id, ok
}

// ownBusiness checks that the business session matches the :id path parameter.
func ownBusiness(c *gin.Context, param string) (int64, bool) {
	id, ok := parseID(c, param)
	if !ok {
		return 0, false
	}
	sessionBusiness, ok := middleware.BusinessID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return 0, false
	}
	if sessionBusiness != id {
		RespondError(c, http.StatusForbidden, "business belongs to another account", nil)
		return 0, false
	}
	return id, true
}

func attachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func parseFormID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
