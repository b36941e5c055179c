package handler

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/service"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user placed by the auth middleware.
// A false return means the error response was already written.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// respondServiceError maps service error kinds onto HTTP statuses and
// business codes. Storage failures stay generic: nothing partial committed
// and the caller may retry the whole command.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case service.IsKind(err, service.KindBadRequest):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case service.IsKind(err, service.KindForbidden):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, err.Error())
	case service.IsKind(err, service.KindNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case service.IsKind(err, service.KindConflict):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "operation failed, please retry")
	}
}

// paramID parses the :id path parameter.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts the date formats clients send us.
func parseDate(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,          // 2025-12-03T00:00:00+08:00
		"2006-01-02T15:04:05", // 2025-12-03T00:00:00
		"2006-01-02",          // 2025-12-03
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
