package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"fintrack/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditMiddleware records mutating API calls of logged-in users.
// Reads are not logged.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("requestID", requestID)

		mutating := c.Request.Method == http.MethodPost ||
			c.Request.Method == http.MethodPut ||
			c.Request.Method == http.MethodDelete

		// keep the body readable for the handler
		var bodyBytes []byte
		if mutating && c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		if !mutating {
			return
		}

		var userID uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = user.ID
			}
		}
		if userID == 0 {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 && !credentialPath(path) {
			if body := redactBody(bodyBytes); body != "" {
				action += " " + body
			}
		}

		entry := models.AuditLog{
			UserID:    &userID,
			RequestID: requestID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&entry).Error
	}
}

// credentialPath reports whether a route carries credentials in its body.
// Those bodies are never stored, only the method and path.
func credentialPath(path string) bool {
	return strings.Contains(path, "password") || strings.Contains(path, "/auth/")
}

// redactBody strips password-like fields from a JSON body before it is
// stored. Bodies that do not parse as a JSON object are dropped rather
// than stored unfiltered.
func redactBody(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for k := range fields {
		if strings.Contains(strings.ToLower(k), "password") {
			delete(fields, k)
		}
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(out)
}
