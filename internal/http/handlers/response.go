// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint. All
// failures use the same envelope:
//
//	HTTP/1.1 404 Not Found
//	{ "msg": "Article not found" }
//
// and successes wrap their payload in a single named key, e.g.
// {"article": {...}} or {"comments": [...]}.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Msg string `json:"msg" example:"Article not found"`
}

// fail aborts with {"msg": msg}. 5xx responses are logged with the request
// scoped logger, including cause when given.
func fail(c *gin.Context, status int, msg string, cause error) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().Int("status", status)
		if cause != nil {
			ev = ev.Err(cause)
		}
		ev.Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Msg: msg})
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, msg string) { fail(c, status, msg, nil) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
