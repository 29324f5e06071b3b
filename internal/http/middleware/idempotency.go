// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// IdempotencyValidator checks the Idempotency-Key header on POST requests,
// stashes the key for handlers and, when a lookup reports a live record for
// (key, article), flags the request as a replay so the rate limiter lets it
// through. Serving the stored comment is left to the comment service.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's retry key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set to "true" on responses served from a
// previous request.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key validated by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether the lookup found a live record for this request.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// IdempotencyOptions configures key validation. TTLs are the lookup's job.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts key characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Param names the route parameter identifying the article.
	Param string
}

// IdempotencyLookup reports whether a live record exists for key on the
// article named by rawArticleID. Errors are treated as "no record".
type IdempotencyLookup func(ctx context.Context, key, rawArticleID string, now time.Time) (bool, error)

// IdempotencyValidator is a no-op without the header or on non-POST requests.
// A malformed key is rejected with 400 {"msg":"Invalid Idempotency-Key"}.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	param := opts.Param
	if param == "" {
		param = "article_id"
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			ObserveAPIError("idempotency", http.StatusBadRequest)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "Invalid Idempotency-Key"})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			if ok, err := lookup(c.Request.Context(), key, c.Param(param), time.Now().UTC()); err == nil && ok {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
