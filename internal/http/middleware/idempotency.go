package middleware

// Idempotency-Key handling for creates. The middleware only validates the
// header and flags replays; the services own storage and serve the stored
// response.

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/apperr"
)

// HeaderIdempotencyKey carries the client's key for a POST.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultIdemMaxLen = 200
)

// defaultIdemPattern accepts token characters only.
var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	MaxLen  int            // <= 0 means 200
	Pattern *regexp.Regexp // nil means token characters
}

// IdempotencyLookup reports whether an unexpired record exists for key within
// scope, the collection being created into ("questions", "answers").
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (bool, error)

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether lookup found a stored result for this request.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// IdempotencyValidator checks the Idempotency-Key header of POST requests.
// A malformed key aborts with InvalidHeader. A valid key is stored on the
// context; when lookup reports a hit the request is flagged as a replay and
// exempted from rate limiting. Lookup errors count as a miss.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdemMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			_ = c.Error(apperr.New(apperr.InvalidHeader, HeaderIdempotencyKey))
			c.Abort()
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			scope := ScopeFromPath(c.FullPath())
			hit, err := lookup(c.Request.Context(), scope, key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Debug().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
			}
			if hit && err == nil {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// ScopeFromPath returns the last static segment of a route template, e.g.
// "/api/questions" -> "questions". Parameter segments yield "".
func ScopeFromPath(route string) string {
	route = strings.TrimRight(route, "/")
	route = route[strings.LastIndexByte(route, '/')+1:]
	if strings.HasPrefix(route, ":") || strings.HasPrefix(route, "*") {
		return ""
	}
	return route
}
