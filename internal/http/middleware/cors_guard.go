package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/apperr"
)

// CORSPolicy is the cross-origin contract enforced by CORSGuard. The same
// values feed gin-contrib/cors so both agree on what is allowed.
type CORSPolicy struct {
	// AllowedOrigins restricts origins. Empty permits every origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSPolicy permits every origin for the API's verbs and headers.
func DefaultCORSPolicy(origins []string) CORSPolicy {
	return CORSPolicy{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", HeaderIdempotencyKey, requestIDHeader},
	}
}

// CORSGuard rejects cross-origin requests the policy does not allow with a
// CorsRejected error, so they get the usual 403 envelope instead of the bare
// status gin-contrib/cors would write.
//
// Checked: the Origin of any request carrying one, and for preflights the
// requested method and every requested header.
func CORSGuard(p CORSPolicy) gin.HandlerFunc {
	origins := lowerSet(p.AllowedOrigins)
	methods := upperSet(p.AllowedMethods)
	headers := lowerSet(p.AllowedHeaders)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if len(origins) > 0 {
			if _, ok := origins[strings.ToLower(origin)]; !ok {
				reject(c, "origin "+origin+" not allowed")
				return
			}
		}

		reqMethod := c.GetHeader("Access-Control-Request-Method")
		if c.Request.Method == http.MethodOptions && reqMethod != "" {
			if _, ok := methods[strings.ToUpper(reqMethod)]; !ok {
				reject(c, "method "+reqMethod+" not allowed")
				return
			}
			for _, h := range strings.Split(c.GetHeader("Access-Control-Request-Headers"), ",") {
				h = strings.ToLower(strings.TrimSpace(h))
				if h == "" {
					continue
				}
				if _, ok := headers[h]; !ok {
					reject(c, "header "+h+" not allowed")
					return
				}
			}
		}
		c.Next()
	}
}

func reject(c *gin.Context, why string) {
	_ = c.Error(apperr.New(apperr.CorsRejected, why))
	c.Abort()
}

func lowerSet(vs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			m[strings.ToLower(v)] = struct{}{}
		}
	}
	return m
}

func upperSet(vs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		m[strings.ToUpper(strings.TrimSpace(v))] = struct{}{}
	}
	return m
}
