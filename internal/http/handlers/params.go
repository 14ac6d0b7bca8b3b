package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/apperr"
)

const ctxKeyPathID = "path.id"

// RequireID parses the :id path segment as an int32 before the route's
// handler runs. A malformed id aborts with InvalidIDShape.
func RequireID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("id")
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			fail(c, &apperr.Error{Kind: apperr.InvalidIDShape, Context: raw, Err: err})
			return
		}
		c.Set(ctxKeyPathID, int32(n))
		c.Next()
	}
}

// pathID returns the id stored by RequireID.
func pathID(c *gin.Context) int32 {
	v, _ := c.Get(ctxKeyPathID)
	id, _ := v.(int32)
	return id
}

// queryMap flattens the query string, keeping the first value of each key.
func queryMap(c *gin.Context) map[string]string {
	q := c.Request.URL.Query()
	m := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			m[k] = vs[0]
		}
	}
	return m
}

// bindJSON decodes the body into dst and runs binding validation. Any failure
// is a MalformedBody.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Wrap(apperr.MalformedBody, err)
	}
	return nil
}
