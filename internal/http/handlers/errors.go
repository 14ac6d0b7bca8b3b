package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/apperr"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
)

// HeaderErrorCode carries the machine-readable kind of a failed request
// (e.g. "item_not_found"). Clients may branch on it instead of the message.
const HeaderErrorCode = "X-Error-Code"

// RenderErrors is the single place failures become responses. After the
// chain returns it takes the last error recorded on the context, classifies
// it through apperr.Status, and writes an error Envelope.
//
// Errors that are not *apperr.Error render as Internal, so driver or panic
// text never reaches the client through this path. Nothing is written when
// the handler already produced a response.
//
// Install it ahead of Recovery so recovered panics are rendered too.
func RenderErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var ae *apperr.Error
		if !errors.As(last.Err, &ae) {
			ae = apperr.Wrap(apperr.Internal, last.Err)
		}
		status := apperr.Status(ae.Kind)
		msg := ae.Error()

		lg := middleware.LoggerFrom(c)
		if status >= 500 {
			lg.Error().Err(last.Err).Str("kind", ae.Kind.String()).Int("status", status).Msg("api error")
		} else {
			lg.Debug().Err(last.Err).Str("kind", ae.Kind.String()).Int("status", status).Msg("api error")
		}

		c.Header(HeaderErrorCode, ae.Kind.String())
		c.JSON(status, Envelope{Error: true, Message: &msg})
	}
}

// Unmatched answers requests no route matched.
func Unmatched(c *gin.Context) {
	fail(c, apperr.New(apperr.Unmatched, c.Request.Method+" "+c.Request.URL.Path))
}
