package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-qa-backend/internal/apperr"
)

// renderKinds stands in for the handlers package error renderer: it writes
// the last classified error as {"kind","message"} with the mapped status.
func renderKinds() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		kind := apperr.KindOf(err)
		c.JSON(apperr.Status(kind), gin.H{"kind": kind.String(), "message": err.Error()})
	}
}

// logSink swaps the global logger for a JSON buffer until t ends.
type logSink struct{ buf bytes.Buffer }

func captureLogger(t *testing.T) *logSink {
	t.Helper()
	s := &logSink{}
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&s.buf)
	return s
}

func (s *logSink) String() string { return s.buf.String() }

// entries decodes every line written so far.
func (s *logSink) entries(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(s.buf.Bytes()))
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("log line is not JSON: %v: %s", err, sc.Text())
		}
		out = append(out, m)
	}
	return out
}

// find returns the first entry with the given message, or nil.
func (s *logSink) find(t *testing.T, msg string) map[string]any {
	t.Helper()
	for _, e := range s.entries(t) {
		if e["message"] == msg {
			return e
		}
	}
	return nil
}

type errSentinel struct{}

func (errSentinel) Error() string { return "boom" }
