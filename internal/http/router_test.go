package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/http/handlers"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/repo"
)

// --- fake moderation service ---
type fakeModerator struct {
	calls atomic.Int32
	err   error
}

func (m *fakeModerator) Check(_ context.Context, content string) (string, error) {
	m.calls.Add(1)
	if m.err != nil {
		return "", m.err
	}
	return content, nil
}

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		RequestTimeout: 5 * time.Second,
		IdempotencyTTL: time.Hour,
		CORS:           config.CORSConfig{AllowedOrigins: nil}, // allow-all branch
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config, mod *fakeModerator) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	if mod == nil {
		mod = &fakeModerator{}
	}
	if err := RegisterRoutes(r, db, mod, cfg); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	return r, db
}

func serve(r http.Handler, method, path, body string, hdr map[string]string) (*httptest.ResponseRecorder, handlers.Envelope) {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env handlers.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func message(env handlers.Envelope) string {
	if env.Message == nil {
		return ""
	}
	return *env.Message
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, baseConfig(), nil)

	// /health answers with the success envelope.
	w, env := serve(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://anywhere.test"})
	if w.Code != http.StatusOK || env.Error || message(env) != "ok" || env.Data != nil {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing: %v", w.Header())
	}

	// /metrics is wired
	w, _ = serve(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404 envelope
	w, env = serve(r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || !env.Error || message(env) != "not found" {
		t.Fatalf("GET /nope = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(handlers.HeaderErrorCode) != "not_found" {
		t.Fatalf("X-Error-Code = %q", w.Header().Get(handlers.HeaderErrorCode))
	}

	// A known path with the wrong method is also "not found".
	w, env = serve(r, http.MethodPost, "/health", "", nil)
	if w.Code != http.StatusNotFound || !env.Error {
		t.Fatalf("POST /health = %d %s", w.Code, w.Body.String())
	}
	w, _ = serve(r, http.MethodPatch, "/api/v1/questions", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("PATCH /questions = %d", w.Code)
	}

	// Routes only exist under the base path.
	w, _ = serve(r, http.MethodGet, "/questions", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /questions outside base path = %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins(t *testing.T) {
	cfg := baseConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://app.test"}}
	r, _ := newRouter(t, cfg, nil)

	// Allowed origin is echoed.
	w, _ := serve(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://app.test"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.test" {
		t.Fatalf("expected origin echo, got %q", got)
	}

	// Unknown origin → 403 envelope.
	w, env := serve(r, http.MethodGet, "/api/v2/questions", "", map[string]string{"Origin": "http://evil.test"})
	if w.Code != http.StatusForbidden || !env.Error {
		t.Fatalf("foreign origin = %d %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(message(env), "CORS request forbidden") {
		t.Fatalf("message = %q", message(env))
	}

	// Good preflight.
	w, _ = serve(r, http.MethodOptions, "/api/v2/questions", "", map[string]string{
		"Origin":                         "http://app.test",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Content-Type, Idempotency-Key",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("allow methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}

	// Preflight for a disallowed method or header.
	w, _ = serve(r, http.MethodOptions, "/api/v2/questions", "", map[string]string{
		"Origin":                        "http://app.test",
		"Access-Control-Request-Method": http.MethodPatch,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("PATCH preflight = %d", w.Code)
	}
	w, _ = serve(r, http.MethodOptions, "/api/v2/questions", "", map[string]string{
		"Origin":                         "http://app.test",
		"Access-Control-Request-Method":  http.MethodGet,
		"Access-Control-Request-Headers": "Authorization",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("Authorization preflight = %d", w.Code)
	}
}

func TestRegisterRoutes_ContentTypePreflight(t *testing.T) {
	for name, origins := range map[string][]string{
		"allow all":  nil,
		"allow list": {"http://app.test"},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.CORS = config.CORSConfig{AllowedOrigins: origins}
			r, _ := newRouter(t, cfg, nil)

			w, _ := serve(r, http.MethodOptions, "/api/v1/questions", "", map[string]string{
				"Origin":                         "http://app.test",
				"Access-Control-Request-Method":  http.MethodPost,
				"Access-Control-Request-Headers": "Content-Type",
			})
			if w.Code != http.StatusNoContent {
				t.Fatalf("preflight = %d %s", w.Code, w.Body.String())
			}
			if !strings.Contains(strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "content-type") {
				t.Fatalf("allow headers = %q", w.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}

func TestPipeline_NegativePaginationIsOutOfRange(t *testing.T) {
	r, _ := newRouter(t, baseConfig(), nil)
	if w, _ := serve(r, http.MethodPost, "/api/v1/questions", `{"title":"t","content":"c"}`, nil); w.Code != http.StatusOK {
		t.Fatalf("seed = %d %s", w.Code, w.Body.String())
	}

	cases := map[string]string{
		"/api/v1/questions?start&end&limit=-1&offset=-5": "value provided for parameter out of range: limit=-1",
		"/api/v1/questions?start&end&limit=1&offset=-5":  "value provided for parameter out of range: offset=-5",
	}
	for path, want := range cases {
		w, env := serve(r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusRequestedRangeNotSatisfiable || !env.Error || message(env) != want {
			t.Fatalf("GET %s = %d %s", path, w.Code, w.Body.String())
		}
		if env.Data != nil {
			t.Fatalf("GET %s leaked rows: %s", path, w.Body.String())
		}
	}
}

func TestPipeline_QuestionAndAnswerLifecycle(t *testing.T) {
	mod := &fakeModerator{}
	r, _ := newRouter(t, baseConfig(), mod)
	const base = "/api/v1"

	// Empty list is an empty array, not null.
	w, env := serve(r, http.MethodGet, base+"/questions", "", nil)
	if w.Code != http.StatusOK || message(env) != "found questions" || env.Data == nil || len(env.Data.Questions) != 0 {
		t.Fatalf("list empty = %d %s", w.Code, w.Body.String())
	}

	w, env = serve(r, http.MethodPost, base+"/questions", `{"title":"Why Go?","content":"Tell me","tags":["go"]}`, nil)
	if w.Code != http.StatusOK || message(env) != "question added" || env.Data == nil || env.Data.Question == nil {
		t.Fatalf("add question = %d %s", w.Code, w.Body.String())
	}
	qid := env.Data.Question.ID
	if mod.calls.Load() != 1 {
		t.Fatalf("moderator calls = %d", mod.calls.Load())
	}

	w, env = serve(r, http.MethodGet, fmt.Sprintf("%s/questions/%d", base, qid), "", nil)
	if w.Code != http.StatusOK || env.Data.Question.Title != "Why Go?" {
		t.Fatalf("get question = %d %s", w.Code, w.Body.String())
	}

	// The path id wins over the body id.
	body := fmt.Sprintf(`{"id":%d,"title":"Why not Go?","content":"Tell me more"}`, qid+100)
	w, env = serve(r, http.MethodPut, fmt.Sprintf("%s/questions/%d", base, qid), body, nil)
	if w.Code != http.StatusOK || message(env) != "updated question" || env.Data.Question.ID != qid {
		t.Fatalf("update question = %d %s", w.Code, w.Body.String())
	}

	// Answers
	w, env = serve(r, http.MethodPost, base+"/answers", fmt.Sprintf(`{"content":"Because","question_id":%d}`, qid), nil)
	if w.Code != http.StatusOK || message(env) != "added answer to question" {
		t.Fatalf("add answer = %d %s", w.Code, w.Body.String())
	}
	aid := env.Data.Answer.ID

	w, _ = serve(r, http.MethodPost, base+"/answers", `{"content":"orphan","question_id":9999}`, nil)
	if w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("orphan answer = %d %s", w.Code, w.Body.String())
	}

	w, env = serve(r, http.MethodGet, fmt.Sprintf("%s/questions/%d/answers", base, qid), "", nil)
	if w.Code != http.StatusOK || message(env) != "found answers to question" || len(env.Data.Answers) != 1 {
		t.Fatalf("answers for question = %d %s", w.Code, w.Body.String())
	}

	// A question with answers cannot be deleted.
	w, env = serve(r, http.MethodDelete, fmt.Sprintf("%s/questions/%d", base, qid), "", nil)
	if w.Code != http.StatusRequestedRangeNotSatisfiable || !env.Error {
		t.Fatalf("delete referenced question = %d %s", w.Code, w.Body.String())
	}

	w, env = serve(r, http.MethodPut, fmt.Sprintf("%s/answer/%d", base, aid), fmt.Sprintf(`{"id":%d,"content":"Because!","question_id":%d}`, aid, qid), nil)
	if w.Code != http.StatusOK || env.Data.Answer.Content != "Because!" {
		t.Fatalf("update answer = %d %s", w.Code, w.Body.String())
	}

	w, env = serve(r, http.MethodDelete, fmt.Sprintf("%s/answer/%d", base, aid), "", nil)
	if w.Code != http.StatusOK || message(env) != "deleted answer" || env.Data != nil {
		t.Fatalf("delete answer = %d %s", w.Code, w.Body.String())
	}
	w, _ = serve(r, http.MethodGet, fmt.Sprintf("%s/answers/%d", base, aid), "", nil)
	if w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("get deleted answer = %d", w.Code)
	}

	w, _ = serve(r, http.MethodDelete, fmt.Sprintf("%s/questions/%d", base, qid), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete question = %d %s", w.Code, w.Body.String())
	}
	w, env = serve(r, http.MethodDelete, fmt.Sprintf("%s/questions/%d", base, qid), "", nil)
	if w.Code != http.StatusRequestedRangeNotSatisfiable || w.Header().Get(handlers.HeaderErrorCode) != "item_not_found" {
		t.Fatalf("delete twice = %d %s", w.Code, w.Body.String())
	}

	// Malformed ids never reach the service.
	w, env = serve(r, http.MethodGet, base+"/questions/abc", "", nil)
	if w.Code != http.StatusUnprocessableEntity || message(env) != "no valid id provided" {
		t.Fatalf("bad id = %d %s", w.Code, w.Body.String())
	}
}

func TestPipeline_ModerationFailure(t *testing.T) {
	mod := &fakeModerator{err: errors.New("upstream 503")}
	r, db := newRouter(t, baseConfig(), mod)

	w, env := serve(r, http.MethodPost, "/api/v1/questions", `{"title":"t","content":"c"}`, nil)
	if w.Code != http.StatusInternalServerError || !env.Error {
		t.Fatalf("moderation failure = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(handlers.HeaderErrorCode) != "external_api_error" {
		t.Fatalf("X-Error-Code = %q", w.Header().Get(handlers.HeaderErrorCode))
	}
	var n int64
	db.Table("questions").Count(&n)
	if n != 0 {
		t.Fatalf("question stored despite moderation failure: %d", n)
	}
}

func TestPipeline_IdempotentCreateReplays(t *testing.T) {
	mod := &fakeModerator{}
	r, db := newRouter(t, baseConfig(), mod)
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "create-1"}
	body := `{"title":"t","content":"c"}`

	w1, env1 := serve(r, http.MethodPost, "/api/v1/questions", body, hdr)
	if w1.Code != http.StatusOK || w1.Header().Get(handlers.HeaderReplayed) != "" {
		t.Fatalf("first create = %d %v", w1.Code, w1.Header())
	}
	w2, env2 := serve(r, http.MethodPost, "/api/v1/questions", body, hdr)
	if w2.Code != http.StatusOK || w2.Header().Get(handlers.HeaderReplayed) != "true" {
		t.Fatalf("replay = %d %v", w2.Code, w2.Header())
	}
	if env1.Data.Question.ID != env2.Data.Question.ID {
		t.Fatalf("replay returned a different question: %d vs %d", env1.Data.Question.ID, env2.Data.Question.ID)
	}
	if mod.calls.Load() != 1 {
		t.Fatalf("moderator calls = %d", mod.calls.Load())
	}
	var n int64
	db.Table("questions").Count(&n)
	if n != 1 {
		t.Fatalf("questions = %d", n)
	}

	// Keys are scoped per collection.
	w3, _ := serve(r, http.MethodPost, "/api/v1/answers", fmt.Sprintf(`{"content":"a","question_id":%d}`, env1.Data.Question.ID), hdr)
	if w3.Code != http.StatusOK || w3.Header().Get(handlers.HeaderReplayed) != "" {
		t.Fatalf("answer with reused key = %d %v", w3.Code, w3.Header())
	}

	// Bad key → 400 envelope.
	w4, env4 := serve(r, http.MethodPost, "/api/v1/questions", body, map[string]string{middleware.HeaderIdempotencyKey: "bad key!"})
	if w4.Code != http.StatusBadRequest || !env4.Error {
		t.Fatalf("bad key = %d %s", w4.Code, w4.Body.String())
	}
}

func TestPipeline_IdempotencyLookupErrorIsAMiss(t *testing.T) {
	r, db := newRouter(t, baseConfig(), nil)

	// Force queries to fail by closing the underlying connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()

	w, env := serve(r, http.MethodPost, "/api/v1/questions", `{"title":"t","content":"c"}`,
		map[string]string{middleware.HeaderIdempotencyKey: "force-error"})
	if w.Code != http.StatusRequestedRangeNotSatisfiable || !env.Error {
		t.Fatalf("closed db = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(handlers.HeaderReplayed) != "" {
		t.Fatalf("lookup error must not replay")
	}
}

func TestPipeline_RateLimited(t *testing.T) {
	cfg := baseConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, _ := newRouter(t, cfg, nil)

	w, _ := serve(r, http.MethodGet, "/api/v1/questions", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}
	w, env := serve(r, http.MethodGet, "/api/v1/questions", "", nil)
	if w.Code != http.StatusTooManyRequests || !env.Error || message(env) != "rate limit exceeded" {
		t.Fatalf("second = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}

	// Operational endpoints are exempt.
	for i := 0; i < 3; i++ {
		if w, _ := serve(r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
			t.Fatalf("/health #%d = %d", i, w.Code)
		}
	}
}

func TestPipeline_RateLimitDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.RateRPS = 0
	cfg.RateBurst = 1
	r, _ := newRouter(t, cfg, nil)

	for i := 0; i < 5; i++ {
		if w, _ := serve(r, http.MethodGet, "/api/v1/questions", "", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
}

func TestPipeline_OversizedBodyIsMalformed(t *testing.T) {
	r, _ := newRouter(t, baseConfig(), nil)

	big := `{"title":"t","content":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	w, env := serve(r, http.MethodPost, "/api/v1/questions", big, nil)
	if w.Code != http.StatusUnprocessableEntity || !env.Error {
		t.Fatalf("oversized body = %d", w.Code)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(4))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("1234"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("at limit = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("12345"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("over limit = %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, prefix := range []string{"", "/", "/api"} {
		r := gin.New()
		groupWithPrefix(r, prefix).GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		path := "/ping"
		if prefix == "/api" {
			path = "/api/ping"
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("prefix %q: GET %s = %d", prefix, path, w.Code)
		}
	}
}

func Test_corsConfig(t *testing.T) {
	all := corsConfig(middleware.DefaultCORSPolicy(nil))
	if !all.AllowAllOrigins || len(all.AllowOrigins) != 0 {
		t.Fatalf("empty origins should allow all: %+v", all)
	}
	some := corsConfig(middleware.DefaultCORSPolicy([]string{"http://a.test"}))
	if some.AllowAllOrigins || len(some.AllowOrigins) != 1 {
		t.Fatalf("explicit origins: %+v", some)
	}
	if some.AllowCredentials {
		t.Fatalf("credentials must stay off")
	}
}
