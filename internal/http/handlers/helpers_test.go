package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/apperr"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
)

// ---------- flexible service stubs ----------

type stubQuestions struct {
	list    func(context.Context, domain.Pagination) ([]domain.Question, error)
	get     func(context.Context, domain.QuestionID) (*domain.Question, error)
	create  func(context.Context, domain.NewQuestion, string) (*domain.Question, bool, error)
	replace func(context.Context, domain.QuestionID, domain.Question) (*domain.Question, error)
	del     func(context.Context, domain.QuestionID) error
}

func (s stubQuestions) List(ctx context.Context, p domain.Pagination) ([]domain.Question, error) {
	if s.list != nil {
		return s.list(ctx, p)
	}
	return nil, nil
}

func (s stubQuestions) Get(ctx context.Context, id domain.QuestionID) (*domain.Question, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Question{ID: id}, nil
}

func (s stubQuestions) Create(ctx context.Context, nq domain.NewQuestion, key string) (*domain.Question, bool, error) {
	if s.create != nil {
		return s.create(ctx, nq, key)
	}
	return &domain.Question{ID: 1, Title: nq.Title, Content: nq.Content, Tags: nq.Tags}, false, nil
}

func (s stubQuestions) Replace(ctx context.Context, id domain.QuestionID, q domain.Question) (*domain.Question, error) {
	if s.replace != nil {
		return s.replace(ctx, id, q)
	}
	return &q, nil
}

func (s stubQuestions) Delete(ctx context.Context, id domain.QuestionID) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

type stubAnswers struct {
	list    func(context.Context) ([]domain.Answer, error)
	listFor func(context.Context, domain.QuestionID) ([]domain.Answer, error)
	get     func(context.Context, domain.AnswerID) (*domain.Answer, error)
	create  func(context.Context, domain.NewAnswer, string) (*domain.Answer, bool, error)
	replace func(context.Context, domain.AnswerID, string) (*domain.Answer, error)
	del     func(context.Context, domain.AnswerID) error
}

func (s stubAnswers) List(ctx context.Context) ([]domain.Answer, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, nil
}

func (s stubAnswers) ListFor(ctx context.Context, qid domain.QuestionID) ([]domain.Answer, error) {
	if s.listFor != nil {
		return s.listFor(ctx, qid)
	}
	return nil, nil
}

func (s stubAnswers) Get(ctx context.Context, id domain.AnswerID) (*domain.Answer, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Answer{ID: id}, nil
}

func (s stubAnswers) Create(ctx context.Context, na domain.NewAnswer, key string) (*domain.Answer, bool, error) {
	if s.create != nil {
		return s.create(ctx, na, key)
	}
	return &domain.Answer{ID: 1, Content: na.Content, QuestionID: na.QuestionID}, false, nil
}

func (s stubAnswers) Replace(ctx context.Context, id domain.AnswerID, content string) (*domain.Answer, error) {
	if s.replace != nil {
		return s.replace(ctx, id, content)
	}
	return &domain.Answer{ID: id, Content: content}, nil
}

func (s stubAnswers) Delete(ctx context.Context, id domain.AnswerID) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

// ---------- router + request helpers ----------

// newTestRouter mounts every route the way the production router does,
// minus tracing, metrics and CORS.
func newTestRouter(t *testing.T, q QuestionService, a AnswerService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	h := New(q, a)
	r := gin.New()
	r.Use(RenderErrors(), middleware.Recovery(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.NoRoute(Unmatched)

	r.GET("/questions", h.ListQuestions)
	r.POST("/questions", h.AddQuestion)
	r.GET("/questions/:id", RequireID(), h.GetQuestion)
	r.PUT("/questions/:id", RequireID(), h.UpdateQuestion)
	r.DELETE("/questions/:id", RequireID(), h.DeleteQuestion)
	r.GET("/questions/:id/answers", RequireID(), h.ListAnswersForQuestion)

	r.GET("/answers", h.ListAnswers)
	r.POST("/answers", h.AddAnswer)
	r.GET("/answers/:id", RequireID(), h.GetAnswer)
	r.PUT("/answer/:id", RequireID(), h.UpdateAnswer)
	r.DELETE("/answer/:id", RequireID(), h.DeleteAnswer)
	return r
}

type envelopeBody struct {
	Error   bool            `json:"error"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, hdr map[string]string) (*httptest.ResponseRecorder, envelopeBody) {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
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

	var env envelopeBody
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: body is not an envelope: %v (%q)", method, path, err, w.Body.String())
	}
	// 2xx <=> error=false
	if ok := w.Code >= 200 && w.Code < 300; ok == env.Error {
		t.Fatalf("%s %s: status %d inconsistent with error=%v", method, path, w.Code, env.Error)
	}
	return w, env
}

func msg(e envelopeBody) string {
	if e.Message == nil {
		return "<nil>"
	}
	return *e.Message
}

func decodeData(t *testing.T, e envelopeBody) Payload {
	t.Helper()
	var p Payload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
	return p
}

func wantKind(t *testing.T, w *httptest.ResponseRecorder, k apperr.Kind) {
	t.Helper()
	if w.Code != apperr.Status(k) {
		t.Fatalf("status = %d; want %d (%s)", w.Code, apperr.Status(k), w.Body.String())
	}
	if got := w.Header().Get(HeaderErrorCode); got != k.String() {
		t.Fatalf("%s = %q; want %q", HeaderErrorCode, got, k.String())
	}
}
