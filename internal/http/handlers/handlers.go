package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
)

//
// Service contracts (context-aware)
//

// QuestionService defines question operations consumed by HTTP handlers.
//
// Implementations must return *apperr.Error values and honor ctx.
type QuestionService interface {
	List(ctx context.Context, p domain.Pagination) ([]domain.Question, error)
	Get(ctx context.Context, id domain.QuestionID) (*domain.Question, error)
	// Create moderates and stores nq. A non-empty idemKey that was already
	// used returns the stored question with replayed=true.
	Create(ctx context.Context, nq domain.NewQuestion, idemKey string) (q *domain.Question, replayed bool, err error)
	Replace(ctx context.Context, id domain.QuestionID, q domain.Question) (*domain.Question, error)
	Delete(ctx context.Context, id domain.QuestionID) error
}

// AnswerService defines answer operations consumed by HTTP handlers.
type AnswerService interface {
	List(ctx context.Context) ([]domain.Answer, error)
	ListFor(ctx context.Context, qid domain.QuestionID) ([]domain.Answer, error)
	Get(ctx context.Context, id domain.AnswerID) (*domain.Answer, error)
	Create(ctx context.Context, na domain.NewAnswer, idemKey string) (a *domain.Answer, replayed bool, err error)
	Replace(ctx context.Context, id domain.AnswerID, content string) (*domain.Answer, error)
	Delete(ctx context.Context, id domain.AnswerID) error
}

// Handlers groups the question and answer endpoints.
type Handlers struct {
	qSvc QuestionService
	aSvc AnswerService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(qSvc QuestionService, aSvc AnswerService) *Handlers {
	return &Handlers{qSvc: qSvc, aSvc: aSvc}
}

// HeaderReplayed is set to "true" when a create was answered from a stored
// idempotent result.
const HeaderReplayed = "Idempotency-Replayed"

// idemKey returns the validated Idempotency-Key, or "".
func idemKey(c *gin.Context) string {
	k, _ := middleware.GetIdempotencyKey(c)
	return k
}

func markReplay(c *gin.Context, replayed bool) {
	if replayed {
		c.Header(HeaderReplayed, "true")
	}
}
