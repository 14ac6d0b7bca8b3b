package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// Store exposes the package functions as methods so one value satisfies the
// repository interfaces the services declare.
type Store struct{}

// ListQuestions proxies ListQuestions.
func (Store) ListQuestions(ctx context.Context, db *gorm.DB, limit *int32, offset int32) ([]domain.Question, error) {
	return ListQuestions(ctx, db, limit, offset)
}

// GetQuestion proxies GetQuestion.
func (Store) GetQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID) (*domain.Question, error) {
	return GetQuestion(ctx, db, id)
}

// CreateQuestion proxies CreateQuestion.
func (Store) CreateQuestion(ctx context.Context, db *gorm.DB, nq domain.NewQuestion) (*domain.Question, error) {
	return CreateQuestion(ctx, db, nq)
}

// ReplaceQuestion proxies ReplaceQuestion.
func (Store) ReplaceQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID, q domain.Question) (*domain.Question, error) {
	return ReplaceQuestion(ctx, db, id, q)
}

// DeleteQuestion proxies DeleteQuestion.
func (Store) DeleteQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID) error {
	return DeleteQuestion(ctx, db, id)
}

// ListAnswers proxies ListAnswers.
func (Store) ListAnswers(ctx context.Context, db *gorm.DB) ([]domain.Answer, error) {
	return ListAnswers(ctx, db)
}

// ListAnswersFor proxies ListAnswersFor.
func (Store) ListAnswersFor(ctx context.Context, db *gorm.DB, qid domain.QuestionID) ([]domain.Answer, error) {
	return ListAnswersFor(ctx, db, qid)
}

// GetAnswer proxies GetAnswer.
func (Store) GetAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID) (*domain.Answer, error) {
	return GetAnswer(ctx, db, id)
}

// CreateAnswer proxies CreateAnswer.
func (Store) CreateAnswer(ctx context.Context, db *gorm.DB, na domain.NewAnswer) (*domain.Answer, error) {
	return CreateAnswer(ctx, db, na)
}

// ReplaceAnswer proxies ReplaceAnswer.
func (Store) ReplaceAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID, content string) (*domain.Answer, error) {
	return ReplaceAnswer(ctx, db, id, content)
}

// DeleteAnswer proxies DeleteAnswer.
func (Store) DeleteAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID) error {
	return DeleteAnswer(ctx, db, id)
}

// GetIdempotency proxies GetIdempotency.
func (Store) GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return GetIdempotency(ctx, db, scope, key, now)
}

// CreateIdempotency proxies CreateIdempotency.
func (Store) CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key string, resourceID int32, ttl time.Duration) (*domain.Idempotency, error) {
	return CreateIdempotency(ctx, db, scope, key, resourceID, ttl)
}
