// Package services – AnswerService
//
// This file implements AnswerService. Creating an answer first looks up the
// referenced question; if that lookup fails the insert is never attempted.
// A question deleted between the lookup and the insert is caught by the
// store's foreign key and reported the same way.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-qa-backend/internal/apperr"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/repo"
)

// AnswerRepo defines the repository contract required by AnswerService.
type AnswerRepo interface {
	ListAnswers(ctx context.Context, db *gorm.DB) ([]domain.Answer, error)
	ListAnswersFor(ctx context.Context, db *gorm.DB, qid domain.QuestionID) ([]domain.Answer, error)
	GetAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID) (*domain.Answer, error)
	CreateAnswer(ctx context.Context, db *gorm.DB, na domain.NewAnswer) (*domain.Answer, error)
	ReplaceAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID, content string) (*domain.Answer, error)
	DeleteAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID) error
}

// QuestionLookup is the slice of QuestionRepo needed to check that a
// question exists.
type QuestionLookup interface {
	GetQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID) (*domain.Question, error)
}

// AnswerService provides answer CRUD.
type AnswerService struct {
	DB        *gorm.DB
	Repo      AnswerRepo
	Questions QuestionLookup
	// Replays enables Idempotency-Key handling on create. May be nil.
	Replays *Replays
}

// NewAnswerService constructs an AnswerService.
func NewAnswerService(db *gorm.DB, r AnswerRepo, q QuestionLookup, replays *Replays) *AnswerService {
	return &AnswerService{DB: db, Repo: r, Questions: q, Replays: replays}
}

var answerTracer = otel.Tracer("services/AnswerService")

// List returns every answer.
func (s *AnswerService) List(ctx context.Context) ([]domain.Answer, error) {
	ctx, span := answerTracer.Start(ctx, "List")
	defer span.End()

	out, err := s.Repo.ListAnswers(ctx, s.DB)
	if err != nil {
		return nil, fail(span, apperr.Database(err))
	}
	return out, nil
}

// ListFor returns the answers to question qid. An unknown question yields an
// empty list.
func (s *AnswerService) ListFor(ctx context.Context, qid domain.QuestionID) ([]domain.Answer, error) {
	ctx, span := answerTracer.Start(ctx, "ListFor", trace.WithAttributes(attribute.Int("question.id", int(qid))))
	defer span.End()

	out, err := s.Repo.ListAnswersFor(ctx, s.DB, qid)
	if err != nil {
		return nil, fail(span, apperr.Database(err))
	}
	return out, nil
}

// Get returns answer id.
func (s *AnswerService) Get(ctx context.Context, id domain.AnswerID) (*domain.Answer, error) {
	ctx, span := answerTracer.Start(ctx, "Get", trace.WithAttributes(attribute.Int("answer.id", int(id))))
	defer span.End()

	a, err := s.Repo.GetAnswer(ctx, s.DB, id)
	if err != nil {
		return nil, fail(span, storageErr(err, answerRef(id)))
	}
	return a, nil
}

// Create stores na after confirming its question exists. The fetched
// question is discarded.
//
// When idemKey names a still-valid earlier create, the recorded answer is
// returned with replayed=true and nothing is inserted.
func (s *AnswerService) Create(ctx context.Context, na domain.NewAnswer, idemKey string) (a *domain.Answer, replayed bool, err error) {
	ctx, span := answerTracer.Start(ctx, "Create", trace.WithAttributes(attribute.Int("question.id", int(na.QuestionID))))
	defer span.End()

	if prev, ok := s.replay(ctx, idemKey); ok {
		span.SetAttributes(attribute.Bool("idempotency.replayed", true))
		return prev, true, nil
	}

	if _, err := s.Questions.GetQuestion(ctx, s.DB, na.QuestionID); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Int32("question_id", int32(na.QuestionID)).Msg("question lookup failed")
		}
		return nil, false, fail(span, apperr.NotFound(msgNoQuestion))
	}

	a, err = s.Repo.CreateAnswer(ctx, s.DB, na)
	if err != nil {
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, false, fail(span, apperr.NotFound(msgNoQuestion))
		}
		return nil, false, fail(span, apperr.Database(err))
	}
	span.SetAttributes(attribute.Int("answer.id", int(a.ID)))

	s.Replays.Remember(ctx, ScopeAnswers, idemKey, int32(a.ID))
	return a, false, nil
}

// Replace overwrites the content of answer id.
func (s *AnswerService) Replace(ctx context.Context, id domain.AnswerID, content string) (*domain.Answer, error) {
	ctx, span := answerTracer.Start(ctx, "Replace", trace.WithAttributes(attribute.Int("answer.id", int(id))))
	defer span.End()

	a, err := s.Repo.ReplaceAnswer(ctx, s.DB, id, content)
	if err != nil {
		return nil, fail(span, storageErr(err, answerRef(id)))
	}
	return a, nil
}

// Delete removes answer id.
func (s *AnswerService) Delete(ctx context.Context, id domain.AnswerID) error {
	ctx, span := answerTracer.Start(ctx, "Delete", trace.WithAttributes(attribute.Int("answer.id", int(id))))
	defer span.End()

	if err := s.Repo.DeleteAnswer(ctx, s.DB, id); err != nil {
		return fail(span, storageErr(err, answerRef(id)))
	}
	return nil
}

func (s *AnswerService) replay(ctx context.Context, key string) (*domain.Answer, bool) {
	id, ok, err := s.Replays.Lookup(ctx, ScopeAnswers, key)
	if err != nil || !ok {
		return nil, false
	}
	a, err := s.Repo.GetAnswer(ctx, s.DB, domain.AnswerID(id))
	if err != nil {
		return nil, false
	}
	return a, true
}

func answerRef(id domain.AnswerID) string { return fmt.Sprintf("answer %d", id) }
