// Package services – QuestionService
//
// This file implements QuestionService, which owns the question lifecycle.
// Creation runs the moderation gate before anything is written; a failed
// check aborts the request and leaves storage untouched. Titles and tags are
// stored as submitted; blank titles are rejected and repeated tags dropped.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-qa-backend/internal/apperr"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/utils"
)

// QuestionRepo defines the repository contract required by QuestionService.
type QuestionRepo interface {
	// ListQuestions returns a window of questions; a nil limit is unbounded.
	ListQuestions(ctx context.Context, db *gorm.DB, limit *int32, offset int32) ([]domain.Question, error)
	// GetQuestion fetches one question or returns repo.ErrNotFound.
	GetQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID) (*domain.Question, error)
	// CreateQuestion inserts a question and returns it with its id.
	CreateQuestion(ctx context.Context, db *gorm.DB, nq domain.NewQuestion) (*domain.Question, error)
	// ReplaceQuestion overwrites title, content and tags.
	ReplaceQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID, q domain.Question) (*domain.Question, error)
	// DeleteQuestion removes a question.
	DeleteQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID) error
}

// Moderator screens user content. It returns the censored text or an error
// when the check could not be completed.
type Moderator interface {
	Check(ctx context.Context, content string) (string, error)
}

// QuestionService provides question CRUD guarded by the moderation gate.
type QuestionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the question repository used by this service.
	Repo QuestionRepo
	// Moderator checks content on create.
	Moderator Moderator
	// Replays enables Idempotency-Key handling on create. May be nil.
	Replays *Replays
}

// NewQuestionService constructs a QuestionService.
func NewQuestionService(db *gorm.DB, r QuestionRepo, m Moderator, replays *Replays) *QuestionService {
	return &QuestionService{DB: db, Repo: r, Moderator: m, Replays: replays}
}

var questionTracer = otel.Tracer("services/QuestionService")

// List returns the questions selected by p. A negative limit or offset is
// OutOfRange.
func (s *QuestionService) List(ctx context.Context, p domain.Pagination) ([]domain.Question, error) {
	attrs := []attribute.KeyValue{attribute.Int("offset", int(p.Offset))}
	if p.Limit != nil {
		attrs = append(attrs, attribute.Int("limit", int(*p.Limit)))
	}
	ctx, span := questionTracer.Start(ctx, "List", trace.WithAttributes(attrs...))
	defer span.End()

	if err := utils.CheckPagination(p); err != nil {
		return nil, fail(span, err)
	}

	out, err := s.Repo.ListQuestions(ctx, s.DB, p.Limit, p.Offset)
	if err != nil {
		return nil, fail(span, apperr.Database(err))
	}
	return out, nil
}

// Get returns question id.
func (s *QuestionService) Get(ctx context.Context, id domain.QuestionID) (*domain.Question, error) {
	ctx, span := questionTracer.Start(ctx, "Get", trace.WithAttributes(attribute.Int("question.id", int(id))))
	defer span.End()

	q, err := s.Repo.GetQuestion(ctx, s.DB, id)
	if err != nil {
		return nil, fail(span, storageErr(err, questionRef(id)))
	}
	return q, nil
}

// Create moderates nq.Content and then stores the question.
//
// When idemKey names a still-valid earlier create, the recorded question is
// returned with replayed=true and neither moderation nor insert runs.
func (s *QuestionService) Create(ctx context.Context, nq domain.NewQuestion, idemKey string) (q *domain.Question, replayed bool, err error) {
	ctx, span := questionTracer.Start(ctx, "Create")
	defer span.End()

	if err := checkTitle(nq.Title); err != nil {
		return nil, false, fail(span, err)
	}
	nq.Tags = dedupeTags(nq.Tags)

	if prev, ok := s.replay(ctx, idemKey); ok {
		span.SetAttributes(attribute.Bool("idempotency.replayed", true))
		return prev, true, nil
	}

	cleaned, err := s.Moderator.Check(ctx, nq.Content)
	if err != nil {
		return nil, false, fail(span, apperr.External(err))
	}
	// The censored text is only logged; the stored content is the original.
	log.Debug().Str("cleaned", cleaned).Msg("moderation passed")

	q, err = s.Repo.CreateQuestion(ctx, s.DB, nq)
	if err != nil {
		return nil, false, fail(span, apperr.Database(err))
	}
	span.SetAttributes(attribute.Int("question.id", int(q.ID)))

	s.Replays.Remember(ctx, ScopeQuestions, idemKey, int32(q.ID))
	return q, false, nil
}

// Replace overwrites question id with q's title, content and tags. The id in
// q is ignored.
func (s *QuestionService) Replace(ctx context.Context, id domain.QuestionID, q domain.Question) (*domain.Question, error) {
	ctx, span := questionTracer.Start(ctx, "Replace", trace.WithAttributes(attribute.Int("question.id", int(id))))
	defer span.End()

	if err := checkTitle(q.Title); err != nil {
		return nil, fail(span, err)
	}
	q.ID = id
	q.Tags = dedupeTags(q.Tags)

	out, err := s.Repo.ReplaceQuestion(ctx, s.DB, id, q)
	if err != nil {
		return nil, fail(span, storageErr(err, questionRef(id)))
	}
	return out, nil
}

// Delete removes question id. Deleting a question that still has answers
// fails in the store and is reported as a database error.
func (s *QuestionService) Delete(ctx context.Context, id domain.QuestionID) error {
	ctx, span := questionTracer.Start(ctx, "Delete", trace.WithAttributes(attribute.Int("question.id", int(id))))
	defer span.End()

	if err := s.Repo.DeleteQuestion(ctx, s.DB, id); err != nil {
		return fail(span, storageErr(err, questionRef(id)))
	}
	return nil
}

// replay resolves an idempotency key to the question it produced. Lookup
// failures fall through to normal processing.
func (s *QuestionService) replay(ctx context.Context, key string) (*domain.Question, bool) {
	id, ok, err := s.Replays.Lookup(ctx, ScopeQuestions, key)
	if err != nil || !ok {
		return nil, false
	}
	q, err := s.Repo.GetQuestion(ctx, s.DB, domain.QuestionID(id))
	if err != nil {
		return nil, false
	}
	return q, true
}

func questionRef(id domain.QuestionID) string { return fmt.Sprintf("question %d", id) }

// fail records err on span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.KindOf(err).String())
	return err
}
