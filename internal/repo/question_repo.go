// This file provides repository functions for the Question model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a question is not found, functions return ErrNotFound.
//   - Foreign key violations surface as ErrForeignKey.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// ListQuestions returns questions ordered by id ascending. A nil limit means
// no bound; offset skips that many rows.
func ListQuestions(ctx context.Context, db *gorm.DB, limit *int32, offset int32) ([]domain.Question, error) {
	out := []domain.Question{}
	q := db.WithContext(ctx).Order("id asc")
	if limit != nil {
		q = q.Limit(int(*limit))
	}
	if offset > 0 {
		q = q.Offset(int(offset))
	}
	err := q.Find(&out).Error
	return out, err
}

// GetQuestion fetches a single question by id, or ErrNotFound.
func GetQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID) (*domain.Question, error) {
	var q domain.Question
	if err := db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuestion inserts nq and returns the stored row with its assigned id.
func CreateQuestion(ctx context.Context, db *gorm.DB, nq domain.NewQuestion) (*domain.Question, error) {
	q := &domain.Question{
		Title:   nq.Title,
		Content: nq.Content,
		Tags:    nq.Tags,
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, classify(err)
	}
	return q, nil
}

// ReplaceQuestion overwrites title, content and tags of question id. The id
// in the stored row never changes. Returns ErrNotFound if no row matched.
func ReplaceQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID, q domain.Question) (*domain.Question, error) {
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", id).
		Select("title", "content", "tags").
		Updates(&domain.Question{Title: q.Title, Content: q.Content, Tags: q.Tags})
	if res.Error != nil {
		return nil, classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	out := domain.Question{ID: id, Title: q.Title, Content: q.Content, Tags: q.Tags}
	return &out, nil
}

// DeleteQuestion removes question id. Returns ErrNotFound if nothing was
// deleted and ErrForeignKey if answers still reference it.
func DeleteQuestion(ctx context.Context, db *gorm.DB, id domain.QuestionID) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Question{})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
