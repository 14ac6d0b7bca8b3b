// This file provides repository functions for the Answer model. Error
// semantics match question_repo.go.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// ListAnswers returns every answer ordered by id ascending.
func ListAnswers(ctx context.Context, db *gorm.DB) ([]domain.Answer, error) {
	out := []domain.Answer{}
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// ListAnswersFor returns the answers of question qid ordered by id ascending.
// An unknown qid yields an empty slice, not an error.
func ListAnswersFor(ctx context.Context, db *gorm.DB, qid domain.QuestionID) ([]domain.Answer, error) {
	out := []domain.Answer{}
	err := db.WithContext(ctx).
		Where("question_id = ?", qid).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// GetAnswer fetches a single answer by id, or ErrNotFound.
func GetAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID) (*domain.Answer, error) {
	var a domain.Answer
	if err := db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAnswer inserts na. A question_id with no matching question yields
// ErrForeignKey.
func CreateAnswer(ctx context.Context, db *gorm.DB, na domain.NewAnswer) (*domain.Answer, error) {
	a := &domain.Answer{Content: na.Content, QuestionID: na.QuestionID}
	if err := db.WithContext(ctx).Omit("Question").Create(a).Error; err != nil {
		return nil, classify(err)
	}
	return a, nil
}

// ReplaceAnswer overwrites the content of answer id. The question reference
// is kept as stored. Returns ErrNotFound if no row matched.
func ReplaceAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID, content string) (*domain.Answer, error) {
	res := db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("id = ?", id).
		Update("content", content)
	if res.Error != nil {
		return nil, classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetAnswer(ctx, db, id)
}

// DeleteAnswer removes answer id, or returns ErrNotFound.
func DeleteAnswer(ctx context.Context, db *gorm.DB, id domain.AnswerID) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Answer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
