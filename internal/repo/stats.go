// This file provides small aggregate queries used for startup diagnostics.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// Stats holds row counts for the public tables.
type Stats struct {
	Questions int64
	Answers   int64
}

// TableStats counts questions and answers. It runs two lightweight COUNT
// queries and stops at the first error.
func TableStats(ctx context.Context, db *gorm.DB) (Stats, error) {
	var s Stats
	if err := db.WithContext(ctx).Model(&domain.Question{}).Count(&s.Questions).Error; err != nil {
		return Stats{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Answer{}).Count(&s.Answers).Error; err != nil {
		return Stats{}, err
	}
	return s, nil
}
