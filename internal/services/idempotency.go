package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/repo"
)

// Idempotency scopes, one per create endpoint.
const (
	ScopeQuestions = "questions"
	ScopeAnswers   = "answers"
)

// IdempotencyRepo defines the persistence contract for replay records.
type IdempotencyRepo interface {
	GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key string, resourceID int32, ttl time.Duration) (*domain.Idempotency, error)
}

// Replays remembers which resource a create request produced so a retry with
// the same Idempotency-Key returns it instead of creating a duplicate.
type Replays struct {
	DB   *gorm.DB
	Repo IdempotencyRepo
	// TTL bounds how long a key is honoured. Zero means 24h.
	TTL time.Duration
}

// Lookup returns the resource id recorded for (scope, key), if any. A nil
// receiver or empty key never matches.
func (r *Replays) Lookup(ctx context.Context, scope, key string) (int32, bool, error) {
	if r == nil || r.Repo == nil || key == "" {
		return 0, false, nil
	}
	rec, err := r.Repo.GetIdempotency(ctx, r.DB, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rec.ResourceID, true, nil
}

// Remember records id under (scope, key). Failures are logged, not returned:
// the create already succeeded.
func (r *Replays) Remember(ctx context.Context, scope, key string, id int32) {
	if r == nil || r.Repo == nil || key == "" {
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if _, err := r.Repo.CreateIdempotency(ctx, r.DB, scope, key, id, ttl); err != nil && !errors.Is(err, repo.ErrDuplicate) {
		log.Warn().Err(err).Str("scope", scope).Msg("idempotency record not stored")
	}
}
