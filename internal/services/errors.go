// Package services defines the business logic for questions and answers.
// This file maps repository failures onto the apperr taxonomy so that every
// error leaving a service is already classified.
//
// Translation of kinds into HTTP status codes and response bodies is
// performed at the handler layer.
package services

import (
	"errors"

	"github.com/tbourn/go-qa-backend/internal/apperr"
	"github.com/tbourn/go-qa-backend/internal/repo"
)

// msgNoQuestion is the context used when an answer refers to a question that
// does not exist.
const msgNoQuestion = "no question with provided id"

// storageErr classifies a repository error. Missing rows become ItemNotFound
// with the given context; everything else is a DatabaseQuery failure.
func storageErr(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Database(err)
}
