package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules used by request DTOs to
// Gin's validator engine:
//
//	notblank  string must contain a non-whitespace character
//
// Safe to call more than once.
func RegisterValidators() (err error) {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return err
}
