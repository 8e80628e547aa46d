package handlers

import (
	"errors"
	"sync"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the "frequency" and "direction" tags to gin's
// validator. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err = v.RegisterValidation("frequency", validateFrequency); err != nil {
			return
		}
		err = v.RegisterValidation("direction", validateDirection)
	})
	return err
}

func validateFrequency(fl validator.FieldLevel) bool {
	_, err := domain.ParseFrequency(fl.Field().String())
	return err == nil
}

func validateDirection(fl validator.FieldLevel) bool {
	_, err := domain.ParseDirection(fl.Field().String())
	return err == nil
}
