package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const phone10Tag = "phone10"

var phone10Re = regexp.MustCompile(`^\d{10}$`)

// RegisterValidators installs custom binding rules on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation(phone10Tag, func(fl validator.FieldLevel) bool {
		return phone10Re.MatchString(fl.Field().String())
	})
}
