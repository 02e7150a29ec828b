package handler

import (
	"errors"

	"github.com/yourorg/tag-service/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the tag-specific binding rules on gin's
// validator engine. Call once at startup before serving.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator engine is not *validator.Validate")
	}

	if err := v.RegisterValidation("tagname", func(fl validator.FieldLevel) bool {
		return model.ValidTagName(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("aliasname", func(fl validator.FieldLevel) bool {
		return model.ValidAliasName(fl.Field().String())
	})
}
