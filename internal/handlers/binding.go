package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/finadm/bank_recon_app/internal/core/domain"
)

// Domain enum checks hooked into gin's binding engine so that request DTOs
// can declare them in their binding tags.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("matchmethod", func(fl validator.FieldLevel) bool {
		return domain.MatchMethod(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("documentkind", func(fl validator.FieldLevel) bool {
		return domain.DocumentKind(fl.Field().String()).IsValid()
	})
}
