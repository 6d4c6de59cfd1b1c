package handler

import (
	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the lead-specific tags used by transport DTOs.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation("source_selector", func(fl playground.FieldLevel) bool {
		switch domain.SourceID(fl.Field().String()) {
		case domain.SourceAll, domain.SourceGooglePlaces, domain.SourceYelp, domain.SourceYell:
			return true
		default:
			return false
		}
	})
}
