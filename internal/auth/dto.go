package auth

import (
	"errors"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/go-playground/validator/v10"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

var dtoValidator = validator.New()

// validateDTO turns validator errors into a field-level AppError.
func validateDTO(dto interface{}) error {
	err := dtoValidator.Struct(dto)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	details := internal.ValidationErrors{}
	for _, fe := range verrs {
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   fe.Field(),
			Message: fe.Field() + " failed on " + fe.Tag(),
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}

func (d LoginDTO) Validate() error {
	return validateDTO(d)
}

func (d RefreshTokenDTO) Validate() error {
	return validateDTO(d)
}
