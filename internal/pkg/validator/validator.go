package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/geocoding-microservice/internal/pkg/errors"
)

var validate = validator.New()

// Validate checks struct tags and converts failures into the API error shape.
func Validate(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		fields := make(map[string]interface{})
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		return errors.ErrInvalidRequest.WithDetails(fields)
	}
	return nil
}
