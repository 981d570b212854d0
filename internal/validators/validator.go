// Package validators plugs go-playground/validator into echo's Context.Validate.
package validators

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator implements echo.Validator
type CustomValidator struct {
	validator *validator.Validate
}

// New creates a CustomValidator
func New() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates a request struct and reports failures as 400 Bad Request
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
