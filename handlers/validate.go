package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the request validator installed on the echo instance.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
