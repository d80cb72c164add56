package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/checkout"
)

var errInvalidBody = echo.NewHTTPError(http.StatusBadRequest, apperr.Body{
	Error: "Invalid request body",
	Code:  apperr.CodeValidation,
})

// Error maps a domain error onto the JSON error envelope.
func Error(c echo.Context, err error) error {
	return apperr.Respond(c, err)
}

// bind decodes the body and runs its validate tags.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errInvalidBody
	}
	if err := checkout.ValidateStruct(v); err != nil {
		return Error(c, err)
	}
	return nil
}
