package adminapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/talkincode/prodcatalog/internal/extract"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ListResponse is the body of the product listing.
type ListResponse struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, detail string) error {
	return c.JSON(status, ErrorResponse{Detail: detail})
}

// statusFor maps pipeline errors to response codes. Bad requests, unusable
// documents and unusable model output are 400; upstream failures and
// anything unexpected are 500.
func statusFor(err error) int {
	var (
		validationErr *extract.ValidationError
		documentErr   *extract.DocumentParseError
		parseErr      *extract.ExtractionParseError
	)
	if errors.As(err, &validationErr) || errors.As(err, &documentErr) || errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// failExtraction renders a pipeline error for the given input source.
func failExtraction(c echo.Context, source string, err error) error {
	status := statusFor(err)
	var validationErr *extract.ValidationError
	if status == http.StatusBadRequest && !errors.As(err, &validationErr) {
		return fail(c, status, fmt.Sprintf("Failed to extract product data from %s: %v", source, err))
	}
	return fail(c, status, err.Error())
}

// validationDetail flattens validator errors into one readable line.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())
	}
	return err.Error()
}
