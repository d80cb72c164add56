package apperr

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RetryAfterSeconds is sent with 503 responses.
const RetryAfterSeconds = "5"

// Body is the JSON error envelope returned by the API.
type Body struct {
	Error   string `json:"error"`
	Code    Code   `json:"code"`
	Details any    `json:"details,omitempty"`
}

// userMessager is implemented by typed domain errors whose own text is
// meant for the shopper, like a failed bundle resolution.
type userMessager interface {
	UserMessage() string
}

// ToHTTP maps an error to an echo error carrying a Body. Errors without a
// code are reported as internal with the generic public message.
func ToHTTP(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if stdErrors.As(err, &he) {
		return he
	}

	code := CodeInternal
	typed := As(err)
	if typed != nil {
		code = typed.Code()
	}
	meta := MetadataFor(code)
	body := Body{Error: meta.PublicMessage, Code: code}

	if typed != nil && (meta.DetailsAllowed || code == CodeNotFound) {
		body.Error = typed.Message()
		var um userMessager
		if stdErrors.As(err, &um) {
			body.Error = um.UserMessage()
		}
		if meta.DetailsAllowed {
			body.Details = typed.Details()
		}
	}
	return echo.NewHTTPError(meta.HTTPStatus, body).SetInternal(err)
}

// Respond returns the mapped error for echo to write, adding Retry-After
// when the service is temporarily unavailable.
func Respond(c echo.Context, err error) error {
	he := ToHTTP(err)
	if he == nil {
		return nil
	}
	if he.Code == http.StatusServiceUnavailable {
		c.Response().Header().Set(echo.HeaderRetryAfter, RetryAfterSeconds)
	}
	return he
}
