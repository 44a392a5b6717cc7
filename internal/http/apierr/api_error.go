package apierr

import (
	"errors"
	"net/http"
	"time"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/pkg/errs"
	"github.com/minhvu/catalogue/pkg/validator"
)

// ErrorResponse is the error body for every failing request: a single
// human-readable message, plus the prior deletion timestamp on repeated
// soft deletes.
type ErrorResponse struct {
	Error     string     `json:"error"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

var InternalServerErr = ErrorResponse{
	Error:      "an unknown error occurred",
	StatusCode: http.StatusInternalServerError,
}

// New maps a service error to its response. Unrecognized errors become a
// plain 500 so internals never leak verbatim.
func New(err error) ErrorResponse {
	var alreadyDeleted apperr.AlreadyDeletedError
	if errors.As(err, &alreadyDeleted) {
		res := New(alreadyDeleted.Unwrap())
		res.DeletedAt = &alreadyDeleted.DeletedAt
		return res
	}

	var typed errs.Error
	if errors.As(err, &typed) {
		return ErrorResponse{
			Error:      typed.Msg(),
			StatusCode: statusToHTTPStatus(typed.Status()),
		}
	}

	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ErrorResponse{
			Error:      validator.ValidationErrorMessage(validationErrs[0]),
			StatusCode: http.StatusBadRequest,
		}
	}

	return InternalServerErr
}

func statusToHTTPStatus(status errs.Status) int {
	switch status {
	case errs.StatusBadRequest, errs.StatusValidationFailed:
		return http.StatusBadRequest
	case errs.StatusNotFound:
		return http.StatusNotFound
	case errs.StatusConflict:
		return http.StatusConflict
	case errs.StatusUnknown, errs.StatusInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
