package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by the service packages. Wrap them with %w to pick
// the HTTP status a handler answers with.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooLarge     = errors.New("request body too large")
	ErrUnavailable  = errors.New("dependency unavailable")
)

var statusTable = []struct {
	err    error
	status int
	title  string
}{
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrDuplicate, http.StatusConflict, "Duplicate"},
	{ErrTooLarge, http.StatusRequestEntityTooLarge, "Payload Too Large"},
	{ErrValidation, http.StatusBadRequest, "Validation Failed"},
	{ErrForbidden, http.StatusForbidden, "Forbidden"},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{ErrUnavailable, http.StatusServiceUnavailable, "Service Unavailable"},
}

// StatusFor returns the status code and problem title for err. Unknown errors
// map to 500.
func StatusFor(err error) (int, string) {
	if IsTooLarge(err) {
		return http.StatusRequestEntityTooLarge, "Payload Too Large"
	}
	for _, m := range statusTable {
		if errors.Is(err, m.err) {
			return m.status, m.title
		}
	}
	return http.StatusInternalServerError, "Internal Error"
}

// IsTooLarge reports whether err came from a body exceeding http.MaxBytesReader.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, ErrTooLarge)
}

// RespondError writes err as an RFC7807 problem. Internal errors carry no detail.
func RespondError(w http.ResponseWriter, err error) {
	status, title := StatusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = ""
	}
	Problem(w, status, title, detail)
}
