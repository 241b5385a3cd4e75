// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = fmt.Errorf("%w: empty request body", ErrValidation)

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, "application/json", status, data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, "application/problem+json", status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func writeJSON(w http.ResponseWriter, contentType string, status int, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DecodeJSON decodes a single JSON value from the request body into target.
// Failures wrap ErrValidation, or ErrTooLarge when the body hit its limit.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		case IsTooLarge(err):
			return fmt.Errorf("%w: %v", ErrTooLarge, err)
		default:
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", ErrValidation)
	}
	return nil
}
