// Package validation holds the form rules shared by the service desk screens.
// Every validator is a pure function: it never fails, it only reports.
package validation

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Result collects rule failures in the order the rules were checked.
type Result struct {
	Errors []string        `json:"errors"`
	Fields map[string]bool `json:"errors_label"`
}

func newResult() Result {
	return Result{Errors: []string{}, Fields: map[string]bool{}}
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Has reports whether the field was flagged by at least one rule.
func (r Result) Has(field string) bool {
	return r.Fields[field]
}

func (r *Result) add(message string, fields ...string) {
	r.Errors = append(r.Errors, message)
	for _, f := range fields {
		r.Fields[f] = true
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// number mirrors how browser inputs are coerced: blank is zero and anything
// unparseable is NaN.
func number(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// positiveQty is the shared "Enter required quantity" predicate.
func positiveQty(s string) bool {
	if blank(s) {
		return false
	}
	v := number(s)
	return !math.IsNaN(v) && v > 0
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "02-01-2006"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
