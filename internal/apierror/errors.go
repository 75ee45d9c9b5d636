// Package apierror gives every domain error a single code/HTTP-status
// mapping point (§4.6, §7) plus the Sanitize helper for keeping storage
// and framework detail out of 5xx responses.
package apierror

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// Patterns that indicate internal/sensitive errors
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pq:|pgx:|sql:|postgres`),
	regexp.MustCompile(`(?i)connection|timeout|refused`),
	regexp.MustCompile(`(?i)/var/|/tmp/|/home/|/app/|\.go:\d+`),
	regexp.MustCompile(`(?i)dial tcp|network|socket`),
	regexp.MustCompile(`(?i)panic|runtime error`),
	regexp.MustCompile(`(?i)internal server|stack trace`),
	regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`), // IP addresses
}

const genericError = "An internal error occurred"

// Sanitize removes sensitive information from error messages
// Safe messages (validation errors, format errors) are passed through
func Sanitize(msg string) string {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(msg) {
			return genericError
		}
	}

	// Additional check for file paths
	if strings.Contains(msg, "/") && (strings.Contains(msg, "open") || strings.Contains(msg, "read") || strings.Contains(msg, "write")) {
		return genericError
	}

	return msg
}

// Code is one of the language-agnostic error kinds named in §7.
type Code string

const (
	CodeInvalidArgument     Code = "invalid_argument"
	CodeUnauthenticated     Code = "unauthenticated"
	CodeInvalidToken        Code = "invalid_token"
	CodeForbidden           Code = "forbidden"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeInsufficientBalance Code = "insufficient_balance"
	CodePolicyViolation     Code = "policy_violation"
	CodeInvalidTransition   Code = "invalid_transition"
	CodeTooManyRequests     Code = "too_many_requests"
	CodeCarryOverFailed     Code = "carry_over_failed"
	CodeIngestionFailed     Code = "ingestion_failed"
	CodeInternal            Code = "internal"
)

// httpStatus maps each Code to the HTTP status ApiPlane replies with (§4.6).
var httpStatus = map[Code]int{
	CodeInvalidArgument:     http.StatusUnprocessableEntity,
	CodeUnauthenticated:     http.StatusUnauthorized,
	CodeInvalidToken:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeNotFound:            http.StatusNotFound,
	CodeConflict:            http.StatusConflict,
	CodeInsufficientBalance: http.StatusUnprocessableEntity,
	CodePolicyViolation:     http.StatusUnprocessableEntity,
	CodeInvalidTransition:   http.StatusUnprocessableEntity,
	CodeTooManyRequests:     http.StatusTooManyRequests,
	CodeCarryOverFailed:     http.StatusUnprocessableEntity,
	CodeIngestionFailed:     http.StatusUnprocessableEntity,
	CodeInternal:            http.StatusInternalServerError,
}

// HTTPStatus returns the status code c maps to, defaulting to 500 for an
// unrecognized code.
func (c Code) HTTPStatus() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the typed value domain packages return and ApiPlane renders into
// the envelope's error object. Message is short and action-oriented (§7);
// Details carries structured context (ingestion row numbers, per-year
// balance breakdowns) that never appears in Message itself.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs an *Error with no details.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// As extracts an *Error from err via errors.As, the mechanism ApiPlane uses
// to recover a typed code from a wrapped domain error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
