package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yukyu/ledger/internal/apierror"
	"github.com/yukyu/ledger/internal/auth"
	"github.com/yukyu/ledger/internal/ledger"
	"github.com/yukyu/ledger/internal/registry"
	"github.com/yukyu/ledger/internal/workflow"
)

// classify maps a domain sentinel error to its apierror.Code, the one place
// the storage/domain-layer exception boundary described in §7 is enforced.
// An *apierror.Error from a handler's own validation passes through
// unchanged; anything unrecognized becomes CodeInternal with the detail
// logged but never returned (§7: "unknown exceptions become internal with
// the underlying detail logged but not returned").
func classify(err error) *apierror.Error {
	if apiErr, ok := apierror.As(err); ok {
		return apiErr
	}

	switch {
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, registry.ErrNotFound), errors.Is(err, workflow.ErrNotFound), errors.Is(err, workflow.ErrEmployeeNotFound):
		return apierror.New(apierror.CodeNotFound, "resource not found")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		var ibErr *ledger.InsufficientBalanceError
		if errors.As(err, &ibErr) {
			return apierror.New(apierror.CodeInsufficientBalance, "insufficient leave balance").
				WithDetails(map[string]any{"available": ibErr.Available, "requested": ibErr.Requested})
		}
		return apierror.New(apierror.CodeInsufficientBalance, "insufficient leave balance")
	case errors.Is(err, ledger.ErrPolicyViolation):
		return apierror.New(apierror.CodePolicyViolation, "operation would violate fiscal policy")
	case errors.Is(err, ledger.ErrConflict):
		return apierror.New(apierror.CodeConflict, "conflicting update, please retry")
	case errors.Is(err, ledger.ErrInvalidArgument), errors.Is(err, workflow.ErrInvalidArgument):
		return apierror.New(apierror.CodeInvalidArgument, "invalid request")
	case errors.Is(err, ledger.ErrCarryOverFailed):
		var coErr *ledger.CarryOverError
		if errors.As(err, &coErr) {
			return apierror.New(apierror.CodeCarryOverFailed, "carry-over failed").
				WithDetails(map[string]any{"employee_num": coErr.EmployeeNum, "year": coErr.Year})
		}
		return apierror.New(apierror.CodeCarryOverFailed, "carry-over failed")
	case errors.Is(err, workflow.ErrInvalidTransition):
		return apierror.New(apierror.CodeInvalidTransition, "request is not in a state that permits this action")
	case errors.Is(err, workflow.ErrForbidden):
		return apierror.New(apierror.CodeForbidden, "not permitted")
	case errors.Is(err, workflow.ErrEmployeeInactive):
		return apierror.New(apierror.CodeInvalidArgument, "employee is not active")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apierror.New(apierror.CodeUnauthenticated, "invalid credentials")
	case errors.Is(err, auth.ErrAccountDisabled):
		return apierror.New(apierror.CodeForbidden, "account is disabled")
	default:
		log.Error().Err(err).Msg("unclassified error")
		return apierror.New(apierror.CodeInternal, "An internal error occurred")
	}
}

// respondError writes the error envelope for err, mapping it to an HTTP
// status via classify. 5xx messages never leak storage/framework detail
// (apierror.Sanitize); error.details is only ever populated by classify
// itself, never by Sanitize's raw input.
func respondError(w http.ResponseWriter, err error) {
	apiErr := classify(err)
	status := apiErr.Code.HTTPStatus()
	message := apiErr.Message
	if status >= http.StatusInternalServerError {
		message = apierror.Sanitize(message)
	}
	writeJSON(w, status, envelope{
		Status: "error",
		Data:   nil,
		Error:  &envelopeErr{Code: string(apiErr.Code), Message: message, Details: apiErr.Details},
		Meta:   baseMeta(),
	})
}

// respondValidation writes a CodeInvalidArgument error for a request that
// failed declared-schema validation before reaching any domain package.
func respondValidation(w http.ResponseWriter, message string) {
	respondError(w, apierror.New(apierror.CodeInvalidArgument, message))
}
