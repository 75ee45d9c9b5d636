package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukyu/ledger/internal/apierror"
	"github.com/yukyu/ledger/internal/auth"
	"github.com/yukyu/ledger/internal/ledger"
	"github.com/yukyu/ledger/internal/registry"
	"github.com/yukyu/ledger/internal/workflow"
)

func TestClassify_MapsDomainSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code apierror.Code
	}{
		{"ledger not found", ledger.ErrNotFound, apierror.CodeNotFound},
		{"registry not found", registry.ErrNotFound, apierror.CodeNotFound},
		{"workflow not found", workflow.ErrNotFound, apierror.CodeNotFound},
		{"workflow employee not found", workflow.ErrEmployeeNotFound, apierror.CodeNotFound},
		{"insufficient balance", ledger.ErrInsufficientBalance, apierror.CodeInsufficientBalance},
		{"policy violation", ledger.ErrPolicyViolation, apierror.CodePolicyViolation},
		{"ledger conflict", ledger.ErrConflict, apierror.CodeConflict},
		{"ledger invalid argument", fmt.Errorf("wrap: %w", ledger.ErrInvalidArgument), apierror.CodeInvalidArgument},
		{"workflow invalid argument", workflow.ErrInvalidArgument, apierror.CodeInvalidArgument},
		{"invalid transition", workflow.ErrInvalidTransition, apierror.CodeInvalidTransition},
		{"forbidden", workflow.ErrForbidden, apierror.CodeForbidden},
		{"employee inactive", workflow.ErrEmployeeInactive, apierror.CodeInvalidArgument},
		{"invalid credentials", auth.ErrInvalidCredentials, apierror.CodeUnauthenticated},
		{"account disabled", auth.ErrAccountDisabled, apierror.CodeForbidden},
		{"unknown error", fmt.Errorf("boom"), apierror.CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			assert.Equal(t, tc.code, got.Code)
		})
	}
}

func TestClassify_CarryOverErrorCarriesDetails(t *testing.T) {
	err := &ledger.CarryOverError{EmployeeNum: "E001", Year: 2024, Err: fmt.Errorf("boom")}
	got := classify(err)
	require.Equal(t, apierror.CodeCarryOverFailed, got.Code)
	assert.Equal(t, "E001", got.Details["employee_num"])
	assert.Equal(t, 2024, got.Details["year"])
}

func TestClassify_InsufficientBalanceErrorCarriesDetails(t *testing.T) {
	err := &ledger.InsufficientBalanceError{Available: decimal.NewFromInt(19), Requested: decimal.NewFromInt(25)}
	got := classify(err)
	require.Equal(t, apierror.CodeInsufficientBalance, got.Code)
	assert.Equal(t, decimal.NewFromInt(19), got.Details["available"])
	assert.Equal(t, decimal.NewFromInt(25), got.Details["requested"])
}

func TestClassify_PreservesExplicitApiError(t *testing.T) {
	original := apierror.New(apierror.CodeInvalidArgument, "bad input")
	got := classify(original)
	assert.Same(t, original, got)
}

func TestRespondError_SanitizesFiveHundreds(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, fmt.Errorf("pq: connection refused at /var/lib/postgres"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "An internal error occurred", env.Error.Message)
}

func TestRespondError_KeepsActionableFourHundreds(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, ledger.ErrInsufficientBalance)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, string(apierror.CodeInsufficientBalance), env.Error.Code)
	assert.Equal(t, "insufficient leave balance", env.Error.Message)
}
