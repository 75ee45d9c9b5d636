package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yukyu/ledger/internal/auth"
)

func TestRequestLogger_PassesThroughAndPreservesStatus(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/leave-requests", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRedactPath_StripsPIIParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/employees?hourly_wage=1500&q=yamada", nil)
	got := redactPath(req)
	assert.Contains(t, got, "hourly_wage=%5Bredacted%5D")
	assert.Contains(t, got, "q=yamada")
}

func TestRedactPath_NoChangeWithoutPIIParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/employees?q=yamada", nil)
	got := redactPath(req)
	assert.Equal(t, "/v1/employees?q=yamada", got)
}

func TestRequestLogger_UsesPrincipalFromClaims(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := auth.GetClaims(r.Context())
		assert.True(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	claims := &auth.Claims{UserID: "user-1"}
	ctx := context.WithValue(context.Background(), auth.ClaimsContextKey, claims)
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
