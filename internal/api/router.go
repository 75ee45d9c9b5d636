package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yukyu/ledger/internal/audit"
	"github.com/yukyu/ledger/internal/auth"
	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/ingestion"
	"github.com/yukyu/ledger/internal/ledger"
	secmw "github.com/yukyu/ledger/internal/middleware"
	"github.com/yukyu/ledger/internal/models"
	"github.com/yukyu/ledger/internal/registry"
	"github.com/yukyu/ledger/internal/workflow"
)

// Handlers holds every service the ApiPlane routes to. Constructed once at
// boot and wired into a chi.Mux by NewRouter, mirroring the teacher's
// Handlers struct in cmd/api.
type Handlers struct {
	Tokens    *auth.TokenService
	AuthSvc   *auth.Service
	Buckets   *auth.Buckets
	Ledger    *ledger.Engine
	Workflow  *workflow.Service
	Directory *registry.Directory
	Search    *registry.Search
	Audit     *audit.Service
	Ingestor  *ingestion.Ingestor
	Policy    fiscalpolicy.FiscalPolicy
}

// RouterConfig holds the request-independent settings setupRouter needs
// that are not themselves a domain service (§6: "allowed origins for
// browser clients").
type RouterConfig struct {
	AllowedOrigins []string
	CSRFHeaderName string
}

// NewRouter builds the complete /v1/ route tree (§6), the chi middleware
// stack, and CORS/rate-limit wiring. Route shape follows the teacher's
// cmd/api/main.go setupRouter.
func NewRouter(h *Handlers, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(secmw.SecurityHeaders)
	r.Use(secmw.RequestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(func(next http.Handler) http.Handler {
		return h.Buckets.Middleware(auth.BucketDefault, next)
	})

	r.Get("/health", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return h.Buckets.Middleware(auth.BucketAuth, next)
			})
			r.Post("/auth/login", h.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.Tokens.Middleware)
			r.Use(auth.RequireCSRF(cfg.CSRFHeaderName))

			r.Post("/auth/logout", h.handleLogout)

			r.Get("/employees", h.handleListEmployees)
			r.Get("/employees/search", h.handleSearchEmployees)
			r.Get("/employees/{num}/leave-info", h.handleEmployeeLeaveInfo)

			r.Post("/leave-requests", h.handleCreateRequest)
			r.Get("/leave-requests", h.handleListRequests)
			r.Patch("/leave-requests/{id}/cancel", h.handleCancelRequest)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(string(models.RoleApprover), string(models.RoleAdmin)))
				r.Patch("/leave-requests/{id}/approve", h.handleApproveRequest)
				r.Patch("/leave-requests/{id}/reject", h.handleRejectRequest)
				r.Patch("/leave-requests/{id}/revert", h.handleRevertRequest)
			})

			r.Get("/fiscal/balance/{num}", h.handleFiscalBalance)
			r.Get("/compliance/five-day/{year}", h.handleFiveDayCompliance)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(string(models.RoleAdmin)))
				r.Post("/fiscal/carry-over", h.handleCarryOver)

				r.Group(func(r chi.Router) {
					r.Use(func(next http.Handler) http.Handler {
						return h.Buckets.Middleware(auth.BucketSync, next)
					})
					r.Post("/sync/vacation", h.handleSyncVacation)
					r.Post("/sync/register", h.handleSyncRegister)
				})

				r.Get("/audit", h.handleListAudit)
			})
		})
	})

	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, map[string]string{"status": "ok"})
}
