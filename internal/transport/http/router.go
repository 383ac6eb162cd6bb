// Package httptransport assembles the HTTP surface: middleware chain,
// operational endpoints, and the domain handlers. It holds no business logic.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civiceye/internal/account"
	complainthandler "civiceye/internal/complaint/handler"
	"civiceye/internal/platform/health"
	"civiceye/internal/platform/middleware"
	"civiceye/internal/pnr"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Logger     *slog.Logger
	Validator  middleware.JWTValidator
	Accounts   *account.Handler
	PNR        *pnr.Handler
	Complaints *complainthandler.Handler
	Health     *health.Handler
}

// NewRouter wires the middleware chain and all route groups.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	// Operational surface stays outside the API group.
	deps.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Accounts.Register(r, deps.Validator)
		deps.PNR.Register(r)
		deps.Complaints.Register(r, deps.Validator)
	})

	return r
}
