package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	consenthandler "refchain/internal/consent/handler"
	"refchain/internal/platform/middleware"
	referencehandler "refchain/internal/reference/handler"
	respond "refchain/internal/transport/http/shared/json"
	verificationhandler "refchain/internal/verification/handler"
)

// Handlers groups the domain handlers the router mounts.
type Handlers struct {
	Consent      *consenthandler.Handler
	Reference    *referencehandler.Handler
	Verification *verificationhandler.Handler
}

// NewRouter wires all endpoints with the middleware stack. Tenant-facing
// routes sit behind bearer-JWT auth; provider-facing token routes do not,
// because the reference token in the path is the credential.
func NewRouter(h Handlers, logger *slog.Logger, signingKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Provider callbacks (unauthenticated, token-guarded).
	r.Group(func(pub chi.Router) {
		h.Reference.RegisterPublic(pub)
	})

	// Tenant session routes.
	r.Group(func(priv chi.Router) {
		priv.Use(middleware.Auth(signingKey, logger))
		h.Consent.Register(priv)
		h.Reference.Register(priv)
		h.Verification.Register(priv)
	})

	return r
}
