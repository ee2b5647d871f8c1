package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger is a dependency checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups what the router exposes. Nil services leave their
// routes answering 503.
type Services struct {
	Resolver     *session.PartyResolver
	Parties      *service.PartyDirectory
	Merchant     *service.MerchantService
	Transactions *service.TransactionService
	Consent      *service.ConsentService
	PointsOfSale *service.PointsOfSaleService
	Verifier     *session.Verifier
	SessionStore Pinger
}

// RouterConfig holds the HTTP level settings.
type RouterConfig struct {
	CORSOrigins []string
	LoginURL    string
	LogoutURL   string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, cfg RouterConfig, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.SessionStore, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/portal", portalMetricsHandler(metrics))

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(svcs.Verifier, cfg.LoginURL, logger))

			// =============================================
			// 1. Session
			// =============================================
			r.Route("/session", func(r chi.Router) {
				if svcs.Resolver == nil {
					r.Handle("/*", unavailable("session"))
					return
				}
				r.Get("/party", selectedPartyHandler(svcs.Resolver, logger))
				r.Post("/logout", logoutHandler(svcs.Resolver, logger))
				r.Group(func(r chi.Router) {
					r.Use(RequirePartyMiddleware(cfg.LogoutURL, logger))
					r.Get("/status", sessionStatusHandler(svcs.Resolver))
					if svcs.Parties != nil {
						r.Get("/parties", listPartiesHandler(svcs.Parties, logger))
					}
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(svcs.Verifier, cfg.LoginURL, logger))
			r.Use(RequirePartyMiddleware(cfg.LogoutURL, logger))

			// =============================================
			// 2. Consent gate
			// =============================================
			if svcs.Consent != nil {
				r.Get("/consent", getConsentHandler(svcs.Consent, logger))
				r.Post("/consent", acceptConsentHandler(svcs.Consent, logger))
			}

			// =============================================
			// 3. Initiatives
			// =============================================
			if svcs.Merchant != nil {
				r.Get("/initiatives", listInitiativesHandler(svcs.Merchant, logger))
				r.Get("/initiatives/{initiativeId}/overview", overviewHandler(svcs.Merchant, logger))
			}

			// =============================================
			// 4. Transactions
			// =============================================
			if svcs.Transactions != nil {
				r.Route("/initiatives/{initiativeId}/transactions", func(r chi.Router) {
					r.Get("/", listTransactionsHandler(svcs.Transactions, domain.VariantPreProcessing, logger))
					r.Get("/processed", listTransactionsHandler(svcs.Transactions, domain.VariantProcessed, logger))
					r.Post("/", createTransactionHandler(svcs.Transactions, logger))
					r.Post("/{trxId}/authorization", authorizeHandler(svcs.Transactions, logger))
					r.Post("/{trxId}/authorization/qrcode", qrCodeHandler(svcs.Transactions, logger))
					r.Post("/{trxId}/cancel", cancelHandler(svcs.Transactions, logger))
				})
			}

			// =============================================
			// 5. Points of sale
			// =============================================
			if svcs.PointsOfSale != nil {
				r.Get("/points-of-sale", listPointsOfSaleHandler(svcs.PointsOfSale, logger))
				r.Put("/points-of-sale", updatePointsOfSaleHandler(svcs.PointsOfSale, logger))
			}
		})
	})

	return r
}

func unavailable(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusServiceUnavailable, name+" service unavailable")
	}
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if store != nil {
			start := time.Now()
			err := store.Ping(r.Context())
			status := "healthy"
			if err != nil {
				status = "degraded"
				logger.Warn("session store ping failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "session-store", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overallStatus, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func portalMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetPortalSnapshot())
	}
}
