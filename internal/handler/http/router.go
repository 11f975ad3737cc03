package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/30-dung/salon-web/internal/service"
	"github.com/30-dung/salon-web/pkg/health"
	"github.com/30-dung/salon-web/pkg/middleware"
)

// catalogMaxAge is the browser cache lifetime of catalog lists, in seconds.
const catalogMaxAge = 300

// Services groups the application services the routes call.
type Services struct {
	Sessions *service.SessionService
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Booking  *service.BookingService
	Reviews  *service.ReviewService
	History  *service.HistoryService
	Feedback *service.FeedbackService
}

// RouterConfig holds the HTTP-facing settings.
type RouterConfig struct {
	Cookie         CookieConfig
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsCIDRs   []string
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all salon web routes registered. The
// rate limiter's eviction loop stops when ctx is done.
func NewRouter(
	ctx context.Context,
	svc Services,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("salon-web"))
	r.Use(middleware.Tracing("salon-web"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.With(middleware.IPAllowlist(cfg.MetricsCIDRs, logger)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	authHandler := NewAuthHandler(svc.Auth, svc.Sessions, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Sessions, logger)
	bookingHandler := NewBookingHandler(svc.Booking, svc.Sessions, logger)
	reviewHandler := NewReviewHandler(svc.Reviews, svc.Sessions, logger)
	historyHandler := NewHistoryHandler(svc.History, svc.Sessions, logger)
	feedbackHandler := NewFeedbackHandler(svc.Feedback, svc.Sessions, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(ContentTypeJSON)
		r.Use(Session(svc.Sessions, cfg.Cookie, logger))

		mountRoutes(r, routeHandlers{
			auth:     authHandler,
			catalog:  catalogHandler,
			booking:  bookingHandler,
			reviews:  reviewHandler,
			history:  historyHandler,
			feedback: feedbackHandler,
		}, logger)
	})

	return r
}

type routeHandlers struct {
	auth     *AuthHandler
	catalog  *CatalogHandler
	booking  *BookingHandler
	reviews  *ReviewHandler
	history  *HistoryHandler
	feedback *FeedbackHandler
}

// mountRoutes registers the /api/v1 endpoints on r, which must already carry
// the Session middleware.
func mountRoutes(r chi.Router, h routeHandlers, logger *slog.Logger) {
	requireAuth := RequireAuth(logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.auth.Register)
		r.Post("/login", h.auth.Login)
		r.Post("/logout", h.auth.Logout)
		r.Post("/forgot-password", h.auth.ForgotPassword)
		r.Post("/reset-password", h.auth.ResetPassword)
		r.With(requireAuth).Get("/me", h.auth.Me)
	})

	r.Route("/stores", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))
			r.Get("/", h.catalog.ListStores)
			r.Get("/cities", h.catalog.Cities)
			r.Get("/districts", h.catalog.Districts)
			r.Get("/locate", h.catalog.Locate)
			r.Get("/{id}", h.catalog.GetStore)
			r.Get("/{id}/services", h.catalog.Services)
			r.Get("/{id}/employees", h.catalog.Employees)
		})
		r.Get("/search", h.catalog.Search)
		r.Get("/{id}/reviews/summary", h.reviews.Summary)
		r.Get("/{id}/reviews", h.reviews.List)
	})

	r.Route("/booking", func(r chi.Router) {
		r.Get("/", h.booking.Resume)
		r.Post("/events", h.booking.Apply)
		r.Get("/slots", h.booking.Slots)
		r.With(requireAuth).Post("/submit", h.booking.Submit)
	})

	r.With(requireAuth).Get("/appointments/{id}", h.booking.Confirmation)

	r.Route("/history", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.history.List)
		r.Post("/{id}/cancel", h.history.Cancel)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.reviews.Create)
		r.Post("/{id}/replies", h.reviews.Reply)
	})

	r.Post("/feedback", h.feedback.Submit)
}
