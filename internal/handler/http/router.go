package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/internal/service"
	"github.com/leaselink/leaselink/pkg/health"
	"github.com/leaselink/leaselink/pkg/middleware"
)

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	authService *service.AuthService,
	propertyService *service.PropertyService,
	paymentService *service.PaymentService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("leaselink"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the auth service.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := authService.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(authService, logger)
	propertyHandler := NewPropertyHandler(propertyService, logger)
	paymentHandler := NewPaymentHandler(paymentService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public auth endpoints
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Get("/auth/me", authHandler.Me)

			// Property management is owner-only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleOwner))

				r.Post("/properties", propertyHandler.Create)
				r.Get("/properties", propertyHandler.List)
				r.Get("/properties/{id}", propertyHandler.Get)
				r.Put("/properties/{id}", propertyHandler.Update)
				r.Delete("/properties/{id}", propertyHandler.Delete)
				r.Get("/properties/{id}/amenities", propertyHandler.ListAmenities)
				r.Put("/properties/{id}/amenities", propertyHandler.ReplaceAmenities)
			})

			// Payments: owners and tenants both see their own slice.
			r.Get("/payments", paymentHandler.List)

			// Recording a payment is tenant-only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleTenant))

				r.Post("/payments", paymentHandler.Record)
			})
		})
	})

	return r
}
