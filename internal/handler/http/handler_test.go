package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leaselink/leaselink/internal/auth"
	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/internal/event"
	"github.com/leaselink/leaselink/internal/service"
	"github.com/leaselink/leaselink/pkg/httputil"
	pkgkafka "github.com/leaselink/leaselink/pkg/kafka"
	"github.com/leaselink/leaselink/pkg/middleware"
	"github.com/leaselink/leaselink/pkg/pagination"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockResetTokenStore struct {
	mock.Mock
}

func (m *mockResetTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	args := m.Called(ctx, token, userID, ttl)
	return args.Error(0)
}

func (m *mockResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type mockPropertyRepo struct {
	mock.Mock
}

func (m *mockPropertyRepo) Create(ctx context.Context, property *domain.Property, amenities []domain.Amenity) error {
	args := m.Called(ctx, property, amenities)
	return args.Error(0)
}

func (m *mockPropertyRepo) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *mockPropertyRepo) ListByOwner(ctx context.Context, ownerID string, params pagination.Params) ([]domain.Property, int, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Property), args.Int(1), args.Error(2)
}

func (m *mockPropertyRepo) ListAmenities(ctx context.Context, propertyID string) ([]domain.Amenity, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Amenity), args.Error(1)
}

func (m *mockPropertyRepo) ReplaceAmenities(ctx context.Context, propertyID string, amenities []domain.Amenity) error {
	args := m.Called(ctx, propertyID, amenities)
	return args.Error(0)
}

func (m *mockPropertyRepo) Update(ctx context.Context, property *domain.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Payment, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.Payment, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func handlerTestEventProducer() *event.Producer {
	logger := handlerTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func handlerTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute)
}

func testAuthService(userRepo *mockUserRepo, resetTokens *mockResetTokenStore) *service.AuthService {
	return service.NewAuthService(userRepo, resetTokens, handlerTestJWTManager(), handlerTestEventProducer(), 30*time.Minute, handlerTestLogger())
}

func testPropertyService(propertyRepo *mockPropertyRepo) *service.PropertyService {
	return service.NewPropertyService(propertyRepo, handlerTestEventProducer(), handlerTestLogger())
}

func testPaymentService(paymentRepo *mockPaymentRepo, propertyRepo *mockPropertyRepo) *service.PaymentService {
	return service.NewPaymentService(paymentRepo, propertyRepo, handlerTestEventProducer(), handlerTestLogger())
}

// fakeTokenValidator returns a middleware.TokenValidator that always succeeds
// and injects the given user ID and role into the request context.
func fakeTokenValidator(userID, role string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		return &middleware.Claims{UserID: userID, Email: "test@example.com", Role: role}, nil
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

const (
	testOwnerID    = "550e8400-e29b-41d4-a716-446655440001"
	testTenantID   = "550e8400-e29b-41d4-a716-446655440002"
	testPropertyID = "550e8400-e29b-41d4-a716-446655440003"
)

func testOwner() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           testOwnerID,
		Name:         "Priya Sharma",
		Email:        "priya@example.com",
		PasswordHash: "$2a$04$3iEQLl/o2h2Fvcy2S7L/1Ok7CTshcnVNdkv.obB4S7YWh0q9QCwe.",
		Phone:        "9876543210",
		Role:         domain.RoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testProperty() *domain.Property {
	now := time.Now().UTC()
	return &domain.Property{
		ID:        testPropertyID,
		OwnerID:   testOwnerID,
		Name:      "Sunrise Flat",
		Location:  "MG Road, Bengaluru",
		Type:      domain.PropertyTypeApartment,
		Rent:      2500000,
		DueDate:   5,
		Photos:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// setupAuthRouter mirrors the production auth routes.
func setupAuthRouter(handler *AuthHandler, userID string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", handler.Signup)
		r.Post("/login", handler.Login)
		r.Post("/forgot-password", handler.ForgotPassword)
		r.Post("/reset-password", handler.ResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(fakeTokenValidator(userID, domain.RoleOwner)))
			r.Get("/me", handler.Me)
		})
	})
	return r
}

// setupPropertyRouter mirrors the production property routes for one owner.
func setupPropertyRouter(handler *PropertyHandler, ownerID string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/properties", func(r chi.Router) {
		r.Use(middleware.Auth(fakeTokenValidator(ownerID, domain.RoleOwner)))
		r.Use(middleware.RequireRole(domain.RoleOwner))
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
		r.Get("/{id}/amenities", handler.ListAmenities)
		r.Put("/{id}/amenities", handler.ReplaceAmenities)
	})
	return r
}

// setupPaymentRouter mirrors the production payment routes for one user.
func setupPaymentRouter(handler *PaymentHandler, userID, role string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(middleware.Auth(fakeTokenValidator(userID, role)))
		r.Get("/", handler.List)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleTenant))
			r.Post("/", handler.Record)
		})
	})
	return r
}
