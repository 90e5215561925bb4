package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/internal/event"
	"github.com/leaselink/leaselink/internal/repository"
	apperrors "github.com/leaselink/leaselink/pkg/errors"
)

// defaultCurrency is used when a payment does not specify one.
const defaultCurrency = "INR"

// PaymentService implements the business logic for rent payments.
type PaymentService struct {
	paymentRepo  repository.PaymentRepository
	propertyRepo repository.PropertyRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	propertyRepo repository.PropertyRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		propertyRepo: propertyRepo,
		producer:     producer,
		logger:       logger,
	}
}

// RecordPaymentInput holds the parameters for recording a rent payment.
type RecordPaymentInput struct {
	PropertyID string
	Amount     int64
	Currency   string
}

// Record creates a payment made by the tenant for the given property.
// The payment is stored as paid with the payment timestamp set to now.
func (s *PaymentService) Record(ctx context.Context, tenantID string, input RecordPaymentInput) (*domain.Payment, error) {
	if input.PropertyID == "" {
		return nil, apperrors.InvalidInput("property id is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.InvalidInput("amount must be positive")
	}

	property, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:         uuid.New().String(),
		PropertyID: property.ID,
		OwnerID:    property.OwnerID,
		TenantID:   tenantID,
		Amount:     input.Amount,
		Currency:   currency,
		Status:     domain.PaymentStatusPaid,
		PaidAt:     &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if err := s.producer.PublishPaymentRecorded(ctx, payment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.recorded event",
			slog.String("payment_id", payment.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment recorded",
		slog.String("payment_id", payment.ID),
		slog.String("property_id", property.ID),
		slog.String("tenant_id", tenantID),
	)

	return payment, nil
}

// List returns the payments visible to the given user. Owners see payments for
// their properties; tenants see payments they made.
func (s *PaymentService) List(ctx context.Context, userID, role string) ([]domain.Payment, error) {
	switch role {
	case domain.RoleOwner:
		payments, err := s.paymentRepo.ListByOwner(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list payments by owner: %w", err)
		}
		return payments, nil
	case domain.RoleTenant:
		payments, err := s.paymentRepo.ListByTenant(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list payments by tenant: %w", err)
		}
		return payments, nil
	default:
		return nil, apperrors.Forbidden("unknown role")
	}
}
