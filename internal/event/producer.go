package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leaselink/leaselink/internal/domain"
	pkgkafka "github.com/leaselink/leaselink/pkg/kafka"
	"github.com/leaselink/leaselink/pkg/logger"
)

// Kafka topic constants for domain events.
const (
	TopicUserRegistered  = "leaselink.user.registered"
	TopicPasswordReset   = "leaselink.user.password_reset"
	TopicPropertyCreated = "leaselink.property.created"
	TopicPaymentRecorded = "leaselink.payment.recorded"
)

// Aggregate type constants.
const (
	AggregateTypeUser     = "user"
	AggregateTypeProperty = "property"
	AggregateTypePayment  = "payment"
)

// Source identifier for events originating from this server.
const Source = "leaselink-server"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// PasswordResetData is the payload for a user.password_reset event.
// The notification consumer sends the reset token to the user by email.
type PasswordResetData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// PropertyCreatedData is the payload for a property.created event.
type PropertyCreatedData struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Rent    int64  `json:"rent"`
}

// PaymentRecordedData is the payload for a payment.recorded event.
type PaymentRecordedData struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// publish stamps the request correlation ID onto the event, when one is
// present in ctx, and hands it to the Kafka producer.
func (p *Producer) publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	return p.kafka.Publish(ctx, topic, event)
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishPasswordReset publishes a user.password_reset event carrying the
// token the notification consumer delivers to the user.
func (p *Producer) PublishPasswordReset(ctx context.Context, userID, email, token string) error {
	data := PasswordResetData{
		UserID: userID,
		Email:  email,
		Token:  token,
	}

	event, err := pkgkafka.NewEvent(TopicPasswordReset, userID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.password_reset event: %w", err)
	}

	if err := p.publish(ctx, TopicPasswordReset, event); err != nil {
		return fmt.Errorf("publish user.password_reset event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.password_reset event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishPropertyCreated publishes a property.created event.
func (p *Producer) PublishPropertyCreated(ctx context.Context, property *domain.Property) error {
	data := PropertyCreatedData{
		ID:      property.ID,
		OwnerID: property.OwnerID,
		Name:    property.Name,
		Type:    property.Type,
		Rent:    property.Rent,
	}

	event, err := pkgkafka.NewEvent(TopicPropertyCreated, property.ID, AggregateTypeProperty, Source, data)
	if err != nil {
		return fmt.Errorf("create property.created event: %w", err)
	}

	if err := p.publish(ctx, TopicPropertyCreated, event); err != nil {
		return fmt.Errorf("publish property.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published property.created event",
		slog.String("property_id", property.ID),
		slog.String("owner_id", property.OwnerID),
	)

	return nil
}

// PublishPaymentRecorded publishes a payment.recorded event.
func (p *Producer) PublishPaymentRecorded(ctx context.Context, payment *domain.Payment) error {
	data := PaymentRecordedData{
		ID:         payment.ID,
		PropertyID: payment.PropertyID,
		TenantID:   payment.TenantID,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicPaymentRecorded, payment.ID, AggregateTypePayment, Source, data)
	if err != nil {
		return fmt.Errorf("create payment.recorded event: %w", err)
	}

	if err := p.publish(ctx, TopicPaymentRecorded, event); err != nil {
		return fmt.Errorf("publish payment.recorded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.recorded event",
		slog.String("payment_id", payment.ID),
		slog.String("property_id", payment.PropertyID),
	)

	return nil
}
