package repository

import (
	"context"
	"time"

	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/pkg/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// PropertyRepository defines the interface for property persistence operations.
type PropertyRepository interface {
	// Create inserts a new property together with its amenities.
	Create(ctx context.Context, property *domain.Property, amenities []domain.Amenity) error

	// GetByID retrieves a property by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Property, error)

	// ListByOwner returns a page of properties belonging to the given owner,
	// along with the total count for pagination.
	ListByOwner(ctx context.Context, ownerID string, params pagination.Params) ([]domain.Property, int, error)

	// ListAmenities returns all amenities for the given property.
	ListAmenities(ctx context.Context, propertyID string) ([]domain.Amenity, error)

	// ReplaceAmenities removes all existing amenities for the property and
	// inserts the given set in a single transaction.
	ReplaceAmenities(ctx context.Context, propertyID string, amenities []domain.Amenity) error

	// Update modifies an existing property in the store.
	Update(ctx context.Context, property *domain.Property) error

	// Delete removes a property and its amenities from the store.
	Delete(ctx context.Context, id string) error
}

// PaymentRepository defines the interface for payment persistence operations.
type PaymentRepository interface {
	// Create inserts a new payment record into the store.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// ListByOwner returns all payments for properties owned by the given user.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Payment, error)

	// ListByTenant returns all payments made by the given tenant.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Payment, error)
}

// ResetTokenStore defines the interface for short-lived password reset tokens.
type ResetTokenStore interface {
	// Save stores a reset token mapped to the user ID with the given TTL.
	Save(ctx context.Context, token, userID string, ttl time.Duration) error

	// Consume atomically retrieves and deletes the token, returning the user ID
	// it was issued for. An unknown or expired token yields ErrNotFound.
	Consume(ctx context.Context, token string) (string, error)
}
