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
	"github.com/leaselink/leaselink/pkg/pagination"
)

// PropertyService implements the business logic for property management.
type PropertyService struct {
	propertyRepo repository.PropertyRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewPropertyService creates a new property service.
func NewPropertyService(
	propertyRepo repository.PropertyRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		producer:     producer,
		logger:       logger,
	}
}

// AmenityInput holds the parameters for one amenity attached to a property.
type AmenityInput struct {
	Name          string
	Included      bool
	MonthlyCharge int64
}

// CreatePropertyInput holds the parameters for creating a property.
type CreatePropertyInput struct {
	Name      string
	Location  string
	Type      string
	Rent      int64
	DueDate   int
	Photos    []string
	Amenities []AmenityInput
}

// UpdatePropertyInput holds the parameters for updating a property.
// Nil fields are left unchanged.
type UpdatePropertyInput struct {
	Name     *string
	Location *string
	Type     *string
	Rent     *int64
	DueDate  *int
	Photos   *[]string
}

// PropertyDetail pairs a property with its amenities.
type PropertyDetail struct {
	Property  *domain.Property `json:"property"`
	Amenities []domain.Amenity `json:"amenities"`
}

// Create validates the input and persists a new property for the owner.
func (s *PropertyService) Create(ctx context.Context, ownerID string, input CreatePropertyInput) (*PropertyDetail, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Location == "" {
		return nil, apperrors.InvalidInput("location is required")
	}
	if !domain.IsValidPropertyType(input.Type) {
		return nil, apperrors.InvalidInput("invalid property type")
	}
	if input.Rent <= 0 {
		return nil, apperrors.InvalidInput("rent must be positive")
	}
	if !domain.IsValidDueDate(input.DueDate) {
		return nil, apperrors.InvalidInput("due date must be a day of month between 1 and 31")
	}

	now := time.Now().UTC()
	property := &domain.Property{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      input.Name,
		Location:  input.Location,
		Type:      input.Type,
		Rent:      input.Rent,
		DueDate:   input.DueDate,
		Photos:    input.Photos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if property.Photos == nil {
		property.Photos = []string{}
	}

	amenities, err := buildAmenities(property.ID, input.Amenities, now)
	if err != nil {
		return nil, err
	}

	if err := s.propertyRepo.Create(ctx, property, amenities); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}

	if err := s.producer.PublishPropertyCreated(ctx, property); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish property.created event",
			slog.String("property_id", property.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "property created",
		slog.String("property_id", property.ID),
		slog.String("owner_id", ownerID),
	)

	return &PropertyDetail{Property: property, Amenities: amenities}, nil
}

// Get returns a property with its amenities. Only the owning user may read it.
func (s *PropertyService) Get(ctx context.Context, ownerID, propertyID string) (*PropertyDetail, error) {
	property, err := s.requireOwned(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	amenities, err := s.propertyRepo.ListAmenities(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list amenities: %w", err)
	}

	return &PropertyDetail{Property: property, Amenities: amenities}, nil
}

// List returns a page of the owner's properties.
func (s *PropertyService) List(ctx context.Context, ownerID string, params pagination.Params) (pagination.Result[domain.Property], error) {
	properties, total, err := s.propertyRepo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return pagination.Result[domain.Property]{}, fmt.Errorf("list properties: %w", err)
	}

	return pagination.NewResult(properties, total, params), nil
}

// Update applies partial changes to an owned property.
func (s *PropertyService) Update(ctx context.Context, ownerID, propertyID string, input UpdatePropertyInput) (*domain.Property, error) {
	property, err := s.requireOwned(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name cannot be empty")
		}
		property.Name = *input.Name
	}
	if input.Location != nil {
		if *input.Location == "" {
			return nil, apperrors.InvalidInput("location cannot be empty")
		}
		property.Location = *input.Location
	}
	if input.Type != nil {
		if !domain.IsValidPropertyType(*input.Type) {
			return nil, apperrors.InvalidInput("invalid property type")
		}
		property.Type = *input.Type
	}
	if input.Rent != nil {
		if *input.Rent <= 0 {
			return nil, apperrors.InvalidInput("rent must be positive")
		}
		property.Rent = *input.Rent
	}
	if input.DueDate != nil {
		if !domain.IsValidDueDate(*input.DueDate) {
			return nil, apperrors.InvalidInput("due date must be a day of month between 1 and 31")
		}
		property.DueDate = *input.DueDate
	}
	if input.Photos != nil {
		property.Photos = *input.Photos
		if property.Photos == nil {
			property.Photos = []string{}
		}
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}

	s.logger.InfoContext(ctx, "property updated",
		slog.String("property_id", property.ID),
		slog.String("owner_id", ownerID),
	)

	return property, nil
}

// ReplaceAmenities swaps the full amenity set of an owned property.
func (s *PropertyService) ReplaceAmenities(ctx context.Context, ownerID, propertyID string, inputs []AmenityInput) ([]domain.Amenity, error) {
	if _, err := s.requireOwned(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}

	amenities, err := buildAmenities(propertyID, inputs, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.propertyRepo.ReplaceAmenities(ctx, propertyID, amenities); err != nil {
		return nil, fmt.Errorf("replace amenities: %w", err)
	}

	s.logger.InfoContext(ctx, "amenities replaced",
		slog.String("property_id", propertyID),
		slog.Int("count", len(amenities)),
	)

	return amenities, nil
}

// Delete removes an owned property and all of its amenities.
func (s *PropertyService) Delete(ctx context.Context, ownerID, propertyID string) error {
	if _, err := s.requireOwned(ctx, ownerID, propertyID); err != nil {
		return err
	}

	if err := s.propertyRepo.Delete(ctx, propertyID); err != nil {
		return fmt.Errorf("delete property: %w", err)
	}

	s.logger.InfoContext(ctx, "property deleted",
		slog.String("property_id", propertyID),
		slog.String("owner_id", ownerID),
	)

	return nil
}

// requireOwned loads a property and verifies it belongs to the given owner.
// A property owned by someone else is reported as not found rather than
// forbidden so property IDs cannot be enumerated.
func (s *PropertyService) requireOwned(ctx context.Context, ownerID, propertyID string) (*domain.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != ownerID {
		return nil, apperrors.NotFound("property", propertyID)
	}
	return property, nil
}

// buildAmenities validates amenity inputs and assigns IDs and timestamps.
func buildAmenities(propertyID string, inputs []AmenityInput, now time.Time) ([]domain.Amenity, error) {
	amenities := make([]domain.Amenity, 0, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return nil, apperrors.InvalidInput("amenity name is required")
		}
		if in.MonthlyCharge < 0 {
			return nil, apperrors.InvalidInput("amenity charge cannot be negative")
		}
		if in.Included && in.MonthlyCharge != 0 {
			return nil, apperrors.InvalidInput("included amenities cannot carry a monthly charge")
		}
		amenities = append(amenities, domain.Amenity{
			ID:            uuid.New().String(),
			PropertyID:    propertyID,
			Name:          in.Name,
			Included:      in.Included,
			MonthlyCharge: in.MonthlyCharge,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return amenities, nil
}
