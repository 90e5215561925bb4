package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/pkg/database"
	apperrors "github.com/leaselink/leaselink/pkg/errors"
	"github.com/leaselink/leaselink/pkg/pagination"
)

// PropertyRepository implements repository.PropertyRepository using PostgreSQL.
type PropertyRepository struct {
	db database.DBTX
}

// NewPropertyRepository creates a new PostgreSQL-backed property repository.
func NewPropertyRepository(db database.DBTX) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create inserts a new property together with its amenities in a single transaction.
func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property, amenities []domain.Amenity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	propertyQuery := `
		INSERT INTO properties (id, owner_id, name, location, type, rent, due_date, photos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, propertyQuery,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Location,
		p.Type,
		p.Rent,
		p.DueDate,
		p.Photos,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}

	if err := insertAmenities(ctx, tx, amenities); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a property by its ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	query := `
		SELECT id, owner_id, name, location, type, rent, due_date, photos, created_at, updated_at
		FROM properties
		WHERE id = $1`

	var p domain.Property
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Location,
		&p.Type,
		&p.Rent,
		&p.DueDate,
		&p.Photos,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan property: %w", err)
	}

	if p.Photos == nil {
		p.Photos = []string{}
	}

	return &p, nil
}

// ListByOwner returns a page of properties for the given owner with the total count.
func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string, params pagination.Params) ([]domain.Property, int, error) {
	// Use count(*) OVER() for total count in a single query.
	query := `
		SELECT id, owner_id, name, location, type, rent, due_date, photos, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM properties
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, ownerID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var totalCount int
	properties := make([]domain.Property, 0)

	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Name,
			&p.Location,
			&p.Type,
			&p.Rent,
			&p.DueDate,
			&p.Photos,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan property row: %w", err)
		}
		if p.Photos == nil {
			p.Photos = []string{}
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate property rows: %w", err)
	}

	return properties, totalCount, nil
}

// ListAmenities returns all amenities for the given property ordered by name.
func (r *PropertyRepository) ListAmenities(ctx context.Context, propertyID string) ([]domain.Amenity, error) {
	query := `
		SELECT id, property_id, name, included, monthly_charge, created_at, updated_at
		FROM property_amenities
		WHERE property_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list amenities: %w", err)
	}
	defer rows.Close()

	amenities := make([]domain.Amenity, 0)
	for rows.Next() {
		var a domain.Amenity
		if err := rows.Scan(
			&a.ID,
			&a.PropertyID,
			&a.Name,
			&a.Included,
			&a.MonthlyCharge,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan amenity row: %w", err)
		}
		amenities = append(amenities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate amenity rows: %w", err)
	}

	return amenities, nil
}

// ReplaceAmenities swaps the full amenity set of a property in one transaction.
func (r *PropertyRepository) ReplaceAmenities(ctx context.Context, propertyID string, amenities []domain.Amenity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM property_amenities WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("delete amenities: %w", err)
	}

	if err := insertAmenities(ctx, tx, amenities); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Update modifies an existing property in the database.
func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE properties
		SET name = $1, location = $2, type = $3, rent = $4, due_date = $5, photos = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		p.Name,
		p.Location,
		p.Type,
		p.Rent,
		p.DueDate,
		p.Photos,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("property", p.ID)
	}

	return nil
}

// Delete removes a property and its amenities.
// The amenities table declares ON DELETE CASCADE on property_id.
func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("property", id)
	}

	return nil
}

// insertAmenities bulk-inserts amenity rows within an existing transaction.
func insertAmenities(ctx context.Context, tx pgx.Tx, amenities []domain.Amenity) error {
	query := `
		INSERT INTO property_amenities (id, property_id, name, included, monthly_charge, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, a := range amenities {
		if _, err := tx.Exec(ctx, query,
			a.ID,
			a.PropertyID,
			a.Name,
			a.Included,
			a.MonthlyCharge,
			a.CreatedAt,
			a.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert amenity: %w", err)
		}
	}

	return nil
}
