package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/pkg/database"
	apperrors "github.com/leaselink/leaselink/pkg/errors"
)

// PaymentRepository implements repository.PaymentRepository using PostgreSQL.
type PaymentRepository struct {
	db database.DBTX
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(db database.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment record into the database.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, property_id, owner_id, tenant_id, amount, currency, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.PropertyID,
		p.OwnerID,
		p.TenantID,
		p.Amount,
		p.Currency,
		p.Status,
		p.PaidAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, property_id, owner_id, tenant_id, amount, currency, status, paid_at, created_at, updated_at
		FROM payments
		WHERE id = $1`

	var p domain.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.PropertyID,
		&p.OwnerID,
		&p.TenantID,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	return &p, nil
}

// ListByOwner returns all payments for properties owned by the given user.
func (r *PaymentRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Payment, error) {
	query := `
		SELECT id, property_id, owner_id, tenant_id, amount, currency, status, paid_at, created_at, updated_at
		FROM payments
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	return r.listPayments(ctx, query, ownerID)
}

// ListByTenant returns all payments made by the given tenant.
func (r *PaymentRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Payment, error) {
	query := `
		SELECT id, property_id, owner_id, tenant_id, amount, currency, status, paid_at, created_at, updated_at
		FROM payments
		WHERE tenant_id = $1
		ORDER BY created_at DESC`

	return r.listPayments(ctx, query, tenantID)
}

// listPayments is a helper that executes a query returning payment rows.
func (r *PaymentRepository) listPayments(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID,
			&p.PropertyID,
			&p.OwnerID,
			&p.TenantID,
			&p.Amount,
			&p.Currency,
			&p.Status,
			&p.PaidAt,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}

	return payments, nil
}
