package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselink/leaselink/internal/domain"
	"github.com/leaselink/leaselink/pkg/database"
	apperrors "github.com/leaselink/leaselink/pkg/errors"
)

func newPaymentTestFixture(t *testing.T) (*PaymentRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewPaymentRepository(mock)
	return repo, mock
}

func samplePayment() *domain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Payment{
		ID:         "pay-1",
		PropertyID: "p-1",
		OwnerID:    "u-owner",
		TenantID:   "u-tenant",
		Amount:     2500000,
		Currency:   "INR",
		Status:     domain.PaymentStatusPending,
		PaidAt:     nil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func paymentColumns() []string {
	return []string{
		"id", "property_id", "owner_id", "tenant_id", "amount", "currency", "status", "paid_at", "created_at", "updated_at",
	}
}

func paymentRow(p *domain.Payment) *pgxmock.Rows {
	return pgxmock.NewRows(paymentColumns()).AddRow(
		p.ID, p.PropertyID, p.OwnerID, p.TenantID, p.Amount, p.Currency, p.Status, p.PaidAt, p.CreatedAt, p.UpdatedAt,
	)
}

func TestPaymentRepository_Create_Success(t *testing.T) {
	repo, mock := newPaymentTestFixture(t)
	defer mock.Close()

	p := samplePayment()

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(p.ID, p.PropertyID, p.OwnerID, p.TenantID, p.Amount, p.Currency, p.Status, p.PaidAt, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newPaymentTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(paymentColumns()))

	got, err := repo.GetByID(context.Background(), "missing")

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_ListByOwner(t *testing.T) {
	repo, mock := newPaymentTestFixture(t)
	defer mock.Close()

	p := samplePayment()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs(p.OwnerID).
		WillReturnRows(paymentRow(p))

	got, err := repo.ListByOwner(context.Background(), p.OwnerID)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *p, got[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_ListByTenant_Empty(t *testing.T) {
	repo, mock := newPaymentTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("u-tenant").
		WillReturnRows(pgxmock.NewRows(paymentColumns()))

	got, err := repo.ListByTenant(context.Background(), "u-tenant")

	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
