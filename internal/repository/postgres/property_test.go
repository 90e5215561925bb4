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
	"github.com/leaselink/leaselink/pkg/pagination"
)

func newPropertyTestFixture(t *testing.T) (*PropertyRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewPropertyRepository(mock)
	return repo, mock
}

func sampleProperty() *domain.Property {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Property{
		ID:        "p-1",
		OwnerID:   "u-1234",
		Name:      "Sunrise Flat",
		Location:  "12 Hill Road, Bandra",
		Type:      domain.PropertyTypeApartment,
		Rent:      2500000,
		DueDate:   5,
		Photos:    []string{"https://cdn.example.com/p-1/front.jpg"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleAmenity(propertyID string) domain.Amenity {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Amenity{
		ID:            "a-1",
		PropertyID:    propertyID,
		Name:          "Water",
		Included:      true,
		MonthlyCharge: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func propertyColumns() []string {
	return []string{
		"id", "owner_id", "name", "location", "type", "rent", "due_date", "photos", "created_at", "updated_at",
	}
}

func TestPropertyRepository_Create_WithAmenities(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	defer mock.Close()

	p := sampleProperty()
	a := sampleAmenity(p.ID)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO properties").
		WithArgs(p.ID, p.OwnerID, p.Name, p.Location, p.Type, p.Rent, p.DueDate, p.Photos, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO property_amenities").
		WithArgs(a.ID, a.PropertyID, a.Name, a.Included, a.MonthlyCharge, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), p, []domain.Amenity{a})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_Create_RollsBackOnAmenityFailure(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	defer mock.Close()

	p := sampleProperty()
	a := sampleAmenity(p.ID)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO properties").
		WithArgs(p.ID, p.OwnerID, p.Name, p.Location, p.Type, p.Rent, p.DueDate, p.Photos, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO property_amenities").
		WithArgs(a.ID, a.PropertyID, a.Name, a.Included, a.MonthlyCharge, a.CreatedAt, a.UpdatedAt).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), p, []domain.Amenity{a})

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM properties").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(propertyColumns()))

	got, err := repo.GetByID(context.Background(), "missing")

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_ListByOwner(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	defer mock.Close()

	p := sampleProperty()
	params := pagination.DefaultParams()

	cols := append(propertyColumns(), "total_count")
	rows := pgxmock.NewRows(cols).AddRow(
		p.ID, p.OwnerID, p.Name, p.Location, p.Type, p.Rent, p.DueDate, p.Photos, p.CreatedAt, p.UpdatedAt, 7,
	)

	mock.ExpectQuery("SELECT (.+) FROM properties").
		WithArgs(p.OwnerID, params.PerPage, params.Offset).
		WillReturnRows(rows)

	got, total, err := repo.ListByOwner(context.Background(), p.OwnerID, params)

	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, got, 1)
	assert.Equal(t, *p, got[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_ReplaceAmenities(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	defer mock.Close()

	a := sampleAmenity("p-1")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM property_amenities").
		WithArgs("p-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO property_amenities").
		WithArgs(a.ID, a.PropertyID, a.Name, a.Included, a.MonthlyCharge, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.ReplaceAmenities(context.Background(), "p-1", []domain.Amenity{a})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_ReplaceAmenities_EmptySetClearsAll(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM property_amenities").
		WithArgs("p-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	err := repo.ReplaceAmenities(context.Background(), "p-1", nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM properties").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
