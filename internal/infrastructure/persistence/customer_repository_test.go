package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCustomerRepository creates a GormCustomerRepository with a mocked SQL connection
func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCustomerRepository(gormDB), mock, mockDB
}

func TestGormCustomerRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "email", "status", "tax_ids", "address_country"}).
			AddRow(customerID, tenantID, 3, "Globex Corporation", "billing@globex.example", "active", `{"vat":"DE123456789"}`, "DE")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, 3, customer.Version)
		assert.Equal(t, map[string]string{"vat": "DE123456789"}, customer.TaxIDs)
		assert.Equal(t, "DE", customer.Address.Country)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns CUSTOMER_NOT_FOUND for another tenant's customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, customerID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)

		assert.Nil(t, customer)
		assert.ErrorIs(t, err, partner.ErrCustomerNotFound)
		assert.True(t, shared.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_SaveWithLock_Conflict(t *testing.T) {
	repo, mock, mockDB := newMockCustomerRepository(t)
	defer mockDB.Close()

	customer := newCustomer(t, uuid.New(), "Initech", "ap@initech.example")
	customer.IncrementVersion()

	mock.ExpectExec(`UPDATE "customers" SET .* WHERE .*tenant_id = \$\d+ AND id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveWithLock(context.Background(), customer)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_Sqlite(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	globex := seedCustomer(t, db, tenantID, "Globex Corporation", "billing@globex.example")
	seedCustomer(t, db, tenantID, "Initech", "ap@initech.example")
	seedCustomer(t, db, tenantID, "Umbrella Corp", "")
	seedCustomer(t, db, uuid.New(), "Other Tenant Ltd", "")

	t.Run("round trips identity fields", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, globex.ID)
		require.NoError(t, err)
		assert.True(t, found.Snapshot().Equals(globex.Snapshot()))
		assert.Equal(t, partner.CustomerStatusActive, found.Status)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("lists one tenant ordered by name with total", func(t *testing.T) {
		customers, total, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, customers, 2)
		assert.Equal(t, "Globex Corporation", customers[0].Name)
		assert.Equal(t, "Initech", customers[1].Name)
	})

	t.Run("searches case-insensitively", func(t *testing.T) {
		customers, total, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Search: "UMBRELLA", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, customers, 1)
		assert.Equal(t, "Umbrella Corp", customers[0].Name)
	})

	t.Run("saves with version check", func(t *testing.T) {
		current, err := repo.FindByIDForTenant(ctx, tenantID, globex.ID)
		require.NoError(t, err)
		stale, err := repo.FindByIDForTenant(ctx, tenantID, globex.ID)
		require.NoError(t, err)

		identity := partner.CustomerIdentity{
			Name:    current.Name,
			Email:   "accounts@globex.example",
			Address: valueobject.NewAddress("Unter den Linden 1", "Berlin", "", "10117", "DE"),
			TaxIDs:  current.TaxIDs,
		}
		changed, err := current.Update(identity, "", "US", "alice")
		require.NoError(t, err)
		require.True(t, changed)
		require.NoError(t, repo.SaveWithLock(ctx, current))

		_, err = stale.Update(identity, "late edit", "US", "bob")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

		found, err := repo.FindByIDForTenant(ctx, tenantID, globex.ID)
		require.NoError(t, err)
		assert.Equal(t, "accounts@globex.example", found.Email)
		assert.Equal(t, "", found.Notes)
		assert.Equal(t, 2, found.Version)
	})
}
