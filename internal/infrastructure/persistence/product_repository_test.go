package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProductRepo creates a repository over a mocked postgres connection
func newMockProductRepo(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func testProduct(t *testing.T) *inventory.Product {
	t.Helper()
	p, err := inventory.NewProduct(uuid.New(), inventory.ProductDetails{
		Name:  "Green Tea",
		Code:  "GRE-001",
		Price: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	return p
}

func TestProductRepository_FindByIDsForUpdate(t *testing.T) {
	t.Run("locks rows in id order", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepo(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE .*tenant_id = \$1 AND id IN \(\$2,\$3\).* ORDER BY id ASC FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "version", "stock"}).AddRow(id, tenantID, 3, 7))

		products, err := repo.FindByIDsForUpdate(context.Background(), tenantID, []uuid.UUID{id, uuid.New()})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 7, products[id].Stock)
		assert.Equal(t, 3, products[id].Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ids issues no query", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepo(t)
		defer mockDB.Close()

		products, err := repo.FindByIDsForUpdate(context.Background(), uuid.New(), nil)
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure is unexpected", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepo(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnError(assert.AnError)

		_, err := repo.FindByIDsForUpdate(context.Background(), uuid.New(), []uuid.UUID{uuid.New()})
		require.Error(t, err)
		assert.Equal(t, shared.KindUnexpected, shared.KindOf(err))
	})
}

func TestProductRepository_SaveWithLock(t *testing.T) {
	t.Run("writes with the version predicate and bumps the token", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepo(t)
		defer mockDB.Close()

		product := testProduct(t)
		product.Version = 4

		mock.ExpectQuery(`SELECT "id","version" FROM "products" WHERE id = \$1 AND tenant_id = \$2 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(product.ID, 4))
		mock.ExpectExec(`UPDATE "products" SET .* WHERE .*version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), product))
		assert.Equal(t, 5, product.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale token is a conflict and nothing is written", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepo(t)
		defer mockDB.Close()

		product := testProduct(t)
		product.Version = 4

		mock.ExpectQuery(`SELECT "id","version" FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(product.ID, 5))

		err := repo.SaveWithLock(context.Background(), product)
		require.Error(t, err)
		assert.True(t, shared.IsConflict(err))
		assert.Equal(t, 4, product.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row updated is a conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepo(t)
		defer mockDB.Close()

		product := testProduct(t)
		before := product.Version

		mock.ExpectQuery(`SELECT "id","version" FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(product.ID, product.Version))
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), product)
		assert.True(t, shared.IsConflict(err))
		assert.Equal(t, before, product.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepo(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT "id","version" FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}))

		err := repo.SaveWithLock(context.Background(), testProduct(t))
		assert.True(t, shared.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
