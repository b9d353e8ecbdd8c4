package inventory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/erp/retail/internal/application/inventory"
	domain "github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_Categories(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()

	t.Run("names are unique per tenant", func(t *testing.T) {
		svc, _ := newLedger(t)
		_, err := svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: "Drinks"})
		require.NoError(t, err)

		_, err = svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: " Drinks "})
		require.Error(t, err)
		assert.Equal(t, "Duplicate category", shared.AsDomainError(err).Title)

		_, err = svc.CreateCategory(ctx, testutil.OtherTenantID(), inventory.CategoryCommand{Name: "Drinks"})
		assert.NoError(t, err)
	})

	t.Run("a tenant holds at most the category limit", func(t *testing.T) {
		svc, _ := newLedger(t)
		for i := 0; i < domain.MaxCategoriesPerTenant; i++ {
			_, err := svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: fmt.Sprintf("Category %d", i)})
			require.NoError(t, err)
		}
		_, err := svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: "One Too Many"})
		require.Error(t, err)
		assert.Equal(t, "Category limit reached", shared.AsDomainError(err).Title)

		all, err := svc.ListCategories(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, all, domain.MaxCategoriesPerTenant)
	})

	t.Run("rename keeps names unique", func(t *testing.T) {
		svc, _ := newLedger(t)
		drinks, err := svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: "Drinks"})
		require.NoError(t, err)
		_, err = svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: "Snacks"})
		require.NoError(t, err)

		_, err = svc.RenameCategory(ctx, tenantID, drinks.ID, inventory.CategoryCommand{Name: "Snacks"})
		assert.True(t, shared.IsBusinessRule(err))

		renamed, err := svc.RenameCategory(ctx, tenantID, drinks.ID, inventory.CategoryCommand{Name: "Beverages"})
		require.NoError(t, err)
		assert.Equal(t, "Beverages", renamed.Name)

		_, err = svc.RenameCategory(ctx, tenantID, drinks.ID, inventory.CategoryCommand{Name: "Beverages"})
		assert.NoError(t, err)
	})

	t.Run("a category in use cannot be deleted", func(t *testing.T) {
		svc, _ := newLedger(t)
		drinks, err := svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: "Drinks"})
		require.NoError(t, err)
		_, err = svc.CreateProduct(ctx, tenantID, inventory.CreateProductCommand{Name: "Lemonade", CategoryID: &drinks.ID})
		require.NoError(t, err)

		err = svc.DeleteCategory(ctx, tenantID, drinks.ID)
		require.Error(t, err)
		assert.Equal(t, "Category in use", shared.AsDomainError(err).Title)

		empty, err := svc.CreateCategory(ctx, tenantID, inventory.CategoryCommand{Name: "Empty"})
		require.NoError(t, err)
		require.NoError(t, svc.DeleteCategory(ctx, tenantID, empty.ID))
		assert.True(t, shared.IsNotFound(svc.DeleteCategory(ctx, tenantID, empty.ID)))
	})
}
