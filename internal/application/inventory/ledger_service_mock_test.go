package inventory_test

import (
	"context"
	"testing"

	"github.com/erp/retail/internal/application/inventory"
	appshared "github.com/erp/retail/internal/application/shared"
	domain "github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) (map[string]*domain.Product, error) {
	args := m.Called(ctx, tenantID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindCodesWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	args := m.Called(ctx, tenantID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) CostPrices(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockStockEventRepository is a mock implementation of StockEventRepository
type MockStockEventRepository struct {
	mock.Mock
}

func (m *MockStockEventRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.StockEvent, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockEvent), args.Error(1)
}

func (m *MockStockEventRepository) FindPurchases(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]domain.StockEvent, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.StockEvent), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockEventRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]domain.StockEvent, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockEvent), args.Error(1)
}

func (m *MockStockEventRepository) CostBases(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]domain.CostBasis, error) {
	args := m.Called(ctx, tenantID, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostBasis), args.Error(1)
}

func (m *MockStockEventRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockEventRepository) Create(ctx context.Context, event *domain.StockEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStockEventRepository) Save(ctx context.Context, event *domain.StockEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStockEventRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func newMockedLedger() (*inventory.LedgerService, *MockProductRepository, *MockStockEventRepository) {
	products := new(MockProductRepository)
	events := new(MockStockEventRepository)
	repos := &appshared.RepositorySet{ProductRepo: products, StockEventRepo: events}
	return inventory.NewLedgerService(appshared.NewNoOpTransactionScope(repos), repos), products, events
}

func stockedProduct(tenantID uuid.UUID, stock int) *domain.Product {
	p, _ := domain.NewProduct(tenantID, domain.ProductDetails{
		Name:      "Walnut",
		Code:      "W101",
		CostPrice: decimal.NewFromInt(6),
		Price:     decimal.NewFromInt(10),
	})
	p.Stock = stock
	return p
}

func TestAdjustStock_RejectedAdjustmentWritesNothing(t *testing.T) {
	svc, products, events := newMockedLedger()
	tenantID := uuid.New()
	product := stockedProduct(tenantID, 2)

	products.On("FindByIDForUpdate", mock.Anything, tenantID, product.ID).Return(product, nil)

	_, err := svc.AdjustStock(context.Background(), tenantID, inventory.AdjustStockCommand{ProductID: product.ID, Delta: -3})
	require.Error(t, err)
	assert.Equal(t, "Invalid stock adjustment", shared.AsDomainError(err).Title)

	products.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdjustStock_ConflictStopsBeforeTheEvent(t *testing.T) {
	svc, products, events := newMockedLedger()
	tenantID := uuid.New()
	product := stockedProduct(tenantID, 2)

	products.On("FindByIDForUpdate", mock.Anything, tenantID, product.ID).Return(product, nil)
	products.On("SaveWithLock", mock.Anything, product).Return(shared.NewConflictError("Product"))

	_, err := svc.AdjustStock(context.Background(), tenantID, inventory.AdjustStockCommand{ProductID: product.ID, Delta: 1})
	assert.True(t, shared.IsConflict(err))
	events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdjustStock_RecordsEventAtCostPrice(t *testing.T) {
	svc, products, events := newMockedLedger()
	tenantID := uuid.New()
	product := stockedProduct(tenantID, 2)

	products.On("FindByIDForUpdate", mock.Anything, tenantID, product.ID).Return(product, nil)
	products.On("SaveWithLock", mock.Anything, product).Return(nil)
	events.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.StockEvent) bool {
		return e.Kind == domain.StockEventAdjustment &&
			e.Quantity == 5 &&
			e.UnitCost.Equal(decimal.NewFromInt(6)) &&
			e.TotalCost.Equal(decimal.NewFromInt(30)) &&
			e.TenantID == tenantID
	})).Return(nil)

	result, err := svc.AdjustStock(context.Background(), tenantID, inventory.AdjustStockCommand{ProductID: product.ID, Delta: 5, Reason: "recount"})
	require.NoError(t, err)
	assert.Equal(t, 7, result.NewStock)
	products.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestAverageUnitCost_NilTenantIsUnauthorized(t *testing.T) {
	svc, products, events := newMockedLedger()

	_, err := svc.AverageUnitCost(context.Background(), uuid.Nil, []uuid.UUID{uuid.New()})
	assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
	products.AssertNotCalled(t, "CostPrices", mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "CostBases", mock.Anything, mock.Anything, mock.Anything)
}
