package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	repos    *persistence.Repositories
	svc      *StockService
	events   *recordingPublisher
	supplier *partner.Supplier
	products []*catalog.Product
	customer *partner.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testdb.New(t)
	repos := persistence.NewRepositories(db)

	supplier, err := partner.NewSupplier(partner.SupplierDetails{
		Name: "Fresh Farms", Address: "1 Mill Lane", Phone: "0112345678", Email: "sales@freshfarms.example",
	})
	require.NoError(t, err)
	require.NoError(t, repos.Suppliers.Save(ctx, supplier))

	var products []*catalog.Product
	for _, name := range []string{"Milk", "Bread", "Cheese"} {
		p, err := catalog.NewProduct(name, name+" description")
		require.NoError(t, err)
		require.NoError(t, repos.Products.Save(ctx, p))
		products = append(products, p)
	}

	customer, err := partner.NewCustomer(partner.CustomerDetails{
		FirstName: "Ravi", LastName: "Fernando", Email: "ravi@example.com", Phone: "0779998888",
	})
	require.NoError(t, err)
	require.NoError(t, repos.Customers.Save(ctx, customer))

	events := &recordingPublisher{}
	svc := NewStockService(repos.Stocks, repos.Suppliers, repos.Products, repos.Customers, repos.Transactions, zaptest.NewLogger(t))
	svc.SetEventPublisher(events)

	return &fixture{
		db:       db,
		repos:    repos,
		svc:      svc,
		events:   events,
		supplier: supplier,
		products: products,
		customer: customer,
	}
}

func item(productID uuid.UUID, qty int, price string) LineItemInput {
	return LineItemInput{
		ProductID:       productID,
		Quantity:        Quantity(qty),
		Price:           decimal.RequireFromString(price),
		ManufactureDate: "2024-01-01",
		ExpirationDate:  "2024-06-01",
	}
}

func (f *fixture) addSupplier(t *testing.T, name, phone, email string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(partner.SupplierDetails{Name: name, Address: "2 Dock Road", Phone: phone, Email: email})
	require.NoError(t, err)
	require.NoError(t, f.repos.Suppliers.Save(context.Background(), s))
	return s
}

func (f *fixture) createStock(t *testing.T, items ...LineItemInput) *StockResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), CreateStockInput{SupplierID: f.supplier.ID, Items: items})
	require.NoError(t, err)
	return resp
}

func sellingPrice(s string) *SellingPriceInput {
	return &SellingPriceInput{Decimal: decimal.RequireFromString(s)}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
