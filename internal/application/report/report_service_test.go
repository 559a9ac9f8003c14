package report

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/report"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/internal/infrastructure/persistence/testdb"
	"github.com/stockroom/backend/internal/infrastructure/printing"
)

var reportDay = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repos  *persistence.Repositories
	stocks *inventoryapp.StockService
	svc    *ReportService
}

func newFixture(t *testing.T, renderer Renderer) *fixture {
	t.Helper()
	repos := persistence.NewRepositories(testdb.New(t))
	logger := zaptest.NewLogger(t)
	if renderer == nil {
		renderer = printing.NewNativeRenderer("Rs.", printing.WithoutCompression())
	}
	svc := NewReportService(repos.Stocks, repos.Products, repos.Suppliers, renderer, logger)
	svc.SetClock(func() time.Time { return reportDay })
	return &fixture{
		repos:  repos,
		stocks: inventoryapp.NewStockService(repos.Stocks, repos.Suppliers, repos.Products, repos.Customers, repos.Transactions, logger),
		svc:    svc,
	}
}

func (f *fixture) supplier(t *testing.T, name, phone string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(partner.SupplierDetails{Name: name, Address: "1 Mill Lane", Phone: phone, Email: phone + "@example.com"})
	require.NoError(t, err)
	require.NoError(t, f.repos.Suppliers.Save(context.Background(), s))
	return s
}

func (f *fixture) product(t *testing.T, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, name+" description")
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.Save(context.Background(), p))
	return p
}

func lineItem(p *catalog.Product, qty int, price string) inventoryapp.LineItemInput {
	return inventoryapp.LineItemInput{
		ProductID:       p.ID,
		Quantity:        inventoryapp.Quantity(qty),
		Price:           decimal.RequireFromString(price),
		ManufactureDate: "2024-01-01",
		ExpirationDate:  "2024-06-01",
	}
}

func TestReportService_StockSummaryEndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s := f.supplier(t, "Fresh Farms", "0110000001")
	p := f.product(t, "Milk")

	in := lineItem(p, 15, "100")
	in.SellingPrice = &inventoryapp.SellingPriceInput{Decimal: decimal.NewFromInt(150)}
	_, err := f.stocks.Create(ctx, inventoryapp.CreateStockInput{SupplierID: s.ID, Items: []inventoryapp.LineItemInput{in}})
	require.NoError(t, err)

	summary, err := f.svc.BuildStockSummary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(1500)), "total value %s", summary.TotalValue)
	assert.Equal(t, int64(15), summary.TotalQuantity)
	assert.Equal(t, 1, summary.UniqueProducts)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Milk", summary.LowStock[0].ProductName)
	assert.Equal(t, 152, summary.LowStock[0].DaysToExpiry)

	var buf bytes.Buffer
	require.NoError(t, f.svc.StockSummary(ctx, &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "(Rs. 1,500.00) Tj")
	assert.Contains(t, out, "(Milk) Tj")
	assert.Contains(t, out, `(Low Stock Alerts \(Less than 20 items\)) Tj`)
}

func TestReportService_ZeroData(t *testing.T) {
	f := newFixture(t, nil)

	var summary, suppliers bytes.Buffer
	require.NoError(t, f.svc.StockSummary(context.Background(), &summary))
	require.NoError(t, f.svc.SupplierSummary(context.Background(), &suppliers))

	for _, out := range []string{summary.String(), suppliers.String()} {
		assert.True(t, strings.HasPrefix(out, "%PDF-"))
		assert.True(t, strings.HasSuffix(out, "%%EOF\n"))
		assert.Contains(t, out, "(No stock has been recorded yet.) Tj")
	}
	assert.Contains(t, summary.String(), "(Rs. 0.00) Tj")
}

func TestReportService_SupplierTotalsMatchLedger(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	acme := f.supplier(t, "Acme", "0110000001")
	bolt := f.supplier(t, "Bolt", "0110000002")
	milk := f.product(t, "Milk")
	rice := f.product(t, "Rice")

	for _, in := range []inventoryapp.CreateStockInput{
		{SupplierID: acme.ID, Items: []inventoryapp.LineItemInput{lineItem(milk, 15, "100"), lineItem(rice, 40, "2.5")}},
		{SupplierID: acme.ID, Items: []inventoryapp.LineItemInput{lineItem(rice, 3, "7.25")}},
		{SupplierID: bolt.ID, Items: []inventoryapp.LineItemInput{lineItem(milk, 100, "1.1")}},
	} {
		_, err := f.stocks.Create(ctx, in)
		require.NoError(t, err)
	}

	rep, err := f.svc.BuildSupplierReport(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Suppliers, 2)
	assert.Equal(t, "Acme", rep.Suppliers[0].SupplierName)
	assert.Equal(t, 2, rep.Suppliers[0].StockCount)

	for _, section := range rep.Suppliers {
		sum := decimal.Zero
		for _, stock := range section.Stocks {
			ledger, err := f.stocks.GetByID(ctx, stock.StockID)
			require.NoError(t, err)
			assert.True(t, stock.TotalValue.Equal(ledger.TotalValue), "stock %s: %s != %s", stock.StockID, stock.TotalValue, ledger.TotalValue)
			assert.Equal(t, ledger.TotalQuantity, stock.TotalQuantity)
			sum = sum.Add(stock.TotalValue)
		}
		assert.True(t, section.TotalValue.Equal(sum))
	}
	assert.True(t, rep.Suppliers[0].TotalValue.Equal(decimal.RequireFromString("1621.75")))

	var buf bytes.Buffer
	require.NoError(t, f.svc.SupplierSummary(ctx, &buf))
	assert.Contains(t, buf.String(), `(Low Stock Alert: Only 15 left! \(Milk\)) Tj`)
	assert.Contains(t, buf.String(), `(Low Stock Alert: Only 3 left! \(Rice\)) Tj`)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderStockSummary(ctx context.Context, w io.Writer, s report.StockSummary) error {
	return m.Called(ctx, w, s).Error(0)
}

func (m *mockRenderer) RenderSupplierReport(ctx context.Context, w io.Writer, r report.SupplierReport) error {
	return m.Called(ctx, w, r).Error(0)
}

func TestReportService_RenderErrorIsWrapped(t *testing.T) {
	renderer := &mockRenderer{}
	renderer.On("RenderStockSummary", mock.Anything, mock.Anything, mock.Anything).Return(io.ErrShortWrite)
	f := newFixture(t, renderer)

	err := f.svc.StockSummary(context.Background(), io.Discard)

	require.ErrorIs(t, err, io.ErrShortWrite)
	assert.Contains(t, err.Error(), "render stock summary")
	renderer.AssertExpectations(t)
}

func TestReportService_SummaryMatchesTotals(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s := f.supplier(t, "Acme", "0110000001")
	p := f.product(t, "Milk")
	_, err := f.stocks.Create(ctx, inventoryapp.CreateStockInput{SupplierID: s.ID, Items: []inventoryapp.LineItemInput{
		lineItem(p, 19, "3.333"), lineItem(p, 20, "0.01"),
	}})
	require.NoError(t, err)

	all, err := f.repos.Stocks.AllItems(ctx)
	require.NoError(t, err)
	summary, err := f.svc.BuildStockSummary(ctx)
	require.NoError(t, err)

	totals := inventory.Totals(all)
	assert.True(t, summary.TotalValue.Equal(totals.Value))
	assert.Equal(t, totals.Quantity, summary.TotalQuantity)
	require.Len(t, summary.LowStock, 1, "quantity 19 is low stock, 20 is not")
	assert.Equal(t, 19, summary.LowStock[0].Quantity)
}
