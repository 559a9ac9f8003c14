package printing

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/report"
	"github.com/stockroom/backend/internal/domain/shared"
)

type capturingRenderer struct {
	req *RenderRequest
	err error
}

func (c *capturingRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.4 fake"), PageCount: 1}, nil
}

func (c *capturingRenderer) Close() error { return nil }

func TestHTMLReportRenderer_StockSummary(t *testing.T) {
	milk, _, products := sampleProducts()
	items := []inventory.LineItem{
		{ID: uuid.New(), ProductID: milk.ID, Quantity: 15, Price: decimal.NewFromInt(100), ExpirationDate: day(2024, 3, 1)},
	}
	pdfRenderer := &capturingRenderer{}
	r := NewHTMLReportRenderer(pdfRenderer, "Rs.", nil)

	var buf bytes.Buffer
	require.NoError(t, r.RenderStockSummary(context.Background(), &buf, report.BuildStockSummary(items, products, reportNow)))

	assert.Equal(t, "%PDF-1.4 fake", buf.String())
	require.NotNil(t, pdfRenderer.req)
	assert.Equal(t, StockSummaryTitle, pdfRenderer.req.Title)
	assert.NotEmpty(t, pdfRenderer.req.FooterHTML)
	html := pdfRenderer.req.HTML
	assert.Contains(t, html, "<h1>Stock Summary Report</h1>")
	assert.Contains(t, html, "Rs. 1,500.00")
	assert.Contains(t, html, "Low Stock Alerts (Less than 20 items)")
	assert.Contains(t, html, `<tr class="warning">`)
}

func TestHTMLReportRenderer_EscapesNames(t *testing.T) {
	s := partner.Supplier{BaseEntity: shared.NewBaseEntity(), Name: "<script>Acme</script>"}
	stock := inventory.Stock{BaseAggregateRoot: shared.NewBaseAggregateRoot(), SupplierID: s.ID, Status: inventory.StockStatusOpen}
	rep := report.BuildSupplierReport([]inventory.Stock{stock}, nil, map[uuid.UUID]partner.Supplier{s.ID: s}, nil, reportNow)

	r := NewHTMLReportRenderer(&capturingRenderer{}, "", nil)
	html, err := r.RenderHTML(supplierReportTemplate, rep)
	require.NoError(t, err)

	assert.Contains(t, html, "Supplier: &lt;script&gt;Acme&lt;/script&gt;")
	assert.NotContains(t, html, "<script>Acme")
}

func TestHTMLReportRenderer_PropagatesRenderError(t *testing.T) {
	failure := NewRenderError(ErrCodeRenderFailed, "boom", nil)
	r := NewHTMLReportRenderer(&capturingRenderer{err: failure}, "", nil)

	var buf bytes.Buffer
	err := r.RenderSupplierReport(context.Background(), &buf, report.SupplierReport{GeneratedAt: reportNow})

	assert.ErrorIs(t, err, failure)
	assert.Zero(t, buf.Len())
}
