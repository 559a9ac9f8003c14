package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/report"
)

// HTMLReportRenderer renders reports as HTML and prints them through a
// PDFRenderer. The whole PDF is buffered before it is written to the sink.
type HTMLReportRenderer struct {
	pdf    PDFRenderer
	format *Formatter
	logger *zap.Logger
}

// NewHTMLReportRenderer creates an HTMLReportRenderer
func NewHTMLReportRenderer(pdf PDFRenderer, currency string, logger *zap.Logger) *HTMLReportRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLReportRenderer{pdf: pdf, format: NewFormatter(currency), logger: logger}
}

// RenderStockSummary writes the stock summary as PDF to w
func (r *HTMLReportRenderer) RenderStockSummary(ctx context.Context, w io.Writer, s report.StockSummary) error {
	return r.render(ctx, w, StockSummaryTitle, stockSummaryTemplate, s)
}

// RenderSupplierReport writes the supplier report as PDF to w
func (r *HTMLReportRenderer) RenderSupplierReport(ctx context.Context, w io.Writer, rep report.SupplierReport) error {
	return r.render(ctx, w, SupplierReportTitle, supplierReportTemplate, rep)
}

func (r *HTMLReportRenderer) render(ctx context.Context, w io.Writer, title string, tmpl *template.Template, data any) error {
	body, err := r.RenderHTML(tmpl, data)
	if err != nil {
		return err
	}
	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       body,
		Title:      title,
		FooterHTML: footerTemplate,
	})
	if err != nil {
		return err
	}
	r.logger.Debug("report printed", zap.String("title", title), zap.Int("pages", result.PageCount))
	_, err = w.Write(result.PDFData)
	return err
}

// RenderHTML executes a report template
func (r *HTMLReportRenderer) RenderHTML(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		F    *Formatter
		Data any
	}{F: r.format, Data: data})
	if err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to execute report template", err)
	}
	return buf.String(), nil
}

const footerTemplate = `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

const reportStyles = `<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 10px; color: #111; }
h1 { font-size: 20px; margin: 0 0 4px; }
h2 { font-size: 14px; margin: 18px 0 6px; }
.muted { color: #666; }
.metrics { display: flex; gap: 24px; margin: 8px 0 12px; }
.metric .label { color: #666; }
.metric .value { font-size: 13px; font-weight: bold; }
table { width: 100%; border-collapse: collapse; }
thead { display: table-header-group; }
th { text-align: left; border-bottom: 1px solid #999; padding: 3px; }
td { padding: 3px; border-bottom: 1px solid #eee; }
td.num, th.num { text-align: right; }
.low, .critical { color: #c62828; }
.warning { color: #e09100; }
.normal { color: #2e7d32; }
.alert { color: #c62828; font-weight: bold; }
.page { page-break-before: always; }
</style>`

var templateFuncs = template.FuncMap{
	"shortID": func(v fmt.Stringer) string { return shortID(v.String()) },
	"int":     func(n int) int64 { return int64(n) },
}

var stockSummaryTemplate = template.Must(template.New("stock-summary").Funcs(templateFuncs).Parse(reportStyles + `
{{- $f := .F }}{{ with .Data }}
<h1>Stock Summary Report</h1>
<div class="muted">Generated on: {{ $f.Timestamp .GeneratedAt }}</div>
<h2>Overview</h2>
<div class="metrics">
  <div class="metric"><div class="label">Total Stock Value</div><div class="value">{{ $f.Money .TotalValue }}</div></div>
  <div class="metric"><div class="label">Total Unique Products</div><div class="value">{{ $f.Int (int .UniqueProducts) }}</div></div>
  <div class="metric"><div class="label">Total Quantity</div><div class="value">{{ $f.Int .TotalQuantity }}</div></div>
</div>
<h2>Item-wise Details</h2>
{{ if .Items }}
<table>
  <thead><tr><th>ID</th><th>Product</th><th>Description</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Total</th><th>Mfg Date</th><th>Expiry</th></tr></thead>
  <tbody>
  {{ range .Items }}<tr{{ if .LowStock }} class="low"{{ end }}>
    <td>{{ shortID .LineItemID }}</td><td>{{ .ProductName }}</td><td>{{ .Description }}</td>
    <td class="num">{{ $f.Int (int .Quantity) }}</td><td class="num">{{ $f.Decimal .UnitPrice }}</td><td class="num">{{ $f.Decimal .Total }}</td>
    <td>{{ $f.Date .ManufactureDate }}</td><td>{{ $f.Date .ExpirationDate }}</td>
  </tr>{{ end }}
  </tbody>
</table>
{{ else }}<div class="muted">No stock has been recorded yet.</div>{{ end }}
{{ if .LowStock }}
<div class="page"></div>
<h2>Low Stock Alerts (Less than ` + fmt.Sprint(inventory.LowStockThreshold) + ` items)</h2>
<table>
  <thead><tr><th>Product</th><th class="num">Qty</th><th>Expiry</th><th class="num">Days to Expiry</th><th>Urgency</th></tr></thead>
  <tbody>
  {{ range .LowStock }}<tr class="{{ .Urgency }}">
    <td>{{ .ProductName }}</td><td class="num">{{ $f.Int (int .Quantity) }}</td><td>{{ $f.Date .ExpirationDate }}</td>
    <td class="num">{{ .DaysToExpiry }}</td><td>{{ .Urgency }}</td>
  </tr>{{ end }}
  </tbody>
</table>
{{ end }}
{{ end }}`))

var supplierReportTemplate = template.Must(template.New("supplier-report").Funcs(templateFuncs).Parse(reportStyles + `
{{- $f := .F }}{{ with .Data }}
<h1>Supplier Stock Report</h1>
<div class="muted">Generated on: {{ $f.Timestamp .GeneratedAt }}</div>
{{ range $i, $s := .Suppliers }}
{{ if $i }}<div class="page"></div>{{ end }}
<h2>Supplier: {{ $s.SupplierName }}</h2>
<div class="metrics">
  <div class="metric"><div class="label">Stocks</div><div class="value">{{ $f.Int (int $s.StockCount) }}</div></div>
  <div class="metric"><div class="label">Total Value</div><div class="value">{{ $f.Money $s.TotalValue }}</div></div>
  <div class="metric"><div class="label">Total Quantity</div><div class="value">{{ $f.Int $s.TotalQuantity }}</div></div>
</div>
{{ range $s.Stocks }}
<h3>Stock {{ shortID .StockID }} ({{ .Status }}, received {{ $f.Date .CreatedAt }})</h3>
<div class="muted">Value {{ $f.Money .TotalValue }} | Quantity {{ $f.Int .TotalQuantity }}</div>
<table>
  <thead><tr><th>Product</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Total</th><th>Expiry</th></tr></thead>
  <tbody>
  {{ range .Items }}<tr{{ if .LowStock }} class="low"{{ end }}>
    <td>{{ .ProductName }}</td><td class="num">{{ $f.Int (int .Quantity) }}</td><td class="num">{{ $f.Decimal .UnitPrice }}</td>
    <td class="num">{{ $f.Decimal .Total }}</td><td>{{ $f.Date .ExpirationDate }}</td>
  </tr>{{ end }}
  </tbody>
</table>
{{ range .Items }}{{ if .LowStock }}<div class="alert">Low Stock Alert: Only {{ .Quantity }} left! ({{ .ProductName }})</div>{{ end }}{{ end }}
{{ end }}
{{ else }}<div class="muted">No stock has been recorded yet.</div>
{{ end }}
{{ end }}`))
