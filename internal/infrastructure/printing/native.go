package printing

import (
	"context"
	"fmt"
	"io"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/report"
	"github.com/stockroom/backend/internal/infrastructure/printing/pdf"
)

// Report titles
const (
	StockSummaryTitle   = "Stock Summary Report"
	SupplierReportTitle = "Supplier Stock Report"
)

// NativeRenderer lays reports out with the built-in PDF writer and streams
// each page to the destination as soon as it is complete
type NativeRenderer struct {
	format *Formatter
	opts   []DocumentOption
}

// NewNativeRenderer creates a NativeRenderer printing amounts with currency
func NewNativeRenderer(currency string, opts ...DocumentOption) *NativeRenderer {
	return &NativeRenderer{format: NewFormatter(currency), opts: opts}
}

// RenderStockSummary writes the stock summary as PDF to w
func (r *NativeRenderer) RenderStockSummary(ctx context.Context, w io.Writer, s report.StockSummary) error {
	doc, err := NewDocument(w, StockSummaryTitle, append([]DocumentOption{WithCreated(s.GeneratedAt)}, r.opts...)...)
	if err != nil {
		return err
	}
	f := r.format

	doc.Title(StockSummaryTitle)
	doc.Text("Generated on: "+f.Timestamp(s.GeneratedAt), MutedStyle)
	doc.Space(8)
	doc.Heading("Overview")
	doc.Metrics([]Metric{
		{Label: "Total Stock Value", Value: f.Money(s.TotalValue)},
		{Label: "Total Unique Products", Value: f.Int(int64(s.UniqueProducts))},
		{Label: "Total Quantity", Value: f.Int(s.TotalQuantity)},
	})

	doc.Heading("Item-wise Details")
	if len(s.Items) == 0 {
		doc.Text("No stock has been recorded yet.", MutedStyle)
	} else {
		rows := make([]Row, 0, len(s.Items))
		for _, item := range s.Items {
			color := pdf.Black
			if item.LowStock {
				color = pdf.Red
			}
			rows = append(rows, Row{Color: color, Cells: []string{
				shortID(item.LineItemID.String()),
				item.ProductName,
				item.Description,
				f.Int(int64(item.Quantity)),
				f.Decimal(item.UnitPrice),
				f.Decimal(item.Total),
				f.Date(item.ManufactureDate),
				f.Date(item.ExpirationDate),
			}})
		}
		doc.Table(itemColumns, rows)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(s.LowStock) > 0 {
		doc.NewPage()
		doc.Heading(fmt.Sprintf("Low Stock Alerts (Less than %d items)", inventory.LowStockThreshold))
		rows := make([]Row, 0, len(s.LowStock))
		for _, item := range s.LowStock {
			rows = append(rows, Row{Color: urgencyColor(item.Urgency), Cells: []string{
				item.ProductName,
				f.Int(int64(item.Quantity)),
				f.Date(item.ExpirationDate),
				fmt.Sprintf("%d", item.DaysToExpiry),
				string(item.Urgency),
			}})
		}
		doc.Table(lowStockColumns, rows)
	}

	return doc.Close()
}

// RenderSupplierReport writes the supplier report as PDF to w. Every
// supplier after the first starts on a new page.
func (r *NativeRenderer) RenderSupplierReport(ctx context.Context, w io.Writer, rep report.SupplierReport) error {
	doc, err := NewDocument(w, SupplierReportTitle, append([]DocumentOption{WithCreated(rep.GeneratedAt)}, r.opts...)...)
	if err != nil {
		return err
	}
	f := r.format

	doc.Title(SupplierReportTitle)
	doc.Text("Generated on: "+f.Timestamp(rep.GeneratedAt), MutedStyle)
	doc.Space(8)
	if len(rep.Suppliers) == 0 {
		doc.Text("No stock has been recorded yet.", MutedStyle)
	}

	for i, section := range rep.Suppliers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			doc.NewPage()
		}
		doc.Heading("Supplier: " + section.SupplierName)
		doc.Metrics([]Metric{
			{Label: "Stocks", Value: f.Int(int64(section.StockCount))},
			{Label: "Total Value", Value: f.Money(section.TotalValue)},
			{Label: "Total Quantity", Value: f.Int(section.TotalQuantity)},
		})

		for _, stock := range section.Stocks {
			doc.Text(fmt.Sprintf("Stock %s  (%s, received %s)",
				shortID(stock.StockID.String()), stock.Status, f.Date(stock.CreatedAt)),
				Style{Font: pdf.HelveticaBold, Size: 11, Color: pdf.Black})
			doc.Text(fmt.Sprintf("Value %s  |  Quantity %s", f.Money(stock.TotalValue), f.Int(stock.TotalQuantity)), MutedStyle)

			rows := make([]Row, 0, len(stock.Items))
			var alerts []string
			for _, item := range stock.Items {
				color := pdf.Black
				if item.LowStock {
					color = pdf.Red
					alerts = append(alerts, fmt.Sprintf("Low Stock Alert: Only %d left! (%s)", item.Quantity, item.ProductName))
				}
				rows = append(rows, Row{Color: color, Cells: []string{
					item.ProductName,
					f.Int(int64(item.Quantity)),
					f.Decimal(item.UnitPrice),
					f.Decimal(item.Total),
					f.Date(item.ExpirationDate),
				}})
			}
			doc.Table(supplierItemColumns, rows)
			for _, alert := range alerts {
				doc.Text(alert, AlertStyle)
			}
			doc.Space(6)
		}
	}

	return doc.Close()
}

var (
	itemColumns = []Column{
		{Header: "ID", Width: 9},
		{Header: "Product", Width: 16},
		{Header: "Description", Width: 20},
		{Header: "Qty", Width: 7, Align: AlignRight},
		{Header: "Unit Price", Width: 11, Align: AlignRight},
		{Header: "Total", Width: 12, Align: AlignRight},
		{Header: "Mfg Date", Width: 12},
		{Header: "Expiry", Width: 12},
	}
	lowStockColumns = []Column{
		{Header: "Product", Width: 30},
		{Header: "Qty", Width: 10, Align: AlignRight},
		{Header: "Expiry", Width: 18},
		{Header: "Days to Expiry", Width: 18, Align: AlignRight},
		{Header: "Urgency", Width: 16},
	}
	supplierItemColumns = []Column{
		{Header: "Product", Width: 34},
		{Header: "Qty", Width: 10, Align: AlignRight},
		{Header: "Unit Price", Width: 16, Align: AlignRight},
		{Header: "Total", Width: 18, Align: AlignRight},
		{Header: "Expiry", Width: 16},
	}
)

func urgencyColor(u report.Urgency) pdf.Color {
	switch u {
	case report.UrgencyCritical:
		return pdf.Red
	case report.UrgencyWarning:
		return pdf.Amber
	default:
		return pdf.Green
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
