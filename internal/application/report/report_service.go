package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/report"
	"github.com/stockroom/backend/internal/domain/shared"
)

var tracer = otel.Tracer("github.com/stockroom/backend/internal/application/report")

// Renderer writes report models as documents
type Renderer interface {
	RenderStockSummary(ctx context.Context, w io.Writer, s report.StockSummary) error
	RenderSupplierReport(ctx context.Context, w io.Writer, r report.SupplierReport) error
}

// ReportService loads ledger data, aggregates it and hands the result to a Renderer
type ReportService struct {
	stockRepo    inventory.StockRepository
	productRepo  catalog.ProductRepository
	supplierRepo partner.SupplierRepository
	renderer     Renderer
	logger       *zap.Logger
	now          func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	stockRepo inventory.StockRepository,
	productRepo catalog.ProductRepository,
	supplierRepo partner.SupplierRepository,
	renderer Renderer,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		renderer:     renderer,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock replaces the clock used for "Generated on" and days to expiry
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// BuildStockSummary aggregates every line item into a stock summary
func (s *ReportService) BuildStockSummary(ctx context.Context) (report.StockSummary, error) {
	items, err := s.stockRepo.AllItems(ctx)
	if err != nil {
		return report.StockSummary{}, fmt.Errorf("load line items: %w", err)
	}
	products, err := s.products(ctx, items)
	if err != nil {
		return report.StockSummary{}, err
	}
	return report.BuildStockSummary(items, products, s.now()), nil
}

// BuildSupplierReport groups every stock with its line items by supplier
func (s *ReportService) BuildSupplierReport(ctx context.Context) (report.SupplierReport, error) {
	stocks, err := s.stockRepo.FindAll(ctx, inventory.StockQuery{
		Filter: shared.Filter{OrderBy: "created_at", OrderDir: "asc"},
	})
	if err != nil {
		return report.SupplierReport{}, fmt.Errorf("load stocks: %w", err)
	}

	stockIDs := make([]uuid.UUID, len(stocks))
	supplierIDs := make([]uuid.UUID, 0, len(stocks))
	seen := make(map[uuid.UUID]bool)
	for i, stock := range stocks {
		stockIDs[i] = stock.ID
		if !seen[stock.SupplierID] {
			seen[stock.SupplierID] = true
			supplierIDs = append(supplierIDs, stock.SupplierID)
		}
	}

	itemsByStock, err := s.stockRepo.ItemsFor(ctx, stockIDs)
	if err != nil {
		return report.SupplierReport{}, fmt.Errorf("load line items: %w", err)
	}
	var all []inventory.LineItem
	for _, items := range itemsByStock {
		all = append(all, items...)
	}
	products, err := s.products(ctx, all)
	if err != nil {
		return report.SupplierReport{}, err
	}

	suppliers := make(map[uuid.UUID]partner.Supplier, len(supplierIDs))
	if len(supplierIDs) > 0 {
		found, err := s.supplierRepo.FindByIDs(ctx, supplierIDs)
		if err != nil {
			return report.SupplierReport{}, fmt.Errorf("load suppliers: %w", err)
		}
		for _, supplier := range found {
			suppliers[supplier.ID] = supplier
		}
	}

	return report.BuildSupplierReport(stocks, itemsByStock, suppliers, products, s.now()), nil
}

// StockSummary renders the stock summary report to w
func (s *ReportService) StockSummary(ctx context.Context, w io.Writer) (err error) {
	ctx, span := tracer.Start(ctx, "ReportService.StockSummary")
	defer func() { endSpan(span, err) }()

	summary, err := s.BuildStockSummary(ctx)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("report.line_items", len(summary.Items)))
	s.logger.Info("rendering stock summary",
		zap.Int("line_items", len(summary.Items)),
		zap.Int("low_stock", len(summary.LowStock)))
	if err := s.renderer.RenderStockSummary(ctx, w, summary); err != nil {
		return fmt.Errorf("render stock summary: %w", err)
	}
	return nil
}

// SupplierSummary renders the supplier report to w
func (s *ReportService) SupplierSummary(ctx context.Context, w io.Writer) (err error) {
	ctx, span := tracer.Start(ctx, "ReportService.SupplierSummary")
	defer func() { endSpan(span, err) }()

	rep, err := s.BuildSupplierReport(ctx)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("report.suppliers", len(rep.Suppliers)))
	s.logger.Info("rendering supplier report", zap.Int("suppliers", len(rep.Suppliers)))
	if err := s.renderer.RenderSupplierReport(ctx, w, rep); err != nil {
		return fmt.Errorf("render supplier report: %w", err)
	}
	return nil
}

func (s *ReportService) products(ctx context.Context, items []inventory.LineItem) (map[uuid.UUID]catalog.Product, error) {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	products := make(map[uuid.UUID]catalog.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range found {
		products[p.ID] = p
	}
	return products, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
