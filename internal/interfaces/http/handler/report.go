package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/infrastructure/logger"
)

// ReportGenerator writes PDF reports to a sink
type ReportGenerator interface {
	StockSummary(ctx context.Context, w io.Writer) error
	SupplierSummary(ctx context.Context, w io.Writer) error
}

// ReportHandler streams PDF reports
type ReportHandler struct {
	BaseHandler
	reports ReportGenerator
	now     func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports ReportGenerator) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

// StockSummary handles GET /reports/stock-summary
func (h *ReportHandler) StockSummary(c *gin.Context) {
	h.stream(c, "stock-summary", h.reports.StockSummary)
}

// SupplierSummary handles GET /reports/suppliers
func (h *ReportHandler) SupplierSummary(c *gin.Context) {
	h.stream(c, "supplier-summary", h.reports.SupplierSummary)
}

func (h *ReportHandler) stream(c *gin.Context, name string, render func(context.Context, io.Writer) error) {
	filename := fmt.Sprintf("%s-%s.pdf", name, h.now().Format(time.DateOnly))
	w := &pdfResponse{c: c, filename: filename}

	err := render(c.Request.Context(), w)
	if err == nil {
		if !w.started {
			// nothing written, e.g. a renderer that produced no output
			w.start()
		}
		return
	}
	if !w.started {
		h.HandleError(c, err)
		return
	}
	// The status line is gone; all that is left is to stop and log
	_ = c.Error(err)
	logger.GetGinLogger(c).Error("report stream aborted",
		zap.String("report", name),
		zap.Int("bytes_written", w.written),
		zap.Error(err))
	c.Abort()
}

// pdfResponse commits the PDF headers on the first write, so that failures
// before any output can still be answered with a JSON error.
type pdfResponse struct {
	c        *gin.Context
	filename string
	started  bool
	written  int
}

func (r *pdfResponse) start() {
	r.started = true
	h := r.c.Writer.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.filename))
	h.Set("Cache-Control", "no-store")
	r.c.Status(http.StatusOK)
	r.c.Writer.WriteHeaderNow()
}

func (r *pdfResponse) Write(p []byte) (int, error) {
	if !r.started {
		r.start()
	}
	n, err := r.c.Writer.Write(p)
	r.written += n
	return n, err
}
