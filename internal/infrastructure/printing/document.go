package printing

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stockroom/backend/internal/infrastructure/printing/pdf"
)

// Layout constants in points
const (
	margin       = 50.0
	footerHeight = 24.0
	lineGap      = 4.0
	rowPadding   = 5.0
)

// Align is the horizontal alignment of a table column
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Style is a text style
type Style struct {
	Font  pdf.Font
	Size  float64
	Color pdf.Color
}

// Predefined styles
var (
	TitleStyle   = Style{Font: pdf.HelveticaBold, Size: 20, Color: pdf.Black}
	HeadingStyle = Style{Font: pdf.HelveticaBold, Size: 14, Color: pdf.Black}
	BodyStyle    = Style{Font: pdf.Helvetica, Size: 10, Color: pdf.Black}
	MutedStyle   = Style{Font: pdf.Helvetica, Size: 9, Color: pdf.Gray}
	AlertStyle   = Style{Font: pdf.HelveticaBold, Size: 10, Color: pdf.Red}
)

// Column describes one table column. Width is a share of the content width.
type Column struct {
	Header string
	Width  float64
	Align  Align
}

// Row is one table row. A zero Color prints in black.
type Row struct {
	Cells []string
	Color pdf.Color
}

// Metric is a labelled value in a metrics panel
type Metric struct {
	Label string
	Value string
}

// Document lays out text blocks and tables on A4 pages. A block that does
// not fit on the current page starts a new one; tables repeat their header
// row after a page break. Every page gets a footer with its number.
type Document struct {
	w      *pdf.Writer
	title  string
	width  float64
	height float64
	y      float64
	page   int
	err    error
}

// DocumentOption configures a Document
type DocumentOption func(*documentConfig)

type documentConfig struct {
	compress bool
	created  time.Time
}

// WithoutCompression writes page content uncompressed, which keeps text searchable in tests
func WithoutCompression() DocumentOption {
	return func(c *documentConfig) {
		c.compress = false
	}
}

// WithCreated sets the document creation time
func WithCreated(t time.Time) DocumentOption {
	return func(c *documentConfig) {
		c.created = t
	}
}

// NewDocument starts a document on w. Nothing is buffered beyond the page being laid out.
func NewDocument(w io.Writer, title string, opts ...DocumentOption) (*Document, error) {
	cfg := documentConfig{compress: true, created: time.Now()}
	for _, opt := range opts {
		opt(&cfg)
	}

	pw, err := pdf.NewWriter(w,
		pdf.WithTitle(title),
		pdf.WithCompression(cfg.compress),
		pdf.WithCreationDate(cfg.created),
	)
	if err != nil {
		return nil, err
	}
	width, height := pw.Size()
	d := &Document{w: pw, title: title, width: width, height: height}
	d.NewPage()
	return d, d.err
}

// Err returns the first error met while writing
func (d *Document) Err() error {
	return d.err
}

// PageCount returns the number of pages started so far
func (d *Document) PageCount() int {
	return d.page
}

// NewPage finishes the current page and starts the next one
func (d *Document) NewPage() {
	if d.err != nil {
		return
	}
	if d.page > 0 {
		d.footer()
	}
	if d.err = d.w.BeginPage(); d.err != nil {
		return
	}
	d.page++
	d.y = d.height - margin
}

// Text writes a single line of text in style
func (d *Document) Text(text string, style Style) {
	h := style.Size + lineGap
	d.ensure(h)
	d.draw(margin, style, text)
	d.y -= h
}

// Heading writes a section heading with space above it
func (d *Document) Heading(text string) {
	d.ensure(HeadingStyle.Size*2 + lineGap)
	d.y -= HeadingStyle.Size / 2
	d.Text(text, HeadingStyle)
	d.Rule()
}

// Title writes the document title
func (d *Document) Title(text string) {
	d.Text(text, TitleStyle)
	d.Space(6)
}

// Rule draws a thin horizontal line across the content width
func (d *Document) Rule() {
	d.ensure(lineGap * 2)
	if d.err == nil {
		d.w.Line(margin, d.y+lineGap, d.width-margin, d.y+lineGap, 0.5, pdf.Gray)
	}
	d.y -= lineGap
}

// Space moves the cursor down by h points
func (d *Document) Space(h float64) {
	d.y -= h
}

// Metrics writes a two-column panel of labelled values
func (d *Document) Metrics(metrics []Metric) {
	h := BodyStyle.Size + rowPadding*2
	d.ensure(h * float64(len(metrics)))
	if d.err != nil {
		return
	}
	d.w.FillRect(margin, d.y-h*float64(len(metrics))+rowPadding, d.contentWidth(), h*float64(len(metrics)), pdf.Color{R: 0.95, G: 0.95, B: 0.95})
	for _, m := range metrics {
		d.draw(margin+rowPadding, Style{Font: pdf.HelveticaBold, Size: BodyStyle.Size, Color: pdf.Black}, m.Label)
		d.draw(margin+d.contentWidth()/2, BodyStyle, m.Value)
		d.y -= h
	}
	d.Space(lineGap)
}

// Table writes rows under a header row. The header is repeated at the top
// of every page the table continues on.
func (d *Document) Table(columns []Column, rows []Row) {
	h := BodyStyle.Size + rowPadding*2
	d.ensure(h * 2)
	d.tableHeader(columns, h)
	for _, row := range rows {
		if d.err != nil {
			return
		}
		if d.y-h < margin+footerHeight {
			d.NewPage()
			d.tableHeader(columns, h)
		}
		d.tableRow(columns, row.Cells, Style{Font: pdf.Helvetica, Size: BodyStyle.Size, Color: row.Color}, h)
	}
	d.Space(lineGap)
}

// Close writes the last footer and finishes the document
func (d *Document) Close() error {
	if d.err == nil {
		d.footer()
	}
	if err := d.w.Close(); d.err == nil {
		d.err = err
	}
	return d.err
}

func (d *Document) tableHeader(columns []Column, h float64) {
	if d.err != nil {
		return
	}
	d.w.FillRect(margin, d.y-h+rowPadding+2, d.contentWidth(), h, pdf.Color{R: 0.88, G: 0.90, B: 0.94})
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	d.tableRow(columns, headers, Style{Font: pdf.HelveticaBold, Size: BodyStyle.Size, Color: pdf.Black}, h)
}

func (d *Document) tableRow(columns []Column, cells []string, style Style, h float64) {
	x := margin
	total := 0.0
	for _, c := range columns {
		total += c.Width
	}
	for i, c := range columns {
		w := d.contentWidth() * c.Width / total
		if i < len(cells) {
			text := fit(cells[i], style, w-rowPadding*2)
			tx := x + rowPadding
			if c.Align == AlignRight {
				tx = x + w - rowPadding - style.Font.TextWidth(text, style.Size)
			}
			d.draw(tx, style, text)
		}
		x += w
	}
	d.y -= h
	d.w.Line(margin, d.y+rowPadding+2, d.width-margin, d.y+rowPadding+2, 0.25, pdf.Color{R: 0.85, G: 0.85, B: 0.85})
}

// ensure starts a new page when h points do not fit above the footer
func (d *Document) ensure(h float64) {
	if d.y-h < margin+footerHeight {
		d.NewPage()
	}
}

func (d *Document) draw(x float64, style Style, text string) {
	if d.err != nil {
		return
	}
	d.w.Text(x, d.y-style.Size, style.Font, style.Size, style.Color, text)
}

func (d *Document) footer() {
	label := fmt.Sprintf("Page %d", d.page)
	size := MutedStyle.Size
	x := d.width - margin - MutedStyle.Font.TextWidth(label, size)
	d.w.Text(x, margin/2, MutedStyle.Font, size, MutedStyle.Color, label)
	d.w.Text(margin, margin/2, MutedStyle.Font, size, MutedStyle.Color, d.title)
}

func (d *Document) contentWidth() float64 {
	return d.width - 2*margin
}

// fit shortens text with an ellipsis until it fits into width
func fit(text string, style Style, width float64) string {
	if style.Font.TextWidth(text, style.Size) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "..."
		if style.Font.TextWidth(candidate, style.Size) <= width {
			return candidate
		}
	}
	return ""
}
