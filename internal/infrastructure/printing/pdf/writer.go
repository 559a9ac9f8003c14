// Package pdf writes PDF 1.4 documents page by page. Each page is sent to
// the underlying writer as soon as it is finished, so memory use does not
// grow with the page count. Only the standard Helvetica fonts are
// available and text is encoded as WinAnsi.
package pdf

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// A4 page size in points
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Reserved object numbers. Page objects follow from firstPageObject.
const (
	catalogObject   = 1
	pagesObject     = 2
	fontObject      = 3
	boldFontObject  = 4
	infoObject      = 5
	firstPageObject = 6
)

// ErrClosed is returned when drawing on a closed writer
var ErrClosed = errors.New("pdf: writer is closed")

// Color is an RGB color with components in 0..1
type Color struct {
	R, G, B float64
}

// Common colors
var (
	Black = Color{}
	Gray  = Color{0.45, 0.45, 0.45}
	Red   = Color{0.80, 0.10, 0.10}
	Amber = Color{0.85, 0.50, 0.00}
	Green = Color{0.10, 0.55, 0.20}
)

// Option configures a Writer
type Option func(*Writer)

// WithPageSize sets the page size in points
func WithPageSize(width, height float64) Option {
	return func(w *Writer) {
		w.width, w.height = width, height
	}
}

// WithCompression toggles Flate compression of page content streams
func WithCompression(on bool) Option {
	return func(w *Writer) {
		w.compress = on
	}
}

// WithTitle sets the document title metadata
func WithTitle(title string) Option {
	return func(w *Writer) {
		w.title = title
	}
}

// WithCreationDate sets the creation date metadata
func WithCreationDate(t time.Time) Option {
	return func(w *Writer) {
		w.created = t
	}
}

// Writer produces a PDF document on an io.Writer
type Writer struct {
	out      *countingWriter
	buf      *bufio.Writer
	offsets  map[int]int64
	pages    []int
	nextObj  int
	content  bytes.Buffer
	inPage   bool
	closed   bool
	err      error
	width    float64
	height   float64
	compress bool
	title    string
	created  time.Time
}

// NewWriter writes the PDF header and font resources to w and returns a
// Writer ready for the first page
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	out := &countingWriter{w: w}
	pw := &Writer{
		out:      out,
		offsets:  make(map[int]int64),
		nextObj:  firstPageObject,
		width:    A4Width,
		height:   A4Height,
		compress: true,
		created:  time.Now(),
	}
	pw.buf = bufio.NewWriter(out)
	for _, opt := range opts {
		opt(pw)
	}

	pw.raw("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	pw.object(fontObject, fontDict(Helvetica))
	pw.object(boldFontObject, fontDict(HelveticaBold))
	if err := pw.flush(); err != nil {
		return nil, err
	}
	return pw, nil
}

// Size returns the page width and height in points
func (w *Writer) Size() (float64, float64) {
	return w.width, w.height
}

// PageCount returns the number of finished pages
func (w *Writer) PageCount() int {
	return len(w.pages)
}

// Err returns the first error the writer ran into
func (w *Writer) Err() error {
	return w.err
}

// BeginPage starts a new page, finishing the current one first
func (w *Writer) BeginPage() error {
	if w.closed {
		return ErrClosed
	}
	if w.inPage {
		if err := w.EndPage(); err != nil {
			return err
		}
	}
	w.content.Reset()
	w.inPage = true
	return w.err
}

// Text draws s with its baseline starting at (x, y). The origin is the
// bottom-left corner of the page.
func (w *Writer) Text(x, y float64, font Font, size float64, c Color, s string) {
	if !w.drawing() || s == "" {
		return
	}
	fmt.Fprintf(&w.content, "BT %s rg /%s %s Tf %s %s Td (%s) Tj ET\n",
		c.operands(), font.resource(), num(size), num(x), num(y), escape(encode(s)))
}

// FillRect fills the rectangle with lower-left corner (x, y)
func (w *Writer) FillRect(x, y, width, height float64, c Color) {
	if !w.drawing() {
		return
	}
	fmt.Fprintf(&w.content, "%s rg %s %s %s %s re f\n", c.operands(), num(x), num(y), num(width), num(height))
}

// Line strokes a straight line
func (w *Writer) Line(x1, y1, x2, y2, lineWidth float64, c Color) {
	if !w.drawing() {
		return
	}
	fmt.Fprintf(&w.content, "%s RG %s w %s %s m %s %s l S\n",
		c.operands(), num(lineWidth), num(x1), num(y1), num(x2), num(y2))
}

// EndPage writes the current page to the underlying writer
func (w *Writer) EndPage() error {
	if w.closed {
		return ErrClosed
	}
	if !w.inPage {
		return w.err
	}
	w.inPage = false

	contentObj, pageObj := w.nextObj, w.nextObj+1
	w.nextObj += 2

	data := w.content.Bytes()
	filter := ""
	if w.compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		_, _ = zw.Write(data)
		_ = zw.Close()
		data = z.Bytes()
		filter = " /Filter /FlateDecode"
	}

	w.begin(contentObj)
	w.raw(fmt.Sprintf("<< /Length %d%s >>\nstream\n", len(data), filter))
	w.rawBytes(data)
	w.raw("\nendstream\nendobj\n")

	w.object(pageObj, fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Resources << /Font << /F1 %d 0 R /F2 %d 0 R >> >> /Contents %d 0 R >>",
		pagesObject, num(w.width), num(w.height), fontObject, boldFontObject, contentObj))
	w.pages = append(w.pages, pageObj)

	return w.flush()
}

// Close finishes the open page and writes the page tree, the catalog and
// the cross-reference table. A document always has at least one page.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	if !w.inPage && len(w.pages) == 0 {
		_ = w.BeginPage()
	}
	if err := w.EndPage(); err != nil {
		w.closed = true
		return err
	}
	w.closed = true

	kids := make([]string, len(w.pages))
	for i, p := range w.pages {
		kids[i] = fmt.Sprintf("%d 0 R", p)
	}
	w.object(pagesObject, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(w.pages)))
	w.object(catalogObject, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObject))
	w.object(infoObject, fmt.Sprintf("<< /Producer (stockroom) /Title (%s) /CreationDate (D:%s) >>",
		escape(encode(w.title)), w.created.UTC().Format("20060102150405Z")))

	size := w.nextObj
	xref := w.offset()
	w.raw(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", size))
	for obj := 1; obj < size; obj++ {
		off, ok := w.offsets[obj]
		if !ok {
			w.raw("0000000000 65535 f \n")
			continue
		}
		w.raw(fmt.Sprintf("%010d 00000 n \n", off))
	}
	w.raw(fmt.Sprintf("trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		size, catalogObject, infoObject, xref))
	return w.flush()
}

func (w *Writer) drawing() bool {
	return w.inPage && !w.closed && w.err == nil
}

func (w *Writer) offset() int64 {
	return w.out.n + int64(w.buf.Buffered())
}

func (w *Writer) begin(obj int) {
	w.offsets[obj] = w.offset()
	w.raw(fmt.Sprintf("%d 0 obj\n", obj))
}

func (w *Writer) object(obj int, body string) {
	w.begin(obj)
	w.raw(body)
	w.raw("\nendobj\n")
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.buf.WriteString(s)
}

func (w *Writer) rawBytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.buf.Write(b)
}

func (w *Writer) flush() error {
	if w.err == nil {
		w.err = w.buf.Flush()
	}
	return w.err
}

func fontDict(f Font) string {
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", f.baseName())
}

func (c Color) operands() string {
	return num(c.R) + " " + num(c.G) + " " + num(c.B)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// encode converts UTF-8 text to WinAnsi; characters without a WinAnsi code become '?'
func encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

func escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch c {
		case '(', ')', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n', '\r':
			sb.WriteByte(' ')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
