package printing

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/infrastructure/printing/pdf"
)

var pageCountPattern = regexp.MustCompile(`/Type /Pages /Kids \[[^\]]*\] /Count (\d+)`)

// pageCount reads the page count from the page tree of a finished PDF
func pageCount(t *testing.T, doc []byte) int {
	t.Helper()
	m := pageCountPattern.FindSubmatch(doc)
	require.NotNil(t, m, "page tree not found")
	n, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	return n
}

func TestDocument_TableBreaksAcrossPages(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, "Breaks", WithoutCompression())
	require.NoError(t, err)

	rows := make([]Row, 200)
	for i := range rows {
		rows[i] = Row{Cells: []string{fmt.Sprintf("row-%03d", i), "x"}}
	}
	doc.Title("Breaks")
	doc.Table([]Column{{Header: "Name Column", Width: 3}, {Header: "Value", Width: 1, Align: AlignRight}}, rows)
	require.NoError(t, doc.Close())

	out := buf.String()
	pages := pageCount(t, buf.Bytes())
	assert.Greater(t, pages, 1)
	assert.Equal(t, pages, doc.PageCount())
	assert.Equal(t, pages, strings.Count(out, "(Name Column) Tj"), "header repeats on every page")
	assert.Contains(t, out, "(row-000) Tj")
	assert.Contains(t, out, "(row-199) Tj")
	assert.Contains(t, out, fmt.Sprintf("(Page %d) Tj", pages))
	assert.True(t, strings.HasSuffix(out, "%%EOF\n"))
}

func TestDocument_RowColor(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, "Colors", WithoutCompression())
	require.NoError(t, err)

	doc.Table([]Column{{Header: "Item", Width: 1}}, []Row{{Cells: []string{"danger"}, Color: pdf.Red}})
	require.NoError(t, doc.Close())

	assert.Regexp(t, `BT 0\.8 0\.1 0\.1 rg /F1 10 Tf [0-9.]+ [0-9.]+ Td \(danger\) Tj ET`, buf.String())
}

func TestDocument_SingleEmptyPage(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, "Empty", WithoutCompression())
	require.NoError(t, err)
	require.NoError(t, doc.Close())

	assert.Equal(t, 1, pageCount(t, buf.Bytes()))
	assert.Contains(t, buf.String(), "(Page 1) Tj")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", fit("short", BodyStyle, 200))

	long := strings.Repeat("Whole Milk ", 20)
	got := fit(long, BodyStyle, 80)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, BodyStyle.Font.TextWidth(got, BodyStyle.Size), 80.0)
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestDocument_SinkErrorAborts(t *testing.T) {
	doc, err := NewDocument(errWriter{}, "Broken")
	if err == nil {
		doc.Text("hello", BodyStyle)
		err = doc.Close()
	}
	assert.ErrorIs(t, err, assert.AnError)
}
