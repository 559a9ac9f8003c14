package pdf

// Font is one of the standard Type 1 fonts every PDF reader provides
type Font int

const (
	Helvetica Font = iota
	HelveticaBold
)

func (f Font) baseName() string {
	if f == HelveticaBold {
		return "Helvetica-Bold"
	}
	return "Helvetica"
}

func (f Font) resource() string {
	if f == HelveticaBold {
		return "F2"
	}
	return "F1"
}

// fallbackWidth is used for WinAnsi codes outside the printable ASCII range
const fallbackWidth = 556

// Glyph widths of printable ASCII (0x20..0x7E) in 1/1000 em, from the Adobe AFM files.
var (
	helveticaWidths = [95]int{
		278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
		556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
		1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
		667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
		333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
		556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
	}
	helveticaBoldWidths = [95]int{
		278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
		556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
		975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
		667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
		333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
		611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
	}
)

func (f Font) glyphWidth(c byte) int {
	if c < 0x20 || c > 0x7e {
		return fallbackWidth
	}
	if f == HelveticaBold {
		return helveticaBoldWidths[c-0x20]
	}
	return helveticaWidths[c-0x20]
}

// TextWidth returns the width of s in points when set in f at size
func (f Font) TextWidth(s string, size float64) float64 {
	total := 0
	for _, c := range encode(s) {
		total += f.glyphWidth(c)
	}
	return float64(total) * size / 1000
}
