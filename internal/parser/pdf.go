package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dgallion1/hearinglist/internal/layout"
	pdflib "github.com/ledongthuc/pdf"
)

// Letter size, used when a page carries no MediaBox.
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// PDFParser handles PDF files. Plain text comes from the Go library, with
// pdftotext as an optional fallback.
type PDFParser struct {
	LineScale         float64
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	lineScale := p.LineScale
	if lineScale <= 0 {
		lineScale = DefaultLineScale
	}
	return &pdfDocument{
		reader:    reader,
		data:      data,
		lineScale: lineScale,
		fallback:  p.FallbackPdftotext,
	}, nil
}

type pdfDocument struct {
	reader    *pdflib.Reader
	data      []byte
	lineScale float64
	fallback  bool
}

func (d *pdfDocument) NumPages() int { return d.reader.NumPage() }

func (d *pdfDocument) Page(n int) Page {
	return &pdfPage{doc: d, num: n + 1, page: d.reader.Page(n + 1)}
}

// Tables runs lattice detection page by page. A malformed content stream
// aborts the whole pass with ErrToolUnavailable.
func (d *pdfDocument) Tables() ([]layout.Table, error) {
	var tables []layout.Table
	for i := 1; i <= d.reader.NumPage(); i++ {
		page := d.reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		glyphs, rects, err := pageContent(page)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrToolUnavailable, i, err)
		}
		if len(rects) == 0 {
			continue
		}
		w, h := mediaBox(page)
		for _, g := range layout.DetectGrids(rects, w, h, d.lineScale) {
			tables = append(tables, layout.Table{Page: i - 1, Rows: g.Rows(glyphs, h)})
		}
	}
	return tables, nil
}

func (d *pdfDocument) Close() error {
	d.data = nil
	return nil
}

type pdfPage struct {
	doc  *pdfDocument
	num  int
	page pdflib.Page
}

func (p *pdfPage) PlainText() (string, error) {
	var text string
	var err error
	if p.page.V.IsNull() {
		err = fmt.Errorf("page %d missing", p.num)
	} else {
		text, err = p.page.GetPlainText(nil)
	}
	if (err != nil || strings.TrimSpace(text) == "") && p.doc.fallback {
		if alt, ferr := p.doc.pdftotext(p.num); ferr == nil {
			return alt, nil
		}
	}
	return text, err
}

func (p *pdfPage) Lines() ([]layout.Line, error) {
	if p.page.V.IsNull() {
		return nil, nil
	}
	glyphs, _, err := pageContent(p.page)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrTransientPage, p.num, err)
	}
	_, h := mediaBox(p.page)
	return layout.FromGlyphs(glyphs, h), nil
}

// pageContent decodes the page's content stream. The reader panics on
// malformed operators; that is turned into an error.
func pageContent(page pdflib.Page) (glyphs []layout.Glyph, rects []layout.Rect, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream: %v", r)
		}
	}()
	content := page.Content()
	glyphs = make([]layout.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, layout.Glyph{
			Font: t.Font,
			Size: t.FontSize,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
			S:    t.S,
		})
	}
	rects = make([]layout.Rect, 0, len(content.Rect))
	for _, r := range content.Rect {
		rects = append(rects, layout.Rect{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y}.Normalize())
	}
	return glyphs, rects, nil
}

// mediaBox returns the page size, following inherited page tree entries.
func mediaBox(page pdflib.Page) (float64, float64) {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdflib.Array || box.Len() != 4 {
			continue
		}
		w := box.Index(2).Float64() - box.Index(0).Float64()
		h := box.Index(3).Float64() - box.Index(1).Float64()
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultPageWidth, defaultPageHeight
}

// pdftotext extracts one page with the poppler binary. It needs a file on
// disk, so the document bytes are spooled to a temp file.
func (d *pdfDocument) pdftotext(page int) (string, error) {
	tmp, err := os.CreateTemp("", "hearinglist-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(d.data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	n := strconv.Itoa(page)
	cmd := exec.Command("pdftotext", "-f", n, "-l", n, "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
