// Package parser opens hearing documents of every supported format as a
// paged Document with positioned lines and detectable tables.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/hearinglist/internal/layout"
)

var (
	// ErrToolUnavailable means the table detector could not run on the file.
	ErrToolUnavailable = errors.New("table detection unavailable")
	// ErrTransientPage means a page's layout could not be read this time.
	// Callers may retry once.
	ErrTransientPage = errors.New("page layout unreadable")
	// ErrUnsupported is returned for extensions no backend handles.
	ErrUnsupported = errors.New("unsupported file extension")
)

// Document is an opened hearing document.
type Document interface {
	NumPages() int
	// Page returns the zero-indexed page n.
	Page(n int) Page
	// Tables runs table detection over the whole document.
	Tables() ([]layout.Table, error)
	Close() error
}

// Page is one page of a Document.
type Page interface {
	// PlainText returns the visible text of the page.
	PlainText() (string, error)
	// Lines returns the page's positioned, styled text elements.
	Lines() ([]layout.Line, error)
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (Document, error)
}

// Options tune the backends.
type Options struct {
	// LineScale sets the minimum ruling length for table detection as a
	// fraction of the page dimension.
	LineScale float64
	// FallbackPdftotext uses the pdftotext binary when the Go PDF reader
	// cannot extract plain text.
	FallbackPdftotext bool
}

// DefaultLineScale mirrors the lattice detector setting the hearing lists
// were tuned against.
const DefaultLineScale = 25

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	if opts.LineScale <= 0 {
		opts.LineScale = DefaultLineScale
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{LineScale: opts.LineScale, FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// OpenFile opens the document at path with the parser for its extension.
func OpenFile(path string, opts Options) (Document, error) {
	p, err := ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// staticDocument serves formats whose layout is fully known after parsing.
type staticDocument struct {
	pages  []layout.Page
	tables []layout.Table
}

func (d *staticDocument) NumPages() int { return len(d.pages) }

func (d *staticDocument) Page(n int) Page {
	if n < 0 || n >= len(d.pages) {
		return staticPage{}
	}
	return staticPage{page: d.pages[n], tables: d.pageTables(n)}
}

func (d *staticDocument) pageTables(n int) []layout.Table {
	var out []layout.Table
	for _, t := range d.tables {
		if t.Page == n {
			out = append(out, t)
		}
	}
	return out
}

func (d *staticDocument) Tables() ([]layout.Table, error) { return d.tables, nil }

func (d *staticDocument) Close() error { return nil }

type staticPage struct {
	page   layout.Page
	tables []layout.Table
}

func (p staticPage) PlainText() (string, error) {
	parts := []string{p.page.Text()}
	for _, t := range p.tables {
		parts = append(parts, t.Text())
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

func (p staticPage) Lines() ([]layout.Line, error) { return p.page.Lines, nil }
