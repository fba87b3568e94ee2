package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/hearinglist/internal/layout"
)

const (
	textStyle = "text:plain"
	tabWidth  = 4
)

// TextParser handles plain text files, typically pdftotext -layout output.
// Form feeds separate pages and leading whitespace gives each line's margin.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	pages := []layout.Page{{}}
	row := 0
	for scanner.Scan() {
		raw := scanner.Text()
		for {
			before, after, found := strings.Cut(raw, "\f")
			addTextLine(&pages[len(pages)-1], before, row)
			if !found {
				break
			}
			pages = append(pages, layout.Page{Number: len(pages)})
			raw = after
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &staticDocument{pages: pages}, nil
}

func addTextLine(page *layout.Page, raw string, row int) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}
	page.Lines = append(page.Lines, layout.Line{
		Left:       float64(indentWidth(raw)),
		Top:        float64(row),
		Positioned: true,
		Spans:      []layout.Span{{Text: trimmed, Style: textStyle}},
	})
}

func indentWidth(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += tabWidth
		default:
			return n
		}
	}
	return n
}
