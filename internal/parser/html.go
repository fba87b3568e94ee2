package parser

import (
	"io"

	"github.com/dgallion1/hearinglist/internal/layout"
)

// HTMLParser handles page markup exported from PDFs: one positioned
// element per text line, grouped into page divs.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (Document, error) {
	pages, tables, err := layout.ParseMarkup(r)
	if err != nil {
		return nil, err
	}
	return &staticDocument{pages: pages, tables: tables}, nil
}
