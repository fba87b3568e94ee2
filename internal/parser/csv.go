package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/hearinglist/internal/layout"
)

// CSVParser handles CSV exports of hearing lists. The file is a single
// table whose first column holds the organisation names.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &staticDocument{pages: []layout.Page{{}}}
	if len(records) > 0 {
		doc.tables = []layout.Table{{Rows: records}}
	}
	return doc, nil
}
