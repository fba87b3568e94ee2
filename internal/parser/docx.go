package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/hearinglist/internal/layout"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx hearing lists. The whole body is one page: each
// paragraph becomes a line indented by its left indent, and run fonts give
// the style signature.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	page := layout.Page{}
	var tables []layout.Table
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			line, ok := docxLine(it, float64(len(page.Lines)))
			if ok {
				page.Lines = append(page.Lines, line)
			}
		case *docx.Table:
			tables = append(tables, layout.Table{Rows: docxTableRows(it)})
		}
	}
	return &staticDocument{pages: []layout.Page{page}, tables: tables}, nil
}

func docxLine(para *docx.Paragraph, top float64) (layout.Line, bool) {
	line := layout.Line{Top: top, Positioned: true}
	if para.Properties != nil && para.Properties.Ind != nil {
		line.Left = float64(para.Properties.Ind.Left) / 20
	}
	heading := docxHeadingLevel(para) > 0

	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var buf strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
		if buf.Len() == 0 {
			continue
		}
		style, bold := docxRunStyle(run)
		line.Spans = append(line.Spans, layout.Span{
			Text:  buf.String(),
			Style: style,
			Bold:  bold || heading,
		})
	}
	if strings.TrimSpace(line.Text()) == "" {
		return layout.Line{}, false
	}
	return line, true
}

func docxRunStyle(run *docx.Run) (string, bool) {
	font, size := "default", 0.0
	bold := false
	if rp := run.RunProperties; rp != nil {
		if rp.Fonts != nil && rp.Fonts.ASCII != "" {
			font = rp.Fonts.ASCII
		}
		if rp.Size != nil {
			// Half-points.
			if v, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil {
				size = v / 2
			}
		}
		bold = rp.Bold != nil
	}
	return layout.GlyphStyle(font, size), bold
}

func docxTableRows(t *docx.Table) [][]string {
	rows := make([][]string, 0, len(t.TableRows))
	for _, tr := range t.TableRows {
		row := make([]string, 0, len(tr.TableCells))
		for _, tc := range tr.TableCells {
			parts := make([]string, 0, len(tc.Paragraphs))
			for _, p := range tc.Paragraphs {
				if s := strings.TrimSpace(docxParagraphText(p)); s != "" {
					parts = append(parts, s)
				}
			}
			row = append(row, strings.Join(parts, "\n"))
		}
		rows = append(rows, row)
	}
	return rows
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") && style != "title" {
		return 0
	}
	if style == "title" {
		return 1
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return buf.String()
}
