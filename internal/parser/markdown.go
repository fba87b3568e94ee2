package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/hearinglist/internal/layout"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Style signatures for markdown blocks.
const (
	mdParagraphStyle = "markdown:paragraph"
	mdListStyle      = "markdown:list"
	mdHeadingStyle   = "markdown:heading"
	mdIndent         = 20.0
)

// MarkdownParser handles Markdown hearing lists using goldmark. List items
// are indented by nesting depth so the body-column filter sees the list as
// the dominant margin.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	b := &mdBuilder{src: src}
	b.block(doc, 0)
	return &staticDocument{pages: []layout.Page{b.page}, tables: b.tables}, nil
}

type mdBuilder struct {
	src    []byte
	page   layout.Page
	tables []layout.Table
}

func (b *mdBuilder) block(n ast.Node, depth int) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Heading:
			b.addLine(node, 0, mdHeadingStyle, true)
		case *ast.Paragraph, *ast.TextBlock:
			style := mdParagraphStyle
			left := 0.0
			if depth > 0 {
				style = mdListStyle
				left = float64(depth) * mdIndent
			}
			b.addLine(node, left, style, false)
		case *ast.List:
			b.block(node, depth+1)
		case *ast.ListItem:
			b.block(node, depth)
		case *east.Table:
			b.tables = append(b.tables, layout.Table{Rows: b.tableRows(node)})
		default:
			b.block(node, depth)
		}
	}
}

func (b *mdBuilder) addLine(n ast.Node, left float64, style string, bold bool) {
	line := layout.Line{
		Left:       left,
		Top:        float64(len(b.page.Lines)),
		Positioned: true,
	}
	b.inline(n, style, bold, &line)
	if strings.TrimSpace(line.Text()) == "" {
		return
	}
	b.page.Lines = append(b.page.Lines, line)
}

func (b *mdBuilder) inline(n ast.Node, style string, bold bool, line *layout.Line) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(b.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += " "
			}
			appendSpan(line, layout.Span{Text: s, Style: style, Bold: bold})
		case *ast.String:
			appendSpan(line, layout.Span{Text: string(node.Value), Style: style, Bold: bold})
		case *ast.Emphasis:
			b.inline(node, style, bold || node.Level >= 2, line)
		default:
			b.inline(node, style, bold, line)
		}
	}
}

// appendSpan merges runs of the same style into one span.
func appendSpan(line *layout.Line, s layout.Span) {
	n := len(line.Spans)
	if n > 0 && line.Spans[n-1].Style == s.Style && line.Spans[n-1].Bold == s.Bold {
		line.Spans[n-1].Text += s.Text
		return
	}
	line.Spans = append(line.Spans, s)
}

func (b *mdBuilder) tableRows(t *east.Table) [][]string {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			var line layout.Line
			b.inline(c, "", false, &line)
			row = append(row, strings.TrimSpace(line.Text()))
		}
		rows = append(rows, row)
	}
	return rows
}
