// Package layout holds the positional page model shared by every document
// backend: styled spans grouped into positioned lines, and detected tables.
package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Span is a run of text drawn in one style.
type Span struct {
	Text string
	// Style is the span's style signature, e.g.
	// "font-family:Helvetica;font-size:10pt". Empty when the source had none.
	Style string
	// Bold is set when the span sits inside a bold container.
	Bold bool
}

// Line is one positioned text element of a page.
type Line struct {
	Left float64
	Top  float64
	// Positioned is false when the element's margins could not be read.
	Positioned bool
	Spans      []Span
}

// Text concatenates the text of all spans on the line.
func (l Line) Text() string {
	if len(l.Spans) == 1 {
		return l.Spans[0].Text
	}
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Lead returns the first span carrying a style signature.
func (l Line) Lead() (Span, bool) {
	for _, s := range l.Spans {
		if s.Style != "" {
			return s, true
		}
	}
	return Span{}, false
}

// Page is the parsed layout of one page.
type Page struct {
	Number int
	Width  float64
	Height float64
	Lines  []Line
}

// Text returns the visible text of the page, one line per element.
func (p Page) Text() string {
	parts := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		parts = append(parts, l.Text())
	}
	return strings.Join(parts, "\n")
}

// Table is a detected table. Multi-line cell text is joined with "\n".
type Table struct {
	Page int
	Rows [][]string
}

// Text returns the cell text of the table, one row per line.
func (t Table) Text() string {
	rows := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, strings.Join(r, " "))
	}
	return strings.Join(rows, "\n")
}

// IsSymbolStyle reports whether a style signature names a symbol font.
func IsSymbolStyle(style string) bool {
	return strings.Contains(strings.ToLower(style), "symbol")
}

// HasVisibleText reports whether any line carries non-whitespace text.
func HasVisibleText(lines []Line) bool {
	for _, l := range lines {
		for _, s := range l.Spans {
			if strings.TrimSpace(s.Text) != "" {
				return true
			}
		}
	}
	return false
}

// RuneLen counts characters, not bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
