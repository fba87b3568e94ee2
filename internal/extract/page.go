package extract

import (
	"math"
	"strings"

	"github.com/dgallion1/hearinglist/internal/layout"
)

// symbolOnlyLen is the text length under which a line holding a symbol
// span is treated as a bare bullet and removed entirely.
const symbolOnlyLen = 4

// ExtractPage turns one page into row candidates. Bullet glyphs are
// stripped, the most common left margin is taken as the body column, and
// body elements sharing a vertical position are concatenated when they lead
// with the document style and are not bold. Rows with no qualifying element
// yield "" so the caller sees one entry per row position.
func ExtractPage(lines []layout.Line, style string, tolerance float64) []string {
	if !layout.HasVisibleText(lines) {
		return nil
	}
	lines = stripSymbols(lines)

	margin, ok := bodyMargin(lines)
	if !ok {
		return nil
	}

	var body []layout.Line
	for _, l := range lines {
		if l.Positioned && math.Abs(l.Left-margin) <= tolerance {
			body = append(body, l)
		}
	}

	var tops []float64
	seen := map[float64]bool{}
	for _, l := range body {
		if !seen[l.Top] {
			seen[l.Top] = true
			tops = append(tops, l.Top)
		}
	}

	rows := make([]string, 0, len(tops))
	for _, top := range tops {
		var b strings.Builder
		for _, l := range body {
			if l.Top != top {
				continue
			}
			lead, ok := l.Lead()
			if !ok || lead.Style != style || lead.Bold {
				continue
			}
			b.WriteString(l.Text())
		}
		rows = append(rows, b.String())
	}
	return rows
}

// stripSymbols drops symbol-font spans. A line left with fewer than
// symbolOnlyLen characters at the time its symbol is met is dropped whole.
func stripSymbols(lines []layout.Line) []layout.Line {
	out := make([]layout.Line, 0, len(lines))
	for _, l := range lines {
		kept := make([]layout.Span, 0, len(l.Spans))
		drop := false
		for i, s := range l.Spans {
			if !layout.IsSymbolStyle(s.Style) {
				kept = append(kept, s)
				continue
			}
			current := spanText(kept) + spanText(l.Spans[i:])
			if layout.RuneLen(current) < symbolOnlyLen {
				drop = true
				break
			}
		}
		if drop {
			continue
		}
		l.Spans = kept
		out = append(out, l)
	}
	return out
}

// bodyMargin returns the most common left offset, first seen on ties.
func bodyMargin(lines []layout.Line) (float64, bool) {
	counts := map[float64]int{}
	var order []float64
	for _, l := range lines {
		if !l.Positioned {
			continue
		}
		if _, ok := counts[l.Left]; !ok {
			order = append(order, l.Left)
		}
		counts[l.Left]++
	}
	best, margin := 0, 0.0
	for _, left := range order {
		if counts[left] > best {
			best, margin = counts[left], left
		}
	}
	return margin, best > 0
}

// TableCandidates takes the first cell of every row with line breaks
// removed.
func TableCandidates(tables []layout.Table) []string {
	var out []string
	for _, t := range tables {
		for _, row := range t.Rows {
			if len(row) == 0 {
				continue
			}
			out = append(out, strings.ReplaceAll(row[0], "\n", ""))
		}
	}
	return out
}

func spanText(spans []layout.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
