package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Glyph is one drawn character in PDF user space (origin bottom-left).
// W is zero for fonts without a width table.
type Glyph struct {
	Font string
	Size float64
	X    float64
	Y    float64
	W    float64
	S    string
}

// Merge thresholds, in multiples of the glyph's font size.
const (
	baselineSlack = 0.5
	wordGap       = 0.2
	columnGap     = 3.0
)

// GlyphStyle formats the style signature for a font and size.
func GlyphStyle(font string, size float64) string {
	return fmt.Sprintf("font-family:%s;font-size:%spt", font, strconv.FormatFloat(math.Round(size*10)/10, 'f', -1, 64))
}

// IsBoldFont reports whether a font name denotes a bold face.
func IsBoldFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy")
}

// FromGlyphs rebuilds positioned lines from glyphs in content-stream order.
// A new line starts when the baseline moves, when the pen jumps backwards,
// or when the horizontal gap is wide enough to separate columns. Top is
// measured from the top edge of a page of the given height.
func FromGlyphs(glyphs []Glyph, pageHeight float64) []Line {
	var lines []Line
	var cur *Line
	var baseY, penX, size float64

	flush := func() {
		if cur != nil && len(cur.Spans) > 0 {
			lines = append(lines, *cur)
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.S == "\n" || g.S == "\r" {
			flush()
			continue
		}
		gs := g.Size
		if gs <= 0 {
			gs = 1
		}

		if cur != nil {
			slack := baselineSlack * math.Max(gs, size)
			switch {
			case math.Abs(g.Y-baseY) > slack:
				flush()
			case g.X < penX-gs:
				flush()
			case g.X-penX > columnGap*gs:
				flush()
			}
		}

		if cur == nil {
			if strings.TrimSpace(g.S) == "" {
				continue
			}
			cur = &Line{
				Left:       round2(g.X),
				Top:        round2(pageHeight - g.Y),
				Positioned: true,
			}
			baseY = g.Y
			penX = g.X
			size = gs
		}

		style := GlyphStyle(g.Font, g.Size)
		bold := IsBoldFont(g.Font)
		text := g.S
		if g.X-penX > wordGap*gs && !endsWithSpace(cur) && strings.TrimSpace(text) != "" {
			text = " " + text
		}

		n := len(cur.Spans)
		if n > 0 && cur.Spans[n-1].Style == style && cur.Spans[n-1].Bold == bold {
			cur.Spans[n-1].Text += text
		} else {
			cur.Spans = append(cur.Spans, Span{Text: text, Style: style, Bold: bold})
		}

		penX = math.Max(penX, g.X+g.W)
		size = gs
	}
	flush()

	for i := range lines {
		trimLine(&lines[i])
	}
	return lines
}

func endsWithSpace(l *Line) bool {
	if l == nil || len(l.Spans) == 0 {
		return true
	}
	t := l.Spans[len(l.Spans)-1].Text
	return t == "" || strings.HasSuffix(t, " ")
}

func trimLine(l *Line) {
	n := len(l.Spans)
	if n == 0 {
		return
	}
	l.Spans[n-1].Text = strings.TrimRight(l.Spans[n-1].Text, " ")
}
