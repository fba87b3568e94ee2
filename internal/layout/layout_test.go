package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkup = `<html><body>
<div id="page0" style="width:595.3pt;height:841.9pt">
<p style="top:72.0pt;left:56.7pt;line-height:12.0pt"><b><span style="font-family:Arial,serif;font-size:12.0pt">Høringsliste</span></b></p>
<p style="top:100.0pt;left:56.7pt"><span style="font-family:Symbol,serif;font-size:10.0pt">•</span><span style="font-family:Arial,serif;font-size:10.0pt">Dansk Industri</span></p>
<p style="top:112.0pt;left:56.7pt"><span style="font-family:Arial,serif;font-size:10.0pt">Landbrug &amp; Fødevarer</span><img src="x.png"/></p>
<p style="left:56.7pt"><span style="font-family:Arial,serif;font-size:10.0pt">no top</span></p>
<table><tr><td>Navn</td><td>Adresse</td></tr><tr><td>Danske<br/>Regioner</td><td>x</td></tr></table>
</div>
<div id="page1" style="width:595.3pt;height:841.9pt">
<p style="top:72.0pt;left:56.7pt"><span style="font-family:Arial,serif;font-size:10.0pt">KL</span></p>
</div>
</body></html>`

func TestParseMarkup_PagesAndLines(t *testing.T) {
	pages, tables, err := ParseMarkup(strings.NewReader(sampleMarkup))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	p0 := pages[0]
	assert.Equal(t, 0, p0.Number)
	assert.InDelta(t, 841.9, p0.Height, 0.001)
	require.Len(t, p0.Lines, 4)

	title := p0.Lines[0]
	assert.True(t, title.Positioned)
	assert.InDelta(t, 72.0, title.Top, 0.001)
	assert.InDelta(t, 56.7, title.Left, 0.001)
	lead, ok := title.Lead()
	require.True(t, ok)
	assert.True(t, lead.Bold)
	assert.Equal(t, "Høringsliste", title.Text())

	bullet := p0.Lines[1]
	require.Len(t, bullet.Spans, 2)
	assert.True(t, IsSymbolStyle(bullet.Spans[0].Style))
	assert.Equal(t, "•Dansk Industri", bullet.Text())

	assert.Equal(t, "Landbrug & Fødevarer", p0.Lines[2].Text())
	assert.False(t, p0.Lines[3].Positioned)

	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"Navn", "Adresse"}, {"Danske\nRegioner", "x"}}, tables[0].Rows)
	assert.Equal(t, "KL", pages[1].Text())
}

func TestParseMarkup_NoPageDivs(t *testing.T) {
	pages, _, err := ParseMarkup(strings.NewReader(`<p style="top:1pt;left:2pt"><span style="a">x</span></p>`))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Lines, 1)
	assert.InDelta(t, 2.0, pages[0].Lines[0].Left, 0.001)
}

func TestStyleOffset(t *testing.T) {
	tests := []struct {
		style string
		prop  string
		want  float64
		ok    bool
	}{
		{"top:72.0pt;left:56.7pt", "left", 56.7, true},
		{"top:72.0pt;left:-3pt", "left", -3, true},
		{"top:72.0pt", "left", 0, false},
		{"left:.pt", "left", 0, false},
		{"margin-left:10pt", "left", 0, false},
	}
	for _, tt := range tests {
		got, ok := StyleOffset(tt.style, tt.prop)
		assert.Equal(t, tt.ok, ok, tt.style)
		assert.InDelta(t, tt.want, got, 0.001, tt.style)
	}
}

func TestHasVisibleText(t *testing.T) {
	assert.False(t, HasVisibleText(nil))
	assert.False(t, HasVisibleText([]Line{{Spans: []Span{{Text: "  \n"}}}}))
	assert.True(t, HasVisibleText([]Line{{Spans: []Span{{Text: " a "}}}}))
}

// word lays out s as glyphs with a fixed advance of half the font size.
func word(font string, size, x, y float64, s string) []Glyph {
	var out []Glyph
	for _, r := range s {
		out = append(out, Glyph{Font: font, Size: size, X: x, Y: y, W: size / 2, S: string(r)})
		x += size / 2
	}
	return out
}

func TestFromGlyphs_WordsAndLines(t *testing.T) {
	var gs []Glyph
	gs = append(gs, word("Helvetica", 10, 72, 700, "Dansk")...)
	gs = append(gs, word("Helvetica", 10, 102, 700, "Industri")...)
	gs = append(gs, word("Helvetica-Bold", 10, 72, 680, "KL")...)
	gs = append(gs, Glyph{S: "\n"})
	gs = append(gs, word("Helvetica", 10, 72, 680, "x")...)

	lines := FromGlyphs(gs, 842)
	require.Len(t, lines, 3)

	assert.Equal(t, "Dansk Industri", lines[0].Text())
	assert.InDelta(t, 72, lines[0].Left, 0.001)
	assert.InDelta(t, 142, lines[0].Top, 0.001)
	assert.Equal(t, "font-family:Helvetica;font-size:10pt", lines[0].Spans[0].Style)

	require.Len(t, lines[1].Spans, 1)
	assert.True(t, lines[1].Spans[0].Bold)
	assert.Equal(t, "KL", lines[1].Text())

	assert.Equal(t, "x", lines[2].Text())
}

func TestFromGlyphs_WidthlessFont(t *testing.T) {
	var gs []Glyph
	for _, r := range "Foo " {
		gs = append(gs, Glyph{Font: "Times-Roman", Size: 10, X: 72, Y: 500, S: string(r)})
	}
	for _, r := range "Bar" {
		gs = append(gs, Glyph{Font: "Times-Roman", Size: 10, X: 95, Y: 500, S: string(r)})
	}
	lines := FromGlyphs(gs, 842)
	require.Len(t, lines, 1)
	assert.Equal(t, "Foo Bar", lines[0].Text())
}

func TestFromGlyphs_ColumnGapSplits(t *testing.T) {
	var gs []Glyph
	gs = append(gs, word("Helvetica", 10, 72, 700, "Navn")...)
	gs = append(gs, word("Helvetica", 10, 400, 700, "3")...)
	lines := FromGlyphs(gs, 842)
	require.Len(t, lines, 2)
	assert.InDelta(t, 400, lines[1].Left, 0.001)
	assert.Equal(t, lines[0].Top, lines[1].Top)
}

func TestFromGlyphs_LeadingSpacesSkipped(t *testing.T) {
	gs := word("Helvetica", 10, 60, 700, "  ab")
	lines := FromGlyphs(gs, 842)
	require.Len(t, lines, 1)
	assert.InDelta(t, 70, lines[0].Left, 0.001)
	assert.Equal(t, "ab", lines[0].Text())
}

func boxedTable(top float64, rows int) []Rect {
	var rects []Rect
	for r := 0; r < rows; r++ {
		y := top - float64(r)*20
		rects = append(rects,
			Rect{X0: 50, Y0: y, X1: 250, Y1: y - 20},
			Rect{X0: 250, Y0: y, X1: 450, Y1: y - 20},
		)
	}
	return rects
}

func TestDetectGrids_BoxedCells(t *testing.T) {
	grids := DetectGrids(boxedTable(700, 3), 595, 842, 25)
	require.Len(t, grids, 1)
	assert.Equal(t, []float64{50, 250, 450}, grids[0].Xs)
	assert.Equal(t, []float64{700, 680, 660, 640}, grids[0].Ys)
}

func TestDetectGrids_IgnoresUnderlines(t *testing.T) {
	rects := []Rect{
		{X0: 72, Y0: 698, X1: 300, Y1: 698.5},
		{X0: 72, Y0: 600, X1: 300, Y1: 600.5},
	}
	assert.Empty(t, DetectGrids(rects, 595, 842, 25))
}

func TestDetectGrids_ShortRulesDropped(t *testing.T) {
	rects := []Rect{
		{X0: 50, Y0: 700, X1: 60, Y1: 700.5},
		{X0: 50, Y0: 690, X1: 60, Y1: 690.5},
		{X0: 50, Y0: 690, X1: 50.5, Y1: 700},
		{X0: 60, Y0: 690, X1: 60.5, Y1: 700},
	}
	assert.Empty(t, DetectGrids(rects, 595, 842, 25))
}

func TestGridRows(t *testing.T) {
	grids := DetectGrids(boxedTable(700, 3), 595, 842, 25)
	require.Len(t, grids, 1)

	var gs []Glyph
	gs = append(gs, word("Helvetica", 10, 55, 685, "Navn")...)
	gs = append(gs, word("Helvetica", 10, 255, 685, "By")...)
	gs = append(gs, word("Helvetica", 10, 55, 665, "Dansk Industri")...)
	gs = append(gs, word("Helvetica", 8, 55, 652, "Landbrug")...)
	gs = append(gs, word("Helvetica", 8, 55, 643, "& Fødevarer")...)
	gs = append(gs, word("Helvetica", 10, 55, 400, "outside")...)

	rows := grids[0].Rows(gs, 842)
	assert.Equal(t, [][]string{
		{"Navn", "By"},
		{"Dansk Industri", ""},
		{"Landbrug\n& Fødevarer", ""},
	}, rows)
}
