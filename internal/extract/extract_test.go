package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/hearinglist/internal/clean"
	"github.com/dgallion1/hearinglist/internal/layout"
	"github.com/dgallion1/hearinglist/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	body   = "font-family:Arial;font-size:10pt"
	header = "font-family:Arial;font-size:14pt"
	symbol = "font-family:Symbol;font-size:10pt"
)

func line(left, top float64, spans ...layout.Span) layout.Line {
	return layout.Line{Left: left, Top: top, Positioned: true, Spans: spans}
}

func span(style, text string) layout.Span {
	return layout.Span{Text: text, Style: style}
}

func boldSpan(style, text string) layout.Span {
	return layout.Span{Text: text, Style: style, Bold: true}
}

func TestDominantStyle(t *testing.T) {
	lines := []layout.Line{
		line(72, 10, span(header, "Høringsliste")),
		line(72, 20, span(symbol, "•"), span(body, "Dansk Industri")),
		line(72, 30, span(body, "KL")),
		line(72, 40, span(header, "info@kl.dk")),
		line(72, 50, span(header, "x")),
	}
	style, ok := DominantStyle(lines)
	require.True(t, ok)
	assert.Equal(t, body, style)
}

func TestDominantStyle_TieKeepsFirstSeen(t *testing.T) {
	lines := []layout.Line{
		line(72, 10, span(header, "Høringsliste")),
		line(72, 20, span(body, "Dansk Industri")),
	}
	style, ok := DominantStyle(lines)
	require.True(t, ok)
	assert.Equal(t, header, style)
}

func TestDominantStyle_NothingQualifies(t *testing.T) {
	lines := []layout.Line{
		line(72, 10, span(symbol, "••••")),
		line(72, 20, span(body, "a")),
		line(72, 30, span(body, "mail@x.dk")),
		line(72, 40, layout.Span{Text: "unstyled text"}),
	}
	_, ok := DominantStyle(lines)
	assert.False(t, ok)
	_, ok = DominantStyle(nil)
	assert.False(t, ok)
}

func TestExtractPage_MarginAndStyle(t *testing.T) {
	lines := []layout.Line{
		line(36, 50, span(header, "Høringsliste")),
		line(72, 100, span(body, "Dansk Erhverv")),
		line(72.6, 112, span(body, "Dansk Industri")),
		line(72, 124, boldSpan(body, "Kommuner")),
		line(72, 136, span(header, "Andet format")),
		line(72, 148, span(body, "Landbrug & "), span(header, "Fødevarer")),
		line(300, 148, span(body, "København")),
		{Left: 0, Top: 160, Spans: []layout.Span{span(body, "no margin")}},
	}
	got := ExtractPage(lines, body, 1)
	assert.Equal(t, []string{"Dansk Erhverv", "Dansk Industri", "", "", "Landbrug & Fødevarer"}, got)
}

func TestExtractPage_SameTopConcatenates(t *testing.T) {
	lines := []layout.Line{
		line(72, 100, span(body, "Danske ")),
		line(72, 100, span(body, "Regioner")),
		line(72, 112, span(body, "KL")),
	}
	assert.Equal(t, []string{"Danske Regioner", "KL"}, ExtractPage(lines, body, 1))
}

func TestExtractPage_Symbols(t *testing.T) {
	lines := []layout.Line{
		// Bare bullets on their own line vanish together with their line.
		line(60, 100, span(symbol, "•")),
		line(60, 112, span(symbol, "•")),
		line(60, 124, span(symbol, "•")),
		line(72, 100, span(symbol, "•"), span(body, "Dansk Industri")),
		line(72, 112, span(body, "KL")),
	}
	assert.Equal(t, []string{"Dansk Industri", "KL"}, ExtractPage(lines, body, 1))
}

func TestExtractPage_ShortLineWithSymbolDropped(t *testing.T) {
	lines := []layout.Line{
		line(72, 100, span(symbol, "•"), span(body, "KL")),
		line(72, 112, span(body, "Dansk Industri")),
	}
	assert.Equal(t, []string{"Dansk Industri"}, ExtractPage(lines, body, 1))
}

func TestExtractPage_NoVisibleText(t *testing.T) {
	assert.Nil(t, ExtractPage(nil, body, 1))
	assert.Nil(t, ExtractPage([]layout.Line{line(72, 1, span(body, "  "))}, body, 1))
}

func TestExtractPage_NoPositionedLines(t *testing.T) {
	lines := []layout.Line{{Spans: []layout.Span{span(body, "Dansk Industri")}}}
	assert.Nil(t, ExtractPage(lines, body, 1))
}

func TestTableCandidates(t *testing.T) {
	tables := []layout.Table{
		{Rows: [][]string{{"Navn", "By"}, {"Dansk\nIndustri", "København"}, {}}},
		{Rows: [][]string{{"KL"}}},
	}
	assert.Equal(t, []string{"Navn", "DanskIndustri", "KL"}, TableCandidates(tables))
}

type fakePage struct {
	text    string
	textErr error
	lines   []layout.Line
	errs    []error
	calls   int
}

func (p *fakePage) PlainText() (string, error) { return p.text, p.textErr }

func (p *fakePage) Lines() ([]layout.Line, error) {
	p.calls++
	if p.calls <= len(p.errs) && p.errs[p.calls-1] != nil {
		return nil, p.errs[p.calls-1]
	}
	return p.lines, nil
}

type fakeDoc struct {
	pages      []*fakePage
	tables     []layout.Table
	tablesErr  error
	tableCalls int
}

func (d *fakeDoc) NumPages() int          { return len(d.pages) }
func (d *fakeDoc) Page(n int) parser.Page { return d.pages[n] }
func (d *fakeDoc) Close() error           { return nil }

func (d *fakeDoc) Tables() ([]layout.Table, error) {
	d.tableCalls++
	return d.tables, d.tablesErr
}

func bodyPage(text string, lines ...layout.Line) *fakePage {
	return &fakePage{text: text, lines: lines}
}

func newTestExtractor(stats *Stats) (*Extractor, *int) {
	e := New(nil, Options{}, stats)
	slept := 0
	e.sleep = func(context.Context, time.Duration) error {
		slept++
		return nil
	}
	return e, &slept
}

func TestExtract_EmptyDocument(t *testing.T) {
	e, _ := newTestExtractor(nil)

	res := e.Extract(context.Background(), &fakeDoc{})
	assert.ErrorIs(t, res.Err, ErrEmptyDocument)
	assert.Empty(t, res.Candidates)

	doc := &fakeDoc{pages: []*fakePage{{text: "Side 1"}}, tables: []layout.Table{{Rows: [][]string{{"KL"}}}}}
	res = e.Extract(context.Background(), doc)
	assert.ErrorIs(t, res.Err, ErrEmptyDocument)
	assert.Equal(t, MethodNone, res.Method)
	assert.Zero(t, doc.tableCalls, "table detection must not run on empty documents")

	res = e.Extract(context.Background(), nil)
	assert.ErrorIs(t, res.Err, ErrEmptyDocument)
}

func TestExtract_TablePathSkipsStyle(t *testing.T) {
	e, _ := newTestExtractor(nil)
	page := bodyPage("Høringsliste med mange organisationer")
	doc := &fakeDoc{
		pages:  []*fakePage{page},
		tables: []layout.Table{{Rows: [][]string{{"Dansk\nIndustri", "x"}, {"KL", "y"}}}},
	}
	res := e.Extract(context.Background(), doc)
	require.NoError(t, res.Err)
	assert.Equal(t, MethodTable, res.Method)
	assert.Equal(t, []string{"DanskIndustri", "KL"}, res.Candidates)
	assert.Zero(t, page.calls, "text path must not run when a table exists")
}

func TestExtract_ToolUnavailable(t *testing.T) {
	e, _ := newTestExtractor(nil)
	doc := &fakeDoc{
		pages:     []*fakePage{bodyPage("Høringsliste med tekst", line(72, 1, span(body, "KL")))},
		tablesErr: errors.New("ghostscript missing"),
	}
	res := e.Extract(context.Background(), doc)
	assert.ErrorIs(t, res.Err, parser.ErrToolUnavailable)
	assert.Empty(t, res.Candidates)
}

func TestExtract_StyleUndetectable(t *testing.T) {
	e, _ := newTestExtractor(nil)
	doc := &fakeDoc{pages: []*fakePage{bodyPage("••••••••••••", line(72, 1, span(symbol, "••••••••••••")))}}
	res := e.Extract(context.Background(), doc)
	assert.ErrorIs(t, res.Err, ErrStyleUndetectable)
	assert.Empty(t, res.Candidates)
}

func TestExtract_TextPathAcrossPages(t *testing.T) {
	e, _ := newTestExtractor(nil)
	doc := &fakeDoc{pages: []*fakePage{
		bodyPage("Høringsliste Dansk Industri KL",
			line(36, 10, span(header, "Høringsliste")),
			line(72, 20, span(body, "Dansk Industri")),
			line(72, 30, span(body, "KL")),
		),
		bodyPage("", line(72, 20, span(body, "Danske Regioner"))),
	}}
	res := e.Extract(context.Background(), doc)
	require.NoError(t, res.Err)
	assert.Equal(t, MethodText, res.Method)
	assert.Equal(t, body, res.Style)
	assert.Equal(t, []string{"Dansk Industri", "KL", "Danske Regioner"}, res.Candidates)
}

func TestExtract_TransientPageRetriedOnce(t *testing.T) {
	e, slept := newTestExtractor(nil)
	flaky := bodyPage("", line(72, 20, span(body, "Danske Regioner")))
	flaky.errs = []error{parser.ErrTransientPage}
	doc := &fakeDoc{pages: []*fakePage{
		bodyPage("Dansk Industri og KL", line(72, 20, span(body, "Dansk Industri"))),
		flaky,
	}}
	res := e.Extract(context.Background(), doc)
	assert.Equal(t, []string{"Dansk Industri", "Danske Regioner"}, res.Candidates)
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, 1, *slept)
	assert.Zero(t, res.FailedPages)
}

func TestExtract_PageFailingTwiceIsSkipped(t *testing.T) {
	e, slept := newTestExtractor(nil)
	broken := bodyPage("", line(72, 20, span(body, "never seen")))
	broken.errs = []error{parser.ErrTransientPage, parser.ErrTransientPage}
	doc := &fakeDoc{pages: []*fakePage{
		bodyPage("Dansk Industri og KL", line(72, 20, span(body, "Dansk Industri"))),
		broken,
		bodyPage("", line(72, 20, span(body, "KL"))),
	}}
	res := e.Extract(context.Background(), doc)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"Dansk Industri", "KL"}, res.Candidates)
	assert.Equal(t, 1, res.FailedPages)
	assert.Equal(t, 2, broken.calls)
	assert.Equal(t, 1, *slept)
}

func TestExtract_NonTransientErrorNotRetried(t *testing.T) {
	e, slept := newTestExtractor(nil)
	broken := bodyPage("")
	broken.errs = []error{errors.New("boom")}
	doc := &fakeDoc{pages: []*fakePage{
		bodyPage("Dansk Industri og KL", line(72, 20, span(body, "Dansk Industri"))),
		broken,
	}}
	res := e.Extract(context.Background(), doc)
	assert.Equal(t, []string{"Dansk Industri"}, res.Candidates)
	assert.Equal(t, 1, broken.calls)
	assert.Zero(t, *slept)
}

func TestExtract_RecordsStats(t *testing.T) {
	stats := NewStats(time.Hour)
	e, _ := newTestExtractor(stats)
	e.Extract(context.Background(), &fakeDoc{})
	e.Extract(context.Background(), &fakeDoc{
		pages:  []*fakePage{bodyPage("Høringsliste med mange organisationer")},
		tables: []layout.Table{{Rows: [][]string{{"KL"}}}},
	})

	snap := stats.Snapshot()
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, 1, snap.Outcomes[OutcomeEmptyDocument])
	assert.Equal(t, 1, snap.Outcomes[OutcomeTable])
}

func TestExtract_MarkupThroughCleaner(t *testing.T) {
	markup := `<html><body><div id="page0">` +
		`<p style="top:50pt;left:36pt"><span style="font-family:Arial;font-size:14pt">Høringsliste</span></p>` +
		`<p style="top:100pt;left:72pt"><span style="font-family:Arial;font-size:10pt">Dansk Erhverv</span></p>` +
		`<p style="top:112pt;left:72pt"><span style="font-family:Arial;font-size:10pt">side 1</span></p>` +
		`<p style="top:124pt;left:72pt"><span style="font-family:Arial;font-size:10pt">Dansk Industri, Tlf. 12345678</span></p>` +
		`</div></body></html>`
	doc, err := (&parser.HTMLParser{}).Parse(strings.NewReader(markup), "hoeringsliste.html")
	require.NoError(t, err)
	defer doc.Close()

	e, _ := newTestExtractor(nil)
	res := e.Extract(context.Background(), doc)
	require.NoError(t, res.Err)
	assert.Equal(t, MethodText, res.Method)
	assert.Equal(t, []string{"Dansk Erhverv", "side 1", "Dansk Industri, Tlf. 12345678"}, res.Candidates)

	assert.Equal(t, []string{"Dansk Erhverv"}, clean.New(clean.Options{}).Clean(res.Candidates))
}
