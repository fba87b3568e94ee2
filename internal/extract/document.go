// Package extract recovers raw organisation-name candidates from a hearing
// document, choosing between its ruled tables and its body text column.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/hearinglist/internal/layout"
	"github.com/dgallion1/hearinglist/internal/parser"
)

// Method names the strategy that produced a Result.
type Method string

const (
	MethodNone  Method = "none"
	MethodTable Method = "table"
	MethodText  Method = "text"
)

// Options tune the extractor. Zero values select the defaults.
type Options struct {
	// RetryDelay is the pause before the single retry of a failed page.
	RetryDelay time.Duration
	// MinFirstPageChars is the empty-document threshold.
	MinFirstPageChars int
	// MarginTolerance is the ± distance, in points, from the body margin.
	MarginTolerance float64
}

const (
	DefaultRetryDelay        = 500 * time.Millisecond
	DefaultMinFirstPageChars = 10
	DefaultMarginTolerance   = 1.0
)

// Result is the outcome of extracting one document.
type Result struct {
	Candidates []string
	Method     Method
	// Style is the body style signature when the text path ran.
	Style string
	// Err classifies a document that yielded nothing: ErrEmptyDocument,
	// ErrStyleUndetectable, or an error wrapping parser.ErrToolUnavailable.
	Err error
	// FailedPages counts pages that failed twice and contributed nothing.
	FailedPages int
	Duration    time.Duration
}

// Extractor runs the document-level strategy choice. It is safe for
// concurrent use; each call works on its own document.
type Extractor struct {
	log   *slog.Logger
	opts  Options
	stats *Stats
	sleep func(context.Context, time.Duration) error
}

// New creates an Extractor. A nil logger discards output; stats may be nil.
func New(log *slog.Logger, opts Options, stats *Stats) *Extractor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MinFirstPageChars <= 0 {
		opts.MinFirstPageChars = DefaultMinFirstPageChars
	}
	if opts.MarginTolerance <= 0 {
		opts.MarginTolerance = DefaultMarginTolerance
	}
	return &Extractor{log: log, opts: opts, stats: stats, sleep: sleepContext}
}

// Extract returns the raw candidates of doc. It never fails: document-level
// problems are reported through Result.Err with an empty candidate list.
func (e *Extractor) Extract(ctx context.Context, doc parser.Document) Result {
	start := time.Now()
	res := e.extract(ctx, doc)
	res.Duration = time.Since(start)
	if e.stats != nil {
		e.stats.Record(res)
	}
	return res
}

func (e *Extractor) extract(ctx context.Context, doc parser.Document) Result {
	if doc == nil || doc.NumPages() == 0 {
		e.log.Warn("document has no pages")
		return Result{Method: MethodNone, Err: ErrEmptyDocument}
	}

	text, err := doc.Page(0).PlainText()
	if err != nil || layout.RuneLen(text) < e.opts.MinFirstPageChars {
		e.log.Warn("no text found on first page, document is probably scanned", "chars", layout.RuneLen(text), "error", err)
		return Result{Method: MethodNone, Err: ErrEmptyDocument}
	}

	tables, err := doc.Tables()
	if err != nil {
		if !errors.Is(err, parser.ErrToolUnavailable) {
			err = fmt.Errorf("%w: %v", parser.ErrToolUnavailable, err)
		}
		e.log.Warn("table detection failed", "error", err)
		return Result{Method: MethodNone, Err: err}
	}
	if len(tables) > 0 {
		cands := TableCandidates(tables)
		e.log.Info("extracted list from table", "tables", len(tables), "raw", len(cands))
		return Result{Candidates: cands, Method: MethodTable}
	}

	return e.extractText(ctx, doc)
}

func (e *Extractor) extractText(ctx context.Context, doc parser.Document) Result {
	first, err := e.pageLines(ctx, doc.Page(0))
	if err != nil {
		e.log.Warn("first page unreadable, body style unknown", "error", err)
		return Result{Method: MethodNone, Err: ErrStyleUndetectable, FailedPages: 1}
	}
	style, ok := DominantStyle(first)
	if !ok {
		e.log.Warn("no style found on first page")
		return Result{Method: MethodNone, Err: ErrStyleUndetectable}
	}
	e.log.Debug("body style", "style", style)

	res := Result{Method: MethodText, Style: style}
	for i := 0; i < doc.NumPages(); i++ {
		lines := first
		if i > 0 {
			lines, err = e.pageLines(ctx, doc.Page(i))
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				res.FailedPages++
				e.log.Warn("page skipped after retry", "page", i+1, "error", err)
				continue
			}
		}
		res.Candidates = append(res.Candidates, ExtractPage(lines, style, e.opts.MarginTolerance)...)
	}
	e.log.Info("extracted list from text", "pages", doc.NumPages(), "raw", len(res.Candidates))
	return res
}

// pageLines reads a page's layout, retrying once after RetryDelay when the
// failure is transient.
func (e *Extractor) pageLines(ctx context.Context, page parser.Page) ([]layout.Line, error) {
	lines, err := page.Lines()
	if err == nil || !errors.Is(err, parser.ErrTransientPage) {
		return lines, err
	}
	e.log.Debug("page layout error, retrying", "error", err, "delay", e.opts.RetryDelay)
	if serr := e.sleep(ctx, e.opts.RetryDelay); serr != nil {
		return nil, serr
	}
	return page.Lines()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
