package corpus

import (
	"context"
	"io"
	"log/slog"

	"github.com/dgallion1/hearinglist/internal/clean"
	"github.com/dgallion1/hearinglist/internal/extract"
	"github.com/dgallion1/hearinglist/internal/parser"
	"github.com/dgallion1/hearinglist/internal/store"
)

// Opener opens a document by path.
type Opener func(path string) (parser.Document, error)

// Recorder persists one processed document. *store.Store satisfies it.
type Recorder interface {
	SaveDocument(ctx context.Context, rec store.DocumentRecord) (int64, error)
}

// Driver runs extraction and cleaning over a list of files, one at a time.
type Driver struct {
	log       *slog.Logger
	open      Opener
	extractor *extract.Extractor
	cleaner   *clean.Cleaner
	recorder  Recorder
}

// NewDriver creates a Driver. recorder may be nil.
func NewDriver(log *slog.Logger, open Opener, extractor *extract.Extractor, cleaner *clean.Cleaner, recorder Recorder) *Driver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{log: log, open: open, extractor: extractor, cleaner: cleaner, recorder: recorder}
}

// Run processes files in order and returns the per-hearing lists. Document
// failures are logged and leave the hearing's list as it was; only a
// cancelled context stops the run early, returning what was gathered.
func (d *Driver) Run(ctx context.Context, files []File) (*Results, error) {
	results := NewResults()
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		log := d.log.With("hearing", f.Hearing, "file", f.Path)
		results.Append(f.Hearing)

		rec, ok := d.process(ctx, log, f)
		if !ok {
			continue
		}
		results.Append(f.Hearing, rec.Entities...)
		if d.recorder != nil {
			if _, err := d.recorder.SaveDocument(ctx, rec); err != nil {
				log.Warn("failed to record document", "error", err)
			}
		}
		log.Debug("document done", "n", i+1, "of", len(files))
	}
	return results, nil
}

func (d *Driver) process(ctx context.Context, log *slog.Logger, f File) (store.DocumentRecord, bool) {
	doc, err := d.open(f.Path)
	if err != nil {
		log.Warn("failed to open document", "error", err)
		return store.DocumentRecord{}, false
	}
	defer doc.Close()

	res := d.extractor.Extract(ctx, doc)
	rec := store.DocumentRecord{
		HearingID:  f.Hearing,
		Source:     f.Path,
		Method:     string(res.Method),
		Candidates: len(res.Candidates),
	}
	if res.Err != nil {
		log.Warn("no entities extracted", "error", res.Err)
		rec.Warning = res.Err.Error()
		return rec, true
	}
	if res.FailedPages > 0 {
		log.Warn("pages skipped", "failed_pages", res.FailedPages)
	}

	rec.Entities = d.cleaner.Clean(res.Candidates)
	log.Info("finished cleaning", "raw", len(res.Candidates), "cleaned", len(rec.Entities))
	return rec, true
}
