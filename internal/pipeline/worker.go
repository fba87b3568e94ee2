package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/hearinglist/internal/clean"
	"github.com/dgallion1/hearinglist/internal/extract"
	"github.com/dgallion1/hearinglist/internal/parser"
	"github.com/dgallion1/hearinglist/internal/store"
)

// Worker processes a single upload job.
type Worker struct {
	extractor *extract.Extractor
	cleaner   *clean.Cleaner
	store     DocumentStore
	opts      parser.Options
	log       *slog.Logger
}

func NewWorker(extractor *extract.Extractor, cleaner *clean.Cleaner, st DocumentStore, opts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		extractor: extractor,
		cleaner:   cleaner,
		store:     st,
		opts:      opts,
		log:       log,
	}
}

// Process parses, extracts, cleans and stores one upload. A document that
// yields nothing still completes, with the reason in Progress.Warning.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "hearing", job.HearingID, "file", job.Filename)
	defer job.releaseData()

	// Phase 1: Dedup check
	exists, err := w.store.HasDocument(ctx, job.HearingID, job.ContentHash)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if exists {
		log.Info("duplicate document, skipping")
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	defer doc.Close()

	// Phase 3: Extract
	job.SetStatus(StatusExtracting, "extracting")
	res := w.extractor.Extract(ctx, doc)
	warning := ""
	if res.Err != nil {
		warning = res.Err.Error()
		log.Warn("no entities extracted", "error", res.Err)
	}
	job.SetExtraction(string(res.Method), len(res.Candidates), res.FailedPages, warning)

	// Phase 4: Clean
	job.SetStatus(StatusCleaning, "cleaning")
	entities := w.cleaner.Clean(res.Candidates)
	job.SetEntities(entities)
	log.Info("finished cleaning", "raw", len(res.Candidates), "cleaned", len(entities))

	// Phase 5: Store
	job.SetStatus(StatusStoring, "storing")
	_, err = w.store.SaveDocument(ctx, store.DocumentRecord{
		HearingID:   job.HearingID,
		Source:      job.Filename,
		Method:      string(res.Method),
		Candidates:  len(res.Candidates),
		Warning:     warning,
		ContentHash: job.ContentHash,
		Entities:    entities,
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	job.SetStatus(StatusCompleted, "done")
}
