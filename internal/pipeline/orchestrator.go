package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/hearinglist/internal/clean"
	"github.com/dgallion1/hearinglist/internal/config"
	"github.com/dgallion1/hearinglist/internal/extract"
	"github.com/dgallion1/hearinglist/internal/parser"
	"github.com/dgallion1/hearinglist/internal/store"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// DocumentStore persists processed uploads. *store.Store satisfies it.
type DocumentStore interface {
	SaveDocument(ctx context.Context, rec store.DocumentRecord) (int64, error)
	HasDocument(ctx context.Context, hearingID, contentHash string) (bool, error)
}

// Orchestrator manages the upload extraction pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	extractor *extract.Extractor
	cleaner   *clean.Cleaner
	store     DocumentStore
	log       *slog.Logger
	cfg       config.Config

	cancel  context.CancelFunc
	workers sync.WaitGroup
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, extractor *extract.Extractor, cleaner *clean.Cleaner, st DocumentStore, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.Server.JobTTL),
		queue:     make(chan *Job, cfg.Server.MaxQueue),
		extractor: extractor,
		cleaner:   cleaner,
		store:     st,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := parser.Options{
		LineScale:         o.cfg.Extract.LineScale,
		FallbackPdftotext: o.cfg.PDF.FallbackPdftotext,
	}
	for range o.cfg.Server.Workers {
		o.workers.Add(1)
		go func() {
			defer o.workers.Done()
			w := NewWorker(o.extractor, o.cleaner, o.store, opts, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop closes the queue, waits for the workers to finish every queued job
// and then stops the cleanup loop. Submit must not be called afterwards.
func (o *Orchestrator) Stop() {
	close(o.queue)
	o.workers.Wait()
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		job.releaseData()
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.Server.MaxQueue)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
