// Command hearinglist extracts organisation names from the hearing lists of
// a downloaded corpus and counts them.
//
//	hearinglist --data-dir data --type bill --extract --count
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dgallion1/hearinglist/internal/clean"
	"github.com/dgallion1/hearinglist/internal/config"
	"github.com/dgallion1/hearinglist/internal/corpus"
	"github.com/dgallion1/hearinglist/internal/extract"
	"github.com/dgallion1/hearinglist/internal/parser"
	"github.com/dgallion1/hearinglist/internal/report"
	"github.com/dgallion1/hearinglist/internal/store"
)

type steps struct {
	extract, count, report, record bool
}

func main() {
	fs := config.NewFlagSet("hearinglist")
	all := fs.Bool("all", false, "run extract and count in order")
	doExtract := fs.Bool("extract", false, "extract entities and save them to <data-dir>/<type>_hearings.json")
	doCount := fs.Bool("count", false, "count entities into <data-dir>/<type>_hearings_entity_counts.csv")
	doReport := fs.Bool("report", false, "also write Markdown and HTML count reports")
	record := fs.Bool("record", false, "store every processed document in the SQLite database (--db)")

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.DataDir == "" {
		log.Error("--data-dir is required")
		os.Exit(1)
	}

	s := steps{
		extract: *all || *doExtract,
		count:   *all || *doCount || *doReport,
		report:  *doReport,
		record:  *record,
	}
	if !s.extract && !s.count {
		fmt.Fprintln(os.Stderr, "nothing to do: pass --extract, --count, --report or --all")
		fs.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, s, log); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, s steps, log *slog.Logger) error {
	stem := corpus.Stem(cfg.HearingType)
	resultsPath := filepath.Join(cfg.DataDir, stem+".json")

	if s.extract {
		if err := runExtract(ctx, cfg, s.record, resultsPath, log); err != nil {
			return err
		}
	}
	if s.count {
		return runCount(cfg.DataDir, stem, resultsPath, s.report, log)
	}
	return nil
}

func runExtract(ctx context.Context, cfg config.Config, record bool, resultsPath string, log *slog.Logger) error {
	hearings, err := corpus.LoadMetadata(filepath.Join(cfg.DataDir, "metadata.csv"))
	if err != nil {
		return err
	}
	ids, err := corpus.HearingIDs(hearings, cfg.HearingType)
	if err != nil {
		return err
	}
	files, err := corpus.Discover(filepath.Join(cfg.DataDir, "hearings"), cfg.FilePattern, ids)
	if err != nil {
		return err
	}
	log.Info("found hearing lists", "files", len(files), "hearings", len(ids), "type", cfg.HearingType)

	vocab := clean.DefaultVocabulary()
	if cfg.Clean.Vocabulary != "" {
		if vocab, err = clean.LoadVocabulary(cfg.Clean.Vocabulary); err != nil {
			return err
		}
	}

	var recorder corpus.Recorder
	if record {
		st, err := store.Open(ctx, cfg.Store.Path, log)
		if err != nil {
			return err
		}
		defer st.Close()
		recorder = st
	}

	popts := parser.Options{LineScale: cfg.Extract.LineScale, FallbackPdftotext: cfg.PDF.FallbackPdftotext}
	open := func(path string) (parser.Document, error) { return parser.OpenFile(path, popts) }
	extractor := extract.New(log, extract.Options{
		RetryDelay:        cfg.Extract.RetryDelay,
		MinFirstPageChars: cfg.Extract.MinFirstPageChars,
		MarginTolerance:   cfg.Extract.MarginTolerance,
	}, nil)
	driver := corpus.NewDriver(log, open, extractor, clean.New(clean.Options{Vocabulary: vocab}), recorder)

	results, err := driver.Run(ctx, files)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if saveErr := results.Save(resultsPath); saveErr != nil {
		return saveErr
	}
	log.Info("saved results", "path", resultsPath, "hearings", results.Len())
	return err
}

func runCount(dataDir, stem, resultsPath string, withReport bool, log *slog.Logger) error {
	results, err := corpus.LoadResults(resultsPath)
	if err != nil {
		return err
	}
	counts := report.CountEntities(results.Lists())

	base := filepath.Join(dataDir, stem+"_entity_counts")
	if err := writeFile(base+".csv", func(f *os.File) error { return report.WriteCSV(f, counts) }); err != nil {
		return err
	}
	log.Info("saved counts", "path", base+".csv", "entities", len(counts))

	if !withReport {
		return nil
	}
	if err := writeFile(base+".md", func(f *os.File) error { return report.WriteMarkdown(f, stem, counts) }); err != nil {
		return err
	}
	if err := writeFile(base+".html", func(f *os.File) error { return report.RenderHTML(f, stem, counts) }); err != nil {
		return err
	}
	log.Info("saved reports", "markdown", base+".md", "html", base+".html")
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
