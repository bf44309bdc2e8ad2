// Package consolidate discovers source export files, runs them through
// the loaders and the transformer, and produces the unified time-sorted
// ledger, persisting it as a CSV file.
package consolidate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"finboard/internal/core"
	"finboard/internal/loader"
	"finboard/internal/transform"
)

// DefaultPatterns are the filename substrings (matched case-insensitively)
// that assign a discovered file to a source.
func DefaultPatterns() map[core.Source]string {
	return map[core.Source]string{
		core.SourceBank:      "bank",
		core.SourceGooglePay: "google_pay",
		core.SourcePaytm:     "paytm",
	}
}

// Options configures a consolidation run.
type Options struct {
	// InputDir is scanned (non-recursively) for source export files.
	InputDir string
	// OutputPath is where the unified ledger CSV is written.
	OutputPath string
	// Patterns maps each source to its filename substring. Nil means
	// DefaultPatterns.
	Patterns map[core.Source]string
	// Strict upgrades any rejected row to a run failure.
	Strict bool
	// PersistMandatory makes a persistence failure fatal for the run.
	// When false, the in-memory ledger is still returned alongside the
	// persistence error.
	PersistMandatory bool
}

// Result is the outcome of a consolidation run.
type Result struct {
	Ledger   []core.Transaction
	Rejected []loader.RejectedRow
}

// Consolidator runs the ingestion pipeline end to end.
type Consolidator struct {
	opts        Options
	transformer *transform.Transformer
}

// New builds a consolidator. A nil transformer gets the defaults
// (built-in rules, August fiscal start).
func New(opts Options, tr *transform.Transformer) *Consolidator {
	if opts.Patterns == nil {
		opts.Patterns = DefaultPatterns()
	}
	if tr == nil {
		tr = transform.New(nil, 0)
	}
	return &Consolidator{opts: opts, transformer: tr}
}

// Consolidate discovers input files, loads and enriches all records,
// stable-sorts them by date and persists the ledger.
//
// Zero discovered files fail with core.ErrNoInputFiles. A malformed
// file (bad header) is reported as a rejection and skipped unless the
// run is strict, so one bad export cannot take down the rest. A persistence
// failure returns the in-memory result together with a
// *core.PersistenceError unless persistence is mandatory.
func (c *Consolidator) Consolidate(ctx context.Context) (Result, error) {
	files, err := c.discover()
	if err != nil {
		return Result{}, err
	}

	var (
		all      []core.Transaction
		rejected []loader.RejectedRow
	)
	for _, src := range core.Sources() {
		paths := files[src]
		if len(paths) == 0 {
			continue
		}
		ld, err := loader.ForSource(src)
		if err != nil {
			return Result{}, err
		}
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			txns, rej, err := ld.Load(path)
			if err != nil {
				var malformed *core.MalformedInputError
				if !c.opts.Strict && errors.As(err, &malformed) {
					// A bad file must not take down the remaining sources.
					slog.Warn("Skipping malformed source file", "file", path, "reason", malformed.Reason)
					rejected = append(rejected, loader.RejectedRow{File: malformed.File, Row: malformed.Row, Reason: malformed.Reason})
					continue
				}
				return Result{}, err
			}
			if len(rej) > 0 {
				if c.opts.Strict {
					first := rej[0]
					return Result{}, &core.MalformedInputError{File: first.File, Row: first.Row, Reason: first.Reason}
				}
				slog.Warn("Rejected rows in source file", "file", path, "rows", len(rej))
				rejected = append(rejected, rej...)
			}
			slog.Info("Loaded source file", "source", src, "file", path, "records", len(txns))
			all = append(all, txns...)
		}
	}

	ledger := c.transformer.Enrich(all)
	// Stable keeps relative input order for same-date records.
	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].Date.Before(ledger[j].Date)
	})

	result := Result{Ledger: ledger, Rejected: rejected}
	if err := Persist(c.opts.OutputPath, ledger); err != nil {
		if c.opts.PersistMandatory {
			return Result{}, err
		}
		return result, err
	}
	slog.Info("Consolidated ledger persisted", "path", c.opts.OutputPath, "records", len(ledger))
	return result, nil
}

// discover scans the input directory and buckets matching .csv files by
// source. Matching is a case-insensitive substring test on the filename.
func (c *Consolidator) discover() (map[core.Source][]string, error) {
	entries, err := os.ReadDir(c.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan input directory %s: %w", c.opts.InputDir, err)
	}

	files := make(map[core.Source][]string)
	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		for _, src := range core.Sources() {
			pattern := strings.ToLower(c.opts.Patterns[src])
			if pattern == "" || !strings.Contains(name, pattern) {
				continue
			}
			files[src] = append(files[src], filepath.Join(c.opts.InputDir, entry.Name()))
			total++
			break
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: directory %s, patterns %v", core.ErrNoInputFiles, c.opts.InputDir, c.opts.Patterns)
	}
	return files, nil
}
