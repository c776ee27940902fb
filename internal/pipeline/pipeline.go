package pipeline

// =============================================================================
// PIPELINE: LISTINGS IN, ATTRIBUTE TABLE OUT
// =============================================================================
//
// One run, start to finish, no state carried between runs:
//   1. Read both listings (fatal on unreadable or mis-encoded input)
//   2. Name scan, then the override table
//   3. Definition block scan
//   4. Merge into numbered rows, counting missing definitions
//   5. CUE-validate the fact snapshot (fatal on contract violation)
//   6. Write the CSV, the snapshot and the site
//
// Extraction never fails. A gap shows up as "(No definition found)" in the
// output and in the printed summary; patch it with an override and rerun.
// =============================================================================

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/tew-attrs/internal/config"
	"github.com/robert-at-pretension-io/tew-attrs/internal/extractor"
	"github.com/robert-at-pretension-io/tew-attrs/internal/facts"
	"github.com/robert-at-pretension-io/tew-attrs/internal/merge"
	"github.com/robert-at-pretension-io/tew-attrs/internal/report"
	"github.com/robert-at-pretension-io/tew-attrs/internal/source"
	"github.com/robert-at-pretension-io/tew-attrs/internal/validator"
)

// sampleSize is how many names are logged at debug level after a scan
const sampleSize = 10

// Pipeline runs extraction and reporting for one configuration
type Pipeline struct {
	// Configuration loaded from tew_attrs.json
	Config *config.Config

	// Structured log output
	Logger *zap.Logger

	// Human-readable summary output (stdout when nil)
	Out io.Writer

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	timing *timingRecorder
}

// Result is everything one extraction produced
type Result struct {
	Names       *extractor.NameTable
	Definitions extractor.Definitions
	Merged      merge.Result
	Tables      facts.Tables
}

// New creates a Pipeline; a nil logger discards log output
func New(cfg *config.Config, logger *zap.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Config: cfg, Logger: logger}
}

// Extract runs the core on listing text already in memory. It only fails
// on configuration errors; odd listings just produce fewer matches.
func (p *Pipeline) Extract(namesText, defsText string) (*Result, error) {
	overrides, err := p.Config.OverrideTable()
	if err != nil {
		return nil, err
	}
	policy, err := p.Config.EmptyPolicy()
	if err != nil {
		return nil, err
	}

	ex := extractor.New(p.Config.Extraction.Dialect, p.Logger)

	start := time.Now()
	names := ex.Names(namesText)
	overrides.Apply(names)
	p.timing.RecordStage("names", start, "ok")
	p.logSample(names)

	start = time.Now()
	defs := ex.Definitions(source.Lines(defsText))
	p.timing.RecordStage("definitions", start, "ok")

	start = time.Now()
	merged := merge.Merge(names, defs, merge.Options{Empty: policy})
	tables := facts.BuildTables(merged, defs)
	p.timing.RecordStage("merge", start, "ok")

	p.Logger.Info("attributes merged",
		zap.Int("total", merged.Stats.Total),
		zap.Int("present", merged.Stats.Present),
		zap.Int("missing", merged.Stats.Missing),
		zap.Int("orphan_definitions", len(merged.Orphans)),
		zap.Int("overrides", len(overrides)))

	return &Result{Names: names, Definitions: defs, Merged: merged, Tables: tables}, nil
}

// Run reads the configured listings, extracts, validates and writes the
// CSV and (when configured) the fact snapshot
func (p *Pipeline) Run() (*Result, error) {
	p.startTiming()
	defer p.stopTiming()
	return p.run()
}

// Build is Run followed by Render. The site comes from the curated CSV
// when one is configured and exists, otherwise from the fresh rows.
func (p *Pipeline) Build() (*Result, error) {
	p.startTiming()
	defer p.stopTiming()

	res, err := p.run()
	if err != nil {
		return nil, err
	}

	rows := res.Tables.Attributes
	if path := p.Config.Resolve(p.Config.Inputs.Categorized); path != "" {
		curated, err := readCategorizedFile(path)
		switch {
		case err == nil:
			p.Logger.Info("rendering from curated CSV", zap.String("path", path), zap.Int("rows", len(curated)))
			rows = curated
		case errors.Is(err, os.ErrNotExist):
			p.Logger.Warn("curated CSV not found, rendering uncategorized rows", zap.String("path", path))
		default:
			return nil, err
		}
	}

	if err := p.Render(rows); err != nil {
		return nil, err
	}
	return res, nil
}

// Snapshot reads, extracts and validates without writing anything
func (p *Pipeline) Snapshot() (*Result, error) {
	p.startTiming()
	defer p.stopTiming()
	return p.extractFromFiles()
}

// RenderFile renders the site from a curated CSV
func (p *Pipeline) RenderFile(path string) error {
	rows, err := readCategorizedFile(path)
	if err != nil {
		return err
	}
	return p.Render(rows)
}

// Render writes the index page and the category pages for rows
func (p *Pipeline) Render(rows []facts.AttributeRow) error {
	start := time.Now()
	pages, err := report.BuildSite(p.Config.Output.Title, rows)
	if err != nil {
		return err
	}
	dir := p.Config.OutputDir()
	if err := report.WriteSite(dir, pages); err != nil {
		return fmt.Errorf("writing site: %w", err)
	}
	p.timing.RecordStage("render", start, "ok")
	p.Logger.Info("site written", zap.String("dir", dir), zap.Int("pages", len(pages)), zap.Int("rows", len(rows)))
	return nil
}

func (p *Pipeline) run() (*Result, error) {
	runStart := time.Now()

	res, err := p.extractFromFiles()
	if err == nil {
		err = p.writeExtraction(res)
	}
	if err != nil {
		p.timing.RecordStage("total", runStart, "error")
		return nil, err
	}

	p.printSummary(res.Merged.Stats)
	p.timing.RecordStage("total", runStart, "ok")
	return res, nil
}

func (p *Pipeline) extractFromFiles() (*Result, error) {
	start := time.Now()
	namesPath := p.Config.Resolve(p.Config.Inputs.Names)
	defsPath := p.Config.Resolve(p.Config.Inputs.Definitions)

	namesText, err := source.ReadFile(namesPath, p.Config.Inputs.Encoding)
	if err != nil {
		return nil, fmt.Errorf("names listing: %w", err)
	}
	defsText, err := source.ReadFile(defsPath, p.Config.Inputs.Encoding)
	if err != nil {
		return nil, fmt.Errorf("definitions listing: %w", err)
	}
	p.timing.RecordStage("read", start, "ok")
	p.Logger.Debug("listings read",
		zap.String("names", namesPath), zap.Int("names_bytes", len(namesText)),
		zap.String("definitions", defsPath), zap.Int("definitions_bytes", len(defsText)))

	res, err := p.Extract(namesText, defsText)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	v, err := validator.New()
	if err != nil {
		return nil, err
	}
	if err := v.Validate(res.Tables); err != nil {
		p.timing.RecordStage("validate", start, "error")
		return nil, fmt.Errorf("attribute snapshot: %w", err)
	}
	p.timing.RecordStage("validate", start, "ok")
	return res, nil
}

func (p *Pipeline) writeExtraction(res *Result) error {
	start := time.Now()

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, res.Tables.Attributes); err != nil {
		return err
	}
	csvPath := p.Config.OutputPath(p.Config.Output.CSV)
	if err := report.WriteFileAtomic(csvPath, buf.Bytes()); err != nil {
		return err
	}
	p.Logger.Info("CSV written", zap.String("path", csvPath), zap.Int("rows", len(res.Tables.Attributes)))

	if p.Config.Output.Facts != "" {
		factsPath := p.Config.OutputPath(p.Config.Output.Facts)
		if err := WriteTables(factsPath, res.Tables); err != nil {
			return err
		}
		p.Logger.Info("fact snapshot written", zap.String("path", factsPath))
	}

	p.timing.RecordStage("write", start, "ok")
	return nil
}

func (p *Pipeline) printSummary(s merge.Stats) {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Attributes: %d\n", s.Total)
	fmt.Fprintf(out, "  with definition:    %d\n", s.Present)
	fmt.Fprintf(out, "  missing definition: %d\n", s.Missing)
}

// logSample logs the lowest codes so a bad scan is obvious at a glance
func (p *Pipeline) logSample(names *extractor.NameTable) {
	if !p.Logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	records := names.Records()
	sort.Slice(records, func(i, j int) bool { return records[i].Code < records[j].Code })
	if len(records) > sampleSize {
		records = records[:sampleSize]
	}
	for _, r := range records {
		p.Logger.Debug("parsed name", zap.Stringer("code", r.Code), zap.String("name", r.Name))
	}
}

func (p *Pipeline) startTiming() {
	p.timing = newTimingRecorder(time.Now(), p.resolveTimingPath())
	if err := p.timing.Err(); err != nil {
		p.Logger.Warn("timing output disabled", zap.Error(err))
	}
}

func (p *Pipeline) stopTiming() {
	p.timing.Close()
	p.timing = nil
}

func readCategorizedFile(path string) ([]facts.AttributeRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categorized CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := report.ReadCategorized(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadTables loads a fact snapshot written by an earlier run
func ReadTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return tables, nil
}

// WriteTables writes any JSON value (a snapshot or a delta) atomically
func WriteTables(path string, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return report.WriteFileAtomic(path, append(b, '\n'))
}
