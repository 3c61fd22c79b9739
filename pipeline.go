package etl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Pipeline orchestrates one batch through
// Extract -> Validate -> Enrich -> Detect-anomalies -> Load,
// accumulating everything into a single ProcessingReport.
//
// The pipeline holds no state between runs: each Run constructs a
// fresh batch, stats and report, so running twice on identical input
// with an identical ReferenceNow yields identical output.
type Pipeline struct {
	loader Loader
	sink   Sink

	opts   Options
	logger *slog.Logger

	validator *Validator
	enricher  *Enricher
	detector  *OutlierDetector

	// Optional collaborator capabilities (detected at construction)
	starters  []Starter
	stoppers  []Stopper
	observers []StageObserver
}

// New creates a Pipeline over the given loader and sink with default
// options. Optional capabilities (Starter, Stopper, StageObserver) are
// auto-detected on both collaborators.
func New(loader Loader, sink Sink) *Pipeline {
	p := &Pipeline{
		loader:    loader,
		sink:      sink,
		opts:      DefaultOptions(),
		validator: NewValidator(),
		detector:  NewOutlierDetector(),
	}

	for _, collaborator := range []any{loader, sink} {
		if s, ok := collaborator.(Starter); ok {
			p.starters = append(p.starters, s)
		}
		if s, ok := collaborator.(Stopper); ok {
			p.stoppers = append(p.stoppers, s)
		}
		if o, ok := collaborator.(StageObserver); ok {
			p.observers = append(p.observers, o)
		}
	}

	return p
}

// WithOptions replaces the full option set.
func (p *Pipeline) WithOptions(opts Options) *Pipeline {
	if len(opts.OutlierFields) == 0 {
		opts.OutlierFields = DefaultOutlierFields()
	}
	if opts.PriceCeiling <= 0 {
		opts.PriceCeiling = DefaultPriceCeiling
	}
	p.opts = opts
	p.validator.PriceCeiling = p.opts.PriceCeiling
	return p
}

// WithStopOnCritical makes critical findings from the first validation
// pass fail the pipeline instead of being recorded and skipped over.
func (p *Pipeline) WithStopOnCritical(stop bool) *Pipeline {
	p.opts.StopOnCritical = stop
	return p
}

// WithOutlierFields overrides the numeric columns scanned for
// outliers. An empty call is ignored.
func (p *Pipeline) WithOutlierFields(fields ...string) *Pipeline {
	if len(fields) > 0 {
		p.opts.OutlierFields = fields
	}
	return p
}

// WithDedupe enables duplicate-id removal during the anomaly stage.
func (p *Pipeline) WithDedupe(dedupe bool) *Pipeline {
	p.opts.Dedupe = dedupe
	return p
}

// WithReferenceNow anchors the age_days derivation. A zero value is
// ignored (the wall clock at Run time is used instead).
func (p *Pipeline) WithReferenceNow(now time.Time) *Pipeline {
	if !now.IsZero() {
		p.opts.ReferenceNow = now
	}
	return p
}

// WithEnricher replaces the default enricher, e.g. to pin fixed
// category thresholds. The enricher's own ReferenceNow wins over
// WithReferenceNow.
func (p *Pipeline) WithEnricher(e *Enricher) *Pipeline {
	p.enricher = e
	return p
}

// WithValidator replaces the default validator rule set.
func (p *Pipeline) WithValidator(v *Validator) *Pipeline {
	if v != nil {
		p.validator = v
	}
	return p
}

// WithLogger sets the run logger. Defaults to slog.Default().
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	p.logger = logger
	return p
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

func (p *Pipeline) resolveReferenceNow() time.Time {
	if !p.opts.ReferenceNow.IsZero() {
		return p.opts.ReferenceNow
	}
	return time.Now()
}

// Run executes the pipeline over one source/destination pair. The
// returned report is never nil; err is non-nil exactly when the report
// ends in the failed state. Every collaborator failure is caught and
// classified — Run does not panic across stage boundaries.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (*ProcessingReport, error) {
	stats := &Stats{}
	report := &ProcessingReport{
		RunID:       uuid.New(),
		ProcessedAt: time.Now().UTC(),
		State:       StateIdle,
	}

	for _, s := range p.starters {
		ctx = s.Start(ctx)
	}
	p.log().InfoContext(ctx, "pipeline starting",
		"run_id", report.RunID, "input", inputPath, "output", outputPath)

	err := p.execute(ctx, inputPath, outputPath, report, stats)
	if err != nil {
		report.State = StateFailed
		report.Errors = append(report.Errors, err.Error())
		p.log().ErrorContext(ctx, "pipeline failed", "run_id", report.RunID,
			"state", report.State, "error", err, "stats", stats)
	} else {
		report.State = StateDone
		p.log().InfoContext(ctx, "pipeline complete", "run_id", report.RunID,
			"records", report.OutputRecords, "stats", stats)
	}

	for _, s := range p.stoppers {
		s.Stop(ctx, report, err)
	}
	return report, err
}

// execute walks the state machine. Any returned error sends the run
// to the failed state; findings accumulate on the report either way.
func (p *Pipeline) execute(ctx context.Context, inputPath, outputPath string, report *ProcessingReport, stats *Stats) error {
	// Idle -> Extracted
	var batch *RecordBatch
	err := capture(StageExtract, func() error {
		var extractErr error
		batch, extractErr = p.loader.Extract(ctx, inputPath)
		return extractErr
	})
	if err != nil {
		return &ExtractError{Source: inputPath, Err: err}
	}
	if batch == nil {
		batch = NewRecordBatch(nil)
	}
	report.InputRecords = batch.Len()
	stats.incExtracted(int64(batch.Len()))
	p.advance(ctx, report, stats)

	// Extracted -> Validated
	quality := p.validator.Validate(batch)
	p.recordFindings(report, stats, quality.Findings)
	if p.opts.StopOnCritical && !quality.Passed() {
		return ErrCriticalFindings
	}
	p.advance(ctx, report, stats)

	// Validated -> Enriched. Enrichment is total and cannot fail on
	// null-safe input.
	enricher := p.enricher
	if enricher == nil {
		enricher = NewEnricher(p.resolveReferenceNow())
	}
	batch = enricher.Enrich(batch)
	stats.incEnriched(int64(batch.Len()))
	p.advance(ctx, report, stats)

	// Enriched -> AnomalyChecked
	outlierFindings, err := p.detector.DetectAll(ctx, batch, p.opts.OutlierFields)
	if err != nil {
		return err
	}
	for _, f := range outlierFindings {
		stats.incOutliers(int64(len(f.RecordIDs)))
	}
	p.recordFindings(report, stats, outlierFindings)

	if p.opts.Dedupe {
		var removed int
		batch, removed = Deduplicate(batch)
		report.DuplicatesRemoved = removed
		stats.incDeduped(int64(removed))
	}

	// Second validation pass over the processed batch; its findings
	// are advisory and deduplicated against the first pass.
	second := p.validator.Validate(batch)
	p.recordNewFindings(report, stats, second.Findings)
	p.advance(ctx, report, stats)

	// AnomalyChecked -> Loaded
	err = capture(StageLoad, func() error {
		return p.sink.Load(ctx, batch, outputPath)
	})
	if err != nil {
		return &LoadError{Destination: outputPath, Err: err}
	}
	stats.incLoaded(int64(batch.Len()))
	p.advance(ctx, report, stats)

	// Loaded -> Done
	report.OutputRecords = batch.Len()
	report.Columns = len(batch.Columns)
	report.ColumnStats = summarizeNumeric(batch)
	return nil
}

// advance moves the report to the next state on the success path and
// notifies observers.
func (p *Pipeline) advance(ctx context.Context, report *ProcessingReport, stats *Stats) {
	next, ok := report.State.next()
	if !ok {
		return
	}
	report.State = next
	for _, o := range p.observers {
		o.OnStage(ctx, next, stats)
	}
}

func (p *Pipeline) recordFindings(report *ProcessingReport, stats *Stats, findings []QualityFinding) {
	for _, f := range findings {
		report.Findings = append(report.Findings, f)
		stats.incFindings(1)
	}
}

// recordNewFindings appends findings not already present on the
// report, downgraded to advisory. Used for the second validation pass
// so re-reported issues neither duplicate the report nor turn fatal.
func (p *Pipeline) recordNewFindings(report *ProcessingReport, stats *Stats, findings []QualityFinding) {
	for _, f := range findings {
		if hasFinding(report.Findings, f) {
			continue
		}
		f.Severity = SeverityAdvisory
		report.Findings = append(report.Findings, f)
		stats.incFindings(1)
	}
}

func hasFinding(existing []QualityFinding, f QualityFinding) bool {
	for _, e := range existing {
		if e.Kind == f.Kind && e.Field == f.Field && e.Message == f.Message {
			return true
		}
	}
	return false
}
