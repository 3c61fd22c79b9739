package etl

import "context"

// Stage identifies the pipeline stage an error or log line belongs to.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
	StageEnrich   Stage = "enrich"
	StageDetect   Stage = "detect"
	StageLoad     Stage = "load"
)

// Loader extracts a RecordBatch from a source. Implementations fail
// with an error (wrapped by the pipeline into *ExtractError) on a
// missing source or unparseable format.
type Loader interface {
	Extract(ctx context.Context, source string) (*RecordBatch, error)
}

// Sink persists the final batch to a destination. Implementations
// must be all-or-nothing: on failure the destination is left
// untouched (no partial write). Errors are wrapped by the pipeline
// into *LoadError.
type Sink interface {
	Load(ctx context.Context, batch *RecordBatch, destination string) error
}

// Starter is an optional collaborator capability, detected on the
// loader and sink at construction. Start is called once before
// extraction; the returned context is used for the whole run. Use it
// to attach logger fields, request ids, or tracing spans.
type Starter interface {
	Start(ctx context.Context) context.Context
}

// Stopper is an optional collaborator capability, detected on the
// loader and sink at construction. Stop is called exactly once after
// the run finishes, with the final report and the fatal error if the
// run failed. Use it for cleanup or final metrics.
type Stopper interface {
	Stop(ctx context.Context, report *ProcessingReport, err error)
}

// StageObserver is an optional collaborator capability, detected on
// the loader and sink at construction. OnStage is called after each
// successful state transition with a stats snapshot. Avoid blocking
// work here.
type StageObserver interface {
	OnStage(ctx context.Context, state State, stats *Stats)
}
