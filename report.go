package etl

import (
	"time"

	"github.com/google/uuid"
)

// ColumnStats summarizes the non-null values of one numeric column.
type ColumnStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// ProcessingReport is the summary of one pipeline run. It is created
// once per run and immutable after Run returns. Fatal errors appear in
// Errors with State set to failed; quality findings are recorded in
// Findings and are not fatal unless StopOnCritical was set.
type ProcessingReport struct {
	RunID             uuid.UUID              `json:"run_id"`
	ProcessedAt       time.Time              `json:"processed_at"`
	State             State                  `json:"state"`
	InputRecords      int                    `json:"input_records"`
	OutputRecords     int                    `json:"output_records"`
	Columns           int                    `json:"columns"`
	DuplicatesRemoved int                    `json:"duplicates_removed"`
	Findings          []QualityFinding       `json:"findings,omitempty"`
	Errors            []string               `json:"errors,omitempty"`
	ColumnStats       map[string]ColumnStats `json:"column_stats,omitempty"`
}

// Passed reports whether the run finished without critical findings
// or fatal errors.
func (r *ProcessingReport) Passed() bool {
	if r.State != StateDone {
		return false
	}
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			return false
		}
	}
	return true
}

// summarizeNumeric computes per-column statistics over the non-null
// cells of every numeric column present in the batch.
func summarizeNumeric(batch *RecordBatch) map[string]ColumnStats {
	out := make(map[string]ColumnStats)

	for _, col := range batch.Columns {
		var (
			count int
			sum   float64
			min   float64
			max   float64
		)
		for i := range batch.Records {
			n, ok := batch.Records[i].NumericField(col)
			if !ok {
				break
			}
			if !n.Valid {
				continue
			}
			if count == 0 || n.V < min {
				min = n.V
			}
			if count == 0 || n.V > max {
				max = n.V
			}
			sum += n.V
			count++
		}
		if count > 0 {
			out[col] = ColumnStats{
				Count: count,
				Min:   min,
				Max:   max,
				Mean:  sum / float64(count),
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
