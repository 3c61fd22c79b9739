package etl

import "fmt"

// FindingKind classifies a quality finding.
type FindingKind string

const (
	FindingNullCritical FindingKind = "null_critical"
	FindingOutOfRange   FindingKind = "out_of_range"
	FindingOutlier      FindingKind = "outlier"
	FindingDuplicate    FindingKind = "duplicate"
	FindingInconsistent FindingKind = "inconsistent"
)

// Severity tells whether a finding can block downstream stages.
type Severity string

const (
	// SeverityCritical findings fail the batch when StopOnCritical is set.
	SeverityCritical Severity = "critical"
	// SeverityAdvisory findings are recorded but never block processing.
	SeverityAdvisory Severity = "advisory"
)

// DefaultSeverity returns the severity a finding kind carries unless
// the producer overrides it.
func (k FindingKind) DefaultSeverity() Severity {
	switch k {
	case FindingNullCritical, FindingOutOfRange, FindingDuplicate:
		return SeverityCritical
	default:
		return SeverityAdvisory
	}
}

// QualityFinding records one quality issue. Findings are immutable
// once created.
type QualityFinding struct {
	Kind      FindingKind `json:"kind"`
	Severity  Severity    `json:"severity"`
	Field     string      `json:"field,omitempty"`
	RecordIDs []string    `json:"record_ids,omitempty"`
	Message   string      `json:"message"`
}

func newFinding(kind FindingKind, field string, ids []string, format string, args ...any) QualityFinding {
	return QualityFinding{
		Kind:      kind,
		Severity:  kind.DefaultSeverity(),
		Field:     field,
		RecordIDs: ids,
		Message:   fmt.Sprintf(format, args...),
	}
}

// QualityReport aggregates the findings of one validation pass.
type QualityReport struct {
	Findings []QualityFinding `json:"findings"`
}

// Passed reports whether the batch has zero critical findings.
// Advisory findings never fail a batch.
func (r *QualityReport) Passed() bool {
	return len(r.Critical()) == 0
}

// Critical returns the findings with critical severity.
func (r *QualityReport) Critical() []QualityFinding {
	var out []QualityFinding
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			out = append(out, f)
		}
	}
	return out
}

func (r *QualityReport) add(f QualityFinding) {
	r.Findings = append(r.Findings, f)
}
