package etl

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Stats counts what happened to a run's records. Counters use atomics
// so stage-internal workers (the outlier fan-out) can update them
// safely.
type Stats struct {
	extracted atomic.Int64
	findings  atomic.Int64
	outliers  atomic.Int64
	deduped   atomic.Int64
	enriched  atomic.Int64
	loaded    atomic.Int64
}

// NewStats creates a Stats with initial counter values.
func NewStats(extracted, findings, outliers, deduped, enriched, loaded int64) *Stats {
	s := &Stats{}
	s.extracted.Store(extracted)
	s.findings.Store(findings)
	s.outliers.Store(outliers)
	s.deduped.Store(deduped)
	s.enriched.Store(enriched)
	s.loaded.Store(loaded)
	return s
}

// Extracted returns the number of records extracted from the source.
func (s *Stats) Extracted() int64 { return s.extracted.Load() }

// Findings returns the number of quality findings recorded.
func (s *Stats) Findings() int64 { return s.findings.Load() }

// Outliers returns the number of outlier flags raised.
func (s *Stats) Outliers() int64 { return s.outliers.Load() }

// Deduped returns the number of duplicate records removed.
func (s *Stats) Deduped() int64 { return s.deduped.Load() }

// Enriched returns the number of records that passed enrichment.
func (s *Stats) Enriched() int64 { return s.enriched.Load() }

// Loaded returns the number of records handed to the sink.
func (s *Stats) Loaded() int64 { return s.loaded.Load() }

// LogValue implements slog.LogValuer for structured logging.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("extracted", s.Extracted()),
		slog.Int64("findings", s.Findings()),
		slog.Int64("outliers", s.Outliers()),
		slog.Int64("deduped", s.Deduped()),
		slog.Int64("enriched", s.Enriched()),
		slog.Int64("loaded", s.Loaded()),
	)
}

// statsJSON is the JSON representation for marshaling/unmarshaling Stats.
type statsJSON struct {
	Extracted int64 `json:"extracted"`
	Findings  int64 `json:"findings"`
	Outliers  int64 `json:"outliers"`
	Deduped   int64 `json:"deduped"`
	Enriched  int64 `json:"enriched"`
	Loaded    int64 `json:"loaded"`
}

// MarshalJSON implements json.Marshaler for Stats serialization.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Extracted: s.extracted.Load(),
		Findings:  s.findings.Load(),
		Outliers:  s.outliers.Load(),
		Deduped:   s.deduped.Load(),
		Enriched:  s.enriched.Load(),
		Loaded:    s.loaded.Load(),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Stats deserialization.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var v statsJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.extracted.Store(v.Extracted)
	s.findings.Store(v.Findings)
	s.outliers.Store(v.Outliers)
	s.deduped.Store(v.Deduped)
	s.enriched.Store(v.Enriched)
	s.loaded.Store(v.Loaded)
	return nil
}

func (s *Stats) incExtracted(n int64) int64 { return s.extracted.Add(n) }
func (s *Stats) incFindings(n int64) int64  { return s.findings.Add(n) }
func (s *Stats) incOutliers(n int64) int64  { return s.outliers.Add(n) }
func (s *Stats) incDeduped(n int64) int64   { return s.deduped.Add(n) }
func (s *Stats) incEnriched(n int64) int64  { return s.enriched.Add(n) }
func (s *Stats) incLoaded(n int64) int64    { return s.loaded.Add(n) }
