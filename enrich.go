package etl

import (
	"sort"
	"time"
)

// Price category labels.
const (
	CategoryEconomico = "Economico"
	CategoryMedio     = "Medio"
	CategoryPremium   = "Premium"
)

// CategoryThresholds are the two price-per-m2 cut points separating
// Economico/Medio/Premium. Values below Low are Economico, values in
// [Low, High) are Medio, values at or above High are Premium.
type CategoryThresholds struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Enricher derives the computed columns from a batch's input columns.
// Enrichment is total: it never drops a record, and any field it
// cannot compute is set to the null marker.
type Enricher struct {
	// ReferenceNow anchors the age_days computation. Injected rather
	// than read from the system clock so runs are deterministic.
	ReferenceNow time.Time

	// Thresholds fixes the price-category cut points. When nil, the
	// cut points are the tertiles of the batch's own price_per_m2
	// distribution, computed once per batch.
	Thresholds *CategoryThresholds
}

// NewEnricher returns an Enricher anchored at referenceNow that
// derives category thresholds from each batch.
func NewEnricher(referenceNow time.Time) *Enricher {
	return &Enricher{ReferenceNow: referenceNow}
}

// Enrich returns a new batch with all original columns plus
// price_per_m2, price_category, publication_month, publication_year,
// age_days and price_area_ratio. The input batch is not modified.
func (e *Enricher) Enrich(batch *RecordBatch) *RecordBatch {
	out := batch.clone()

	for i := range out.Records {
		rec := &out.Records[i]

		rec.PricePerM2 = pricePerArea(rec)
		rec.PriceAreaRatio = rec.PricePerM2

		if rec.PublicationDate.Valid {
			rec.PublicationMonth = Value(int(rec.PublicationDate.V.Month()))
			rec.PublicationYear = Value(rec.PublicationDate.V.Year())
			days := int(e.ReferenceNow.Sub(rec.PublicationDate.V).Hours() / 24)
			rec.AgeDays = Value(days)
		} else {
			rec.PublicationMonth = Null[int]{}
			rec.PublicationYear = Null[int]{}
			rec.AgeDays = Null[int]{}
		}
	}

	// Thresholds are computed once per batch, after price_per_m2 is
	// known for every record, so categories are mutually consistent.
	thresholds, ok := e.resolveThresholds(out)
	for i := range out.Records {
		rec := &out.Records[i]
		if !ok || !rec.PricePerM2.Valid {
			rec.PriceCategory = Null[string]{}
			continue
		}
		rec.PriceCategory = Value(categorize(rec.PricePerM2.V, thresholds))
	}

	for _, col := range DerivedColumns() {
		if !containsColumn(out.Columns, col) {
			out.Columns = append(out.Columns, col)
		}
	}
	return out
}

// pricePerArea divides price by area, degrading to null on null or
// non-positive area. It never raises a floating-point error.
func pricePerArea(rec *Record) Null[float64] {
	if !rec.Price.Valid || !rec.AreaM2.Valid || rec.AreaM2.V <= 0 {
		return Null[float64]{}
	}
	return Value(rec.Price.V / rec.AreaM2.V)
}

// resolveThresholds returns the fixed thresholds if configured, or the
// tertiles of the batch's price_per_m2 distribution. ok is false when
// no record has a computable price_per_m2.
func (e *Enricher) resolveThresholds(batch *RecordBatch) (CategoryThresholds, bool) {
	if e.Thresholds != nil {
		return *e.Thresholds, true
	}

	values := make([]float64, 0, batch.Len())
	for i := range batch.Records {
		if n := batch.Records[i].PricePerM2; n.Valid {
			values = append(values, n.V)
		}
	}
	if len(values) == 0 {
		return CategoryThresholds{}, false
	}

	sort.Float64s(values)
	return CategoryThresholds{
		Low:  quantile(values, 1.0/3.0),
		High: quantile(values, 2.0/3.0),
	}, true
}

func categorize(perM2 float64, t CategoryThresholds) string {
	switch {
	case perM2 < t.Low:
		return CategoryEconomico
	case perM2 < t.High:
		return CategoryMedio
	default:
		return CategoryPremium
	}
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
