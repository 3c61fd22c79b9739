package etl

import (
	"strconv"
	"strings"
)

// Validator inspects a RecordBatch and reports quality findings.
// Validate is a pure function of the batch: it never mutates records.
//
// Checks, in order:
//   - null check on the critical fields
//   - range check (price > 0, area_m2 > 0) plus an advisory sanity
//     ceiling on price
//   - duplicate check on id
//   - cross-field consistency (price/area_m2 within the plausible band
//     for the property type)
//
// A record with a null critical field is ineligible for the numeric
// checks but is still scanned for duplicates.
type Validator struct {
	// CriticalFields are the columns whose nullity invalidates a
	// record. Defaults to the non-nullable fields of DefaultSchema.
	CriticalFields []string

	// PriceCeiling is the advisory upper bound on price.
	PriceCeiling float64

	// ConsistencyBands maps property type to its plausible
	// price-per-m2 band. Types without an entry use DefaultBand.
	ConsistencyBands map[string]PriceBand

	// DefaultBand is the fallback consistency band.
	DefaultBand PriceBand
}

// NewValidator returns a Validator with the default rule set.
func NewValidator() *Validator {
	return &Validator{
		CriticalFields:   DefaultSchema().CriticalFields(),
		PriceCeiling:     DefaultPriceCeiling,
		ConsistencyBands: DefaultConsistencyBands(),
		DefaultBand:      DefaultPriceBand,
	}
}

// Validate runs every check against the batch and aggregates the
// findings. The batch passes iff no critical findings were produced.
func (v *Validator) Validate(batch *RecordBatch) QualityReport {
	var report QualityReport

	eligible := v.checkNulls(batch, &report)
	v.checkRanges(batch, eligible, &report)
	v.checkDuplicates(batch, &report)
	v.checkConsistency(batch, eligible, &report)

	return report
}

// checkNulls reports records with null critical fields and returns a
// per-record eligibility mask for the numeric checks.
func (v *Validator) checkNulls(batch *RecordBatch, report *QualityReport) []bool {
	eligible := make([]bool, batch.Len())

	for i := range batch.Records {
		rec := &batch.Records[i]
		var nullFields []string
		for _, field := range v.CriticalFields {
			if v.fieldIsNull(rec, field) {
				nullFields = append(nullFields, field)
			}
		}
		eligible[i] = len(nullFields) == 0
		if len(nullFields) > 0 {
			report.add(newFinding(FindingNullCritical, strings.Join(nullFields, ","),
				recordIDs(rec), "record %s: null critical field(s) %s",
				describeRecord(rec, i), strings.Join(nullFields, ", ")))
		}
	}

	return eligible
}

func (v *Validator) fieldIsNull(rec *Record, field string) bool {
	switch field {
	case ColID:
		return !rec.ID.Valid
	case ColPropertyType:
		return !rec.PropertyType.Valid
	case ColZone:
		return !rec.Zone.Valid
	case ColStatus:
		return !rec.Status.Valid
	case ColDescription:
		return !rec.Description.Valid
	case ColPublicationDate:
		return !rec.PublicationDate.Valid
	default:
		if n, ok := rec.NumericField(field); ok {
			return !n.Valid
		}
		return true
	}
}

// checkRanges enforces strictly positive price and area, and the
// advisory price ceiling.
func (v *Validator) checkRanges(batch *RecordBatch, eligible []bool, report *QualityReport) {
	for i := range batch.Records {
		if !eligible[i] {
			continue
		}
		rec := &batch.Records[i]

		if rec.Price.Valid && rec.Price.V <= 0 {
			report.add(newFinding(FindingOutOfRange, ColPrice, recordIDs(rec),
				"record %s: price %v is not strictly positive",
				describeRecord(rec, i), rec.Price.V))
		}
		if rec.AreaM2.Valid && rec.AreaM2.V <= 0 {
			report.add(newFinding(FindingOutOfRange, ColAreaM2, recordIDs(rec),
				"record %s: area_m2 %v is not strictly positive",
				describeRecord(rec, i), rec.AreaM2.V))
		}
		if v.PriceCeiling > 0 && rec.Price.Valid && rec.Price.V > v.PriceCeiling {
			f := newFinding(FindingOutOfRange, ColPrice, recordIDs(rec),
				"record %s: price %v exceeds sanity ceiling %v",
				describeRecord(rec, i), rec.Price.V, v.PriceCeiling)
			f.Severity = SeverityAdvisory
			report.add(f)
		}
	}
}

// checkDuplicates groups records by id and reports every id that
// occurs more than once. The first occurrence in input order is the
// canonical record if deduplication is later requested.
func (v *Validator) checkDuplicates(batch *RecordBatch, report *QualityReport) {
	counts := make(map[string]int)
	var order []string
	for i := range batch.Records {
		rec := &batch.Records[i]
		if !rec.ID.Valid {
			continue
		}
		if counts[rec.ID.V] == 0 {
			order = append(order, rec.ID.V)
		}
		counts[rec.ID.V]++
	}

	for _, id := range order {
		if n := counts[id]; n > 1 {
			report.add(newFinding(FindingDuplicate, ColID, []string{id},
				"id %s occurs %d times; first occurrence is canonical", id, n))
		}
	}
}

// checkConsistency verifies price/area_m2 falls within the plausible
// band for the record's property type.
func (v *Validator) checkConsistency(batch *RecordBatch, eligible []bool, report *QualityReport) {
	for i := range batch.Records {
		if !eligible[i] {
			continue
		}
		rec := &batch.Records[i]
		if !rec.Price.Valid || !rec.AreaM2.Valid || rec.AreaM2.V <= 0 || rec.Price.V <= 0 {
			continue
		}

		perM2 := rec.Price.V / rec.AreaM2.V
		band := v.bandFor(rec.PropertyType)
		if perM2 < band.Min || perM2 > band.Max {
			report.add(newFinding(FindingInconsistent, ColPrice, recordIDs(rec),
				"record %s: price/area_m2 %.2f outside plausible band [%v, %v] for %q",
				describeRecord(rec, i), perM2, band.Min, band.Max, rec.PropertyType.V))
		}
	}
}

func (v *Validator) bandFor(propertyType Null[string]) PriceBand {
	if propertyType.Valid {
		if band, ok := v.ConsistencyBands[propertyType.V]; ok {
			return band
		}
	}
	if v.DefaultBand.Max > 0 {
		return v.DefaultBand
	}
	return DefaultPriceBand
}

// recordIDs returns the finding id list for a record, empty when the
// id itself is null.
func recordIDs(rec *Record) []string {
	if !rec.ID.Valid {
		return nil
	}
	return []string{rec.ID.V}
}

// describeRecord names a record for finding messages, falling back to
// the row index when the id is null.
func describeRecord(rec *Record, index int) string {
	if rec.ID.Valid {
		return rec.ID.V
	}
	return "#" + strconv.Itoa(index)
}
