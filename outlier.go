package etl

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// OutlierDetector flags records whose numeric values fall beyond the
// Tukey fences: values strictly below Q1 - fence*IQR or strictly above
// Q3 + fence*IQR. Values exactly on a fence are not outliers. Null
// values are excluded from the percentile computation and never
// flagged.
type OutlierDetector struct {
	// Fence is the IQR multiplier. Zero means DefaultIQRFence.
	Fence float64
}

// NewOutlierDetector returns a detector with the classic 1.5 fence.
func NewOutlierDetector() *OutlierDetector {
	return &OutlierDetector{Fence: DefaultIQRFence}
}

func (d *OutlierDetector) fence() float64 {
	if d.Fence > 0 {
		return d.Fence
	}
	return DefaultIQRFence
}

// Detect returns the ids of records whose value in the named numeric
// field lies beyond the fences, in batch order. Records with a null
// value or a null id are never flagged.
func (d *OutlierDetector) Detect(batch *RecordBatch, field string) ([]string, error) {
	values := make([]float64, 0, batch.Len())
	for i := range batch.Records {
		n, ok := batch.Records[i].NumericField(field)
		if !ok {
			return nil, fmt.Errorf("detect: %q is not a numeric field", field)
		}
		if n.Valid {
			values = append(values, n.V)
		}
	}
	if len(values) == 0 {
		return nil, nil
	}

	sort.Float64s(values)
	q1 := quantile(values, 0.25)
	q3 := quantile(values, 0.75)
	iqr := q3 - q1
	lower := q1 - d.fence()*iqr
	upper := q3 + d.fence()*iqr

	var flagged []string
	for i := range batch.Records {
		rec := &batch.Records[i]
		n, _ := rec.NumericField(field)
		if !n.Valid || !rec.ID.Valid {
			continue
		}
		if n.V < lower || n.V > upper {
			flagged = append(flagged, rec.ID.V)
		}
	}
	return flagged, nil
}

// DetectAll scans every requested field and returns one Outlier
// finding per field that flagged records. Fields are scanned
// concurrently but the result order follows the field list, so output
// is deterministic.
func (d *OutlierDetector) DetectAll(ctx context.Context, batch *RecordBatch, fields []string) ([]QualityFinding, error) {
	flagged := make([][]string, len(fields))

	group, ctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		i, field := i, field
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids, err := d.Detect(batch, field)
			if err != nil {
				return err
			}
			flagged[i] = ids
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var findings []QualityFinding
	for i, field := range fields {
		if len(flagged[i]) == 0 {
			continue
		}
		findings = append(findings, newFinding(FindingOutlier, field, flagged[i],
			"%d record(s) beyond the %.1f*IQR fences on %s: %s",
			len(flagged[i]), d.fence(), field, strings.Join(flagged[i], ", ")))
	}
	return findings, nil
}

// quantile computes the q-th quantile of sorted values with linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
