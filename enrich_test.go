package etl_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	etl "github.com/JosefaOgalde/etl-pipeline-inmobiliario"
)

func refNow() time.Time {
	return time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
}

func TestEnricher_PreservesRecordCount(t *testing.T) {
	noArea := listing("C", 150000, 0)
	noArea.AreaM2 = etl.Null[float64]{}

	batch := etl.NewRecordBatch([]etl.Record{
		listing("A", 150000, 50),
		listing("B", -5, 20),
		noArea,
	})

	enriched := etl.NewEnricher(refNow()).Enrich(batch)
	require.Equal(t, batch.Len(), enriched.Len())
}

func TestEnricher_PricePerM2(t *testing.T) {
	batch := etl.NewRecordBatch([]etl.Record{listing("A", 150000, 50)})

	enriched := etl.NewEnricher(refNow()).Enrich(batch)

	rec := enriched.Records[0]
	require.True(t, rec.PricePerM2.Valid)
	require.InDelta(t, 3000, rec.PricePerM2.V, 1e-9)
	require.Equal(t, rec.PricePerM2, rec.PriceAreaRatio)
}

func TestEnricher_NullOrZeroAreaDegradesToNull(t *testing.T) {
	zeroArea := listing("A", 150000, 0)
	nullArea := listing("B", 150000, 0)
	nullArea.AreaM2 = etl.Null[float64]{}

	enriched := etl.NewEnricher(refNow()).Enrich(
		etl.NewRecordBatch([]etl.Record{zeroArea, nullArea}))

	for _, rec := range enriched.Records {
		require.False(t, rec.PricePerM2.Valid, "division by null/zero area must degrade to null")
		require.False(t, rec.PriceAreaRatio.Valid)
	}
}

func TestEnricher_FixedThresholdCategory(t *testing.T) {
	e := etl.NewEnricher(refNow())
	e.Thresholds = &etl.CategoryThresholds{Low: 2000, High: 4000}

	enriched := e.Enrich(etl.NewRecordBatch([]etl.Record{listing("A", 150000, 50)}))

	rec := enriched.Records[0]
	require.True(t, rec.PriceCategory.Valid)
	require.Equal(t, "Medio", rec.PriceCategory.V)
}

func TestEnricher_TertileCategories(t *testing.T) {
	// price_per_m2 values 1000, 3000 and 5000 split into the three
	// buckets of the batch's own distribution.
	batch := etl.NewRecordBatch([]etl.Record{
		listing("A", 100000, 100),
		listing("B", 300000, 100),
		listing("C", 500000, 100),
	})

	enriched := etl.NewEnricher(refNow()).Enrich(batch)

	require.Equal(t, "Economico", enriched.Records[0].PriceCategory.V)
	require.Equal(t, "Medio", enriched.Records[1].PriceCategory.V)
	require.Equal(t, "Premium", enriched.Records[2].PriceCategory.V)
}

func TestEnricher_TemporalFields(t *testing.T) {
	rec := listing("A", 150000, 50)
	rec.PublicationDate = etl.Value(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	enriched := etl.NewEnricher(refNow()).Enrich(etl.NewRecordBatch([]etl.Record{rec}))

	out := enriched.Records[0]
	require.Equal(t, etl.Value(3), out.PublicationMonth)
	require.Equal(t, etl.Value(2024), out.PublicationYear)
	require.Equal(t, etl.Value(10), out.AgeDays)
}

func TestEnricher_NullDateDegradesToNull(t *testing.T) {
	rec := listing("A", 150000, 50)
	rec.PublicationDate = etl.Null[time.Time]{}

	enriched := etl.NewEnricher(refNow()).Enrich(etl.NewRecordBatch([]etl.Record{rec}))

	out := enriched.Records[0]
	require.False(t, out.PublicationMonth.Valid)
	require.False(t, out.PublicationYear.Valid)
	require.False(t, out.AgeDays.Valid)
}

func TestEnricher_AppendsDerivedColumns(t *testing.T) {
	batch := etl.NewRecordBatch([]etl.Record{listing("A", 150000, 50)})
	require.Len(t, batch.Columns, 10)

	enriched := etl.NewEnricher(refNow()).Enrich(batch)

	require.Len(t, enriched.Columns, 16)
	require.Contains(t, enriched.Columns, "price_per_m2")
	require.Contains(t, enriched.Columns, "price_category")
}

func TestEnricher_DoesNotMutateInput(t *testing.T) {
	batch := etl.NewRecordBatch([]etl.Record{listing("A", 150000, 50)})

	_ = etl.NewEnricher(refNow()).Enrich(batch)

	require.Len(t, batch.Columns, 10)
	require.False(t, batch.Records[0].PricePerM2.Valid)
}

func TestEnricher_EmptyBatch(t *testing.T) {
	enriched := etl.NewEnricher(refNow()).Enrich(etl.NewRecordBatch(nil))
	require.Equal(t, 0, enriched.Len())
	require.Len(t, enriched.Columns, 16)
}
