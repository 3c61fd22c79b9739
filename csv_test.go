package etl_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	etl "github.com/JosefaOgalde/etl-pipeline-inmobiliario"
)

const sampleCSV = `id,price,property_type,area_m2,publication_date,zone,rooms,bathrooms,status,description
PROP-0001,"$250,000",departamento,80,2024-01-15,las condes,3,2,disponible,Amplio departamento
PROP-0002,180000,CASA,120,2024-02-20,maipú,4,2,reservado,
PROP-0003,not-a-price,Oficina,,bad-date,Providencia,2,1,vendido,Oficina céntrica
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// =============================================================================
// CSVLoader
// =============================================================================

func TestCSVLoader_ParsesAndNormalizes(t *testing.T) {
	path := writeFile(t, "listings.csv", sampleCSV)

	batch, err := etl.NewCSVLoader().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, batch.Len())
	require.Equal(t, etl.InputColumns(), batch.Columns)

	first := batch.Records[0]
	require.Equal(t, etl.Value("PROP-0001"), first.ID)
	require.Equal(t, etl.Value(250000.0), first.Price, "currency noise is stripped")
	require.Equal(t, etl.Value("Departamento"), first.PropertyType)
	require.Equal(t, etl.Value(80.0), first.AreaM2)
	require.True(t, first.PublicationDate.Valid)
	require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.PublicationDate.V)
	require.Equal(t, etl.Value("Las Condes"), first.Zone)
	require.Equal(t, etl.Value(3), first.Rooms)

	second := batch.Records[1]
	require.Equal(t, etl.Value("Casa"), second.PropertyType, "categoricals are title-cased")
	require.False(t, second.Description.Valid, "empty cell is the null marker")

	third := batch.Records[2]
	require.False(t, third.Price.Valid, "unparseable price becomes null, not zero")
	require.False(t, third.AreaM2.Valid)
	require.False(t, third.PublicationDate.Valid, "unparseable date becomes null")
}

func TestCSVLoader_MissingFile(t *testing.T) {
	_, err := etl.NewCSVLoader().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestCSVLoader_MissingSchemaColumn(t *testing.T) {
	path := writeFile(t, "bad.csv", "id,price\nPROP-1,100\n")

	_, err := etl.NewCSVLoader().Extract(context.Background(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing column")
	require.Contains(t, err.Error(), "property_type")
}

func TestCSVLoader_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	_, err := etl.NewCSVLoader().Extract(context.Background(), path)
	require.Error(t, err)
}

func TestCSVLoader_NegativePriceSurvivesNormalization(t *testing.T) {
	path := writeFile(t, "neg.csv",
		"id,price,property_type,area_m2,publication_date,zone,rooms,bathrooms,status,description\n"+
			"PROP-1,-5,Casa,20,2024-01-01,,,,,\n")

	batch, err := etl.NewCSVLoader().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, etl.Value(-5.0), batch.Records[0].Price,
		"the validator, not the loader, rejects negative prices")
}

// =============================================================================
// CSVSink
// =============================================================================

func TestCSVSink_RoundTrip(t *testing.T) {
	batch := etl.NewEnricher(refNow()).Enrich(etl.NewRecordBatch([]etl.Record{
		listing("PROP-1", 150000, 50),
		listing("PROP-2", 152000, 50),
	}))

	dest := filepath.Join(t.TempDir(), "out", "listings.csv")
	require.NoError(t, etl.NewCSVSink().Load(context.Background(), batch, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, strings.Join(batch.Columns, ","), lines[0])
	require.Contains(t, lines[1], "PROP-1")
	require.Contains(t, lines[1], "3000", "derived price_per_m2 is persisted")
}

func TestCSVSink_NullCellsSerializeEmpty(t *testing.T) {
	rec := listing("PROP-1", 150000, 0)
	rec.AreaM2 = etl.Null[float64]{}
	batch := etl.NewEnricher(refNow()).Enrich(etl.NewRecordBatch([]etl.Record{rec}))

	dest := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, etl.NewCSVSink().Load(context.Background(), batch, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	fields := strings.Split(lines[1], ",")
	header := strings.Split(lines[0], ",")
	for i, name := range header {
		if name == "area_m2" || name == "price_per_m2" {
			require.Empty(t, fields[i], "%s must serialize as empty, not zero", name)
		}
	}
}

func TestCSVSink_WriteIsIdempotent(t *testing.T) {
	batch := etl.NewEnricher(refNow()).Enrich(etl.NewRecordBatch(cleanRecords()))
	dir := t.TempDir()

	destA := filepath.Join(dir, "a.csv")
	destB := filepath.Join(dir, "b.csv")
	require.NoError(t, etl.NewCSVSink().Load(context.Background(), batch, destA))
	require.NoError(t, etl.NewCSVSink().Load(context.Background(), batch, destB))

	a, err := os.ReadFile(destA)
	require.NoError(t, err)
	b, err := os.ReadFile(destB)
	require.NoError(t, err)
	require.Equal(t, a, b, "identical input yields byte-identical output")
}

func TestCSVSink_NoPartialWriteOnFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// Destination directory path runs through a regular file, so
	// directory creation must fail before anything is written.
	dest := filepath.Join(blocker, "sub", "out.csv")
	err := etl.NewCSVSink().Load(context.Background(), etl.NewRecordBatch(cleanRecords()), dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	require.Error(t, statErr, "no partial file may exist")
}
