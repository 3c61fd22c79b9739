package etl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	etl "github.com/JosefaOgalde/etl-pipeline-inmobiliario"
)

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	first := listing("1", 150000, 50)
	first.Description = etl.Value("first")
	second := listing("1", 150000, 50)
	second.Description = etl.Value("second")

	batch := etl.NewRecordBatch([]etl.Record{first, second, listing("2", 152000, 50)})

	out, removed := etl.Deduplicate(batch)
	require.Equal(t, 1, removed)
	require.Equal(t, 2, out.Len())
	require.Equal(t, "first", out.Records[0].Description.V)
	require.Equal(t, "2", out.Records[1].ID.V)
}

func TestDeduplicate_RemovesGroupSizeMinusOne(t *testing.T) {
	batch := etl.NewRecordBatch([]etl.Record{
		listing("1", 150000, 50),
		listing("1", 150000, 50),
		listing("1", 150000, 50),
		listing("2", 152000, 50),
		listing("2", 152000, 50),
	})

	out, removed := etl.Deduplicate(batch)
	require.Equal(t, 3, removed)
	require.Equal(t, 2, out.Len())
}

func TestDeduplicate_NoDuplicates(t *testing.T) {
	batch := etl.NewRecordBatch([]etl.Record{
		listing("1", 150000, 50),
		listing("2", 152000, 50),
	})

	out, removed := etl.Deduplicate(batch)
	require.Equal(t, 0, removed)
	require.Equal(t, 2, out.Len())
}

func TestDeduplicate_NullIDsAreKept(t *testing.T) {
	a := listing("", 150000, 50)
	a.ID = etl.Null[string]{}
	b := listing("", 152000, 50)
	b.ID = etl.Null[string]{}

	out, removed := etl.Deduplicate(etl.NewRecordBatch([]etl.Record{a, b}))
	require.Equal(t, 0, removed)
	require.Equal(t, 2, out.Len())
}

func TestDeduplicate_DoesNotMutateInput(t *testing.T) {
	batch := etl.NewRecordBatch([]etl.Record{
		listing("1", 150000, 50),
		listing("1", 150000, 50),
	})

	_, _ = etl.Deduplicate(batch)
	require.Equal(t, 2, batch.Len())
}
