package etl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	etl "github.com/JosefaOgalde/etl-pipeline-inmobiliario"
)

func TestStats_NewStats(t *testing.T) {
	stats := etl.NewStats(100, 7, 3, 2, 98, 96)
	require.Equal(t, int64(100), stats.Extracted())
	require.Equal(t, int64(7), stats.Findings())
	require.Equal(t, int64(3), stats.Outliers())
	require.Equal(t, int64(2), stats.Deduped())
	require.Equal(t, int64(98), stats.Enriched())
	require.Equal(t, int64(96), stats.Loaded())
}

func TestStats_MarshalJSON(t *testing.T) {
	stats := etl.NewStats(100, 7, 3, 2, 98, 96)
	data, err := stats.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t,
		`{"extracted":100,"findings":7,"outliers":3,"deduped":2,"enriched":98,"loaded":96}`,
		string(data))
}

func TestStats_UnmarshalJSON(t *testing.T) {
	stats := &etl.Stats{}
	err := stats.UnmarshalJSON([]byte(`{"extracted":5,"findings":1,"outliers":0,"deduped":0,"enriched":5,"loaded":5}`))
	require.NoError(t, err)
	require.Equal(t, int64(5), stats.Extracted())
	require.Equal(t, int64(1), stats.Findings())
}

func TestStats_UnmarshalJSON_Error(t *testing.T) {
	stats := &etl.Stats{}
	err := stats.UnmarshalJSON([]byte(`invalid json`))
	require.Error(t, err)
}
