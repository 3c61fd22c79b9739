package etl

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Sample data vocabularies.
var (
	samplePropertyTypes = []string{"Departamento", "Casa", "Oficina", "Local Comercial", "Terreno"}
	sampleZones         = []string{
		"Las Condes", "Providencia", "Ñuñoa", "Vitacura", "La Reina",
		"Santiago Centro", "Maipú", "Puente Alto", "San Miguel", "La Florida",
	}
	sampleStatuses = []string{"Disponible", "Reservado", "Vendido", "En Remodelación"}
)

// GenerateSample produces a deterministic demo batch of n listings:
// prices centered around 250000, areas around 80 m2, publication dates
// within a year before now, and roughly 5% null descriptions so the
// null handling has something to chew on. The same (n, seed, now)
// always yields the same batch.
func GenerateSample(n int, seed int64, now time.Time) *RecordBatch {
	rng := rand.New(rand.NewSource(seed))

	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		price := math.Abs(rng.NormFloat64()*100_000 + 250_000)
		area := math.Abs(rng.NormFloat64()*30 + 80)
		published := now.AddDate(0, 0, -(1 + rng.Intn(365)))

		rec := Record{
			ID:              Value(fmt.Sprintf("PROP-%04d", i+1)),
			PropertyType:    Value(samplePropertyTypes[rng.Intn(len(samplePropertyTypes))]),
			Zone:            Value(sampleZones[rng.Intn(len(sampleZones))]),
			Price:           Value(math.Round(price)),
			AreaM2:          Value(math.Round(area)),
			Rooms:           Value(weightedChoice(rng, []int{1, 2, 3, 4, 5}, []float64{0.1, 0.3, 0.3, 0.2, 0.1})),
			Bathrooms:       Value(weightedChoice(rng, []int{1, 2, 3, 4}, []float64{0.2, 0.4, 0.3, 0.1})),
			Status:          Value(weightedChoiceString(rng, sampleStatuses, []float64{0.6, 0.15, 0.2, 0.05})),
			PublicationDate: Value(published),
		}
		if rng.Float64() >= 0.05 {
			rec.Description = Value(fmt.Sprintf("Propiedad %d en excelente ubicación", i+1))
		}
		records = append(records, rec)
	}

	return NewRecordBatch(records)
}

func weightedChoice(rng *rand.Rand, values []int, weights []float64) int {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func weightedChoiceString(rng *rand.Rand, values []string, weights []float64) string {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}
