package etl

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	// DefaultIQRFence is the classic Tukey fence multiplier.
	DefaultIQRFence = 1.5

	// DefaultPriceCeiling is the sanity bound above which a price is
	// reported as implausible (advisory, never a hard failure).
	DefaultPriceCeiling = 100_000_000
)

// DefaultOutlierFields are the numeric columns scanned for outliers
// when the caller does not choose their own set.
func DefaultOutlierFields() []string {
	return []string{ColPrice, ColAreaM2, ColPricePerM2}
}

// PriceBand bounds the plausible price-per-m2 range for a property
// type, used by the validator's cross-field consistency check.
type PriceBand struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DefaultPriceBand is the fallback consistency band for property
// types without an explicit entry.
var DefaultPriceBand = PriceBand{Min: 100, Max: 50_000}

// DefaultConsistencyBands returns the per-property-type plausibility
// bands for price/area_m2.
func DefaultConsistencyBands() map[string]PriceBand {
	return map[string]PriceBand{
		"Departamento":    {Min: 500, Max: 50_000},
		"Casa":            {Min: 300, Max: 40_000},
		"Oficina":         {Min: 500, Max: 60_000},
		"Local Comercial": {Min: 300, Max: 60_000},
		"Terreno":         {Min: 10, Max: 20_000},
	}
}

// Options configures a pipeline run. The zero value is usable;
// DefaultOptions fills in the documented defaults.
type Options struct {
	// StopOnCritical fails the pipeline when the first validation pass
	// produces critical findings. Advisory findings never block.
	StopOnCritical bool `yaml:"stop_on_critical"`

	// OutlierFields are the numeric columns scanned by the detector.
	OutlierFields []string `yaml:"outlier_fields"`

	// Dedupe removes duplicate ids (keeping the first occurrence)
	// during the anomaly stage.
	Dedupe bool `yaml:"dedupe"`

	// ReferenceNow anchors age_days so runs are deterministic.
	// Zero means the wall clock at Run time.
	ReferenceNow time.Time `yaml:"reference_now"`

	// PriceCeiling is the advisory sanity bound on price.
	PriceCeiling float64 `yaml:"price_ceiling"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		OutlierFields: DefaultOutlierFields(),
		PriceCeiling:  DefaultPriceCeiling,
	}
}

// LoadOptions reads Options from a YAML file. Fields absent from the
// file keep their defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("options: %w", err)
	}
	if len(opts.OutlierFields) == 0 {
		opts.OutlierFields = DefaultOutlierFields()
	}
	if opts.PriceCeiling <= 0 {
		opts.PriceCeiling = DefaultPriceCeiling
	}
	return opts, nil
}
