// Package etl ingests tabular real-estate listings, validates their
// quality, enriches them with derived fields, and emits a cleaned
// dataset plus a processing report.
//
// The pipeline runs one batch through five sequential stages:
//
//	Extract -> Validate -> Enrich -> Detect-anomalies -> Load
//
// Each stage communicates through an explicit [RecordBatch] value and
// accumulates findings and errors into a single [ProcessingReport].
//
// # Quick Start
//
//	loader := etl.NewCSVLoader()
//	sink := etl.NewCSVSink()
//
//	report, err := etl.New(loader, sink).
//	    WithStopOnCritical(true).
//	    WithDedupe(true).
//	    WithReferenceNow(time.Now()).
//	    Run(ctx, "data/raw/listings.csv", "data/processed/listings.csv")
//	if err != nil {
//	    // report.State == etl.StateFailed; report.Errors holds the cause
//	}
//	fmt.Println(report.OutputRecords, "records written")
//
// # Validation
//
// [Validator] checks critical-field nullity, value ranges, duplicate
// ids and cross-field plausibility without mutating the batch. Each
// issue becomes a [QualityFinding]; a batch passes when it has no
// findings of critical severity. Advisory findings (outliers,
// inconsistencies, ceiling breaches) are recorded but never block
// downstream stages.
//
// # Enrichment
//
// [Enricher] derives price_per_m2, a tertile-based price category,
// publication month/year, listing age in days, and the price/area
// ratio. Enrichment is total: records are never dropped, and anything
// that cannot be computed becomes a null cell rather than a zero or
// sentinel. The reference "now" for age computation is injected so
// identical inputs always produce identical output.
//
// # Anomalies
//
// [OutlierDetector] applies the IQR fence method per numeric field,
// and [Deduplicate] optionally removes repeated ids keeping the first
// occurrence.
//
// # Collaborators
//
// The pipeline consumes a [Loader] and a [Sink]. [CSVLoader] and
// [CSVSink] handle CSV files (the sink writes atomically); [DBSink]
// upserts into a relational table via gorm. Collaborators may
// additionally implement [Starter], [Stopper] or [StageObserver];
// these capabilities are auto-detected when the pipeline is built.
package etl
