package etl

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// listingRow is the relational shape of an enriched record. Nullable
// cells map to pointer columns so null survives the round trip.
type listingRow struct {
	ID               string     `gorm:"column:id;primaryKey"`
	Price            *float64   `gorm:"column:price"`
	PropertyType     *string    `gorm:"column:property_type"`
	AreaM2           *float64   `gorm:"column:area_m2"`
	PublicationDate  *time.Time `gorm:"column:publication_date"`
	Zone             *string    `gorm:"column:zone"`
	Rooms            *int       `gorm:"column:rooms"`
	Bathrooms        *int       `gorm:"column:bathrooms"`
	Status           *string    `gorm:"column:status"`
	Description      *string    `gorm:"column:description"`
	PricePerM2       *float64   `gorm:"column:price_per_m2"`
	PriceCategory    *string    `gorm:"column:price_category"`
	PublicationMonth *int       `gorm:"column:publication_month"`
	PublicationYear  *int       `gorm:"column:publication_year"`
	AgeDays          *int       `gorm:"column:age_days"`
	PriceAreaRatio   *float64   `gorm:"column:price_area_ratio"`
}

func (listingRow) TableName() string { return "listings" }

// DBSink persists the batch to a relational table, upserting on the
// listing id. The whole batch is written in one transaction, so a
// failed load leaves the destination untouched.
//
// The destination argument of Load is ignored: the target is the
// database handed to NewDBSink. Records with a null id cannot be keyed
// and are rejected as a load failure.
type DBSink struct {
	db *gorm.DB
}

// NewDBSink creates a sink over an opened gorm database and ensures
// the listings table exists.
func NewDBSink(db *gorm.DB) (*DBSink, error) {
	if err := db.AutoMigrate(&listingRow{}); err != nil {
		return nil, fmt.Errorf("migrate listings: %w", err)
	}
	return &DBSink{db: db}, nil
}

// OpenSQLiteSink opens (or creates) a SQLite database at path and
// returns a DBSink over it. Use ":memory:" for an ephemeral database.
func OpenSQLiteSink(path string) (*DBSink, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewDBSink(db)
}

// DB exposes the underlying handle, mainly for tests.
func (s *DBSink) DB() *gorm.DB { return s.db }

// Load implements Sink.
func (s *DBSink) Load(ctx context.Context, batch *RecordBatch, _ string) error {
	rows := make([]listingRow, 0, batch.Len())
	for i := range batch.Records {
		rec := &batch.Records[i]
		if !rec.ID.Valid {
			return fmt.Errorf("record #%d has a null id and cannot be keyed", i)
		}
		rows = append(rows, toListingRow(rec))
	}
	if len(rows) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(rows, 200).Error
	})
}

func toListingRow(rec *Record) listingRow {
	return listingRow{
		ID:               rec.ID.V,
		Price:            floatPtr(rec.Price),
		PropertyType:     stringPtr(rec.PropertyType),
		AreaM2:           floatPtr(rec.AreaM2),
		PublicationDate:  timePtr(rec.PublicationDate),
		Zone:             stringPtr(rec.Zone),
		Rooms:            intPtr(rec.Rooms),
		Bathrooms:        intPtr(rec.Bathrooms),
		Status:           stringPtr(rec.Status),
		Description:      stringPtr(rec.Description),
		PricePerM2:       floatPtr(rec.PricePerM2),
		PriceCategory:    stringPtr(rec.PriceCategory),
		PublicationMonth: intPtr(rec.PublicationMonth),
		PublicationYear:  intPtr(rec.PublicationYear),
		AgeDays:          intPtr(rec.AgeDays),
		PriceAreaRatio:   floatPtr(rec.PriceAreaRatio),
	}
}

func floatPtr(n Null[float64]) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

func stringPtr(n Null[string]) *string {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

func intPtr(n Null[int]) *int {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

func timePtr(n Null[time.Time]) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}
