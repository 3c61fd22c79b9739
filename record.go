package etl

import (
	"strconv"
	"time"
)

// Column names of the persisted record schema. These names are the
// contract downstream consumers depend on; do not rename them.
const (
	ColID              = "id"
	ColPrice           = "price"
	ColPropertyType    = "property_type"
	ColAreaM2          = "area_m2"
	ColPublicationDate = "publication_date"
	ColZone            = "zone"
	ColRooms           = "rooms"
	ColBathrooms       = "bathrooms"
	ColStatus          = "status"
	ColDescription     = "description"

	ColPricePerM2       = "price_per_m2"
	ColPriceCategory    = "price_category"
	ColPublicationMonth = "publication_month"
	ColPublicationYear  = "publication_year"
	ColAgeDays          = "age_days"
	ColPriceAreaRatio   = "price_area_ratio"
)

// dateLayout is the wire format for calendar dates in CSV input/output.
const dateLayout = "2006-01-02"

// Null is an optional cell value. The zero value is the null marker.
// Fields a stage cannot compute are set to null, never to zero or a
// sentinel that could be mistaken for data.
type Null[T any] struct {
	V     T
	Valid bool
}

// Value wraps v in a valid (non-null) cell.
func Value[T any](v T) Null[T] {
	return Null[T]{V: v, Valid: true}
}

// Record is one real-estate listing with a fixed column set.
// Input fields are populated by the loader; derived fields start null
// and are filled by the Enricher.
type Record struct {
	ID              Null[string]
	Price           Null[float64]
	PropertyType    Null[string]
	AreaM2          Null[float64]
	PublicationDate Null[time.Time]
	Zone            Null[string]
	Rooms           Null[int]
	Bathrooms       Null[int]
	Status          Null[string]
	Description     Null[string]

	PricePerM2       Null[float64]
	PriceCategory    Null[string]
	PublicationMonth Null[int]
	PublicationYear  Null[int]
	AgeDays          Null[int]
	PriceAreaRatio   Null[float64]
}

// NumericField returns the value of a numeric column by name.
// The second return reports whether the column name is numeric at all;
// the Null wrapper reports whether this record has a value for it.
func (r *Record) NumericField(name string) (Null[float64], bool) {
	switch name {
	case ColPrice:
		return r.Price, true
	case ColAreaM2:
		return r.AreaM2, true
	case ColPricePerM2:
		return r.PricePerM2, true
	case ColPriceAreaRatio:
		return r.PriceAreaRatio, true
	case ColRooms:
		return toFloatCell(r.Rooms), true
	case ColBathrooms:
		return toFloatCell(r.Bathrooms), true
	case ColPublicationMonth:
		return toFloatCell(r.PublicationMonth), true
	case ColPublicationYear:
		return toFloatCell(r.PublicationYear), true
	case ColAgeDays:
		return toFloatCell(r.AgeDays), true
	default:
		return Null[float64]{}, false
	}
}

func toFloatCell(n Null[int]) Null[float64] {
	if !n.Valid {
		return Null[float64]{}
	}
	return Value(float64(n.V))
}

// Cell formats the named column for output. The second return is false
// for null cells, which serialize as an empty string.
func (r *Record) Cell(name string) (string, bool) {
	switch name {
	case ColID:
		return r.ID.V, r.ID.Valid
	case ColPrice:
		return formatFloat(r.Price)
	case ColPropertyType:
		return r.PropertyType.V, r.PropertyType.Valid
	case ColAreaM2:
		return formatFloat(r.AreaM2)
	case ColPublicationDate:
		if !r.PublicationDate.Valid {
			return "", false
		}
		return r.PublicationDate.V.Format(dateLayout), true
	case ColZone:
		return r.Zone.V, r.Zone.Valid
	case ColRooms:
		return formatInt(r.Rooms)
	case ColBathrooms:
		return formatInt(r.Bathrooms)
	case ColStatus:
		return r.Status.V, r.Status.Valid
	case ColDescription:
		return r.Description.V, r.Description.Valid
	case ColPricePerM2:
		return formatFloat(r.PricePerM2)
	case ColPriceCategory:
		return r.PriceCategory.V, r.PriceCategory.Valid
	case ColPublicationMonth:
		return formatInt(r.PublicationMonth)
	case ColPublicationYear:
		return formatInt(r.PublicationYear)
	case ColAgeDays:
		return formatInt(r.AgeDays)
	case ColPriceAreaRatio:
		return formatFloat(r.PriceAreaRatio)
	default:
		return "", false
	}
}

func formatFloat(n Null[float64]) (string, bool) {
	if !n.Valid {
		return "", false
	}
	return strconv.FormatFloat(n.V, 'f', -1, 64), true
}

func formatInt(n Null[int]) (string, bool) {
	if !n.Valid {
		return "", false
	}
	return strconv.Itoa(n.V), true
}

// RecordBatch is the ordered collection of records flowing through the
// pipeline. Each stage exclusively owns the batch it returns and must
// not retain a reference after handing it downstream; stages that
// modify records return a fresh batch.
type RecordBatch struct {
	Records []Record
	Columns []string
}

// NewRecordBatch creates a batch over records with the base input
// column set.
func NewRecordBatch(records []Record) *RecordBatch {
	return &RecordBatch{
		Records: records,
		Columns: InputColumns(),
	}
}

// Len returns the number of records in the batch.
func (b *RecordBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}

// clone returns a deep-enough copy for a stage to own: the record
// slice and column list are copied, record values are copied by value.
func (b *RecordBatch) clone() *RecordBatch {
	out := &RecordBatch{
		Records: make([]Record, len(b.Records)),
		Columns: make([]string, len(b.Columns)),
	}
	copy(out.Records, b.Records)
	copy(out.Columns, b.Columns)
	return out
}

// InputColumns returns the base column set produced by the loader,
// in output order.
func InputColumns() []string {
	return []string{
		ColID, ColPrice, ColPropertyType, ColAreaM2, ColPublicationDate,
		ColZone, ColRooms, ColBathrooms, ColStatus, ColDescription,
	}
}

// DerivedColumns returns the columns appended by the Enricher,
// in output order.
func DerivedColumns() []string {
	return []string{
		ColPricePerM2, ColPriceCategory, ColPublicationMonth,
		ColPublicationYear, ColAgeDays, ColPriceAreaRatio,
	}
}
