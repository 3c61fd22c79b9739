package etl

// FieldKind is the semantic type of a schema field.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindFloat  FieldKind = "float"
	KindInt    FieldKind = "int"
	KindDate   FieldKind = "date"
)

// SchemaField declares one input column: its name, semantic type, and
// whether null values are acceptable without a quality finding.
type SchemaField struct {
	Name     string    `yaml:"name"`
	Kind     FieldKind `yaml:"kind"`
	Nullable bool      `yaml:"nullable"`
}

// Schema is the declared shape of the input dataset. The loader checks
// the input header against it, so validation rules stay decoupled from
// incidental input shape.
type Schema []SchemaField

// DefaultSchema declares the listing input columns. The non-nullable
// fields are exactly the validator's critical fields.
func DefaultSchema() Schema {
	return Schema{
		{Name: ColID, Kind: KindString},
		{Name: ColPrice, Kind: KindFloat},
		{Name: ColPropertyType, Kind: KindString},
		{Name: ColAreaM2, Kind: KindFloat},
		{Name: ColPublicationDate, Kind: KindDate, Nullable: true},
		{Name: ColZone, Kind: KindString, Nullable: true},
		{Name: ColRooms, Kind: KindInt, Nullable: true},
		{Name: ColBathrooms, Kind: KindInt, Nullable: true},
		{Name: ColStatus, Kind: KindString, Nullable: true},
		{Name: ColDescription, Kind: KindString, Nullable: true},
	}
}

// Field looks up a schema field by column name.
func (s Schema) Field(name string) (SchemaField, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return SchemaField{}, false
}

// CriticalFields returns the names of the non-nullable fields.
func (s Schema) CriticalFields() []string {
	var out []string
	for _, f := range s {
		if !f.Nullable {
			out = append(out, f.Name)
		}
	}
	return out
}
