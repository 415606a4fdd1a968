// Package schema validates outgoing gateway requests against declarative,
// per-operation schemas. Schemas are plain data; a Registry compiles each one
// into a Validator on first use and caches it.
package schema

// Kind is the JSON type a value must have.
type Kind string

const (
	KindAny     Kind = ""
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Schema describes the accepted shape of a value. Keywords that do not apply
// to the value's type are ignored, as in JSON Schema.
type Schema struct {
	Type  Kind
	Title string

	// object keywords
	Required   []string
	Properties map[string]*Schema
	// Closed rejects properties not listed in Properties.
	Closed bool

	// string keywords; Pattern is unanchored
	MinLength *int
	MaxLength *int
	Pattern   string
	Format    string

	Enum []string

	// numeric keywords
	Minimum *float64
	Maximum *float64

	AnyOf []*Schema
	OneOf []*Schema
}

// Int returns a pointer to n for the length keywords.
func Int(n int) *int { return &n }

// Float returns a pointer to f for the numeric keywords.
func Float(f float64) *float64 { return &f }

// MaxString accepts strings of at most n characters; n <= 0 means 255.
func MaxString(n int) *Schema {
	if n <= 0 {
		n = 255
	}
	return &Schema{Type: KindString, MinLength: Int(0), MaxLength: Int(n)}
}

// Object builds an object schema. Closed controls additional properties.
func Object(closed bool, props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: KindObject, Closed: closed, Properties: props, Required: required}
}

// StringEnum accepts one of values.
func StringEnum(values []string) *Schema {
	return &Schema{Type: KindString, Enum: values}
}
