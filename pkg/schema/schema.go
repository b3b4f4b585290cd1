// Package schema models the catalog's type registry: which entity types
// exist, their field definitions, and which fields reference which other
// types. The registry is a read-only collaborator of the generation engine;
// it is loaded once at setup and never mutated afterwards.
package schema

// FieldKind identifies how a field's values are synthesized.
type FieldKind string

// Supported field kinds.
const (
	KindString    FieldKind = "string"
	KindText      FieldKind = "text"
	KindEnum      FieldKind = "enum"
	KindInteger   FieldKind = "integer"
	KindDate      FieldKind = "date"
	KindLink      FieldKind = "link"
	KindReference FieldKind = "reference"
)

// Valid reports whether the kind is one the engine can synthesize.
func (k FieldKind) Valid() bool {
	switch k {
	case KindString, KindText, KindEnum, KindInteger, KindDate, KindLink, KindReference:
		return true
	default:
		return false
	}
}

// Field describes one field of an entity type.
type Field struct {
	Name     string    `yaml:"name" json:"name"`
	Kind     FieldKind `yaml:"kind" json:"kind"`
	Many     bool      `yaml:"many,omitempty" json:"many,omitempty"`
	Optional bool      `yaml:"optional,omitempty" json:"optional,omitempty"`

	// Values is the enum domain for KindEnum fields.
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`

	// Targets names the entity types a KindReference field may point at.
	Targets []string `yaml:"targets,omitempty" json:"targets,omitempty"`

	// MinYear and MaxYear bound generated KindDate values.
	MinYear int `yaml:"minYear,omitempty" json:"minYear,omitempty"`
	MaxYear int `yaml:"maxYear,omitempty" json:"maxYear,omitempty"`
}

// IsReference reports whether the field points at other entity types.
func (f Field) IsReference() bool {
	return f.Kind == KindReference
}

// EntityType is one kind of record, with its fields in emission order.
type EntityType struct {
	Name   string  `yaml:"name" json:"name"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Field returns the named field definition.
func (t EntityType) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredReferences returns the non-optional reference fields of the type.
func (t EntityType) RequiredReferences() []Field {
	var fields []Field
	for _, f := range t.Fields {
		if f.IsReference() && !f.Optional {
			fields = append(fields, f)
		}
	}
	return fields
}
