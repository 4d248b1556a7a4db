package schema

import "fmt"

// AnyName is the schema name that always resolves to Any.
const AnyName = "AnyDocument"

// FieldSpec declares one field of a document schema.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Ref      string
	Required bool

	// Nested is the resolved schema behind Ref for document and chunks
	// fields. Set by Registry.Define.
	Nested *Schema
}

// Schema is the declared shape of one concrete document type. Open schemas
// accept fields they do not declare, typed as KindAny.
type Schema struct {
	Name   string
	Fields []FieldSpec
	Open   bool

	index map[string]int
}

// Any accepts every field name with any value; nested documents under it are
// Any as well.
var Any = &Schema{Name: AnyName, Open: true, index: map[string]int{}}

// Field returns the declared spec for name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	if s == nil {
		return FieldSpec{}, false
	}
	i, ok := s.lookup(name)
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// Position returns the declaration index of name.
func (s *Schema) Position(name string) (int, bool) {
	return s.lookup(name)
}

// FieldNames returns declared names in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

func (s *Schema) lookup(name string) (int, bool) {
	if s.index != nil {
		i, ok := s.index[name]
		return i, ok
	}
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (s *Schema) String() string {
	if s == nil {
		return "<nil schema>"
	}
	return s.Name
}

// FieldType returns the declared type of name. Open schemas report undeclared
// names as KindAny.
func FieldType(s *Schema, name string) (FieldSpec, bool) {
	if spec, ok := s.Field(name); ok {
		return spec, true
	}
	if s != nil && s.Open {
		return FieldSpec{Name: name, Kind: KindAny, Nested: Any}, true
	}
	return FieldSpec{}, false
}

// ResolveError reports a field that cannot hold nested documents.
type ResolveError struct {
	Schema string
	Field  string
	Reason string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("schema: %s.%s: %s", e.Schema, e.Field, e.Reason)
}

// NestedSchema returns the concrete schema declared for a document or chunks
// field. It reads declarations only, so it works before any instance exists.
// Fields without a concrete reference, including any field of an open
// schema, resolve to Any: a sub-document stored there comes back with the
// same values under schema Any.
func NestedSchema(s *Schema, field string) (*Schema, error) {
	if s == nil {
		return nil, &ResolveError{Schema: "<nil>", Field: field, Reason: "no schema"}
	}
	spec, ok := FieldType(s, field)
	if !ok {
		return nil, &ResolveError{Schema: s.Name, Field: field, Reason: "field is not declared"}
	}
	if !spec.Kind.HoldsDocuments() {
		return nil, &ResolveError{
			Schema: s.Name,
			Field:  field,
			Reason: fmt.Sprintf("declared %s, not a document field", spec.Kind),
		}
	}
	if spec.Nested == nil {
		return Any, nil
	}
	return spec.Nested, nil
}
