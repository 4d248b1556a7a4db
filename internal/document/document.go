// Package document holds the in-memory record side of the codec: schema-typed
// documents, their tagged field values, and ordered collections of documents.
package document

import (
	"fmt"
	"sort"

	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/google/uuid"
)

// IDField is filled with a random UUID when a schema declares it as text and
// the constructor is given no value.
const IDField = "id"

// Field is one named value.
type Field struct {
	Name  string
	Value Value
}

// ConstructionError reports a field set that the target schema rejects.
type ConstructionError struct {
	Schema string
	Field  string
	Reason string
}

func (e *ConstructionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("document: construct %s: %s", e.Schema, e.Reason)
	}
	return fmt.Sprintf("document: construct %s: field %q: %s", e.Schema, e.Field, e.Reason)
}

// Document is one instance of a schema. Declared fields always exist (null
// when unset) and iterate in declaration order; open schemas append extra
// fields after them in insertion order.
type Document struct {
	schema *schema.Schema
	values []Value
	extra  []Field
}

// New constructs a document of schema s from fields. A nil schema means
// schema.Any.
func New(s *schema.Schema, fields ...Field) (*Document, error) {
	if s == nil {
		s = schema.Any
	}
	d := &Document{schema: s, values: make([]Value, len(s.Fields))}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return nil, &ConstructionError{Schema: s.Name, Field: f.Name, Reason: "duplicate field"}
		}
		seen[f.Name] = struct{}{}
		if err := d.Set(f.Name, f.Value); err != nil {
			return nil, err
		}
	}
	if i, ok := s.Position(IDField); ok && s.Fields[i].Kind == schema.KindText && d.values[i].IsNull() {
		d.values[i] = Text(uuid.NewString())
	}
	for i, spec := range s.Fields {
		if spec.Required && d.values[i].IsNull() {
			return nil, &ConstructionError{Schema: s.Name, Field: spec.Name, Reason: "required field is null"}
		}
	}
	return d, nil
}

// FromMap is New with map input. Extra fields of open schemas are added in
// name order.
func FromMap(s *schema.Schema, fields map[string]Value) (*Document, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]Field, 0, len(names))
	for _, name := range names {
		list = append(list, Field{Name: name, Value: fields[name]})
	}
	return New(s, list...)
}

// Schema returns the document's schema.
func (d *Document) Schema() *schema.Schema { return d.schema }

// Set stores v under name after checking it against the declared type.
func (d *Document) Set(name string, v Value) error {
	spec, ok := schema.FieldType(d.schema, name)
	if !ok {
		return &ConstructionError{Schema: d.schema.Name, Field: name, Reason: "field is not declared"}
	}
	if err := checkKind(d.schema, spec, v); err != nil {
		return err
	}
	if i, declared := d.schema.Position(name); declared {
		if spec.Required && v.IsNull() {
			return &ConstructionError{Schema: d.schema.Name, Field: name, Reason: "required field is null"}
		}
		d.values[i] = v
		return nil
	}
	for i := range d.extra {
		if d.extra[i].Name == name {
			d.extra[i].Value = v
			return nil
		}
	}
	d.extra = append(d.extra, Field{Name: name, Value: v})
	return nil
}

// Get returns the value under name, Null when unset or undeclared.
func (d *Document) Get(name string) Value {
	v, _ := d.Lookup(name)
	return v
}

// Lookup returns the value under name and whether the field exists.
func (d *Document) Lookup(name string) (Value, bool) {
	if i, ok := d.schema.Position(name); ok {
		return d.values[i], true
	}
	for _, f := range d.extra {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Null(), false
}

// ID returns the id field text, if any.
func (d *Document) ID() string {
	s, _ := d.Get(IDField).AsText()
	return s
}

// Fields returns every field in iteration order.
func (d *Document) Fields() []Field {
	out := make([]Field, 0, len(d.values)+len(d.extra))
	for i, spec := range d.schema.Fields {
		out = append(out, Field{Name: spec.Name, Value: d.values[i]})
	}
	return append(out, d.extra...)
}

// Len returns the number of fields Fields would return.
func (d *Document) Len() int {
	return len(d.values) + len(d.extra)
}

// Equal reports the same schema and equal field values in the same order.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d == o {
		return true
	}
	if d.schema != o.schema {
		return false
	}
	a, b := d.Fields(), o.Fields()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Value.Equal(b[i].Value) {
			return false
		}
	}
	return true
}

func checkKind(s *schema.Schema, spec schema.FieldSpec, v Value) error {
	if arr, ok := v.AsChunks(); ok {
		for i, doc := range arr.docs {
			if doc == nil {
				return &ConstructionError{
					Schema: s.Name,
					Field:  spec.Name,
					Reason: fmt.Sprintf("chunk %d: nil member document", i),
				}
			}
		}
	}
	if v.IsNull() || spec.Kind == schema.KindAny {
		return nil
	}
	mismatch := func() error {
		return &ConstructionError{
			Schema: s.Name,
			Field:  spec.Name,
			Reason: fmt.Sprintf("declared %s, got %s", spec.Kind, v.Kind()),
		}
	}
	switch spec.Kind {
	case schema.KindText:
		if v.Kind() != KindText {
			return mismatch()
		}
	case schema.KindBlob:
		if v.Kind() != KindBlob {
			return mismatch()
		}
	case schema.KindTensor:
		if v.Kind() != KindTensor {
			return mismatch()
		}
	case schema.KindDocument:
		doc, ok := v.AsDocument()
		if !ok {
			return mismatch()
		}
		if !accepts(spec.Nested, doc.Schema()) {
			return &ConstructionError{
				Schema: s.Name,
				Field:  spec.Name,
				Reason: fmt.Sprintf("declared document %s, got %s", spec.Nested, doc.Schema()),
			}
		}
	case schema.KindChunks:
		arr, ok := v.AsChunks()
		if !ok {
			return mismatch()
		}
		for i, doc := range arr.docs {
			if !accepts(spec.Nested, doc.Schema()) {
				return &ConstructionError{
					Schema: s.Name,
					Field:  spec.Name,
					Reason: fmt.Sprintf("chunk %d: declared %s, got %s", i, spec.Nested, doc.Schema()),
				}
			}
		}
	default:
		return mismatch()
	}
	return nil
}

func accepts(declared, got *schema.Schema) bool {
	return declared == nil || declared == schema.Any || declared == got
}
