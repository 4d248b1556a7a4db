package document

import (
	"slices"

	"github.com/danmuck/docwire/internal/protocol/schema"
)

// Array is an ordered collection of documents. A typed array only accepts
// members of its schema; an untyped one (nil or Any schema) accepts any.
type Array struct {
	schema *schema.Schema
	docs   []*Document
}

// NewArray builds a collection without checking member schemas; use Append
// for checked insertion.
func NewArray(s *schema.Schema, docs ...*Document) *Array {
	return &Array{schema: s, docs: slices.Clone(docs)}
}

// Schema returns the member schema, schema.Any for untyped arrays.
func (a *Array) Schema() *schema.Schema {
	if a.schema == nil {
		return schema.Any
	}
	return a.schema
}

// Append adds d, enforcing the member schema.
func (a *Array) Append(d *Document) error {
	if d == nil {
		return &ConstructionError{Schema: a.Schema().Name, Reason: "nil member document"}
	}
	if !accepts(a.schema, d.Schema()) {
		return &ConstructionError{
			Schema: a.Schema().Name,
			Reason: "member document has schema " + d.Schema().Name,
		}
	}
	a.docs = append(a.docs, d)
	return nil
}

func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.docs)
}

func (a *Array) At(i int) *Document { return a.docs[i] }

// Docs returns a copy of the member slice.
func (a *Array) Docs() []*Document { return slices.Clone(a.docs) }

// Equal compares members pairwise.
func (a *Array) Equal(o *Array) bool {
	if a == nil || o == nil {
		return a == o
	}
	if len(a.docs) != len(o.docs) {
		return false
	}
	for i := range a.docs {
		if !a.docs[i].Equal(o.docs[i]) {
			return false
		}
	}
	return true
}
