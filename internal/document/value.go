package document

import (
	"bytes"
	"fmt"

	"github.com/danmuck/docwire/internal/tensor"
)

// Kind is the runtime kind of a field value, fixed when the value is built.
type Kind uint8

const (
	KindNull Kind = iota
	KindTensor
	KindText
	KindBlob
	KindNested
	KindChunks
	// KindUnsupported holds a Go value that matches no other kind. It can
	// only be stored in any-typed fields and fails to encode.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindTensor:
		return "tensor"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindNested:
		return "nested"
	case KindChunks:
		return "chunks"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one field value: a tagged union over the kinds above.
type Value struct {
	kind   Kind
	tensor *tensor.Tensor
	text   string
	blob   []byte
	doc    *Document
	chunks *Array
	raw    any
}

func Null() Value { return Value{} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

// Blob copies b.
func Blob(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBlob, blob: bytes.Clone(b)}
}

// TensorValue wraps t; a nil tensor is Null.
func TensorValue(t *tensor.Tensor) Value {
	if t == nil {
		return Null()
	}
	return Value{kind: KindTensor, tensor: t}
}

// Nested wraps a sub-document; nil is Null.
func Nested(d *Document) Value {
	if d == nil {
		return Null()
	}
	return Value{kind: KindNested, doc: d}
}

// Chunks wraps a collection of sub-documents; nil is Null.
func Chunks(a *Array) Value {
	if a == nil {
		return Null()
	}
	return Value{kind: KindChunks, chunks: a}
}

// ValueOf classifies an arbitrary Go value. Anything that is not a known
// kind becomes KindUnsupported rather than an error, so the failure surfaces
// with field context when the document is encoded.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case *Document:
		return Nested(x)
	case *Array:
		return Chunks(x)
	case []*Document:
		return Chunks(NewArray(nil, x...))
	case *tensor.Tensor:
		return TensorValue(x)
	case string:
		return Text(x)
	case []byte:
		return Blob(x)
	default:
		return Value{kind: KindUnsupported, raw: v}
	}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

func (v Value) AsBlob() ([]byte, bool) {
	if v.kind != KindBlob {
		return nil, false
	}
	return bytes.Clone(v.blob), true
}

func (v Value) AsTensor() (*tensor.Tensor, bool) { return v.tensor, v.kind == KindTensor }

func (v Value) AsDocument() (*Document, bool) { return v.doc, v.kind == KindNested }

func (v Value) AsChunks() (*Array, bool) { return v.chunks, v.kind == KindChunks }

// Raw returns the Go value behind KindUnsupported.
func (v Value) Raw() any { return v.raw }

// Equal compares kinds and payloads; documents and collections compare deeply.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == o.text
	case KindBlob:
		return bytes.Equal(v.blob, o.blob)
	case KindTensor:
		return v.tensor.Equal(o.tensor)
	case KindNested:
		return v.doc.Equal(o.doc)
	case KindChunks:
		return v.chunks.Equal(o.chunks)
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindText:
		return fmt.Sprintf("%q", v.text)
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.blob))
	case KindTensor:
		return v.tensor.String()
	case KindNested:
		return fmt.Sprintf("document(%s)", v.doc.Schema().Name)
	case KindChunks:
		return fmt.Sprintf("chunks(%d)", v.chunks.Len())
	default:
		return fmt.Sprintf("unsupported(%T)", v.raw)
	}
}
