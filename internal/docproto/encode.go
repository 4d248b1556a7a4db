package docproto

import (
	"fmt"

	"github.com/danmuck/docwire/internal/document"
	"github.com/danmuck/docwire/internal/protocol/wire"
	"github.com/danmuck/docwire/internal/tensor"
)

// ToWire converts d into its wire message. Every declared field is emitted,
// null ones as an empty node. Failures carry the field path they occurred
// under.
func ToWire(d *document.Document, opts ...Option) (*wire.Message, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	e := encoder{maxDepth: resolveOptions(opts).MaxDepth}
	return e.document(d, 0)
}

// ArrayToWire converts every member of a, in order.
func ArrayToWire(a *document.Array, opts ...Option) ([]*wire.Message, error) {
	e := encoder{maxDepth: resolveOptions(opts).MaxDepth}
	return e.array(a, 0)
}

type encoder struct {
	maxDepth int
}

func (e encoder) document(d *document.Document, depth int) (*wire.Message, error) {
	fields := d.Fields()
	msg := &wire.Message{Fields: make([]wire.Field, 0, len(fields))}
	for _, f := range fields {
		node, err := e.value(f.Name, f.Value, depth)
		if err != nil {
			return nil, withField(f.Name, err)
		}
		msg.Fields = append(msg.Fields, wire.Field{Name: f.Name, Node: node})
	}
	return msg, nil
}

func (e encoder) array(a *document.Array, depth int) ([]*wire.Message, error) {
	out := make([]*wire.Message, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		doc := a.At(i)
		if doc == nil {
			return nil, withField(indexElem(i), ErrNilDocument)
		}
		msg, err := e.document(doc, depth)
		if err != nil {
			return nil, withField(indexElem(i), err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (e encoder) value(name string, v document.Value, depth int) (wire.Node, error) {
	switch v.Kind() {
	case document.KindNested:
		if depth+1 > e.maxDepth {
			return wire.Node{}, &CyclicReferenceError{Field: name, Limit: e.maxDepth}
		}
		doc, _ := v.AsDocument()
		msg, err := e.document(doc, depth+1)
		if err != nil {
			return wire.Node{}, err
		}
		return wire.NestedNode(msg), nil
	case document.KindChunks:
		if depth+1 > e.maxDepth {
			return wire.Node{}, &CyclicReferenceError{Field: name, Limit: e.maxDepth}
		}
		arr, _ := v.AsChunks()
		msgs, err := e.array(arr, depth+1)
		if err != nil {
			return wire.Node{}, err
		}
		return wire.ChunksNode(msgs), nil
	case document.KindTensor:
		t, _ := v.AsTensor()
		return wire.TensorNode(tensor.Encode(t)), nil
	case document.KindText:
		s, _ := v.AsText()
		return wire.TextNode(s), nil
	case document.KindBlob:
		b, _ := v.AsBlob()
		return wire.BlobNode(b), nil
	case document.KindNull:
		return wire.NoneNode(), nil
	default:
		return wire.Node{}, &UnsupportedFieldTypeError{Field: name, Type: fmt.Sprintf("%T", v.Raw())}
	}
}
