package docproto

import (
	"fmt"

	"github.com/danmuck/docwire/internal/document"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/danmuck/docwire/internal/protocol/wire"
	"github.com/danmuck/docwire/internal/tensor"
)

// FromWire builds a document of schema s from msg. A nil schema decodes as
// schema.Any. Node failures carry field context; construction errors, at any
// nesting level, are returned as-is.
func FromWire(msg *wire.Message, s *schema.Schema, opts ...Option) (*document.Document, error) {
	if msg == nil {
		return nil, wire.ErrNilMessage
	}
	d := decoder{maxDepth: resolveOptions(opts).MaxDepth}
	return d.document(msg, orAny(s), 0)
}

// DecodeMany builds a collection of s-typed documents from msgs.
func DecodeMany(msgs []*wire.Message, s *schema.Schema, opts ...Option) (*document.Array, error) {
	d := decoder{maxDepth: resolveOptions(opts).MaxDepth}
	return d.many(msgs, orAny(s), 0)
}

type decoder struct {
	maxDepth int
}

func (dc decoder) document(msg *wire.Message, s *schema.Schema, depth int) (*document.Document, error) {
	fields := make([]document.Field, 0, msg.Len())
	for _, f := range msg.Fields {
		v, err := dc.node(s, f.Name, f.Node, depth)
		if err != nil {
			return nil, decodeContext(f.Name, err)
		}
		fields = append(fields, document.Field{Name: f.Name, Value: v})
	}
	return document.New(s, fields...)
}

func (dc decoder) many(msgs []*wire.Message, s *schema.Schema, depth int) (*document.Array, error) {
	arr := document.NewArray(s)
	for i, msg := range msgs {
		if msg == nil {
			return nil, withField(indexElem(i), wire.ErrNilMessage)
		}
		doc, err := dc.document(msg, s, depth)
		if err != nil {
			return nil, decodeContext(indexElem(i), err)
		}
		if err := arr.Append(doc); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

func (dc decoder) node(s *schema.Schema, name string, n wire.Node, depth int) (document.Value, error) {
	switch n.Content {
	case wire.ContentTensor:
		t, err := tensor.Decode(n.Tensor)
		if err != nil {
			return document.Null(), err
		}
		return document.TensorValue(t), nil
	case wire.ContentText:
		return document.Text(n.Text), nil
	case wire.ContentBlob:
		return document.Blob(n.Blob), nil
	case wire.ContentNested:
		sub, err := dc.nestedSchema(s, name, depth)
		if err != nil {
			return document.Null(), err
		}
		if n.Nested == nil {
			return document.Null(), wire.ErrNilMessage
		}
		doc, err := dc.document(n.Nested, sub, depth+1)
		if err != nil {
			return document.Null(), err
		}
		return document.Nested(doc), nil
	case wire.ContentChunks:
		sub, err := dc.nestedSchema(s, name, depth)
		if err != nil {
			return document.Null(), err
		}
		arr, err := dc.many(n.Chunks, sub, depth+1)
		if err != nil {
			return document.Null(), err
		}
		return document.Chunks(arr), nil
	case wire.ContentNone:
		return document.Null(), nil
	default:
		return document.Null(), &UnsupportedContentTypeError{Field: name, Content: n.Content.String(), Number: n.Unknown}
	}
}

func (dc decoder) nestedSchema(s *schema.Schema, name string, depth int) (*schema.Schema, error) {
	if depth+1 > dc.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrDepthExceeded, dc.maxDepth)
	}
	return schema.NestedSchema(s, name)
}

// decodeContext adds field context to node failures. A sub-document that
// its schema rejects surfaces as the bare *document.ConstructionError.
func decodeContext(name string, err error) error {
	if _, ok := err.(*document.ConstructionError); ok {
		return err
	}
	return withField(name, err)
}

func orAny(s *schema.Schema) *schema.Schema {
	if s == nil {
		return schema.Any
	}
	return s
}
