package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes m as a DocumentProto.
func Marshal(m *Message) ([]byte, error) {
	if m == nil {
		return nil, ErrNilMessage
	}
	return appendMessage(nil, m)
}

// MarshalArray encodes ms as a DocumentArrayProto.
func MarshalArray(ms []*Message) ([]byte, error) {
	return appendArray(nil, ms)
}

func appendMessage(b []byte, m *Message) ([]byte, error) {
	for _, f := range m.Fields {
		entry, err := appendEntry(nil, f)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldDocumentData, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

func appendEntry(b []byte, f Field) ([]byte, error) {
	b = protowire.AppendTag(b, fieldEntryKey, protowire.BytesType)
	b = protowire.AppendString(b, f.Name)
	node, err := appendNode(nil, f.Node)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	b = protowire.AppendTag(b, fieldEntryValue, protowire.BytesType)
	return protowire.AppendBytes(b, node), nil
}

func appendNode(b []byte, n Node) ([]byte, error) {
	switch n.Content {
	case ContentNone:
		return b, nil
	case ContentBlob:
		b = protowire.AppendTag(b, fieldNodeBlob, protowire.BytesType)
		return protowire.AppendBytes(b, n.Blob), nil
	case ContentTensor:
		if n.Tensor == nil {
			return nil, ErrNilTensor
		}
		b = protowire.AppendTag(b, fieldNodeTensor, protowire.BytesType)
		return protowire.AppendBytes(b, appendTensor(nil, n.Tensor)), nil
	case ContentText:
		b = protowire.AppendTag(b, fieldNodeText, protowire.BytesType)
		return protowire.AppendString(b, n.Text), nil
	case ContentNested:
		if n.Nested == nil {
			return nil, ErrNilMessage
		}
		nested, err := appendMessage(nil, n.Nested)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldNodeNested, protowire.BytesType)
		return protowire.AppendBytes(b, nested), nil
	case ContentChunks:
		chunks, err := appendArray(nil, n.Chunks)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldNodeChunks, protowire.BytesType)
		return protowire.AppendBytes(b, chunks), nil
	case ContentUnknown:
		return append(b, n.Raw...), nil
	default:
		return nil, fmt.Errorf("wire: cannot encode %s node", n.Content)
	}
}

func appendArray(b []byte, ms []*Message) ([]byte, error) {
	for i, m := range ms {
		if m == nil {
			return nil, fmt.Errorf("docs[%d]: %w", i, ErrNilMessage)
		}
		doc, err := appendMessage(nil, m)
		if err != nil {
			return nil, fmt.Errorf("docs[%d]: %w", i, err)
		}
		b = protowire.AppendTag(b, fieldArrayDocs, protowire.BytesType)
		b = protowire.AppendBytes(b, doc)
	}
	return b, nil
}

func appendTensor(b []byte, t *Tensor) []byte {
	b = protowire.AppendTag(b, fieldTensorBuffer, protowire.BytesType)
	b = protowire.AppendBytes(b, t.Buffer)
	if len(t.Shape) > 0 {
		var packed []byte
		for _, d := range t.Shape {
			packed = protowire.AppendVarint(packed, uint64(d))
		}
		b = protowire.AppendTag(b, fieldTensorShape, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	b = protowire.AppendTag(b, fieldTensorDType, protowire.BytesType)
	return protowire.AppendString(b, t.DType)
}
