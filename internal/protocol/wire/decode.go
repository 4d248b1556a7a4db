package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxNesting bounds message recursion while parsing untrusted bytes.
const MaxNesting = 10000

// Unmarshal decodes a DocumentProto.
func Unmarshal(b []byte) (*Message, error) {
	return parseMessage(b, 0)
}

// UnmarshalArray decodes a DocumentArrayProto.
func UnmarshalArray(b []byte) ([]*Message, error) {
	return parseArray(b, 0)
}

func parseMessage(b []byte, depth int) (*Message, error) {
	if depth > MaxNesting {
		return nil, ErrTooDeep
	}
	msg := &Message{}
	seen := make(map[string]struct{})
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseError(n)
		}
		b = b[n:]
		if num != fieldDocumentData {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, parseError(n)
			}
			b = b[n:]
			continue
		}
		if typ != protowire.BytesType {
			return nil, fmt.Errorf("%w: data entry has type %d", ErrInvalidWireType, typ)
		}
		entry, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, parseError(n)
		}
		b = b[n:]
		f, err := parseEntry(entry, depth)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = struct{}{}
		msg.Fields = append(msg.Fields, f)
	}
	return msg, nil
}

func parseEntry(b []byte, depth int) (Field, error) {
	var f Field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Field{}, parseError(n)
		}
		b = b[n:]
		switch num {
		case fieldEntryKey, fieldEntryValue:
			if typ != protowire.BytesType {
				return Field{}, fmt.Errorf("%w: map entry field %d has type %d", ErrInvalidWireType, num, typ)
			}
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Field{}, parseError(n)
			}
			b = b[n:]
			if num == fieldEntryKey {
				f.Name = string(v)
				continue
			}
			node, err := parseNode(v, depth)
			if err != nil {
				return Field{}, err
			}
			f.Node = node
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Field{}, parseError(n)
			}
			b = b[n:]
		}
	}
	return f, nil
}

// parseNode follows oneof semantics: the last known variant on the wire wins.
// Unknown field numbers only surface when no known variant is present.
func parseNode(b []byte, depth int) (Node, error) {
	var node Node
	var unknown Node
	for len(b) > 0 {
		start := b
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Node{}, parseError(n)
		}
		b = b[n:]
		switch num {
		case fieldNodeBlob, fieldNodeTensor, fieldNodeText, fieldNodeNested, fieldNodeChunks:
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Node{}, parseError(n)
			}
			b = b[n:]
			if unknown.Content == ContentNone {
				raw := make([]byte, len(start)-len(b))
				copy(raw, start)
				unknown = Node{Content: ContentUnknown, Unknown: num, Raw: raw}
			}
			continue
		}
		if typ != protowire.BytesType {
			return Node{}, fmt.Errorf("%w: node field %d has type %d", ErrInvalidWireType, num, typ)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return Node{}, parseError(n)
		}
		b = b[n:]
		switch num {
		case fieldNodeBlob:
			node = BlobNode(v)
		case fieldNodeText:
			node = TextNode(string(v))
		case fieldNodeTensor:
			t, err := parseTensor(v)
			if err != nil {
				return Node{}, err
			}
			node = TensorNode(t)
		case fieldNodeNested:
			m, err := parseMessage(v, depth+1)
			if err != nil {
				return Node{}, err
			}
			node = NestedNode(m)
		case fieldNodeChunks:
			ms, err := parseArray(v, depth+1)
			if err != nil {
				return Node{}, err
			}
			node = ChunksNode(ms)
		}
	}
	if node.Content == ContentNone && unknown.Content == ContentUnknown {
		return unknown, nil
	}
	return node, nil
}

func parseArray(b []byte, depth int) ([]*Message, error) {
	if depth > MaxNesting {
		return nil, ErrTooDeep
	}
	out := make([]*Message, 0)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseError(n)
		}
		b = b[n:]
		if num != fieldArrayDocs {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, parseError(n)
			}
			b = b[n:]
			continue
		}
		if typ != protowire.BytesType {
			return nil, fmt.Errorf("%w: docs entry has type %d", ErrInvalidWireType, typ)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, parseError(n)
		}
		b = b[n:]
		m, err := parseMessage(v, depth)
		if err != nil {
			return nil, fmt.Errorf("docs[%d]: %w", len(out), err)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseTensor(b []byte) (*Tensor, error) {
	t := &Tensor{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldTensorBuffer && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, parseError(n)
			}
			t.Buffer = append([]byte(nil), v...)
			b = b[n:]
		case num == fieldTensorDType && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, parseError(n)
			}
			t.DType = v
			b = b[n:]
		case num == fieldTensorShape && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, parseError(n)
			}
			b = b[n:]
			for len(packed) > 0 {
				d, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return nil, parseError(m)
				}
				if d > math.MaxUint32 {
					return nil, ErrInvalidShape
				}
				t.Shape = append(t.Shape, uint32(d))
				packed = packed[m:]
			}
		case num == fieldTensorShape && typ == protowire.VarintType:
			d, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, parseError(n)
			}
			if d > math.MaxUint32 {
				return nil, ErrInvalidShape
			}
			t.Shape = append(t.Shape, uint32(d))
			b = b[n:]
		case num == fieldTensorBuffer || num == fieldTensorDType || num == fieldTensorShape:
			return nil, fmt.Errorf("%w: tensor field %d has type %d", ErrInvalidWireType, num, typ)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, parseError(n)
			}
			b = b[n:]
		}
	}
	return t, nil
}

func parseError(n int) error {
	return fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
}
