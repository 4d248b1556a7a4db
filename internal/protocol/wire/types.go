package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from the DocumentProto contract.
const (
	fieldDocumentData protowire.Number = 1

	fieldEntryKey   protowire.Number = 1
	fieldEntryValue protowire.Number = 2

	fieldNodeBlob   protowire.Number = 1
	fieldNodeTensor protowire.Number = 2
	fieldNodeText   protowire.Number = 3
	fieldNodeNested protowire.Number = 4
	fieldNodeChunks protowire.Number = 5

	fieldArrayDocs protowire.Number = 1

	fieldTensorBuffer protowire.Number = 1
	fieldTensorShape  protowire.Number = 2
	fieldTensorDType  protowire.Number = 3
)

// Content is the Node discriminant.
type Content uint8

const (
	ContentNone Content = iota
	ContentTensor
	ContentText
	ContentBlob
	ContentNested
	ContentChunks
	// ContentUnknown marks a node whose only payload used a field number this
	// package does not know.
	ContentUnknown
)

func (c Content) String() string {
	switch c {
	case ContentNone:
		return "none"
	case ContentTensor:
		return "tensor"
	case ContentText:
		return "text"
	case ContentBlob:
		return "blob"
	case ContentNested:
		return "nested"
	case ContentChunks:
		return "chunks"
	case ContentUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("content(%d)", uint8(c))
	}
}

// Tensor is the embedded NdArrayProto payload.
type Tensor struct {
	DType  string
	Shape  []uint32
	Buffer []byte
}

// Node is one field's encoded value. Exactly one of the payload fields is
// meaningful, selected by Content.
type Node struct {
	Content Content
	Tensor  *Tensor
	Text    string
	Blob    []byte
	Nested  *Message
	Chunks  []*Message

	// Unknown is the field number behind ContentUnknown; Raw holds the
	// undecoded field bytes (tag included) so re-encoding preserves them.
	Unknown protowire.Number
	Raw     []byte
}

// Field is one named entry of a Message.
type Field struct {
	Name string
	Node Node
}

// Message is an encoded document: field name to Node, in insertion order.
type Message struct {
	Fields []Field
}

// NoneNode returns a node with no variant set.
func NoneNode() Node {
	return Node{Content: ContentNone}
}

// TensorNode wraps a tensor payload.
func TensorNode(t *Tensor) Node {
	return Node{Content: ContentTensor, Tensor: t}
}

// TextNode wraps a string.
func TextNode(s string) Node {
	return Node{Content: ContentText, Text: s}
}

// BlobNode wraps raw bytes. The slice is copied.
func BlobNode(b []byte) Node {
	buf := make([]byte, len(b))
	copy(buf, b)
	return Node{Content: ContentBlob, Blob: buf}
}

// NestedNode wraps a sub-message.
func NestedNode(m *Message) Node {
	return Node{Content: ContentNested, Nested: m}
}

// ChunksNode wraps an ordered sequence of sub-messages.
func ChunksNode(ms []*Message) Node {
	if ms == nil {
		ms = []*Message{}
	}
	return Node{Content: ContentChunks, Chunks: ms}
}

// Len returns the number of fields.
func (m *Message) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Fields)
}

// Get returns the node stored under name.
func (m *Message) Get(name string) (Node, bool) {
	if m == nil {
		return Node{}, false
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Node, true
		}
	}
	return Node{}, false
}

// Set stores node under name, replacing an existing entry in place.
func (m *Message) Set(name string, node Node) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			m.Fields[i].Node = node
			return
		}
	}
	m.Fields = append(m.Fields, Field{Name: name, Node: node})
}

// Names returns field names in message order.
func (m *Message) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		out = append(out, f.Name)
	}
	return out
}
