package schema

import (
	"fmt"
	"strings"
)

// Kind is the declared semantic type of a field.
type Kind uint8

const (
	KindAny Kind = iota
	KindText
	KindBlob
	KindTensor
	KindDocument
	KindChunks
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindTensor:
		return "tensor"
	case KindDocument:
		return "document"
	case KindChunks:
		return "chunks"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// HoldsDocuments reports whether values of this kind carry nested schemas.
func (k Kind) HoldsDocuments() bool {
	return k == KindDocument || k == KindChunks || k == KindAny
}

// ParseKind maps a declaration keyword to a Kind.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "any", "":
		return KindAny, nil
	case "text", "string", "str":
		return KindText, nil
	case "blob", "bytes":
		return KindBlob, nil
	case "tensor", "ndarray":
		return KindTensor, nil
	case "document", "nested", "doc":
		return KindDocument, nil
	case "chunks", "array", "documents":
		return KindChunks, nil
	default:
		return 0, fmt.Errorf("schema: unknown field kind %q", raw)
	}
}
