package docproto

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrNilDocument   = errors.New("docproto: nil document")
	ErrDepthExceeded = errors.New("docproto: message nesting exceeds max depth")
	ErrUnknownSchema = errors.New("docproto: unknown schema")
)

// UnsupportedFieldTypeError is returned by the encoder for a field value that
// matches no wire variant.
type UnsupportedFieldTypeError struct {
	Field string
	Type  string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("field %q with value of type %s is not supported", e.Field, e.Type)
}

// UnsupportedContentTypeError is returned by the decoder for a node whose
// discriminant it does not know.
type UnsupportedContentTypeError struct {
	Field   string
	Content string
	Number  protowire.Number
}

func (e *UnsupportedContentTypeError) Error() string {
	if e.Number != 0 {
		return fmt.Sprintf("field %q: content %s (#%d) is not supported for deserialization", e.Field, e.Content, e.Number)
	}
	return fmt.Sprintf("field %q: content %s is not supported for deserialization", e.Field, e.Content)
}

// CyclicReferenceError is returned when encoding nests deeper than the
// configured limit. Field is where the limit was hit; Path runs from the
// root document down to it.
type CyclicReferenceError struct {
	Field string
	Limit int
	Path  []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf(
		"field %q contains cyclic reference in memory (max depth %d exceeded); could the document be referring to itself?",
		e.Field,
		e.Limit,
	)
}

// FieldContextError prefixes an underlying failure with the chain of fields
// it passed through, outermost first. Chunk members contribute "[i]".
type FieldContextError struct {
	Path []string
	Err  error
}

func (e *FieldContextError) Error() string {
	b := &strings.Builder{}
	for _, name := range mergeIndexes(e.Path) {
		fmt.Fprintf(b, "field %q is problematic: ", name)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *FieldContextError) Unwrap() error { return e.Err }

// FieldPath renders the path as "a.b[2].c".
func (e *FieldContextError) FieldPath() string {
	return strings.Join(mergeIndexes(e.Path), ".")
}

// withField adds one level of field context to err. Context errors are
// rebuilt with the longer path instead of being nested or mutated.
func withField(name string, err error) error {
	switch e := err.(type) {
	case *CyclicReferenceError:
		return &CyclicReferenceError{Field: e.Field, Limit: e.Limit, Path: prepend(name, e.Path)}
	case *FieldContextError:
		return &FieldContextError{Path: prepend(name, e.Path), Err: e.Err}
	default:
		return &FieldContextError{Path: []string{name}, Err: err}
	}
}

func indexElem(i int) string {
	return fmt.Sprintf("[%d]", i)
}

func prepend(name string, path []string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, name)
	return append(out, path...)
}

func mergeIndexes(path []string) []string {
	out := make([]string, 0, len(path))
	for _, p := range path {
		if strings.HasPrefix(p, "[") && len(out) > 0 {
			out[len(out)-1] += p
			continue
		}
		out = append(out, p)
	}
	return out
}
