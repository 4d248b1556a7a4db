package docproto

import (
	"fmt"
	"io"

	"github.com/danmuck/docwire/internal/document"
	"github.com/danmuck/docwire/internal/protocol/frame"
	"github.com/danmuck/docwire/internal/protocol/schema"
)

// Writer frames encoded documents and collections onto w. Each frame names
// the schema its payload was encoded from.
type Writer struct {
	w      io.Writer
	limits frame.Limits
	opts   []Option
	nextID uint64
}

func NewWriter(w io.Writer, limits frame.Limits, opts ...Option) *Writer {
	return &Writer{w: w, limits: limits, opts: opts, nextID: 1}
}

func (w *Writer) WriteDocument(d *document.Document) error {
	payload, err := Marshal(d, w.opts...)
	if err != nil {
		return err
	}
	return w.write(frame.MessageDocument, d.Schema().Name, payload)
}

func (w *Writer) WriteArray(a *document.Array) error {
	payload, err := MarshalArray(a, w.opts...)
	if err != nil {
		return err
	}
	return w.write(frame.MessageArray, a.Schema().Name, payload)
}

func (w *Writer) write(msgType uint32, schemaName string, payload []byte) error {
	if schemaName == schema.AnyName {
		schemaName = ""
	}
	f := frame.Frame{
		Header:  frame.Header{MessageID: w.nextID, MessageType: msgType},
		Schema:  schemaName,
		Payload: payload,
	}
	if err := frame.WriteFrame(w.w, f, w.limits); err != nil {
		return fmt.Errorf("write frame %d: %w", w.nextID, err)
	}
	w.nextID++
	return nil
}

// Item is one decoded frame. Exactly one of Document and Array is set,
// matching Type.
type Item struct {
	ID       uint64
	Type     uint32
	Schema   *schema.Schema
	Document *document.Document
	Array    *document.Array
}

// Reader decodes frames written by Writer. Schema names are resolved against
// the registry; frames without one decode as schema.Any.
type Reader struct {
	r        io.Reader
	registry *schema.Registry
	limits   frame.Limits
	opts     []Option
	force    *schema.Schema
}

func NewReader(r io.Reader, registry *schema.Registry, limits frame.Limits, opts ...Option) *Reader {
	return &Reader{r: r, registry: registry, limits: limits, opts: opts}
}

// WithSchema makes every following frame decode as s regardless of the name
// it carries.
func (r *Reader) WithSchema(s *schema.Schema) *Reader {
	r.force = s
	return r
}

// Next returns the next item, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (Item, error) {
	f, err := frame.ReadFrame(r.r, r.limits)
	if err != nil {
		return Item{}, err
	}
	s, err := r.schemaFor(f.Schema)
	if err != nil {
		return Item{}, fmt.Errorf("frame %d: %w", f.Header.MessageID, err)
	}

	item := Item{ID: f.Header.MessageID, Type: f.Header.MessageType, Schema: s}
	switch f.Header.MessageType {
	case frame.MessageDocument:
		item.Document, err = Unmarshal(f.Payload, s, r.opts...)
	case frame.MessageArray:
		item.Array, err = UnmarshalArray(f.Payload, s, r.opts...)
	default:
		err = fmt.Errorf("unknown message type %d", f.Header.MessageType)
	}
	if err != nil {
		return Item{}, fmt.Errorf("frame %d: %w", f.Header.MessageID, err)
	}
	return item, nil
}

func (r *Reader) schemaFor(name string) (*schema.Schema, error) {
	if r.force != nil {
		return r.force, nil
	}
	if name == "" || name == schema.AnyName {
		return schema.Any, nil
	}
	if r.registry == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	s, ok := r.registry.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return s, nil
}
