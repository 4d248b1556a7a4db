package docproto

import (
	"time"

	"github.com/danmuck/docwire/internal/document"
	"github.com/danmuck/docwire/internal/observability"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/danmuck/docwire/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

// Marshal encodes d straight to wire bytes.
func Marshal(d *document.Document, opts ...Option) ([]byte, error) {
	start := time.Now()
	msg, err := ToWire(d, opts...)
	var out []byte
	if err == nil {
		out, err = wire.Marshal(msg)
	}
	finish(observability.OpMarshal, schemaName(d), len(out), start, err)
	return out, err
}

// Unmarshal decodes wire bytes into a document of schema s.
func Unmarshal(b []byte, s *schema.Schema, opts ...Option) (*document.Document, error) {
	start := time.Now()
	msg, err := wire.Unmarshal(b)
	var d *document.Document
	if err == nil {
		d, err = FromWire(msg, s, opts...)
	}
	finish(observability.OpUnmarshal, orAny(s).Name, len(b), start, err)
	return d, err
}

// MarshalArray encodes a collection as a DocumentArrayProto.
func MarshalArray(a *document.Array, opts ...Option) ([]byte, error) {
	start := time.Now()
	msgs, err := ArrayToWire(a, opts...)
	var out []byte
	if err == nil {
		out, err = wire.MarshalArray(msgs)
	}
	finish(observability.OpMarshalArray, arraySchemaName(a), len(out), start, err)
	return out, err
}

// UnmarshalArray decodes a DocumentArrayProto into s-typed members.
func UnmarshalArray(b []byte, s *schema.Schema, opts ...Option) (*document.Array, error) {
	start := time.Now()
	msgs, err := wire.UnmarshalArray(b)
	var a *document.Array
	if err == nil {
		a, err = DecodeMany(msgs, s, opts...)
	}
	finish(observability.OpUnmarshalArray, orAny(s).Name, len(b), start, err)
	return a, err
}

func finish(op, schemaName string, size int, start time.Time, err error) {
	elapsed := time.Since(start)
	observability.RecordConversion(op, size, elapsed, err == nil)
	if err != nil {
		log.Debug().Err(err).Str("op", op).Str("schema", schemaName).Msg("conversion failed")
		return
	}
	log.Trace().
		Str("op", op).
		Str("schema", schemaName).
		Int("bytes", size).
		Dur("duration", elapsed).
		Msg("conversion")
}

func schemaName(d *document.Document) string {
	if d == nil {
		return ""
	}
	return d.Schema().Name
}

func arraySchemaName(a *document.Array) string {
	if a == nil {
		return ""
	}
	return a.Schema().Name
}
