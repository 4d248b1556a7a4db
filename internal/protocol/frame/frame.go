// Package frame delimits encoded documents on a byte stream. Each frame is a
// 32-byte big-endian header, an optional schema name block sized by
// header_len, and a payload of wire bytes.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	Magic   uint32 = 0x444F4357 // "DOCW"
	Version uint16 = 1

	FixedHeaderLen uint16 = 32
	FlagHasSchema  uint32 = 0x01
	FlagIsError    uint32 = 0x04
)

// Message types carried in Header.MessageType.
const (
	MessageDocument uint32 = 1
	MessageArray    uint32 = 2
)

var (
	ErrShortHeader        = errors.New("frame: short fixed header")
	ErrInvalidMagic       = errors.New("frame: invalid magic")
	ErrUnsupportedVersion = errors.New("frame: unsupported version")
	ErrHeaderLenTooSmall  = errors.New("frame: header_len smaller than fixed header")
	ErrHeaderLenMismatch  = errors.New("frame: schema flag set but header_len has no schema bytes")
	ErrPayloadTooLarge    = errors.New("frame: payload too large")
	ErrSchemaTooLarge     = errors.New("frame: schema name too large")
)

// Header is the fixed wire header.
type Header struct {
	Magic       uint32
	Version     uint16
	HeaderLen   uint16
	MessageID   uint64
	MessageType uint32
	Flags       uint32
	PayloadLen  uint64
}

// Frame is one complete stream record.
type Frame struct {
	Header  Header
	Schema  string
	Payload []byte
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxSchemaBytes  uint64
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxSchemaBytes:  1024,
		MaxPayloadBytes: 256 * 1024 * 1024,
	}
}

// ReadFrame reads one frame. A stream that ends cleanly before the next
// header returns io.EOF.
func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	var fixed [FixedHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrShortHeader
		}
		return Frame{}, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Frame{}, err
	}
	if h.Magic != Magic {
		return Frame{}, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return Frame{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.HeaderLen < FixedHeaderLen {
		return Frame{}, ErrHeaderLenTooSmall
	}

	schemaLen := uint64(h.HeaderLen - FixedHeaderLen)
	if h.Flags&FlagHasSchema != 0 && schemaLen == 0 {
		return Frame{}, ErrHeaderLenMismatch
	}
	if schemaLen > limits.MaxSchemaBytes {
		return Frame{}, ErrSchemaTooLarge
	}
	if h.PayloadLen > limits.MaxPayloadBytes {
		return Frame{}, ErrPayloadTooLarge
	}

	name := make([]byte, schemaLen)
	if schemaLen > 0 {
		if _, err := io.ReadFull(r, name); err != nil {
			return Frame{}, fmt.Errorf("frame: read schema name: %w", err)
		}
	}

	payload := make([]byte, h.PayloadLen)
	if h.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, fmt.Errorf("frame: read payload: %w", err)
		}
	}

	return Frame{Header: h, Schema: string(name), Payload: payload}, nil
}

// WriteFrame fills in magic, version, lengths and the schema flag before
// writing f.
func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	schemaLen := uint64(len(f.Schema))
	payloadLen := uint64(len(f.Payload))
	if schemaLen > limits.MaxSchemaBytes || schemaLen > uint64(^uint16(0)-FixedHeaderLen) {
		return ErrSchemaTooLarge
	}
	if payloadLen > limits.MaxPayloadBytes {
		return ErrPayloadTooLarge
	}

	h := f.Header
	h.Magic = Magic
	h.Version = Version
	h.HeaderLen = FixedHeaderLen + uint16(schemaLen)
	h.PayloadLen = payloadLen
	if schemaLen > 0 {
		h.Flags |= FlagHasSchema
	} else {
		h.Flags &^= FlagHasSchema
	}

	hb := EncodeHeader(h)
	if _, err := w.Write(hb); err != nil {
		return err
	}
	if schemaLen > 0 {
		if _, err := io.WriteString(w, f.Schema); err != nil {
			return err
		}
	}
	if payloadLen > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return err
		}
	}
	return nil
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, FixedHeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], h.HeaderLen)
	binary.BigEndian.PutUint64(buf[8:16], h.MessageID)
	binary.BigEndian.PutUint32(buf[16:20], h.MessageType)
	binary.BigEndian.PutUint32(buf[20:24], h.Flags)
	binary.BigEndian.PutUint64(buf[24:32], h.PayloadLen)
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != int(FixedHeaderLen) {
		return Header{}, fmt.Errorf("frame: invalid fixed header length: %d", len(b))
	}
	return Header{
		Magic:       binary.BigEndian.Uint32(b[0:4]),
		Version:     binary.BigEndian.Uint16(b[4:6]),
		HeaderLen:   binary.BigEndian.Uint16(b[6:8]),
		MessageID:   binary.BigEndian.Uint64(b[8:16]),
		MessageType: binary.BigEndian.Uint32(b[16:20]),
		Flags:       binary.BigEndian.Uint32(b[20:24]),
		PayloadLen:  binary.BigEndian.Uint64(b[24:32]),
	}, nil
}
