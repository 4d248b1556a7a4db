package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/docwire/internal/testutil/testlog"
)

func TestReadWriteFrameRoundTrip(t *testing.T) {
	testlog.Start(t)
	payload := []byte{0x0a, 0x03, 'a', 'b', 'c'}
	in := Frame{
		Header:  Header{MessageID: 42, MessageType: MessageDocument},
		Schema:  "Article",
		Payload: payload,
	}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, in, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if out.Header.Magic != Magic || out.Header.MessageType != MessageDocument || out.Header.MessageID != 42 {
		t.Fatalf("header mismatch: got=%+v", out.Header)
	}
	if out.Header.Flags&FlagHasSchema == 0 {
		t.Fatalf("expected schema flag to be set")
	}
	if out.Schema != "Article" {
		t.Fatalf("schema mismatch: %q", out.Schema)
	}
	if !bytes.Equal(out.Payload, payload) {
		t.Fatalf("payload mismatch")
	}
	if _, err := ReadFrame(&buf, DefaultLimits()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

func TestWriteFrameClearsSchemaFlagWithoutName(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	in := Frame{Header: Header{MessageType: MessageArray, Flags: FlagHasSchema}}
	if err := WriteFrame(&buf, in, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if out.Header.Flags&FlagHasSchema != 0 || out.Schema != "" || len(out.Payload) != 0 {
		t.Fatalf("unexpected frame: %+v", out)
	}
}

func TestReadFrameMalformedHeaderIsDeterministic(t *testing.T) {
	testlog.Start(t)
	_, err := ReadFrame(bytes.NewReader([]byte{1, 2, 3}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadFrameRejectsForeignMagicAndVersion(t *testing.T) {
	testlog.Start(t)
	h := Header{Magic: 0xEDCE1001, Version: Version, HeaderLen: FixedHeaderLen}
	if _, err := ReadFrame(bytes.NewReader(EncodeHeader(h)), DefaultLimits()); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
	h = Header{Magic: Magic, Version: 9, HeaderLen: FixedHeaderLen}
	if _, err := ReadFrame(bytes.NewReader(EncodeHeader(h)), DefaultLimits()); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestReadFrameHeaderLenTooSmall(t *testing.T) {
	testlog.Start(t)
	h := Header{Magic: Magic, Version: Version, HeaderLen: 8, MessageID: 1, MessageType: MessageDocument}
	_, err := ReadFrame(bytes.NewReader(EncodeHeader(h)), DefaultLimits())
	if !errors.Is(err, ErrHeaderLenTooSmall) {
		t.Fatalf("expected ErrHeaderLenTooSmall, got %v", err)
	}
}

func TestReadFrameSchemaFlagWithoutSchemaBytes(t *testing.T) {
	testlog.Start(t)
	h := Header{Magic: Magic, Version: Version, HeaderLen: FixedHeaderLen, MessageType: MessageDocument, Flags: FlagHasSchema}
	_, err := ReadFrame(bytes.NewReader(EncodeHeader(h)), DefaultLimits())
	if !errors.Is(err, ErrHeaderLenMismatch) {
		t.Fatalf("expected ErrHeaderLenMismatch, got %v", err)
	}
}

func TestLimitsAreEnforced(t *testing.T) {
	testlog.Start(t)
	limits := Limits{MaxSchemaBytes: 4, MaxPayloadBytes: 4}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Schema: "Article"}, limits); !errors.Is(err, ErrSchemaTooLarge) {
		t.Fatalf("expected ErrSchemaTooLarge, got %v", err)
	}
	if err := WriteFrame(&buf, Frame{Payload: make([]byte, 5)}, limits); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}

	h := Header{Magic: Magic, Version: Version, HeaderLen: FixedHeaderLen, PayloadLen: 5}
	if _, err := ReadFrame(bytes.NewReader(EncodeHeader(h)), limits); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge on read, got %v", err)
	}
}
