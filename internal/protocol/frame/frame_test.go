package frame

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/testutil/testlog"
)

func TestNewEmptyEnvelope(t *testing.T) {
	testlog.Start(t)
	env := New(protocol.TagPingRequest)
	if env.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", env.Len())
	}
	if !bytes.Equal(env.Bytes(), []byte{0x01, 0x16}) {
		t.Fatalf("Bytes() = % x", env.Bytes())
	}
	if len(env.Payload()) != 0 {
		t.Fatalf("expected empty payload, got % x", env.Payload())
	}
}

func TestAppendLittleEndianFields(t *testing.T) {
	testlog.Start(t)
	env := New(protocol.TagChangeLane)
	if err := env.AppendUint16(0x012C); err != nil {
		t.Fatalf("append u16: %v", err)
	}
	if err := env.AppendInt16(-2); err != nil {
		t.Fatalf("append i16: %v", err)
	}
	if err := env.AppendFloat32(1.5); err != nil {
		t.Fatalf("append f32: %v", err)
	}
	if err := env.AppendBool(true); err != nil {
		t.Fatalf("append bool: %v", err)
	}
	want := []byte{0x0a, 0x25, 0x2c, 0x01, 0xfe, 0xff, 0x00, 0x00, 0xc0, 0x3f, 0x01}
	if !bytes.Equal(env.Bytes(), want) {
		t.Fatalf("Bytes() = % x, want % x", env.Bytes(), want)
	}
	if env.Size() != len(want) {
		t.Fatalf("Size() = %d, want %d", env.Size(), len(want))
	}
}

func TestAppendOverflowIsNoOp(t *testing.T) {
	testlog.Start(t)
	env := New(protocol.TagCarError)
	n, err := env.Append(bytes.Repeat([]byte{0xaa}, protocol.MaxPayloadSize))
	if err != nil || n != protocol.MaxPayloadSize {
		t.Fatalf("fill payload: n=%d err=%v", n, err)
	}
	if env.Size() != protocol.MaxFrameSize {
		t.Fatalf("Size() = %d, want %d", env.Size(), protocol.MaxFrameSize)
	}
	before := env.Bytes()

	n, err = env.Append([]byte{0x01})
	if !errors.Is(err, protocol.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 bytes written on overflow, got %d", n)
	}
	if !bytes.Equal(env.Bytes(), before) {
		t.Fatalf("envelope mutated by failed append")
	}
	if err := env.AppendFloat32(1); !errors.Is(err, protocol.ErrOverflow) {
		t.Fatalf("expected ErrOverflow from typed append, got %v", err)
	}
}

func TestAppendPartialFitRejectedWhole(t *testing.T) {
	testlog.Start(t)
	env := New(protocol.TagCarError)
	if _, err := env.Append(make([]byte, 16)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := env.Append(make([]byte, 3)); !errors.Is(err, protocol.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if env.Len() != 17 {
		t.Fatalf("Len() = %d, want 17", env.Len())
	}
}

func TestParseRoundTrip(t *testing.T) {
	testlog.Start(t)
	in, err := Build(protocol.TagSetSpeed, []byte{0x2c, 0x01, 0xf4, 0x01, 0x00})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := Parse(in.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != in {
		t.Fatalf("round-trip mismatch: got %v want %v", out, in)
	}

	var viaBinary Envelope
	raw, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := viaBinary.UnmarshalBinary(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if viaBinary != in {
		t.Fatalf("binary round-trip mismatch")
	}
}

func TestParseInvalidFrames(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "nil data", data: nil, want: protocol.ErrTruncated},
		{name: "length only", data: []byte{0x01}, want: protocol.ErrTruncated},
		{name: "shorter than declared", data: []byte{0x05, 0x3f, 0x00, 0x01}, want: protocol.ErrLengthMismatch},
		{name: "trailing byte", data: []byte{0x01, 0x17, 0x00}, want: protocol.ErrLengthMismatch},
		{name: "zero length", data: []byte{0x00, 0x17}, want: protocol.ErrLengthMismatch},
		{name: "over wire cap", data: append([]byte{0x14, 0x2a}, make([]byte, 19)...), want: protocol.ErrLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMarshalZeroEnvelope(t *testing.T) {
	var env Envelope
	if _, err := env.MarshalBinary(); !errors.Is(err, protocol.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReaderFields(t *testing.T) {
	testlog.Start(t)
	payload := []byte{0x07, 0x00, 0x00, 0x20, 0xc1, 0x2c, 0x01, 0xff, 0xff}
	r := NewReader(payload)

	u8, err := r.Uint8()
	if err != nil || u8 != 7 {
		t.Fatalf("Uint8() = %d, %v", u8, err)
	}
	f, err := r.Float32()
	if err != nil || f != -10 {
		t.Fatalf("Float32() = %v, %v", f, err)
	}
	u16, err := r.Uint16()
	if err != nil || u16 != 300 {
		t.Fatalf("Uint16() = %d, %v", u16, err)
	}
	i16, err := r.Int16()
	if err != nil || i16 != -1 {
		t.Fatalf("Int16() = %d, %v", i16, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining() = %d", r.Remaining())
	}
	if _, err := r.Bool(); !errors.Is(err, protocol.ErrPayloadSizeMismatch) {
		t.Fatalf("expected ErrPayloadSizeMismatch, got %v", err)
	}
}

func TestFloatBitsPreserved(t *testing.T) {
	for _, v := range []float32{0, -0.0, 42.25, float32(math.Inf(-1)), math.SmallestNonzeroFloat32} {
		env := New(protocol.TagSetOffsetFromRoadCenter)
		if err := env.AppendFloat32(v); err != nil {
			t.Fatalf("append: %v", err)
		}
		got, err := NewReader(env.Payload()).Float32()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if math.Float32bits(got) != math.Float32bits(v) {
			t.Fatalf("bits mismatch: got %08x want %08x", math.Float32bits(got), math.Float32bits(v))
		}
	}
}
