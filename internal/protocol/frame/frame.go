package frame

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/protocol"
)

// Envelope is one complete link frame: length | tag | payload.
//
// length counts the tag byte and the payload, not itself, so the frame on the
// wire is 1+length bytes and never more than protocol.MaxFrameSize.
// The zero value is not a valid frame; use New.
type Envelope struct {
	length  uint8
	tag     protocol.Tag
	payload [protocol.MaxPayloadSize]byte
}

// New returns an envelope for tag with an empty payload.
func New(tag protocol.Tag) Envelope {
	return Envelope{length: protocol.BaseSize, tag: tag}
}

// Build returns an envelope for tag carrying payload.
func Build(tag protocol.Tag, payload []byte) (Envelope, error) {
	env := New(tag)
	if _, err := env.Append(payload); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func (e Envelope) Tag() protocol.Tag { return e.tag }

// Len is the declared length byte.
func (e Envelope) Len() int { return int(e.length) }

// Size is the number of bytes the frame occupies on the wire.
func (e Envelope) Size() int { return 1 + int(e.length) }

// Payload returns a copy of the payload bytes.
func (e Envelope) Payload() []byte {
	n := e.payloadLen()
	out := make([]byte, n)
	copy(out, e.payload[:n])
	return out
}

// Bytes returns the wire encoding of the frame.
func (e Envelope) Bytes() []byte {
	n := e.payloadLen()
	out := make([]byte, 2+n)
	out[0] = e.length
	out[1] = byte(e.tag)
	copy(out[2:], e.payload[:n])
	return out
}

func (e Envelope) String() string {
	return fmt.Sprintf("%s % x", e.tag, e.Bytes())
}

func (e Envelope) payloadLen() int {
	if e.length == 0 {
		return 0
	}
	return int(e.length) - protocol.BaseSize
}

// Append adds b to the payload and returns the number of bytes written.
// On overflow nothing is written and 0 is returned with protocol.ErrOverflow.
func (e *Envelope) Append(b []byte) (int, error) {
	if e.length == 0 {
		e.length = protocol.BaseSize
	}
	if 1+int(e.length)+len(b) > protocol.MaxFrameSize {
		return 0, fmt.Errorf("%w: tag=%s len=%d append=%d", protocol.ErrOverflow, e.tag, e.length, len(b))
	}
	n := copy(e.payload[e.payloadLen():], b)
	e.length += uint8(n)
	return n, nil
}

func (e *Envelope) AppendUint8(v uint8) error {
	_, err := e.Append([]byte{v})
	return err
}

func (e *Envelope) AppendBool(v bool) error {
	if v {
		return e.AppendUint8(1)
	}
	return e.AppendUint8(0)
}

func (e *Envelope) AppendUint16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := e.Append(buf[:])
	return err
}

func (e *Envelope) AppendInt16(v int16) error {
	return e.AppendUint16(uint16(v))
}

// AppendFloat32 writes v as IEEE-754 binary32, little-endian.
func (e *Envelope) AppendFloat32(v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := e.Append(buf[:])
	return err
}

// Parse validates b as exactly one frame.
func Parse(b []byte) (Envelope, error) {
	if len(b) < 2 {
		logging.Debugf("frame.Parse truncated len=%d", len(b))
		return Envelope{}, fmt.Errorf("%w: got %d bytes", protocol.ErrTruncated, len(b))
	}
	if 1+int(b[0]) != len(b) {
		logging.Debugf("frame.Parse length mismatch declared=%d got=%d", b[0], len(b))
		return Envelope{}, fmt.Errorf("%w: declared %d, frame is %d bytes", protocol.ErrLengthMismatch, b[0], len(b))
	}
	if len(b) > protocol.MaxFrameSize {
		return Envelope{}, fmt.Errorf("%w: frame is %d bytes", protocol.ErrLengthMismatch, len(b))
	}
	env := Envelope{length: b[0], tag: protocol.Tag(b[1])}
	copy(env.payload[:], b[2:])
	return env, nil
}

func (e Envelope) MarshalBinary() ([]byte, error) {
	if e.length == 0 {
		return nil, fmt.Errorf("%w: empty envelope", protocol.ErrTruncated)
	}
	return e.Bytes(), nil
}

func (e *Envelope) UnmarshalBinary(data []byte) error {
	env, err := Parse(data)
	if err != nil {
		return err
	}
	*e = env
	return nil
}
