package messages

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hashicorp/go-msgpack/v2/codec"
)

var (
	ErrStreamExhausted = errors.New("stream has no more fields")
	ErrFieldShape      = errors.New("stream field has unexpected width")
	ErrTrailingFields  = errors.New("stream has unread fields")
	ErrNonFinite       = errors.New("snapshot field is not finite")
)

var msgpackHandle codec.MsgpackHandle

// Stream is an ordered sequence of float32 tuples. Writers append with the
// Send methods; readers consume in the same order with the Receive methods.
// Field order is the only framing: both ends must agree on it.
type Stream struct {
	fields [][]float32
	next   int
}

type wireStream struct {
	Fields [][]float32 `codec:"f"`
}

func NewStreamWriter() *Stream {
	return &Stream{}
}

// NewStreamReader decodes a payload produced by Stream.Bytes.
func NewStreamReader(payload []byte) (*Stream, error) {
	var w wireStream
	if err := codec.NewDecoderBytes(payload, &msgpackHandle).Decode(&w); err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}
	return &Stream{fields: w.Fields}, nil
}

func (s *Stream) SendVec3(v mgl32.Vec3) {
	s.fields = append(s.fields, []float32{v[0], v[1], v[2]})
}

// SendQuat writes a rotation as x, y, z, w.
func (s *Stream) SendQuat(q mgl32.Quat) {
	s.fields = append(s.fields, []float32{q.V[0], q.V[1], q.V[2], q.W})
}

func (s *Stream) ReceiveVec3() (mgl32.Vec3, error) {
	f, err := s.receive(3)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{f[0], f[1], f[2]}, nil
}

func (s *Stream) ReceiveQuat() (mgl32.Quat, error) {
	f, err := s.receive(4)
	if err != nil {
		return mgl32.Quat{}, err
	}
	return mgl32.Quat{W: f[3], V: mgl32.Vec3{f[0], f[1], f[2]}}, nil
}

func (s *Stream) receive(width int) ([]float32, error) {
	if s.next >= len(s.fields) {
		return nil, ErrStreamExhausted
	}
	f := s.fields[s.next]
	if len(f) != width {
		return nil, fmt.Errorf("%w: field %d has %d values, want %d", ErrFieldShape, s.next, len(f), width)
	}
	s.next++
	return f, nil
}

// Remaining returns the number of unread fields.
func (s *Stream) Remaining() int {
	return len(s.fields) - s.next
}

func (s *Stream) Len() int {
	return len(s.fields)
}

// Bytes serializes every written field.
func (s *Stream) Bytes() ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, &msgpackHandle).Encode(wireStream{Fields: s.fields}); err != nil {
		return nil, fmt.Errorf("encode stream: %w", err)
	}
	return out, nil
}
