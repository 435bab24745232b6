package messages

import (
	"errors"
	"math"
	"testing"

	"github.com/automoto/rigidsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl32"
)

var sample = Snapshot{
	Position:        mgl32.Vec3{1.5, -2, 3.25},
	Rotation:        mgl32.Quat{W: 0.5, V: mgl32.Vec3{0.5, -0.5, 0.5}},
	Velocity:        mgl32.Vec3{10, 0, -1},
	AngularVelocity: mgl32.Vec3{0, 3.5, 0},
}

func TestSnapshotRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cfg  netconfig.SyncConfig
		want Snapshot
	}{
		{
			name: "pose only",
			cfg:  netconfig.SyncConfig{},
			want: Snapshot{Position: sample.Position, Rotation: sample.Rotation},
		},
		{
			name: "velocity",
			cfg:  netconfig.SyncConfig{SynchronizeVelocity: true},
			want: Snapshot{Position: sample.Position, Rotation: sample.Rotation, Velocity: sample.Velocity},
		},
		{
			name: "angular velocity",
			cfg:  netconfig.SyncConfig{SynchronizeAngularVelocity: true},
			want: Snapshot{Position: sample.Position, Rotation: sample.Rotation, AngularVelocity: sample.AngularVelocity},
		},
		{
			name: "everything",
			cfg:  netconfig.SyncConfig{SynchronizeVelocity: true, SynchronizeAngularVelocity: true},
			want: sample,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := EncodeSnapshot(tt.cfg, sample)
			if err != nil {
				t.Fatalf("EncodeSnapshot: %v", err)
			}
			got, err := DecodeSnapshot(tt.cfg, payload)
			if err != nil {
				t.Fatalf("DecodeSnapshot: %v", err)
			}
			if got != tt.want {
				t.Errorf("round trip = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSnapshotFieldOrder(t *testing.T) {
	cfg := netconfig.SyncConfig{SynchronizeVelocity: true, SynchronizeAngularVelocity: true}
	payload, err := EncodeSnapshot(cfg, sample)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	s, err := NewStreamReader(payload)
	if err != nil {
		t.Fatalf("NewStreamReader: %v", err)
	}
	if s.Len() != cfg.Layout().FieldCount() {
		t.Fatalf("field count = %d, want %d", s.Len(), cfg.Layout().FieldCount())
	}

	pos, _ := s.ReceiveVec3()
	rot, _ := s.ReceiveQuat()
	vel, _ := s.ReceiveVec3()
	ang, err := s.ReceiveVec3()
	if err != nil {
		t.Fatalf("reading fields: %v", err)
	}
	if pos != sample.Position || rot != sample.Rotation || vel != sample.Velocity || ang != sample.AngularVelocity {
		t.Errorf("fields out of order: %v %v %v %v", pos, rot, vel, ang)
	}
}

func TestDecodeLayoutMismatch(t *testing.T) {
	wide := netconfig.SyncConfig{SynchronizeVelocity: true, SynchronizeAngularVelocity: true}
	narrow := netconfig.SyncConfig{SynchronizeVelocity: true}

	payload, err := EncodeSnapshot(wide, sample)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	if _, err := DecodeSnapshot(narrow, payload); !errors.Is(err, ErrTrailingFields) {
		t.Errorf("narrow decode error = %v, want ErrTrailingFields", err)
	}

	payload, err = EncodeSnapshot(narrow, sample)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	if _, err := DecodeSnapshot(wide, payload); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("wide decode error = %v, want ErrStreamExhausted", err)
	}
}

func TestDecodeRejectsNonFinite(t *testing.T) {
	cfg := netconfig.SyncConfig{SynchronizeVelocity: true, SynchronizeAngularVelocity: true}
	nan := float32(math.NaN())
	inf := float32(math.Inf(-1))

	tests := []struct {
		name string
		snap Snapshot
	}{
		{name: "position", snap: Snapshot{Position: mgl32.Vec3{nan, 0, 0}, Rotation: mgl32.QuatIdent()}},
		{name: "rotation", snap: Snapshot{Rotation: mgl32.Quat{W: inf}}},
		{name: "velocity", snap: Snapshot{Rotation: mgl32.QuatIdent(), Velocity: mgl32.Vec3{0, inf, 0}}},
		{name: "angular velocity", snap: Snapshot{Rotation: mgl32.QuatIdent(), AngularVelocity: mgl32.Vec3{0, 0, nan}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := EncodeSnapshot(cfg, tt.snap)
			if err != nil {
				t.Fatalf("EncodeSnapshot: %v", err)
			}
			if _, err := DecodeSnapshot(cfg, payload); !errors.Is(err, ErrNonFinite) {
				t.Errorf("decode error = %v, want ErrNonFinite", err)
			}
		})
	}
}

func TestStreamFieldShape(t *testing.T) {
	w := NewStreamWriter()
	w.SendVec3(mgl32.Vec3{1, 2, 3})
	payload, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	r, err := NewStreamReader(payload)
	if err != nil {
		t.Fatalf("NewStreamReader: %v", err)
	}
	if _, err := r.ReceiveQuat(); !errors.Is(err, ErrFieldShape) {
		t.Errorf("ReceiveQuat on vec3 field error = %v, want ErrFieldShape", err)
	}
}

func TestNewStreamReaderGarbage(t *testing.T) {
	if _, err := NewStreamReader([]byte{0xc1}); err == nil {
		t.Error("expected error decoding invalid msgpack")
	}
}
