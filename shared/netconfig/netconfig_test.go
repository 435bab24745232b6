package netconfig

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultSyncConfig(t *testing.T) {
	cfg := DefaultSyncConfig()
	if !cfg.SynchronizeVelocity {
		t.Error("SynchronizeVelocity should default to true")
	}
	if cfg.SynchronizeAngularVelocity {
		t.Error("SynchronizeAngularVelocity should default to false")
	}
	if cfg.TeleportEnabled {
		t.Error("TeleportEnabled should default to false")
	}
	if cfg.TeleportDistance != 3 {
		t.Errorf("TeleportDistance = %v, want 3", cfg.TeleportDistance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		wantErr  bool
	}{
		{"positive", 0.5, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", float32(math.NaN()), true},
		{"inf", float32(math.Inf(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSyncConfig()
			cfg.TeleportDistance = tt.distance
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTeleportDistance) {
				t.Errorf("error %v does not wrap ErrInvalidTeleportDistance", err)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		vel, ang bool
		want     Layout
		fields   int
	}{
		{false, false, 0, 2},
		{true, false, LayoutVelocity, 3},
		{false, true, LayoutAngularVelocity, 3},
		{true, true, LayoutVelocity | LayoutAngularVelocity, 4},
	}
	for _, tt := range tests {
		cfg := SyncConfig{SynchronizeVelocity: tt.vel, SynchronizeAngularVelocity: tt.ang}
		l := cfg.Layout()
		if l != tt.want {
			t.Errorf("Layout(%v,%v) = %v, want %v", tt.vel, tt.ang, l, tt.want)
		}
		if l.FieldCount() != tt.fields {
			t.Errorf("%v.FieldCount() = %d, want %d", l, l.FieldCount(), tt.fields)
		}
	}
}

func TestEventIDString(t *testing.T) {
	if got := EventEnableRigid.String(); got != "EnableRigid" {
		t.Errorf("EventEnableRigid.String() = %q", got)
	}
	if got := EventID(200).String(); got != "unknown" {
		t.Errorf("EventID(200).String() = %q", got)
	}
}
