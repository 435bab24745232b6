package network

import (
	"errors"
	"testing"

	"github.com/automoto/rigidsync/physics"
	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl32"
)

func newTestView(id messages.ObjectID) (*RigidbodyView, *physics.RigidBody) {
	body := physics.NewRigidBody(mgl32.Vec3{}, mgl32.QuatIdent())
	return NewRigidbodyView(id, body, netconfig.DefaultSyncConfig(), roomOf(2, 10, 0), newBufferedChannel()), body
}

func TestViewsApplyCall(t *testing.T) {
	vs := NewViews()
	v, body := newTestView(4)
	if err := vs.Add(v); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := vs.ApplyCall(messages.BufferedCall{ObjectID: 4, Event: netconfig.EventEnableRigid, Value: true}); err != nil {
		t.Fatalf("ApplyCall: %v", err)
	}
	if !body.IsKinematic() {
		t.Error("EnableRigid not applied")
	}
}

func TestViewsParkCallsUntilAdd(t *testing.T) {
	vs := NewViews()
	for _, value := range []bool{true, false, true} {
		if err := vs.ApplyCall(messages.BufferedCall{ObjectID: 8, Event: netconfig.EventEnableRigid, Value: value}); err != nil {
			t.Fatalf("ApplyCall: %v", err)
		}
	}
	if vs.Parked() != 1 {
		t.Fatalf("parked = %d, want 1", vs.Parked())
	}

	v, body := newTestView(8)
	if err := vs.Add(v); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !body.IsKinematic() {
		t.Error("parked call not applied on Add")
	}
	if vs.Parked() != 0 {
		t.Errorf("parked = %d after Add, want 0", vs.Parked())
	}
}

func TestViewsRejectUnknownEvent(t *testing.T) {
	vs := NewViews()
	for _, ev := range []netconfig.EventID{netconfig.EventNone, netconfig.EventCount, 99} {
		err := vs.ApplyCall(messages.BufferedCall{ObjectID: 1, Event: ev})
		if !errors.Is(err, ErrUnknownEvent) {
			t.Errorf("event %v error = %v, want ErrUnknownEvent", ev, err)
		}
	}
}

func TestViewsApplySnapshot(t *testing.T) {
	vs := NewViews()
	v, _ := newTestView(2)
	if err := vs.Add(v); err != nil {
		t.Fatalf("Add: %v", err)
	}

	payload, err := messages.EncodeSnapshot(v.Config, messages.Snapshot{Position: mgl32.Vec3{3, 0, 0}, Rotation: mgl32.QuatIdent()})
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	if err := vs.ApplySnapshot(messages.BodySnapshot{ObjectID: 2, Payload: payload}); err != nil {
		t.Fatalf("ApplySnapshot: %v", err)
	}
	if _, _, ok := v.Target(); !ok {
		t.Error("snapshot not routed to view")
	}
	if err := vs.ApplySnapshot(messages.BodySnapshot{ObjectID: 77, Payload: payload}); err == nil {
		t.Error("expected error for unknown object")
	}
}

func TestViewsEachOrdered(t *testing.T) {
	vs := NewViews()
	for _, id := range []messages.ObjectID{5, 1, 3} {
		v, _ := newTestView(id)
		if err := vs.Add(v); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	vs.Remove(3)

	var got []messages.ObjectID
	vs.Each(func(v *RigidbodyView) { got = append(got, v.ID) })
	if len(got) != 2 || got[0] != 1 || got[1] != 5 {
		t.Errorf("Each order = %v, want [1 5]", got)
	}
}

func TestDispatcherRegisterOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewDispatcher().Register(netconfig.EventCount, func(messages.BufferedCall) error { return nil })
}
