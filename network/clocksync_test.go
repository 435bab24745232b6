package network

import (
	"math"
	"testing"

	"github.com/automoto/rigidsync/shared/messages"
)

func TestClockSyncOffset(t *testing.T) {
	var cs ClockSync
	cs.Seed(100, 1)
	if got := cs.ServerTime(2); got != 101 {
		t.Errorf("seeded ServerTime = %v, want 101", got)
	}

	// Server is 50s ahead, one way trip 0.1s.
	ping := cs.Ping(10)
	if !cs.Pong(messages.TimePong{Seq: ping.Seq, ClientTime: 10, ServerTime: 60.1}, 10.2) {
		t.Fatal("pong rejected")
	}
	if !cs.Synced() {
		t.Error("not synced after pong")
	}
	if math.Abs(cs.Offset()-50) > 1e-9 {
		t.Errorf("offset = %v, want 50", cs.Offset())
	}
	if math.Abs(cs.RoundTrip()-0.2) > 1e-9 {
		t.Errorf("rtt = %v, want 0.2", cs.RoundTrip())
	}

	// Seeding after sync is ignored.
	cs.Seed(0, 0)
	if math.Abs(cs.Offset()-50) > 1e-9 {
		t.Errorf("Seed overrode synced offset: %v", cs.Offset())
	}
}

func TestClockSyncPrefersLowestRoundTrip(t *testing.T) {
	var cs ClockSync

	slow := cs.Ping(0)
	fast := cs.Ping(1)
	cs.Pong(messages.TimePong{Seq: fast.Seq, ServerTime: 11.05}, 1.1) // rtt 0.1, offset 10
	cs.Pong(messages.TimePong{Seq: slow.Seq, ServerTime: 20}, 2)      // rtt 2, offset 19

	if math.Abs(cs.Offset()-10) > 1e-9 {
		t.Errorf("offset = %v, want 10 from the fastest sample", cs.Offset())
	}
}

func TestClockSyncRejectsStalePong(t *testing.T) {
	var cs ClockSync
	first := cs.Ping(0)
	for i := 0; i < clockSampleBufferSize; i++ {
		cs.Ping(float64(i))
	}
	if cs.Pong(messages.TimePong{Seq: first.Seq}, 1) {
		t.Error("accepted pong for overwritten slot")
	}
	if cs.Pong(messages.TimePong{Seq: 0}, 1) {
		t.Error("accepted pong with zero sequence")
	}

	p := cs.Ping(5)
	if !cs.Pong(messages.TimePong{Seq: p.Seq, ServerTime: 5}, 5) {
		t.Fatal("fresh pong rejected")
	}
	if cs.Pong(messages.TimePong{Seq: p.Seq, ServerTime: 5}, 5) {
		t.Error("accepted duplicate pong")
	}
}
