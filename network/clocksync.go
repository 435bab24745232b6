package network

import (
	"math"
	"sync"

	"github.com/automoto/rigidsync/shared/messages"
)

const clockSampleBufferSize = 16

// pingRecord stores an outstanding ping and, once answered, the measured
// round trip and clock offset.
type pingRecord struct {
	seq      uint32
	sentAt   float64
	answered bool
	rtt      float64
	offset   float64
}

// ClockSync estimates the server clock from ping round trips. Samples live in
// a ring buffer indexed by sequence number. The sample with the lowest round
// trip wins since it carries the least queueing noise.
type ClockSync struct {
	mu      sync.RWMutex
	history [clockSampleBufferSize]pingRecord
	nextSeq uint32
	synced  bool
	best    pingRecord
}

// Ping records a new outgoing ping sent at local time now.
func (cs *ClockSync) Ping(now float64) messages.TimePing {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.nextSeq++
	seq := cs.nextSeq
	cs.history[seq%clockSampleBufferSize] = pingRecord{seq: seq, sentAt: now}
	return messages.TimePing{Seq: seq, ClientTime: now}
}

// Pong records an answer received at local time now. Returns false when the
// ping is unknown or its slot has been overwritten.
func (cs *ClockSync) Pong(pong messages.TimePong, now float64) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	rec := &cs.history[pong.Seq%clockSampleBufferSize]
	if rec.seq != pong.Seq || rec.answered || pong.Seq == 0 {
		return false
	}
	rec.answered = true
	rec.rtt = math.Max(0, now-rec.sentAt)
	rec.offset = pong.ServerTime + rec.rtt/2 - now

	cs.best = cs.bestSample()
	cs.synced = true
	return true
}

func (cs *ClockSync) bestSample() pingRecord {
	var best pingRecord
	found := false
	for _, rec := range cs.history {
		if !rec.answered {
			continue
		}
		if !found || rec.rtt < best.rtt {
			best = rec
			found = true
		}
	}
	return best
}

// Seed sets the offset from a single server timestamp, used until the first
// pong arrives.
func (cs *ClockSync) Seed(serverTime, now float64) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.synced {
		return
	}
	cs.best = pingRecord{offset: serverTime - now}
}

func (cs *ClockSync) Synced() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.synced
}

// Offset returns server time minus local time.
func (cs *ClockSync) Offset() float64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.best.offset
}

// RoundTrip returns the round trip of the sample in use.
func (cs *ClockSync) RoundTrip() float64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.best.rtt
}

// ServerTime converts local time now to server time.
func (cs *ClockSync) ServerTime(now float64) float64 {
	return now + cs.Offset()
}
