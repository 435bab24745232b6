package core

import (
	"sort"

	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netconfig"
)

type bufferKey struct {
	id    messages.ObjectID
	event netconfig.EventID
}

type bufferedEntry struct {
	call messages.BufferedCall
	seq  uint64
}

// BufferStore holds the buffered calls replayed to late joiners. A newer
// call for the same object and event supersedes the older one, so the store
// never holds more than one call per pair. Not safe for concurrent use.
type BufferStore struct {
	seq   uint64
	calls map[bufferKey]bufferedEntry
}

func NewBufferStore() *BufferStore {
	return &BufferStore{calls: make(map[bufferKey]bufferedEntry)}
}

// Put stores call and reports whether it replaced an earlier one.
func (b *BufferStore) Put(call messages.BufferedCall) bool {
	key := bufferKey{call.ObjectID, call.Event}
	_, replaced := b.calls[key]
	b.seq++
	b.calls[key] = bufferedEntry{call: call, seq: b.seq}
	return replaced
}

// Remove drops the call for (id, event) and reports whether one existed.
func (b *BufferStore) Remove(id messages.ObjectID, event netconfig.EventID) bool {
	key := bufferKey{id, event}
	if _, ok := b.calls[key]; !ok {
		return false
	}
	delete(b.calls, key)
	return true
}

// RemoveObject drops every call for id and returns how many were removed.
func (b *BufferStore) RemoveObject(id messages.ObjectID) int {
	n := 0
	for key := range b.calls {
		if key.id == id {
			delete(b.calls, key)
			n++
		}
	}
	return n
}

// All returns the buffered calls in the order they were last stored.
func (b *BufferStore) All() []messages.BufferedCall {
	entries := make([]bufferedEntry, 0, len(b.calls))
	for _, e := range b.calls {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]messages.BufferedCall, len(entries))
	for i, e := range entries {
		out[i] = e.call
	}
	return out
}

func (b *BufferStore) Len() int {
	return len(b.calls)
}
