package network

import (
	"fmt"
	"sort"

	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netconfig"
)

// Views indexes the synchronized bodies known to this peer. It is owned by
// the tick goroutine and is not safe for concurrent use.
type Views struct {
	views      map[messages.ObjectID]*RigidbodyView
	dispatcher *Dispatcher

	// Calls that arrived before their view, latest per object and event.
	parked map[callKey]messages.BufferedCall
}

type callKey struct {
	id    messages.ObjectID
	event netconfig.EventID
}

func NewViews() *Views {
	vs := &Views{
		views:      make(map[messages.ObjectID]*RigidbodyView),
		dispatcher: NewDispatcher(),
		parked:     make(map[callKey]messages.BufferedCall),
	}
	vs.dispatcher.Register(netconfig.EventEnableRigid, vs.onEnableRigid)
	return vs
}

// Add registers v and applies any calls parked for its object.
func (vs *Views) Add(v *RigidbodyView) error {
	vs.views[v.ID] = v
	for event := netconfig.EventNone; event < netconfig.EventCount; event++ {
		key := callKey{v.ID, event}
		call, ok := vs.parked[key]
		if !ok {
			continue
		}
		delete(vs.parked, key)
		if err := vs.dispatcher.Dispatch(call); err != nil {
			return err
		}
	}
	return nil
}

func (vs *Views) Remove(id messages.ObjectID) {
	delete(vs.views, id)
}

func (vs *Views) Get(id messages.ObjectID) (*RigidbodyView, bool) {
	v, ok := vs.views[id]
	return v, ok
}

func (vs *Views) Len() int {
	return len(vs.views)
}

// Each visits views in ascending id order.
func (vs *Views) Each(fn func(*RigidbodyView)) {
	ids := make([]messages.ObjectID, 0, len(vs.views))
	for id := range vs.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(vs.views[id])
	}
}

// ApplySnapshot hands a received snapshot to its view.
func (vs *Views) ApplySnapshot(msg messages.BodySnapshot) error {
	v, ok := vs.views[msg.ObjectID]
	if !ok {
		return fmt.Errorf("snapshot for unknown object %d", msg.ObjectID)
	}
	return v.Deserialize(msg.Payload, msg.SentServerTime)
}

// ApplyCall dispatches a received buffered call. Calls for objects without a
// view are parked until Add, a newer call replacing an older one.
func (vs *Views) ApplyCall(call messages.BufferedCall) error {
	if call.Event == netconfig.EventNone || call.Event >= netconfig.EventCount {
		return fmt.Errorf("%w: %v", ErrUnknownEvent, call.Event)
	}
	if _, ok := vs.views[call.ObjectID]; !ok {
		vs.parked[callKey{call.ObjectID, call.Event}] = call
		return nil
	}
	return vs.dispatcher.Dispatch(call)
}

// Parked returns the number of calls waiting for a view.
func (vs *Views) Parked() int {
	return len(vs.parked)
}

func (vs *Views) onEnableRigid(call messages.BufferedCall) error {
	v, ok := vs.views[call.ObjectID]
	if !ok {
		return fmt.Errorf("EnableRigid for unknown object %d", call.ObjectID)
	}
	v.EnableRigid(call.Value)
	return nil
}
