package network

import (
	"errors"
	"fmt"

	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netconfig"
)

var ErrUnknownEvent = errors.New("no handler registered for event")

// CallChannel is the reliable buffered event channel. The server keeps at
// most one buffered call per object and event.
type CallChannel interface {
	RemoveBufferedCalls(id messages.ObjectID, event netconfig.EventID) error
	SendBuffered(id messages.ObjectID, event netconfig.EventID, value bool) error
}

// CallHandler applies one received buffered call.
type CallHandler func(call messages.BufferedCall) error

// Dispatcher routes buffered calls to handlers by event id.
type Dispatcher struct {
	handlers [netconfig.EventCount]CallHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register sets the handler for event, replacing any previous one.
func (d *Dispatcher) Register(event netconfig.EventID, h CallHandler) {
	if event >= netconfig.EventCount {
		panic(fmt.Sprintf("network: event %d out of range", event))
	}
	d.handlers[event] = h
}

func (d *Dispatcher) Dispatch(call messages.BufferedCall) error {
	if call.Event >= netconfig.EventCount || d.handlers[call.Event] == nil {
		return fmt.Errorf("%w: %v", ErrUnknownEvent, call.Event)
	}
	return d.handlers[call.Event](call)
}
