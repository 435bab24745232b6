package messages

import "github.com/automoto/rigidsync/shared/netconfig"

// BufferedCall is a reliable discrete event for one object. The server keeps
// the latest call per (ObjectID, Event) and replays it to late joiners.
type BufferedCall struct {
	ObjectID ObjectID
	Event    netconfig.EventID
	Value    bool
}

// RemoveBufferedCalls drops the buffered call for (ObjectID, Event).
type RemoveBufferedCalls struct {
	ObjectID ObjectID
	Event    netconfig.EventID
}

// RoomState is broadcast whenever the number of joined peers changes.
type RoomState struct {
	PlayerCount int
}

// TimePing starts a clock synchronisation round trip.
type TimePing struct {
	Seq        uint32
	ClientTime float64
}

// TimePong answers a TimePing with the server clock at reply time.
type TimePong struct {
	Seq        uint32
	ClientTime float64
	ServerTime float64
}
