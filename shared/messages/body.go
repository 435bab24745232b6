package messages

import "github.com/automoto/rigidsync/shared/netconfig"

// ObjectID identifies a synchronized body across the room.
type ObjectID uint32

// BodySnapshot carries one encoded Snapshot. SentServerTime is the sender's
// server-relative clock in seconds when the payload was written.
type BodySnapshot struct {
	ObjectID       ObjectID
	SentServerTime float64
	Payload        []byte
}

// ClaimObject asks the server for write authority over a body. A new
// object is created on first claim. Layout must match the existing entry.
type ClaimObject struct {
	ObjectID ObjectID
	Layout   netconfig.Layout
}

// ClaimRejected is sent to a peer whose claim was refused.
type ClaimRejected struct {
	ObjectID ObjectID
	Reason   string
}

// ReleaseObject gives up write authority. The body stays in the room.
type ReleaseObject struct {
	ObjectID ObjectID
}
