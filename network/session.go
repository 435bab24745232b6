package network

// Session is the room state the synchronizer reads each tick. Client
// implements it for a live connection.
type Session interface {
	// InRoom reports whether the local peer has joined a room.
	InRoom() bool
	PlayerCount() int
	// SerializationRate is the negotiated snapshots per second.
	SerializationRate() int
	// ServerTime is the peer-synchronized server clock in seconds.
	ServerTime() float64
}

// StaticSession is a Session with fixed values, for offline use and tests.
type StaticSession struct {
	Joined  bool
	Players int
	Rate    int
	Now     float64
}

func (s *StaticSession) InRoom() bool           { return s.Joined }
func (s *StaticSession) PlayerCount() int       { return s.Players }
func (s *StaticSession) SerializationRate() int { return s.Rate }
func (s *StaticSession) ServerTime() float64    { return s.Now }
