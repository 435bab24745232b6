package messages

// JoinRequest is sent by a client after connecting to request joining the room.
type JoinRequest struct {
	Version    string
	PlayerName string
}

// JoinAccepted is sent by the server when a client's join request is accepted.
type JoinAccepted struct {
	PeerID            string
	RoomName          string
	SerializationRate int
	TickRate          int
	ServerTime        float64
	PlayerCount       int
}

// JoinRejected is sent by the server when a client's join request is rejected.
type JoinRejected struct {
	Reason string
}
