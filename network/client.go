package network

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	log "github.com/sirupsen/logrus"
)

var ErrNotConnected = errors.New("not connected")

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Client manages a WebSocket connection to the room server and implements
// Session and CallChannel for the views it feeds.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state             ClientState
	lastError         error
	peerID            string
	roomName          string
	serializationRate int
	tickRate          int
	playerCount       int
	conn              *websocket.Conn

	start time.Time
	clock ClockSync

	snapshots  map[messages.ObjectID]messages.BodySnapshot // latest wins per object
	calls      []messages.BufferedCall
	rejections []messages.ClaimRejected
	rosterCh   chan esync.WorldSnapshot // size-1 buffered; latest wins

	log *log.Entry
}

func NewClient() *Client {
	return &Client{
		state:             StateDisconnected,
		serializationRate: netconfig.DefaultSerializationRate,
		start:             time.Now(),
		snapshots:         make(map[messages.ObjectID]messages.BodySnapshot),
		rosterCh:          make(chan esync.WorldSnapshot, 1),
		log:               log.WithField("component", "client"),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		c.log.Info("connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		if err := c.SendMessage(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
		}); err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.log.WithFields(log.Fields{
			"peer":               msg.PeerID,
			"room":               msg.RoomName,
			"serialization_rate": msg.SerializationRate,
			"players":            msg.PlayerCount,
		}).Info("join accepted")
		c.clock.Seed(msg.ServerTime, c.localTime())
		c.mu.Lock()
		c.peerID = msg.PeerID
		c.roomName = msg.RoomName
		c.serializationRate = msg.SerializationRate
		c.tickRate = msg.TickRate
		c.playerCount = msg.PlayerCount
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.log.WithField("reason", msg.Reason).Warn("join rejected")
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, msg messages.RoomState) {
		c.mu.Lock()
		c.playerCount = msg.PlayerCount
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.TimePong) {
		if !c.clock.Pong(msg, c.localTime()) {
			c.log.WithField("seq", msg.Seq).Debug("stale time pong")
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.BodySnapshot) {
		c.mu.Lock()
		c.snapshots[msg.ObjectID] = msg
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.BufferedCall) {
		c.mu.Lock()
		c.calls = append(c.calls, msg)
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.ClaimRejected) {
		c.log.WithFields(log.Fields{"object": msg.ObjectID, "reason": msg.Reason}).Warn("claim rejected")
		c.mu.Lock()
		c.rejections = append(c.rejections, msg)
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.rosterCh:
		default:
		}
		c.rosterCh <- snapshot
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		c.log.WithError(err).Info("disconnected")
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		c.log.WithError(err).Warn("router error")
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) PeerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peerID
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// InRoom implements Session.
func (c *Client) InRoom() bool {
	return c.State() == StateJoinedGame
}

// PlayerCount implements Session.
func (c *Client) PlayerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerCount
}

// SerializationRate implements Session.
func (c *Client) SerializationRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serializationRate
}

// ServerTime implements Session.
func (c *Client) ServerTime() float64 {
	return c.clock.ServerTime(c.localTime())
}

// ClockSynced reports whether at least one ping round trip completed.
func (c *Client) ClockSynced() bool {
	return c.clock.Synced()
}

// SendPing starts a clock synchronisation round trip.
func (c *Client) SendPing() error {
	return c.SendMessage(c.clock.Ping(c.localTime()))
}

// Publish sends the view's current state stamped with the server clock.
func (c *Client) Publish(v *RigidbodyView) error {
	payload, err := v.Serialize()
	if err != nil {
		return err
	}
	return c.SendMessage(messages.BodySnapshot{
		ObjectID:       v.ID,
		SentServerTime: c.ServerTime(),
		Payload:        payload,
	})
}

// SendBuffered implements CallChannel.
func (c *Client) SendBuffered(id messages.ObjectID, event netconfig.EventID, value bool) error {
	return c.SendMessage(messages.BufferedCall{ObjectID: id, Event: event, Value: value})
}

// RemoveBufferedCalls implements CallChannel.
func (c *Client) RemoveBufferedCalls(id messages.ObjectID, event netconfig.EventID) error {
	return c.SendMessage(messages.RemoveBufferedCalls{ObjectID: id, Event: event})
}

// Claim requests write authority over an object with the given layout.
func (c *Client) Claim(id messages.ObjectID, layout netconfig.Layout) error {
	return c.SendMessage(messages.ClaimObject{ObjectID: id, Layout: layout})
}

func (c *Client) Release(id messages.ObjectID) error {
	return c.SendMessage(messages.ReleaseObject{ObjectID: id})
}

// DrainSnapshots returns the latest pending snapshot per object in id order.
func (c *Client) DrainSnapshots() []messages.BodySnapshot {
	c.mu.Lock()
	out := make([]messages.BodySnapshot, 0, len(c.snapshots))
	for id, snap := range c.snapshots {
		out = append(out, snap)
		delete(c.snapshots, id)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ObjectID < out[j].ObjectID })
	return out
}

// DrainCalls returns pending buffered calls in arrival order.
func (c *Client) DrainCalls() []messages.BufferedCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.calls
	c.calls = nil
	return out
}

// DrainRejections returns pending claim rejections.
func (c *Client) DrainRejections() []messages.ClaimRejected {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.rejections
	c.rejections = nil
	return out
}

// LatestRoster returns the most recent roster snapshot, or nil. Non-blocking.
func (c *Client) LatestRoster() *esync.WorldSnapshot {
	select {
	case snap := <-c.rosterCh:
		return &snap
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

func (c *Client) localTime() float64 {
	return time.Since(c.start).Seconds()
}
