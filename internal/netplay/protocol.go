// Package netplay connects two players through a websocket relay. The relay
// pairs peers by lobby code and forwards their messages; each client runs
// the full simulation and rolls back when a remote input arrives late.
package netplay

import (
	"errors"
	"time"

	"github.com/vovakirdan/brawl-core/internal/core"
)

// MsgType names an Envelope.
type MsgType string

const (
	MsgCreate   MsgType = "create"    // client -> relay: open a lobby
	MsgJoin     MsgType = "join"      // client -> relay: join Code
	MsgCreated  MsgType = "created"   // relay -> host: lobby Code is open
	MsgJoined   MsgType = "joined"    // relay -> both: the lobby is paired
	MsgHello    MsgType = "hello"     // peer -> peer: Seed and content Hash
	MsgInput    MsgType = "input"     // peer -> peer: Input for Frame
	MsgLeave    MsgType = "leave"     // client -> relay: leaving
	MsgPeerLeft MsgType = "peer_left" // relay -> client: the other side is gone
	MsgError    MsgType = "error"     // relay -> client: Error
)

// Envelope is every message on the wire.
type Envelope struct {
	Type  MsgType               `json:"type"`
	Code  string                `json:"code,omitempty"`
	Error string                `json:"error,omitempty"`
	Seed  uint64                `json:"seed,omitempty"`
	Hash  string                `json:"hash,omitempty"`
	Frame int                   `json:"frame,omitempty"`
	Input *core.ControllerInput `json:"input,omitempty"`
}

var (
	// ErrLobbyNotFound is reported when joining a code that is not open.
	ErrLobbyNotFound = errors.New("netplay: lobby not found")
	// ErrPeerLeft is reported when the other player disconnects.
	ErrPeerLeft = errors.New("netplay: peer left")
	// ErrPackageMismatch is reported when the peers run different content.
	ErrPackageMismatch = errors.New("netplay: content package mismatch")
	// ErrConnectionLost is reported when the relay connection drops.
	ErrConnectionLost = errors.New("netplay: connection lost")
	// ErrClosed is reported after Disconnect.
	ErrClosed = errors.New("netplay: closed")
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outgoing messages buffered per connection.
	sendBuffer = 256
)
