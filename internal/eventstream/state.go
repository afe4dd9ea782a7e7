package eventstream

import "fmt"

// ConnectionState describes where the stream is in its connection lifecycle.
type ConnectionState int

const (
	// Disconnected means no socket is open and no reconnect is scheduled.
	Disconnected ConnectionState = iota
	// Connecting means a websocket dial is in flight.
	Connecting
	// Connected means the socket is open and frames are being read.
	Connected
	// ReconnectPending means the socket dropped and a reconnect timer is armed.
	ReconnectPending
)

// String returns the state name used in logs and connection events.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ReconnectPending:
		return "reconnect_pending"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}
