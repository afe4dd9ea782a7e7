// Package eventstream maintains the persistent WebSocket connection through
// which a SoundTouch speaker pushes state change notifications on TCP port
// 8080. A Stream owns the connection lifecycle: it dials with the gabbo
// subprotocol, decodes push frames into typed events, sends application
// heartbeats, and reconnects forever at a fixed delay when the socket drops.
package eventstream

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/logging"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/soundtouch"
)

const (
	// DefaultPort is the TCP port of the speaker's WebSocket notification
	// server.
	DefaultPort = 8080
	// Subprotocol is required by the speaker during the upgrade handshake.
	Subprotocol = "gabbo"
	// DefaultReconnectDelay is the fixed pause between reconnect attempts.
	// The speaker lives on the same LAN, so there is no backoff: a dead
	// device costs one cheap dial per delay and recovers promptly.
	DefaultReconnectDelay = 10 * time.Second
	// DefaultHeartbeatInterval is the pause between application-level ping
	// frames. The speaker drops connections it considers idle.
	DefaultHeartbeatInterval = 60 * time.Second

	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	eventBuffer      = 16
)

// notice is an ordered item for the notifier goroutine: either a state
// transition or an error, never both.
type notice struct {
	state    ConnectionState
	hasState bool
	err      error
}

// Stream is the push notification client for a single speaker. Create one
// with NewStream, register callbacks, then call Connect. Events arrive on
// the Events channel; connection state changes and transport errors arrive
// through the callbacks, in the order they occurred.
//
// Disconnect is terminal: it stops the reconnect loop, closes the socket and
// waits for all internal goroutines, after which no callback will fire.
type Stream struct {
	addr  string
	url   string
	codec soundtouch.Codec

	dialer *websocket.Dialer

	mu                sync.Mutex
	state             ConnectionState
	conn              *websocket.Conn
	timer             *time.Timer
	closed            bool
	gen               int
	reconnectDelay    time.Duration
	heartbeatInterval time.Duration
	onState           func(ConnectionState)
	onError           func(error)

	events   chan Event
	notices  chan notice
	done     chan struct{}
	wg       sync.WaitGroup
	notifyWG sync.WaitGroup
}

// NewStream creates a stream for the speaker at the given host and event
// port. A non-positive port selects the default.
func NewStream(host string, port int) *Stream {
	if port <= 0 {
		port = DefaultPort
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	return newStream(addr, "ws://"+addr)
}

// NewStreamWithURL creates a stream for a full URL. http and https schemes
// are rewritten to their websocket equivalents, which keeps test server URLs
// usable directly.
func NewStreamWithURL(rawURL string) *Stream {
	addr := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		switch u.Scheme {
		case "http":
			u.Scheme = "ws"
		case "https":
			u.Scheme = "wss"
		}
		rawURL = u.String()
		addr = u.Host
	}
	return newStream(addr, rawURL)
}

func newStream(addr, wsURL string) *Stream {
	s := &Stream{
		addr: addr,
		url:  wsURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			Subprotocols:     []string{Subprotocol},
		},
		state:             Disconnected,
		reconnectDelay:    DefaultReconnectDelay,
		heartbeatInterval: DefaultHeartbeatInterval,
		events:            make(chan Event, eventBuffer),
		notices:           make(chan notice, eventBuffer),
		done:              make(chan struct{}),
	}
	s.notifyWG.Add(1)
	go s.notifier()
	return s
}

// Addr returns the host:port this stream talks to.
func (s *Stream) Addr() string {
	return s.addr
}

// SetReconnectDelay changes the fixed pause between reconnect attempts.
func (s *Stream) SetReconnectDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnectDelay = d
}

// SetHeartbeatInterval changes the pause between heartbeat frames.
func (s *Stream) SetHeartbeatInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeatInterval = d
}

// SetOnStateChange registers a callback for connection state transitions.
// The callback runs on the stream's notifier goroutine and must not call
// Disconnect.
func (s *Stream) SetOnStateChange(fn func(ConnectionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = fn
}

// SetOnError registers a callback for transport errors. Errors are advisory:
// the state machine handles recovery on its own.
func (s *Stream) SetOnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// Events returns the channel on which decoded push notifications arrive.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// State returns the current connection state.
func (s *Stream) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect starts the connection lifecycle. It returns immediately; the dial
// happens in the background and its outcome is reported through the state
// callback. Calling Connect while the stream is already connecting,
// connected or waiting to reconnect is a no-op. Calling Connect after
// Disconnect returns an error.
func (s *Stream) Connect() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("event stream for %s is closed", s.addr)
	}
	if s.state != Disconnected {
		s.mu.Unlock()
		return nil
	}
	s.setStateLocked(Connecting)
	s.mu.Unlock()

	go s.dial()
	return nil
}

// Disconnect tears the stream down: it cancels any pending reconnect,
// closes the socket and the internal goroutines, and only then returns.
// After Disconnect no callback fires and no event is delivered. Disconnect
// is idempotent and the stream cannot be reused afterwards.
func (s *Stream) Disconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.setStateLocked(Disconnected)
	close(s.done)
	close(s.notices)
	s.mu.Unlock()

	s.wg.Wait()
	s.notifyWG.Wait()
}

// dial attempts one websocket connection. On success it starts the read and
// heartbeat goroutines; on failure it arms the reconnect timer.
func (s *Stream) dial() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	wsURL := s.url
	s.mu.Unlock()

	conn, _, err := s.dialer.Dial(wsURL, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		s.emitErrorLocked(soundtouch.NewTransportError(fmt.Sprintf("dialing %s failed", wsURL), err))
		s.scheduleReconnectLocked()
		return
	}

	s.conn = conn
	s.gen++
	s.setStateLocked(Connected)
	s.wg.Add(2)
	go s.readLoop(conn, s.gen)
	go s.heartbeat(conn, s.gen)
}

// scheduleReconnectLocked arms the single reconnect timer. Callers hold mu.
func (s *Stream) scheduleReconnectLocked() {
	s.setStateLocked(ReconnectPending)
	s.timer = time.AfterFunc(s.reconnectDelay, s.reconnectFire)
}

func (s *Stream) reconnectFire() {
	s.mu.Lock()
	s.timer = nil
	if s.closed || s.state != ReconnectPending {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(Connecting)
	s.mu.Unlock()

	s.dial()
}

// readLoop consumes frames until the connection dies. gen identifies the
// connection it was started for, so a stale loop cannot disturb a newer
// connection's state.
func (s *Stream) readLoop(conn *websocket.Conn, gen int) {
	defer s.wg.Done()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.handleClose(gen, err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		logging.LogRawBytes("Event frame received", data)
		s.handleFrame(data)
	}
}

// handleFrame decodes one push frame and delivers its events. Frames that do
// not decode are dropped without touching the connection state.
func (s *Stream) handleFrame(data []byte) {
	upd, err := s.codec.DecodeUpdates(data)
	if err != nil {
		logging.Debug("Dropping unparseable event frame",
			zap.String("device_addr", s.addr),
			zap.Error(err),
		)
		return
	}
	for _, ev := range eventsFromUpdates(upd) {
		logging.LogDeviceEvent(s.addr, ev.Type.String())
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

// handleClose runs when the read loop observes a dead connection. The error
// is surfaced first, then the close drives the state machine: Disconnected,
// then ReconnectPending with the timer armed.
func (s *Stream) handleClose(gen int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen || s.conn == nil {
		return
	}
	s.conn.Close()
	s.conn = nil

	if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.emitErrorLocked(soundtouch.NewTransportError("event socket read failed", err))
	}
	s.setStateLocked(Disconnected)
	s.scheduleReconnectLocked()
}

// heartbeat sends application-level ping text frames while the connection is
// alive. Write failures are not errors: the read loop notices the dead
// socket and drives the reconnect.
func (s *Stream) heartbeat(conn *websocket.Conn, gen int) {
	defer s.wg.Done()

	s.mu.Lock()
	interval := s.heartbeatInterval
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.closed || gen != s.gen || s.conn != conn {
				s.mu.Unlock()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.TextMessage, []byte("ping"))
			s.mu.Unlock()

			if err != nil {
				logging.Debug("Heartbeat write failed",
					zap.String("device_addr", s.addr),
					zap.Error(err),
				)
				return
			}
			logging.Debug("Heartbeat sent", zap.String("device_addr", s.addr))
		}
	}
}

// setStateLocked records a transition and queues the notification. Callers
// hold mu; returns without queueing when the state does not change.
func (s *Stream) setStateLocked(state ConnectionState) {
	if s.state == state {
		return
	}
	s.state = state
	logging.LogConnection(s.addr, state.String())
	select {
	case s.notices <- notice{state: state, hasState: true}:
	default:
		logging.Debug("Dropping state notice, consumer too slow",
			zap.String("device_addr", s.addr),
			zap.String("state", state.String()),
		)
	}
}

// emitErrorLocked queues an error notification. Callers hold mu.
func (s *Stream) emitErrorLocked(err error) {
	select {
	case s.notices <- notice{err: err}:
	default:
		logging.Debug("Dropping error notice, consumer too slow",
			zap.String("device_addr", s.addr),
			zap.Error(err),
		)
	}
}

// notifier dispatches state changes and errors one at a time, preserving the
// order transitions happened in.
func (s *Stream) notifier() {
	defer s.notifyWG.Done()
	for n := range s.notices {
		s.mu.Lock()
		onState, onError := s.onState, s.onError
		s.mu.Unlock()

		if n.hasState {
			if onState != nil {
				onState(n.state)
			}
			continue
		}
		if onError != nil {
			onError(n.err)
		}
	}
}
