package bridge

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/discovery"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/eventstream"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/logging"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/soundtouch"
)

// ControllerOptions carries the per-connection tuning shared by every
// controller. Zero values fall back to the component defaults.
type ControllerOptions struct {
	RequestTimeout    time.Duration
	ReconnectDelay    time.Duration
	HeartbeatInterval time.Duration
}

// DeviceState is a point-in-time snapshot of everything the bridge knows
// about one speaker. Snapshots are copies; treat them as read-only.
type DeviceState struct {
	Endpoint   discovery.Endpoint
	Info       soundtouch.Info
	NowPlaying soundtouch.NowPlaying
	Volume     soundtouch.Volume
	Bass       soundtouch.Bass
	Presets    []soundtouch.Preset
	Zone       soundtouch.Zone

	// Reachable mirrors the event stream: true only while the push
	// connection is up. Commands may still succeed while false.
	Reachable  bool
	Connection eventstream.ConnectionState
	UpdatedAt  time.Time
}

// Controller owns one speaker: a protocol client for commands and an
// event stream whose push updates keep a cached DeviceState current.
type Controller struct {
	endpoint discovery.Endpoint
	client   *soundtouch.Client
	stream   *eventstream.Stream

	mu    sync.RWMutex
	state DeviceState

	refreshCh chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// NewController creates a controller for the given endpoint.
func NewController(endpoint discovery.Endpoint, opts ControllerOptions) *Controller {
	client := soundtouch.NewClient(endpoint.Host, endpoint.Port)
	if opts.RequestTimeout > 0 {
		client.SetTimeout(opts.RequestTimeout)
	}

	stream := eventstream.NewStream(endpoint.Host, endpoint.EventPort)
	if opts.ReconnectDelay > 0 {
		stream.SetReconnectDelay(opts.ReconnectDelay)
	}
	if opts.HeartbeatInterval > 0 {
		stream.SetHeartbeatInterval(opts.HeartbeatInterval)
	}

	return NewControllerWithClient(endpoint, client, stream)
}

// NewControllerWithClient wires an explicit client and stream. Used by
// tests running against local servers.
func NewControllerWithClient(endpoint discovery.Endpoint, client *soundtouch.Client, stream *eventstream.Stream) *Controller {
	return &Controller{
		endpoint:  endpoint,
		client:    client,
		stream:    stream,
		state:     DeviceState{Endpoint: endpoint},
		refreshCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Endpoint returns the endpoint this controller serves.
func (c *Controller) Endpoint() discovery.Endpoint {
	return c.endpoint
}

// Key returns the controller's identity, the endpoint's host:port.
func (c *Controller) Key() string {
	return c.endpoint.Key()
}

// Start connects the event stream and begins applying push updates to
// the cached state. The initial state refresh runs once the stream
// reports Connected; Start itself does not block on the device.
func (c *Controller) Start() error {
	c.stream.SetOnStateChange(c.onStreamState)
	c.stream.SetOnError(c.onStreamError)

	if err := c.stream.Connect(); err != nil {
		return err
	}

	c.wg.Add(1)
	go c.eventLoop()
	return nil
}

// Stop tears down the stream and waits for the event loop to exit.
// Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.stream.Disconnect()
		close(c.done)
		c.wg.Wait()
	})
}

// State returns a snapshot of the cached device state.
func (c *Controller) State() DeviceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetVolume forwards to the speaker; the resulting volumeUpdated push
// refreshes the cache.
func (c *Controller) SetVolume(level float64) error {
	return c.client.SetVolume(level)
}

// SetMuted forwards the idempotent mute toggle to the speaker.
func (c *Controller) SetMuted(muted bool) error {
	return c.client.SetMuted(muted)
}

// SetPowered forwards the idempotent power toggle to the speaker.
func (c *Controller) SetPowered(on bool) error {
	return c.client.SetPowered(on)
}

// SetBass forwards to the speaker.
func (c *Controller) SetBass(level float64) error {
	return c.client.SetBass(level)
}

// Play starts playback.
func (c *Controller) Play() error {
	return c.client.Play()
}

// Pause pauses playback.
func (c *Controller) Pause() error {
	return c.client.Pause()
}

// NextTrack skips forward.
func (c *Controller) NextTrack() error {
	return c.client.NextTrack()
}

// PreviousTrack skips backward.
func (c *Controller) PreviousTrack() error {
	return c.client.PreviousTrack()
}

// SelectPreset recalls one of the six preset slots.
func (c *Controller) SelectPreset(slot int) error {
	return c.client.SelectPreset(slot)
}

// SelectContent starts playback of an arbitrary content item.
func (c *Controller) SelectContent(item soundtouch.ContentItem) error {
	return c.client.Select(item)
}

// PressKey sends a full press/release cycle for a remote key.
func (c *Controller) PressKey(key soundtouch.Key) error {
	return c.client.PressKey(key)
}

// onStreamState mirrors stream transitions into the cached state and
// schedules a refresh on every connect.
func (c *Controller) onStreamState(state eventstream.ConnectionState) {
	c.mu.Lock()
	c.state.Connection = state
	c.state.Reachable = state == eventstream.Connected
	c.state.UpdatedAt = time.Now()
	c.mu.Unlock()

	if state == eventstream.Connected {
		// Non-blocking: a pending refresh request already covers this
		select {
		case c.refreshCh <- struct{}{}:
		default:
		}
	}
}

func (c *Controller) onStreamError(err error) {
	logging.Warn("Device stream error",
		zap.String("device_addr", c.endpoint.Key()),
		zap.Error(err))
}

// eventLoop serializes refreshes and push updates onto the cached state.
func (c *Controller) eventLoop() {
	defer c.wg.Done()
	for {
		select {
		case ev := <-c.stream.Events():
			c.applyEvent(ev)
		case <-c.refreshCh:
			c.refresh()
		case <-c.done:
			return
		}
	}
}

// refresh pulls the full device snapshot over HTTP. Runs after every
// (re)connect so push deltas apply to a fresh baseline. Each query is
// independent; partial results still update the cache.
func (c *Controller) refresh() {
	addr := c.endpoint.Key()

	info, err := c.client.Info()
	if err != nil {
		logging.Debug("Refresh: info query failed", zap.String("device_addr", addr), zap.Error(err))
	}
	nowPlaying, npErr := c.client.NowPlaying()
	if npErr != nil {
		logging.Debug("Refresh: now_playing query failed", zap.String("device_addr", addr), zap.Error(npErr))
	}
	volume, volErr := c.client.Volume()
	if volErr != nil {
		logging.Debug("Refresh: volume query failed", zap.String("device_addr", addr), zap.Error(volErr))
	}
	bass, bassErr := c.client.Bass()
	if bassErr != nil {
		logging.Debug("Refresh: bass query failed", zap.String("device_addr", addr), zap.Error(bassErr))
	}
	presets, presetsErr := c.client.Presets()
	if presetsErr != nil {
		logging.Debug("Refresh: presets query failed", zap.String("device_addr", addr), zap.Error(presetsErr))
	}
	zone, zoneErr := c.client.Zone()
	if zoneErr != nil {
		logging.Debug("Refresh: zone query failed", zap.String("device_addr", addr), zap.Error(zoneErr))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.state.Info = info
	}
	if npErr == nil {
		c.state.NowPlaying = nowPlaying
	}
	if volErr == nil {
		c.state.Volume = volume
	}
	if bassErr == nil {
		c.state.Bass = bass
	}
	if presetsErr == nil {
		c.state.Presets = presets
	}
	if zoneErr == nil {
		c.state.Zone = zone
	}
	c.state.UpdatedAt = time.Now()
}

// applyEvent folds one push update into the cached state.
func (c *Controller) applyEvent(ev eventstream.Event) {
	logging.LogDeviceEvent(c.endpoint.Key(), ev.Type.String())

	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case eventstream.VolumeChanged:
		if ev.Volume != nil {
			c.state.Volume = *ev.Volume
		}
	case eventstream.NowPlayingChanged:
		if ev.NowPlaying != nil {
			c.state.NowPlaying = *ev.NowPlaying
		}
	case eventstream.PresetsChanged:
		c.state.Presets = ev.Presets
	case eventstream.ZoneChanged:
		if ev.Zone != nil {
			c.state.Zone = *ev.Zone
		}
	case eventstream.BassChanged:
		if ev.Bass != nil {
			c.state.Bass = *ev.Bass
		}
	case eventstream.ConnectionAdvisory:
		// The device's own link-state advisory; informational only
	}
	c.state.UpdatedAt = time.Now()
}
