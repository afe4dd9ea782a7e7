// Package soundtouch implements the XML-over-HTTP control protocol spoken by
// Bose SoundTouch speakers on TCP port 8090. A Client issues one independent
// request per operation and decodes the response into typed payloads; push
// notifications are handled separately by the eventstream package, which
// shares this package's Codec.
package soundtouch

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	// DefaultPort is the TCP port of the speaker's HTTP API.
	DefaultPort = 8090
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 10 * time.Second
	// DefaultSender is the sender attribute reported on key presses.
	DefaultSender = "Gabbo"
)

// Client drives the HTTP API of a single speaker. Every operation is an
// independent request/response pair; the client keeps no session and no
// device state, so it is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Codec      Codec
	sender     string
}

// NewClient creates a client for the speaker at the given host and port.
// Host may be an IP address or a hostname; a non-positive port selects the
// default.
func NewClient(host string, port int) *Client {
	if port <= 0 {
		port = DefaultPort
	}
	return &Client{
		BaseURL: fmt.Sprintf("http://%s:%d", host, port),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		sender: DefaultSender,
	}
}

// NewClientWithURL creates a client for a full base URL such as
// http://192.168.1.40:8090. Useful when the URL comes from somewhere other
// than discovery.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		sender: DefaultSender,
	}
}

// SetTimeout changes the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetSender changes the sender attribute reported on key presses.
func (c *Client) SetSender(sender string) {
	c.sender = sender
}

// get performs a GET request and returns the response body. A non-2xx
// status yields a protocol error carrying the status and body.
func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.HTTPClient.Get(c.BaseURL + path)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("GET %s failed", path), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("reading GET %s response failed", path), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewProtocolError(resp.StatusCode, string(body))
	}
	return body, nil
}

// post performs a POST request with an XML body. The speaker answers small
// status documents which callers may ignore.
func (c *Client) post(path string, body []byte) ([]byte, error) {
	resp, err := c.HTTPClient.Post(c.BaseURL+path, "text/xml; charset=utf-8", bytes.NewReader(body))
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("POST %s failed", path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("reading POST %s response failed", path), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewProtocolError(resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// Info queries the device identity block.
func (c *Client) Info() (Info, error) {
	body, err := c.get("/info")
	if err != nil {
		return Info{}, err
	}
	return c.Codec.DecodeInfo(body)
}

// NowPlaying queries the current playback snapshot.
func (c *Client) NowPlaying() (NowPlaying, error) {
	body, err := c.get("/now_playing")
	if err != nil {
		return NowPlaying{}, err
	}
	return c.Codec.DecodeNowPlaying(body)
}

// Volume queries the current volume state.
func (c *Client) Volume() (Volume, error) {
	body, err := c.get("/volume")
	if err != nil {
		return Volume{}, err
	}
	return c.Codec.DecodeVolume(body)
}

// SetVolume sets the absolute volume. The level is rounded half away from
// zero and clamped to [0,100] before it is sent, so callers may pass values
// from sliders or percentage math directly.
func (c *Client) SetVolume(level float64) error {
	body, err := c.Codec.EncodeVolume(clampVolume(level))
	if err != nil {
		return err
	}
	_, err = c.post("/volume", body)
	return err
}

// Bass queries the current bass state.
func (c *Client) Bass() (Bass, error) {
	body, err := c.get("/bass")
	if err != nil {
		return Bass{}, err
	}
	return c.Codec.DecodeBass(body)
}

// SetBass sets the bass level. The level is rounded but not clamped; the
// valid range varies per hardware and the device rejects values outside it.
func (c *Client) SetBass(level float64) error {
	body, err := c.Codec.EncodeBass(int(math.Round(level)))
	if err != nil {
		return err
	}
	_, err = c.post("/bass", body)
	return err
}

// BassCapabilities queries whether and how far bass can be adjusted.
func (c *Client) BassCapabilities() (BassCapabilities, error) {
	body, err := c.get("/bassCapabilities")
	if err != nil {
		return BassCapabilities{}, err
	}
	return c.Codec.DecodeBassCapabilities(body)
}

// Presets queries the stored preset slots.
func (c *Client) Presets() ([]Preset, error) {
	body, err := c.get("/presets")
	if err != nil {
		return nil, err
	}
	return c.Codec.DecodePresets(body)
}

// Sources queries the selectable content sources.
func (c *Client) Sources() (Sources, error) {
	body, err := c.get("/sources")
	if err != nil {
		return Sources{}, err
	}
	return c.Codec.DecodeSources(body)
}

// Zone queries the multi-room zone membership.
func (c *Client) Zone() (Zone, error) {
	body, err := c.get("/getZone")
	if err != nil {
		return Zone{}, err
	}
	return c.Codec.DecodeZone(body)
}

// CreateZone makes this device the master of a new multi-room zone.
func (c *Client) CreateZone(zone Zone) error {
	return c.postZone("/setZone", zone)
}

// AddZoneSlave adds the given members to the zone mastered by this device.
func (c *Client) AddZoneSlave(zone Zone) error {
	return c.postZone("/addZoneSlave", zone)
}

// RemoveZoneSlave removes the given members from the zone mastered by this
// device.
func (c *Client) RemoveZoneSlave(zone Zone) error {
	return c.postZone("/removeZoneSlave", zone)
}

func (c *Client) postZone(path string, zone Zone) error {
	body, err := c.Codec.EncodeZone(zone)
	if err != nil {
		return err
	}
	_, err = c.post(path, body)
	return err
}

// Name queries the user-visible device name.
func (c *Client) Name() (string, error) {
	body, err := c.get("/name")
	if err != nil {
		return "", err
	}
	return c.Codec.DecodeName(body)
}

// SetName renames the device.
func (c *Client) SetName(name string) error {
	body, err := c.Codec.EncodeName(name)
	if err != nil {
		return err
	}
	_, err = c.post("/name", body)
	return err
}

// Select starts playback of the given content.
func (c *Client) Select(item ContentItem) error {
	body, err := c.Codec.EncodeContentItem(item)
	if err != nil {
		return err
	}
	_, err = c.post("/select", body)
	return err
}

// StorePreset writes a preset slot.
func (c *Client) StorePreset(preset Preset) error {
	body, err := c.Codec.EncodePreset(preset)
	if err != nil {
		return err
	}
	_, err = c.post("/storePreset", body)
	return err
}

// RemovePreset clears a preset slot.
func (c *Client) RemovePreset(preset Preset) error {
	body, err := c.Codec.EncodePreset(preset)
	if err != nil {
		return err
	}
	_, err = c.post("/removePreset", body)
	return err
}

// Muted reports whether the device is muted.
func (c *Client) Muted() (bool, error) {
	vol, err := c.Volume()
	if err != nil {
		return false, err
	}
	return vol.Muted, nil
}

// SetMuted drives the device's mute toggle to the requested state. The
// speaker only exposes a toggle key, so the current state is queried first
// and the key pressed only when the state differs.
func (c *Client) SetMuted(muted bool) error {
	vol, err := c.Volume()
	if err != nil {
		return err
	}
	if vol.Muted == muted {
		return nil
	}
	return c.PressKey(KeyMute)
}

// PoweredOn reports whether the device is switched on. A device in standby
// reports the STANDBY pseudo-source in now_playing.
func (c *Client) PoweredOn() (bool, error) {
	np, err := c.NowPlaying()
	if err != nil {
		return false, err
	}
	return np.PoweredOn(), nil
}

// SetPowered drives the device's power toggle to the requested state, by
// the same query-then-toggle approach as SetMuted.
func (c *Client) SetPowered(on bool) error {
	np, err := c.NowPlaying()
	if err != nil {
		return err
	}
	if np.PoweredOn() == on {
		return nil
	}
	return c.PressKey(KeyPower)
}

// clampVolume rounds half away from zero, then clamps to the speaker's
// 0..100 range.
func clampVolume(level float64) int {
	v := int(math.Round(level))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
