package soundtouch

import (
	"fmt"
	"strings"
)

// Key identifies a remote-control key on the speaker. Keys are momentary:
// the device expects a press event followed by a release event.
type Key string

const (
	KeyPlay       Key = "PLAY"
	KeyPause      Key = "PAUSE"
	KeyPlayPause  Key = "PLAY_PAUSE"
	KeyStop       Key = "STOP"
	KeyPrevTrack  Key = "PREV_TRACK"
	KeyNextTrack  Key = "NEXT_TRACK"
	KeyThumbsUp   Key = "THUMBS_UP"
	KeyThumbsDown Key = "THUMBS_DOWN"
	KeyBookmark   Key = "BOOKMARK"
	KeyPower      Key = "POWER"
	KeyMute       Key = "MUTE"
	KeyVolumeUp   Key = "VOLUME_UP"
	KeyVolumeDown Key = "VOLUME_DOWN"
	KeyAuxInput   Key = "AUX_INPUT"
	KeyShuffleOff Key = "SHUFFLE_OFF"
	KeyShuffleOn  Key = "SHUFFLE_ON"
	KeyRepeatOff  Key = "REPEAT_OFF"
	KeyRepeatOne  Key = "REPEAT_ONE"
	KeyRepeatAll  Key = "REPEAT_ALL"
	KeyPreset1    Key = "PRESET_1"
	KeyPreset2    Key = "PRESET_2"
	KeyPreset3    Key = "PRESET_3"
	KeyPreset4    Key = "PRESET_4"
	KeyPreset5    Key = "PRESET_5"
	KeyPreset6    Key = "PRESET_6"
)

const (
	keyStatePress   = "press"
	keyStateRelease = "release"
)

// knownKeys holds every key the /key endpoint accepts.
var knownKeys = map[Key]bool{
	KeyPlay: true, KeyPause: true, KeyPlayPause: true, KeyStop: true,
	KeyPrevTrack: true, KeyNextTrack: true,
	KeyThumbsUp: true, KeyThumbsDown: true, KeyBookmark: true,
	KeyPower: true, KeyMute: true, KeyVolumeUp: true, KeyVolumeDown: true,
	KeyAuxInput: true,
	KeyShuffleOff: true, KeyShuffleOn: true,
	KeyRepeatOff: true, KeyRepeatOne: true, KeyRepeatAll: true,
	KeyPreset1: true, KeyPreset2: true, KeyPreset3: true,
	KeyPreset4: true, KeyPreset5: true, KeyPreset6: true,
}

// ParseKey validates a key name. Names are matched case-insensitively
// against the device's key vocabulary so callers can accept user input
// like "play" or "NEXT_TRACK".
func ParseKey(name string) (Key, error) {
	key := Key(strings.ToUpper(strings.TrimSpace(name)))
	if !knownKeys[key] {
		return "", fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}

// presetKeys maps preset slot numbers to their keys.
var presetKeys = [...]Key{KeyPreset1, KeyPreset2, KeyPreset3, KeyPreset4, KeyPreset5, KeyPreset6}

// PresetKey returns the key for a preset slot (1 through 6).
func PresetKey(slot int) (Key, error) {
	if slot < 1 || slot > len(presetKeys) {
		return "", fmt.Errorf("preset slot %d out of range 1..%d", slot, len(presetKeys))
	}
	return presetKeys[slot-1], nil
}

// PressKey sends a momentary key press: a press event followed by a release
// event. If the press fails the release is not sent, matching the device's
// expectation that a release only ever follows a delivered press.
func (c *Client) PressKey(key Key) error {
	if err := c.sendKey(key, keyStatePress); err != nil {
		return err
	}
	return c.sendKey(key, keyStateRelease)
}

func (c *Client) sendKey(key Key, state string) error {
	body, err := c.Codec.EncodeKey(key, state, c.sender)
	if err != nil {
		return err
	}
	_, err = c.post("/key", body)
	return err
}

// Play starts playback on the current source.
func (c *Client) Play() error {
	return c.PressKey(KeyPlay)
}

// Pause pauses playback on the current source.
func (c *Client) Pause() error {
	return c.PressKey(KeyPause)
}

// TogglePlayPause flips between playing and paused.
func (c *Client) TogglePlayPause() error {
	return c.PressKey(KeyPlayPause)
}

// NextTrack skips forward on the current source.
func (c *Client) NextTrack() error {
	return c.PressKey(KeyNextTrack)
}

// PreviousTrack skips backward on the current source.
func (c *Client) PreviousTrack() error {
	return c.PressKey(KeyPrevTrack)
}

// SelectPreset recalls a stored preset slot (1 through 6).
func (c *Client) SelectPreset(slot int) error {
	key, err := PresetKey(slot)
	if err != nil {
		return err
	}
	return c.PressKey(key)
}
