package eventstream

import (
	"github.com/Dress13/homebridge-bose-soundtouch/internal/soundtouch"
)

// EventType discriminates which device state category an Event carries.
type EventType int

const (
	VolumeChanged EventType = iota
	NowPlayingChanged
	PresetsChanged
	ZoneChanged
	BassChanged
	ConnectionAdvisory
)

// String returns the category name used in logs.
func (t EventType) String() string {
	switch t {
	case VolumeChanged:
		return "volume"
	case NowPlayingChanged:
		return "now_playing"
	case PresetsChanged:
		return "presets"
	case ZoneChanged:
		return "zone"
	case BassChanged:
		return "bass"
	case ConnectionAdvisory:
		return "connection_advisory"
	default:
		return "unknown"
	}
}

// Event is one decoded push notification from the speaker. Exactly one
// payload field is populated, matching Type. The payloads are the same types
// the HTTP client decodes, so a consumer can treat a push exactly like a
// fresh query result.
type Event struct {
	Type       EventType
	DeviceID   string
	Volume     *soundtouch.Volume
	NowPlaying *soundtouch.NowPlaying
	Presets    []soundtouch.Preset
	Zone       *soundtouch.Zone
	Bass       *soundtouch.Bass
	Connection *soundtouch.ConnectionAdvisory
}

// eventsFromUpdates flattens one decoded frame into discrete events. A frame
// carrying several categories yields one event per category, in a fixed
// order, so consumers observe multi-category frames deterministically.
func eventsFromUpdates(upd soundtouch.Updates) []Event {
	var events []Event
	if upd.Volume != nil {
		events = append(events, Event{Type: VolumeChanged, DeviceID: upd.DeviceID, Volume: upd.Volume})
	}
	if upd.NowPlaying != nil {
		events = append(events, Event{Type: NowPlayingChanged, DeviceID: upd.DeviceID, NowPlaying: upd.NowPlaying})
	}
	if upd.Presets != nil {
		events = append(events, Event{Type: PresetsChanged, DeviceID: upd.DeviceID, Presets: upd.Presets.Presets})
	}
	if upd.Zone != nil {
		events = append(events, Event{Type: ZoneChanged, DeviceID: upd.DeviceID, Zone: upd.Zone})
	}
	if upd.Bass != nil {
		events = append(events, Event{Type: BassChanged, DeviceID: upd.DeviceID, Bass: upd.Bass})
	}
	if upd.Connection != nil {
		events = append(events, Event{Type: ConnectionAdvisory, DeviceID: upd.DeviceID, Connection: upd.Connection})
	}
	return events
}
