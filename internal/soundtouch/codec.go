package soundtouch

import (
	"encoding/xml"
	"strconv"
)

// Codec translates between typed payloads and the XML bodies the speaker
// speaks. It holds no state and is shared by value between the HTTP client
// and the event stream; the zero value is ready to use.
type Codec struct{}

func (Codec) decode(data []byte, v any, what string) error {
	if err := xml.Unmarshal(data, v); err != nil {
		return NewDecodeError("malformed "+what+" payload", err)
	}
	return nil
}

// DecodeInfo parses an /info response.
func (c Codec) DecodeInfo(data []byte) (Info, error) {
	var info Info
	err := c.decode(data, &info, "info")
	return info, err
}

// DecodeNowPlaying parses a /now_playing response or push segment.
func (c Codec) DecodeNowPlaying(data []byte) (NowPlaying, error) {
	var np NowPlaying
	err := c.decode(data, &np, "now_playing")
	return np, err
}

// DecodeVolume parses a /volume response or push segment.
func (c Codec) DecodeVolume(data []byte) (Volume, error) {
	var vol Volume
	err := c.decode(data, &vol, "volume")
	return vol, err
}

// DecodeBass parses a /bass response or push segment.
func (c Codec) DecodeBass(data []byte) (Bass, error) {
	var bass Bass
	err := c.decode(data, &bass, "bass")
	return bass, err
}

// DecodeBassCapabilities parses a /bassCapabilities response.
func (c Codec) DecodeBassCapabilities(data []byte) (BassCapabilities, error) {
	var caps BassCapabilities
	err := c.decode(data, &caps, "bassCapabilities")
	return caps, err
}

// DecodePresets parses a /presets response. A device with a single stored
// preset returns one child element rather than a list; both decode into the
// same slice.
func (c Codec) DecodePresets(data []byte) ([]Preset, error) {
	var list PresetList
	if err := c.decode(data, &list, "presets"); err != nil {
		return nil, err
	}
	return list.Presets, nil
}

// DecodeSources parses a /sources response.
func (c Codec) DecodeSources(data []byte) (Sources, error) {
	var sources Sources
	err := c.decode(data, &sources, "sources")
	return sources, err
}

// DecodeZone parses a /getZone response or push segment.
func (c Codec) DecodeZone(data []byte) (Zone, error) {
	var zone Zone
	err := c.decode(data, &zone, "zone")
	return zone, err
}

// DecodeName parses a /name response.
func (c Codec) DecodeName(data []byte) (string, error) {
	var payload namePayload
	if err := c.decode(data, &payload, "name"); err != nil {
		return "", err
	}
	return payload.Name, nil
}

// DecodeUpdates parses one frame from the event socket. Categories absent
// from the frame stay nil.
func (c Codec) DecodeUpdates(data []byte) (Updates, error) {
	var upd Updates
	err := c.decode(data, &upd, "updates")
	return upd, err
}

// EncodeVolume builds the body for POST /volume.
func (Codec) EncodeVolume(level int) ([]byte, error) {
	return xml.Marshal(volumeRequest{Level: strconv.Itoa(level)})
}

// EncodeBass builds the body for POST /bass.
func (Codec) EncodeBass(level int) ([]byte, error) {
	return xml.Marshal(bassRequest{Level: strconv.Itoa(level)})
}

// EncodeName builds the body for POST /name.
func (Codec) EncodeName(name string) ([]byte, error) {
	return xml.Marshal(namePayload{Name: name})
}

// EncodeKey builds the body for POST /key. State is either press or
// release; the speaker expects both, in that order, for a momentary press.
func (Codec) EncodeKey(key Key, state, sender string) ([]byte, error) {
	return xml.Marshal(keyRequest{State: state, Sender: sender, Key: key})
}

// EncodeContentItem builds the body for POST /select.
func (Codec) EncodeContentItem(item ContentItem) ([]byte, error) {
	return xml.Marshal(item)
}

// EncodeZone builds the body for the zone management endpoints.
func (Codec) EncodeZone(zone Zone) ([]byte, error) {
	return xml.Marshal(zone)
}

// EncodePreset builds the body for POST /storePreset and /removePreset.
func (Codec) EncodePreset(preset Preset) ([]byte, error) {
	return xml.Marshal(preset)
}
