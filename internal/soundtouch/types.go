package soundtouch

import "encoding/xml"

// Source identifies a content source on the device.
type Source string

const (
	SourceStandby       Source = "STANDBY"
	SourceAux           Source = "AUX"
	SourceBluetooth     Source = "BLUETOOTH"
	SourceAirPlay       Source = "AIRPLAY"
	SourceSpotify       Source = "SPOTIFY"
	SourceTuneIn        Source = "TUNEIN"
	SourceInternetRadio Source = "INTERNET_RADIO"
	SourceLocalRadio    Source = "LOCAL_INTERNET_RADIO"
	SourceStoredMusic   Source = "STORED_MUSIC"
	SourceUPnP          Source = "UPNP"
	SourceInvalid       Source = "INVALID_SOURCE"
)

// PlayStatus describes the transport state reported in now_playing.
type PlayStatus string

const (
	PlayStatusPlaying   PlayStatus = "PLAY_STATE"
	PlayStatusPaused    PlayStatus = "PAUSE_STATE"
	PlayStatusStopped   PlayStatus = "STOP_STATE"
	PlayStatusBuffering PlayStatus = "BUFFERING_STATE"
	PlayStatusInvalid   PlayStatus = "INVALID_PLAY_STATUS"
)

// ContentItem identifies a playable piece of content. The triple of source,
// location and source account identifies the content; any of them may be an
// empty string but all are carried on the wire. The same shape appears in
// now_playing responses, presets and select requests.
type ContentItem struct {
	XMLName       xml.Name `xml:"ContentItem"`
	Source        Source   `xml:"source,attr"`
	Type          string   `xml:"type,attr,omitempty"`
	Location      string   `xml:"location,attr"`
	SourceAccount string   `xml:"sourceAccount,attr"`
	IsPresetable  bool     `xml:"isPresetable,attr"`
	Name          string   `xml:"itemName,omitempty"`
	ContainerArt  string   `xml:"containerArt,omitempty"`
}

// Art carries album art metadata from now_playing. The URL is the element
// text while the load status is an attribute on the same element.
type Art struct {
	Status string `xml:"artImageStatus,attr"`
	URL    string `xml:",chardata"`
}

// NowPlaying is the device's current playback snapshot.
type NowPlaying struct {
	XMLName       xml.Name    `xml:"nowPlaying"`
	DeviceID      string      `xml:"deviceID,attr"`
	Source        Source      `xml:"source,attr"`
	SourceAccount string      `xml:"sourceAccount,attr"`
	Content       ContentItem `xml:"ContentItem"`
	Track         string      `xml:"track"`
	Artist        string      `xml:"artist"`
	Album         string      `xml:"album"`
	StationName   string      `xml:"stationName"`
	Art           Art         `xml:"art"`
	PlayStatus    PlayStatus  `xml:"playStatus"`
	Description   string      `xml:"description"`
	StationLoc    string      `xml:"stationLocation"`
	ShuffleMode   string      `xml:"shuffleSetting"`
	RepeatMode    string      `xml:"repeatSetting"`
	StreamType    string      `xml:"streamType"`
}

// PoweredOn reports whether the device is switched on. A device in standby
// reports the STANDBY pseudo-source.
func (n NowPlaying) PoweredOn() bool {
	return n.Source != SourceStandby && n.Source != ""
}

// Volume is the device's volume state. Target and actual volume differ
// briefly while the device ramps.
type Volume struct {
	XMLName  xml.Name `xml:"volume"`
	DeviceID string   `xml:"deviceID,attr"`
	Target   int      `xml:"targetvolume"`
	Actual   int      `xml:"actualvolume"`
	Muted    bool     `xml:"muteenabled"`
}

// Bass is the device's bass (tone) state.
type Bass struct {
	XMLName  xml.Name `xml:"bass"`
	DeviceID string   `xml:"deviceID,attr"`
	Target   int      `xml:"targetbass"`
	Actual   int      `xml:"actualbass"`
}

// BassCapabilities describes whether and how far bass can be adjusted on
// this hardware.
type BassCapabilities struct {
	XMLName   xml.Name `xml:"bassCapabilities"`
	DeviceID  string   `xml:"deviceID,attr"`
	Available bool     `xml:"bassAvailable"`
	Min       int      `xml:"bassMin"`
	Max       int      `xml:"bassMax"`
	Default   int      `xml:"bassDefault"`
}

// Preset is one of the device's six numbered quick-access slots.
type Preset struct {
	XMLName   xml.Name    `xml:"preset"`
	ID        int         `xml:"id,attr"`
	CreatedOn int64       `xml:"createdOn,attr,omitempty"`
	UpdatedOn int64       `xml:"updatedOn,attr,omitempty"`
	Content   ContentItem `xml:"ContentItem"`
}

// PresetList is the container for the device's preset slots. Devices with a
// single stored preset return one child element rather than a sequence;
// decoding into the slice handles both shapes.
type PresetList struct {
	XMLName xml.Name `xml:"presets"`
	Presets []Preset `xml:"preset"`
}

// SourceItem describes one selectable source. The display name is the
// element text; everything else rides on attributes.
type SourceItem struct {
	XMLName       xml.Name `xml:"sourceItem"`
	Source        Source   `xml:"source,attr"`
	SourceAccount string   `xml:"sourceAccount,attr"`
	Status        string   `xml:"status,attr"`
	IsLocal       bool     `xml:"isLocal,attr"`
	MultiRoom     bool     `xml:"multiroomallowed,attr"`
	Name          string   `xml:",chardata"`
}

// Ready reports whether the source can be selected right now.
func (s SourceItem) Ready() bool {
	return s.Status == "READY"
}

// Sources is the device's list of available sources.
type Sources struct {
	XMLName  xml.Name     `xml:"sources"`
	DeviceID string       `xml:"deviceID,attr"`
	Items    []SourceItem `xml:"sourceItem"`
}

// ZoneMember is a speaker participating in a multi-room zone. The member's
// device ID is the element text; its address is an attribute.
type ZoneMember struct {
	XMLName   xml.Name `xml:"member"`
	IPAddress string   `xml:"ipaddress,attr"`
	DeviceID  string   `xml:",chardata"`
}

// Zone describes multi-room zone membership. An empty master means the
// device is not part of a zone.
type Zone struct {
	XMLName xml.Name     `xml:"zone"`
	Master  string       `xml:"master,attr"`
	Members []ZoneMember `xml:"member"`
}

// IsActive reports whether the device participates in a zone.
func (z Zone) IsActive() bool {
	return z.Master != ""
}

// NetworkInfo is one network interface advertised in /info.
type NetworkInfo struct {
	Type       string `xml:"type,attr"`
	MACAddress string `xml:"macAddress"`
	IPAddress  string `xml:"ipAddress"`
}

// Component is one hardware/software component advertised in /info.
type Component struct {
	Category        string `xml:"componentCategory"`
	SoftwareVersion string `xml:"softwareVersion"`
	SerialNumber    string `xml:"serialNumber"`
}

// Info is the device identity block.
type Info struct {
	XMLName    xml.Name      `xml:"info"`
	DeviceID   string        `xml:"deviceID,attr"`
	Name       string        `xml:"name"`
	Type       string        `xml:"type"`
	Account    string        `xml:"margeAccountUUID"`
	Networks   []NetworkInfo `xml:"networkInfo"`
	Components []Component   `xml:"components>component"`
}

// ConnectionAdvisory is pushed by the device when its network link state
// changes.
type ConnectionAdvisory struct {
	XMLName xml.Name `xml:"connectionStateUpdated"`
	State   string   `xml:"state,attr"`
	Up      bool     `xml:"up,attr"`
	Signal  string   `xml:"signal,attr"`
}

// Updates is the envelope for push notifications on the event socket. Each
// category is optional; a nil pointer means the frame did not carry that
// category. A single frame may carry several categories at once.
type Updates struct {
	XMLName    xml.Name            `xml:"updates"`
	DeviceID   string              `xml:"deviceID,attr"`
	Volume     *Volume             `xml:"volumeUpdated>volume"`
	NowPlaying *NowPlaying         `xml:"nowPlayingUpdated>nowPlaying"`
	Presets    *PresetList         `xml:"presetsUpdated>presets"`
	Zone       *Zone               `xml:"zoneUpdated>zone"`
	Bass       *Bass               `xml:"bassUpdated>bass"`
	Connection *ConnectionAdvisory `xml:"connectionStateUpdated"`
}

// Request bodies for the small POST endpoints. Numeric levels travel as
// element text, which encoding/xml only supports for strings, so the codec
// formats them before marshalling.

type volumeRequest struct {
	XMLName xml.Name `xml:"volume"`
	Level   string   `xml:",chardata"`
}

type bassRequest struct {
	XMLName xml.Name `xml:"bass"`
	Level   string   `xml:",chardata"`
}

type namePayload struct {
	XMLName xml.Name `xml:"name"`
	Name    string   `xml:",chardata"`
}

type keyRequest struct {
	XMLName xml.Name `xml:"key"`
	State   string   `xml:"state,attr"`
	Sender  string   `xml:"sender,attr"`
	Key     Key      `xml:",chardata"`
}
