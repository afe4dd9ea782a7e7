package soundtouch

import (
	"strings"
	"testing"
)

// Mock device responses - captured from a SoundTouch 20 running 19.0.5
const mockVolumeResponse = `<?xml version="1.0" encoding="UTF-8" ?><volume deviceID="689E19653E96"><targetvolume>42</targetvolume><actualvolume>40</actualvolume><muteenabled>false</muteenabled></volume>`

const mockNowPlayingResponse = `<?xml version="1.0" encoding="UTF-8" ?><nowPlaying deviceID="689E19653E96" source="TUNEIN" sourceAccount=""><ContentItem source="TUNEIN" type="stationurl" location="/v1/playback/station/s24950" sourceAccount="" isPresetable="true"><itemName>Radio Paradise</itemName><containerArt>http://cdn-profiles.tunein.com/s24950/images/logoq.png</containerArt></ContentItem><track>Teenage Kicks</track><artist>The Undertones</artist><album>The Undertones</album><stationName>Radio Paradise</stationName><art artImageStatus="IMAGE_PRESENT">http://cdn-albums.tunein.com/undertones.jpg</art><playStatus>PLAY_STATE</playStatus><shuffleSetting>SHUFFLE_OFF</shuffleSetting><repeatSetting>REPEAT_OFF</repeatSetting><streamType>RADIO_STREAMING</streamType></nowPlaying>`

const mockStandbyResponse = `<?xml version="1.0" encoding="UTF-8" ?><nowPlaying deviceID="689E19653E96" source="STANDBY"><ContentItem source="STANDBY" isPresetable="false" /></nowPlaying>`

const mockPresetsResponse = `<?xml version="1.0" encoding="UTF-8" ?><presets><preset id="1" createdOn="1554890400" updatedOn="1594040640"><ContentItem source="TUNEIN" type="stationurl" location="/v1/playback/station/s24950" sourceAccount="" isPresetable="true"><itemName>Radio Paradise</itemName></ContentItem></preset><preset id="3"><ContentItem source="SPOTIFY" type="uri" location="/v1/playback/container/cGxheWxpc3Q=" sourceAccount="spotifyuser" isPresetable="true"><itemName>Morning Mix</itemName></ContentItem></preset></presets>`

const mockSinglePresetResponse = `<?xml version="1.0" encoding="UTF-8" ?><presets><preset id="2"><ContentItem source="TUNEIN" type="stationurl" location="/v1/playback/station/s28589" sourceAccount="" isPresetable="true"><itemName>BBC 6 Music</itemName></ContentItem></preset></presets>`

const mockSourcesResponse = `<?xml version="1.0" encoding="UTF-8" ?><sources deviceID="689E19653E96"><sourceItem source="STANDBY" sourceAccount="" status="UNAVAILABLE" isLocal="false" multiroomallowed="true">STANDBY</sourceItem><sourceItem source="AUX" sourceAccount="AUX" status="READY" isLocal="true" multiroomallowed="false">AUX IN</sourceItem><sourceItem source="SPOTIFY" sourceAccount="spotifyuser" status="READY" isLocal="false" multiroomallowed="true">spotifyuser</sourceItem></sources>`

const mockZoneResponse = `<?xml version="1.0" encoding="UTF-8" ?><zone master="689E19653E96"><member ipaddress="192.168.1.41">9884E3AB12CD</member><member ipaddress="192.168.1.42">9884E3AB34EF</member></zone>`

const mockInfoResponse = `<?xml version="1.0" encoding="UTF-8" ?><info deviceID="689E19653E96"><name>Living Room</name><type>SoundTouch 20</type><margeAccountUUID>7340956</margeAccountUUID><components><component><componentCategory>SCM</componentCategory><softwareVersion>19.0.5.42017</softwareVersion><serialNumber>P1234567890AB</serialNumber></component><component><componentCategory>PackagedProduct</componentCategory><softwareVersion>19.0.5.42017</softwareVersion><serialNumber>069428P81234567AE</serialNumber></component></components><networkInfo type="SCM"><macAddress>689E19653E96</macAddress><ipAddress>192.168.1.40</ipAddress></networkInfo><networkInfo type="SMSC"><macAddress>689E19653E97</macAddress><ipAddress>192.168.1.40</ipAddress></networkInfo></info>`

const mockBassCapabilitiesResponse = `<?xml version="1.0" encoding="UTF-8" ?><bassCapabilities deviceID="689E19653E96"><bassAvailable>true</bassAvailable><bassMin>-9</bassMin><bassMax>0</bassMax><bassDefault>0</bassDefault></bassCapabilities>`

func TestDecodeVolume(t *testing.T) {
	var codec Codec

	vol, err := codec.DecodeVolume([]byte(mockVolumeResponse))
	if err != nil {
		t.Fatalf("DecodeVolume() error = %v, want nil", err)
	}

	if vol.DeviceID != "689E19653E96" {
		t.Errorf("DeviceID = %s, want 689E19653E96", vol.DeviceID)
	}
	if vol.Target != 42 {
		t.Errorf("Target = %d, want 42", vol.Target)
	}
	if vol.Actual != 40 {
		t.Errorf("Actual = %d, want 40", vol.Actual)
	}
	if vol.Muted {
		t.Error("Muted should be false")
	}
}

func TestDecodeVolume_Malformed(t *testing.T) {
	var codec Codec

	_, err := codec.DecodeVolume([]byte("not XML at all"))
	if err == nil {
		t.Fatal("DecodeVolume() should return error for garbage input")
	}
	if !IsDecodeError(err) {
		t.Errorf("error should be decode error, got %T: %v", err, err)
	}
}

func TestDecodeNowPlaying_Playing(t *testing.T) {
	var codec Codec

	np, err := codec.DecodeNowPlaying([]byte(mockNowPlayingResponse))
	if err != nil {
		t.Fatalf("DecodeNowPlaying() error = %v, want nil", err)
	}

	if np.Source != SourceTuneIn {
		t.Errorf("Source = %s, want TUNEIN", np.Source)
	}
	if np.Track != "Teenage Kicks" {
		t.Errorf("Track = %s, want Teenage Kicks", np.Track)
	}
	if np.Artist != "The Undertones" {
		t.Errorf("Artist = %s, want The Undertones", np.Artist)
	}
	if np.PlayStatus != PlayStatusPlaying {
		t.Errorf("PlayStatus = %s, want PLAY_STATE", np.PlayStatus)
	}
	if np.Art.Status != "IMAGE_PRESENT" {
		t.Errorf("Art.Status = %s, want IMAGE_PRESENT", np.Art.Status)
	}
	if np.Art.URL != "http://cdn-albums.tunein.com/undertones.jpg" {
		t.Errorf("Art.URL = %s, want album art URL", np.Art.URL)
	}
	if np.Content.Location != "/v1/playback/station/s24950" {
		t.Errorf("Content.Location = %s, want /v1/playback/station/s24950", np.Content.Location)
	}
	if np.Content.Name != "Radio Paradise" {
		t.Errorf("Content.Name = %s, want Radio Paradise", np.Content.Name)
	}
	if !np.Content.IsPresetable {
		t.Error("Content.IsPresetable should be true")
	}
	if !np.PoweredOn() {
		t.Error("PoweredOn() should be true while playing")
	}
}

func TestDecodeNowPlaying_Standby(t *testing.T) {
	var codec Codec

	np, err := codec.DecodeNowPlaying([]byte(mockStandbyResponse))
	if err != nil {
		t.Fatalf("DecodeNowPlaying() error = %v, want nil", err)
	}

	if np.Source != SourceStandby {
		t.Errorf("Source = %s, want STANDBY", np.Source)
	}
	if np.PoweredOn() {
		t.Error("PoweredOn() should be false in standby")
	}
}

func TestDecodePresets_Multiple(t *testing.T) {
	var codec Codec

	presets, err := codec.DecodePresets([]byte(mockPresetsResponse))
	if err != nil {
		t.Fatalf("DecodePresets() error = %v, want nil", err)
	}

	if len(presets) != 2 {
		t.Fatalf("len(presets) = %d, want 2", len(presets))
	}
	if presets[0].ID != 1 {
		t.Errorf("presets[0].ID = %d, want 1", presets[0].ID)
	}
	if presets[0].CreatedOn != 1554890400 {
		t.Errorf("presets[0].CreatedOn = %d, want 1554890400", presets[0].CreatedOn)
	}
	if presets[0].Content.Name != "Radio Paradise" {
		t.Errorf("presets[0].Content.Name = %s, want Radio Paradise", presets[0].Content.Name)
	}
	if presets[1].ID != 3 {
		t.Errorf("presets[1].ID = %d, want 3", presets[1].ID)
	}
	if presets[1].Content.Source != SourceSpotify {
		t.Errorf("presets[1].Content.Source = %s, want SPOTIFY", presets[1].Content.Source)
	}
	if presets[1].Content.SourceAccount != "spotifyuser" {
		t.Errorf("presets[1].Content.SourceAccount = %s, want spotifyuser", presets[1].Content.SourceAccount)
	}
}

func TestDecodePresets_SingleChild(t *testing.T) {
	var codec Codec

	presets, err := codec.DecodePresets([]byte(mockSinglePresetResponse))
	if err != nil {
		t.Fatalf("DecodePresets() error = %v, want nil", err)
	}

	// A lone child element decodes as a one-element list, same as a sequence.
	if len(presets) != 1 {
		t.Fatalf("len(presets) = %d, want 1", len(presets))
	}
	if presets[0].ID != 2 {
		t.Errorf("presets[0].ID = %d, want 2", presets[0].ID)
	}
}

func TestDecodePresets_Empty(t *testing.T) {
	var codec Codec

	presets, err := codec.DecodePresets([]byte(`<presets />`))
	if err != nil {
		t.Fatalf("DecodePresets() error = %v, want nil", err)
	}

	if len(presets) != 0 {
		t.Errorf("len(presets) = %d, want 0", len(presets))
	}
}

func TestDecodeSources(t *testing.T) {
	var codec Codec

	sources, err := codec.DecodeSources([]byte(mockSourcesResponse))
	if err != nil {
		t.Fatalf("DecodeSources() error = %v, want nil", err)
	}

	if len(sources.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(sources.Items))
	}

	aux := sources.Items[1]
	if aux.Source != SourceAux {
		t.Errorf("Items[1].Source = %s, want AUX", aux.Source)
	}
	if aux.Name != "AUX IN" {
		t.Errorf("Items[1].Name = %s, want AUX IN", aux.Name)
	}
	if !aux.IsLocal {
		t.Error("Items[1].IsLocal should be true")
	}
	if !aux.Ready() {
		t.Error("Items[1].Ready() should be true")
	}
	if sources.Items[0].Ready() {
		t.Error("Items[0].Ready() should be false for UNAVAILABLE")
	}
}

func TestDecodeZone(t *testing.T) {
	var codec Codec

	zone, err := codec.DecodeZone([]byte(mockZoneResponse))
	if err != nil {
		t.Fatalf("DecodeZone() error = %v, want nil", err)
	}

	if zone.Master != "689E19653E96" {
		t.Errorf("Master = %s, want 689E19653E96", zone.Master)
	}
	if !zone.IsActive() {
		t.Error("IsActive() should be true")
	}
	if len(zone.Members) != 2 {
		t.Fatalf("len(Members) = %d, want 2", len(zone.Members))
	}
	if zone.Members[0].IPAddress != "192.168.1.41" {
		t.Errorf("Members[0].IPAddress = %s, want 192.168.1.41", zone.Members[0].IPAddress)
	}
	if zone.Members[0].DeviceID != "9884E3AB12CD" {
		t.Errorf("Members[0].DeviceID = %s, want 9884E3AB12CD", zone.Members[0].DeviceID)
	}
}

func TestDecodeZone_Empty(t *testing.T) {
	var codec Codec

	zone, err := codec.DecodeZone([]byte(`<zone />`))
	if err != nil {
		t.Fatalf("DecodeZone() error = %v, want nil", err)
	}

	if zone.IsActive() {
		t.Error("IsActive() should be false for empty zone")
	}
	if len(zone.Members) != 0 {
		t.Errorf("len(Members) = %d, want 0", len(zone.Members))
	}
}

func TestDecodeInfo(t *testing.T) {
	var codec Codec

	info, err := codec.DecodeInfo([]byte(mockInfoResponse))
	if err != nil {
		t.Fatalf("DecodeInfo() error = %v, want nil", err)
	}

	if info.DeviceID != "689E19653E96" {
		t.Errorf("DeviceID = %s, want 689E19653E96", info.DeviceID)
	}
	if info.Name != "Living Room" {
		t.Errorf("Name = %s, want Living Room", info.Name)
	}
	if info.Type != "SoundTouch 20" {
		t.Errorf("Type = %s, want SoundTouch 20", info.Type)
	}
	if len(info.Networks) != 2 {
		t.Fatalf("len(Networks) = %d, want 2", len(info.Networks))
	}
	if info.Networks[0].Type != "SCM" {
		t.Errorf("Networks[0].Type = %s, want SCM", info.Networks[0].Type)
	}
	if info.Networks[0].IPAddress != "192.168.1.40" {
		t.Errorf("Networks[0].IPAddress = %s, want 192.168.1.40", info.Networks[0].IPAddress)
	}
	if len(info.Components) != 2 {
		t.Fatalf("len(Components) = %d, want 2", len(info.Components))
	}
	if info.Components[0].SoftwareVersion != "19.0.5.42017" {
		t.Errorf("Components[0].SoftwareVersion = %s, want 19.0.5.42017", info.Components[0].SoftwareVersion)
	}
}

func TestDecodeBassCapabilities(t *testing.T) {
	var codec Codec

	caps, err := codec.DecodeBassCapabilities([]byte(mockBassCapabilitiesResponse))
	if err != nil {
		t.Fatalf("DecodeBassCapabilities() error = %v, want nil", err)
	}

	if !caps.Available {
		t.Error("Available should be true")
	}
	if caps.Min != -9 {
		t.Errorf("Min = %d, want -9", caps.Min)
	}
	if caps.Max != 0 {
		t.Errorf("Max = %d, want 0", caps.Max)
	}
}

func TestDecodeUpdates_Volume(t *testing.T) {
	var codec Codec

	frame := `<updates deviceID="689E19653E96"><volumeUpdated><volume><targetvolume>30</targetvolume><actualvolume>30</actualvolume><muteenabled>true</muteenabled></volume></volumeUpdated></updates>`
	upd, err := codec.DecodeUpdates([]byte(frame))
	if err != nil {
		t.Fatalf("DecodeUpdates() error = %v, want nil", err)
	}

	if upd.DeviceID != "689E19653E96" {
		t.Errorf("DeviceID = %s, want 689E19653E96", upd.DeviceID)
	}
	if upd.Volume == nil {
		t.Fatal("Volume should be decoded")
	}
	if upd.Volume.Actual != 30 {
		t.Errorf("Volume.Actual = %d, want 30", upd.Volume.Actual)
	}
	if !upd.Volume.Muted {
		t.Error("Volume.Muted should be true")
	}
	if upd.NowPlaying != nil || upd.Presets != nil || upd.Zone != nil || upd.Bass != nil || upd.Connection != nil {
		t.Error("categories absent from the frame should stay nil")
	}
}

func TestDecodeUpdates_MultipleCategories(t *testing.T) {
	var codec Codec

	frame := `<updates deviceID="689E19653E96"><volumeUpdated><volume><targetvolume>25</targetvolume><actualvolume>25</actualvolume><muteenabled>false</muteenabled></volume></volumeUpdated><nowPlayingUpdated><nowPlaying deviceID="689E19653E96" source="AUX"><ContentItem source="AUX" sourceAccount="AUX" isPresetable="false" /><playStatus>PLAY_STATE</playStatus></nowPlaying></nowPlayingUpdated></updates>`
	upd, err := codec.DecodeUpdates([]byte(frame))
	if err != nil {
		t.Fatalf("DecodeUpdates() error = %v, want nil", err)
	}

	if upd.Volume == nil {
		t.Fatal("Volume should be decoded")
	}
	if upd.NowPlaying == nil {
		t.Fatal("NowPlaying should be decoded")
	}
	if upd.NowPlaying.Source != SourceAux {
		t.Errorf("NowPlaying.Source = %s, want AUX", upd.NowPlaying.Source)
	}
}

func TestDecodeUpdates_ConnectionAdvisory(t *testing.T) {
	var codec Codec

	frame := `<updates deviceID="689E19653E96"><connectionStateUpdated state="NETWORK_WIFI_CONNECTED" up="true" signal="GOOD_SIGNAL" /></updates>`
	upd, err := codec.DecodeUpdates([]byte(frame))
	if err != nil {
		t.Fatalf("DecodeUpdates() error = %v, want nil", err)
	}

	if upd.Connection == nil {
		t.Fatal("Connection should be decoded")
	}
	if upd.Connection.State != "NETWORK_WIFI_CONNECTED" {
		t.Errorf("Connection.State = %s, want NETWORK_WIFI_CONNECTED", upd.Connection.State)
	}
	if !upd.Connection.Up {
		t.Error("Connection.Up should be true")
	}
}

func TestDecodeUpdates_UnknownCategory(t *testing.T) {
	var codec Codec

	frame := `<updates deviceID="689E19653E96"><userActivityUpdate deviceID="689E19653E96" /></updates>`
	upd, err := codec.DecodeUpdates([]byte(frame))
	if err != nil {
		t.Fatalf("DecodeUpdates() should ignore unknown categories, error = %v", err)
	}

	if upd.Volume != nil || upd.NowPlaying != nil || upd.Presets != nil || upd.Zone != nil || upd.Bass != nil || upd.Connection != nil {
		t.Error("unknown category should leave all categories nil")
	}
}

func TestDecodeUpdates_Malformed(t *testing.T) {
	var codec Codec

	_, err := codec.DecodeUpdates([]byte(`<updates deviceID="x"><volumeUpdated>`))
	if err == nil {
		t.Fatal("DecodeUpdates() should return error for truncated XML")
	}
	if !IsDecodeError(err) {
		t.Errorf("error should be decode error, got %T: %v", err, err)
	}
}

func TestEncodeVolume(t *testing.T) {
	var codec Codec

	body, err := codec.EncodeVolume(42)
	if err != nil {
		t.Fatalf("EncodeVolume() error = %v, want nil", err)
	}

	if string(body) != "<volume>42</volume>" {
		t.Errorf("body = %s, want <volume>42</volume>", body)
	}
}

func TestEncodeKey(t *testing.T) {
	var codec Codec

	body, err := codec.EncodeKey(KeyPlay, "press", "Gabbo")
	if err != nil {
		t.Fatalf("EncodeKey() error = %v, want nil", err)
	}

	want := `<key state="press" sender="Gabbo">PLAY</key>`
	if string(body) != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}

func TestEncodeContentItem_EmptyAttributesPresent(t *testing.T) {
	var codec Codec

	body, err := codec.EncodeContentItem(AuxItem(""))
	if err != nil {
		t.Fatalf("EncodeContentItem() error = %v, want nil", err)
	}

	// The identifying triple always travels, even when empty.
	if !strings.Contains(string(body), `location=""`) {
		t.Errorf("body should carry an empty location attribute, got: %s", body)
	}
	if !strings.Contains(string(body), `sourceAccount="AUX"`) {
		t.Errorf("body should carry sourceAccount, got: %s", body)
	}
	if !strings.Contains(string(body), `source="AUX"`) {
		t.Errorf("body should carry source, got: %s", body)
	}
}

func TestContentItemRoundTrip(t *testing.T) {
	var codec Codec

	original := ContentItem{
		Source:        SourceSpotify,
		Type:          "uri",
		Location:      "/v1/playback/container/cGxheWxpc3Q=",
		SourceAccount: "spotifyuser",
		IsPresetable:  true,
		Name:          "Morning Mix",
	}

	body, err := codec.EncodeContentItem(original)
	if err != nil {
		t.Fatalf("EncodeContentItem() error = %v, want nil", err)
	}

	var decoded ContentItem
	if err := codec.decode(body, &decoded, "ContentItem"); err != nil {
		t.Fatalf("decode error = %v, want nil", err)
	}

	if decoded.Source != original.Source {
		t.Errorf("Source = %s, want %s", decoded.Source, original.Source)
	}
	if decoded.Type != original.Type {
		t.Errorf("Type = %s, want %s", decoded.Type, original.Type)
	}
	if decoded.Location != original.Location {
		t.Errorf("Location = %s, want %s", decoded.Location, original.Location)
	}
	if decoded.SourceAccount != original.SourceAccount {
		t.Errorf("SourceAccount = %s, want %s", decoded.SourceAccount, original.SourceAccount)
	}
	if decoded.IsPresetable != original.IsPresetable {
		t.Errorf("IsPresetable = %v, want %v", decoded.IsPresetable, original.IsPresetable)
	}
	if decoded.Name != original.Name {
		t.Errorf("Name = %s, want %s", decoded.Name, original.Name)
	}
}

func TestEncodeName_EscapesSpecialCharacters(t *testing.T) {
	var codec Codec

	body, err := codec.EncodeName("Kitchen & Den <main>")
	if err != nil {
		t.Fatalf("EncodeName() error = %v, want nil", err)
	}

	name, err := codec.DecodeName(body)
	if err != nil {
		t.Fatalf("DecodeName() error = %v, want nil", err)
	}
	if name != "Kitchen & Den <main>" {
		t.Errorf("round-tripped name = %s, want Kitchen & Den <main>", name)
	}
}
