package soundtouch

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// streamPayload is the station descriptor embedded in the location of a
// custom stream ContentItem.
type streamPayload struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// StreamURLItem builds a ContentItem that plays an arbitrary HTTP stream
// through the speaker's internet radio source. The stream descriptor rides
// inside the location as a base64 data URI.
func StreamURLItem(streamURL, name string) (ContentItem, error) {
	if !strings.HasPrefix(streamURL, "http://") && !strings.HasPrefix(streamURL, "https://") {
		return ContentItem{}, fmt.Errorf("stream URL %q is not http(s)", streamURL)
	}
	data, err := json.Marshal(streamPayload{URL: streamURL, Name: name})
	if err != nil {
		return ContentItem{}, err
	}
	return ContentItem{
		Source:       SourceLocalRadio,
		Type:         "stationurl",
		Location:     "data:application/json;base64," + base64.StdEncoding.EncodeToString(data),
		IsPresetable: true,
		Name:         name,
	}, nil
}

// SpotifyURIItem builds a ContentItem for a Spotify URI such as
// spotify:playlist:... The account is the Spotify account name registered on
// the speaker.
func SpotifyURIItem(uri, account, name string) ContentItem {
	return ContentItem{
		Source:        SourceSpotify,
		Type:          "uri",
		Location:      "/v1/playback/container/" + base64.StdEncoding.EncodeToString([]byte(uri)),
		SourceAccount: account,
		IsPresetable:  true,
		Name:          name,
	}
}

// TuneInStationItem builds a ContentItem for a TuneIn station ID such as
// s28589.
func TuneInStationItem(stationID, name string) ContentItem {
	return ContentItem{
		Source:       SourceTuneIn,
		Type:         "stationurl",
		Location:     "/v1/playback/station/" + stationID,
		IsPresetable: true,
		Name:         name,
	}
}

// AuxItem builds a ContentItem that switches the speaker to its auxiliary
// input. Account is the input name; the plain AUX jack uses "AUX".
func AuxItem(account string) ContentItem {
	if account == "" {
		account = "AUX"
	}
	return ContentItem{
		Source:        SourceAux,
		SourceAccount: account,
	}
}
