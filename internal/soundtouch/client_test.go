package soundtouch

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.1.40", 8090)

	if client.BaseURL != "http://192.168.1.40:8090" {
		t.Errorf("BaseURL = %s, want http://192.168.1.40:8090", client.BaseURL)
	}
	if client.HTTPClient == nil {
		t.Error("HTTPClient should not be nil")
	}
	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
}

func TestNewClient_DefaultPort(t *testing.T) {
	client := NewClient("192.168.1.40", 0)

	if client.BaseURL != "http://192.168.1.40:8090" {
		t.Errorf("BaseURL = %s, want default port 8090", client.BaseURL)
	}
}

func TestSetTimeout(t *testing.T) {
	client := NewClient("192.168.1.40", 8090)
	client.SetTimeout(5 * time.Second)

	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.HTTPClient.Timeout)
	}
}

func TestVolume_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Request method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/volume" {
			t.Errorf("Request path = %s, want /volume", r.URL.Path)
		}
		w.Write([]byte(mockVolumeResponse))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	vol, err := client.Volume()

	if err != nil {
		t.Fatalf("Volume() error = %v, want nil", err)
	}
	if vol.Actual != 40 {
		t.Errorf("Actual = %d, want 40", vol.Actual)
	}
}

func TestVolume_GarbageResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<<<definitely not XML"))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Volume()

	if err == nil {
		t.Fatal("Volume() should return error for garbage response")
	}
	if !IsDecodeError(err) {
		t.Errorf("error should be decode error, got %T: %v", err, err)
	}
}

func TestInfo_ProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<errors deviceID="689E19653E96"><error value="404">unknown</error></errors>`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Info()

	if err == nil {
		t.Fatal("Info() should return error for 404")
	}
	if !IsProtocolError(err) {
		t.Fatalf("error should be protocol error, got %T: %v", err, err)
	}

	devErr := err.(*DeviceError)
	if devErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", devErr.StatusCode)
	}
	if !strings.Contains(devErr.Body, "unknown") {
		t.Errorf("Body should preserve the device response, got: %s", devErr.Body)
	}
	if devErr.Retryable {
		t.Error("protocol errors should not be retryable")
	}
}

func TestVolume_NetworkFailure(t *testing.T) {
	// TEST-NET-1 (guaranteed unreachable)
	client := NewClient("192.0.2.1", 8090)
	client.SetTimeout(100 * time.Millisecond)

	_, err := client.Volume()

	if err == nil {
		t.Fatal("Volume() should return error for network failure")
	}
	if !IsTransportError(err) {
		t.Errorf("error should be transport error, got %T: %v", err, err)
	}
	if !IsRetryable(err) {
		t.Error("transport errors should be retryable")
	}
}

func TestSetVolume_RoundsAndClamps(t *testing.T) {
	tests := []struct {
		name     string
		level    float64
		wantBody string
	}{
		{"integer passes through", 30, "<volume>30</volume>"},
		{"clamps above range", 150, "<volume>100</volume>"},
		{"clamps below range", -5, "<volume>0</volume>"},
		{"rounds half away from zero", 42.5, "<volume>43</volume>"},
		{"rounds down below half", 42.4, "<volume>42</volume>"},
		{"upper boundary", 100, "<volume>100</volume>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receivedBody := ""

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != "POST" {
					t.Errorf("Request method = %s, want POST", r.Method)
				}
				body, _ := io.ReadAll(r.Body)
				receivedBody = string(body)
			}))
			defer server.Close()

			client := NewClientWithURL(server.URL)
			if err := client.SetVolume(tt.level); err != nil {
				t.Fatalf("SetVolume(%v) error = %v, want nil", tt.level, err)
			}

			if receivedBody != tt.wantBody {
				t.Errorf("body = %s, want %s", receivedBody, tt.wantBody)
			}
		})
	}
}

func TestSetBass_RoundsWithoutClamping(t *testing.T) {
	receivedBody := ""

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)

	// The valid bass range varies per hardware, so out-of-range values are
	// left to the device to reject.
	if err := client.SetBass(-14.6); err != nil {
		t.Fatalf("SetBass() error = %v, want nil", err)
	}

	if receivedBody != "<bass>-15</bass>" {
		t.Errorf("body = %s, want <bass>-15</bass>", receivedBody)
	}
}

func TestPressKey_TwoPhase(t *testing.T) {
	var receivedBodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key" {
			t.Errorf("Request path = %s, want /key", r.URL.Path)
		}
		contentType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "text/xml") {
			t.Errorf("Content-Type = %s, want text/xml", contentType)
		}
		body, _ := io.ReadAll(r.Body)
		receivedBodies = append(receivedBodies, string(body))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	if err := client.PressKey(KeyPlay); err != nil {
		t.Fatalf("PressKey() error = %v, want nil", err)
	}

	if len(receivedBodies) != 2 {
		t.Fatalf("key requests = %d, want 2 (press then release)", len(receivedBodies))
	}
	if !strings.Contains(receivedBodies[0], `state="press"`) {
		t.Errorf("first request should be press, got: %s", receivedBodies[0])
	}
	if !strings.Contains(receivedBodies[1], `state="release"`) {
		t.Errorf("second request should be release, got: %s", receivedBodies[1])
	}
	for _, body := range receivedBodies {
		if !strings.Contains(body, ">PLAY<") {
			t.Errorf("request should carry the key name, got: %s", body)
		}
		if !strings.Contains(body, `sender="Gabbo"`) {
			t.Errorf("request should carry the sender, got: %s", body)
		}
	}
}

func TestPressKey_FailedPressSuppressesRelease(t *testing.T) {
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	err := client.PressKey(KeyPower)

	if err == nil {
		t.Fatal("PressKey() should return error when press fails")
	}
	if !IsProtocolError(err) {
		t.Errorf("error should be protocol error, got %T: %v", err, err)
	}
	if requestCount != 1 {
		t.Errorf("key requests = %d, want 1 (release suppressed after failed press)", requestCount)
	}
}

func TestSetMuted_AlreadyInRequestedState(t *testing.T) {
	keyRequests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volume":
			fmt.Fprint(w, `<volume deviceID="689E19653E96"><targetvolume>42</targetvolume><actualvolume>42</actualvolume><muteenabled>true</muteenabled></volume>`)
		case "/key":
			keyRequests++
		}
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	if err := client.SetMuted(true); err != nil {
		t.Fatalf("SetMuted(true) error = %v, want nil", err)
	}

	if keyRequests != 0 {
		t.Errorf("key requests = %d, want 0 (already muted)", keyRequests)
	}
}

func TestSetMuted_TogglesWhenDifferent(t *testing.T) {
	var keyBodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volume":
			fmt.Fprint(w, mockVolumeResponse) // muteenabled false
		case "/key":
			body, _ := io.ReadAll(r.Body)
			keyBodies = append(keyBodies, string(body))
		}
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	if err := client.SetMuted(true); err != nil {
		t.Fatalf("SetMuted(true) error = %v, want nil", err)
	}

	if len(keyBodies) != 2 {
		t.Fatalf("key requests = %d, want 2 (press and release)", len(keyBodies))
	}
	if !strings.Contains(keyBodies[0], ">MUTE<") {
		t.Errorf("toggle should press MUTE, got: %s", keyBodies[0])
	}
}

func TestSetPowered_AlreadyOff(t *testing.T) {
	keyRequests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/now_playing":
			fmt.Fprint(w, mockStandbyResponse)
		case "/key":
			keyRequests++
		}
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	if err := client.SetPowered(false); err != nil {
		t.Fatalf("SetPowered(false) error = %v, want nil", err)
	}

	if keyRequests != 0 {
		t.Errorf("key requests = %d, want 0 (already in standby)", keyRequests)
	}
}

func TestSetPowered_TogglesOn(t *testing.T) {
	var keyBodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/now_playing":
			fmt.Fprint(w, mockStandbyResponse)
		case "/key":
			body, _ := io.ReadAll(r.Body)
			keyBodies = append(keyBodies, string(body))
		}
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	if err := client.SetPowered(true); err != nil {
		t.Fatalf("SetPowered(true) error = %v, want nil", err)
	}

	if len(keyBodies) != 2 {
		t.Fatalf("key requests = %d, want 2 (press and release)", len(keyBodies))
	}
	if !strings.Contains(keyBodies[0], ">POWER<") {
		t.Errorf("toggle should press POWER, got: %s", keyBodies[0])
	}
}

func TestPoweredOn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mockNowPlayingResponse)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	on, err := client.PoweredOn()

	if err != nil {
		t.Fatalf("PoweredOn() error = %v, want nil", err)
	}
	if !on {
		t.Error("PoweredOn() = false, want true while playing")
	}
}

func TestSelect_SendsContentItem(t *testing.T) {
	receivedBody := ""

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/select" {
			t.Errorf("Request path = %s, want /select", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	if err := client.Select(TuneInStationItem("s24950", "Radio Paradise")); err != nil {
		t.Fatalf("Select() error = %v, want nil", err)
	}

	if !strings.Contains(receivedBody, `source="TUNEIN"`) {
		t.Errorf("body should carry the source, got: %s", receivedBody)
	}
	if !strings.Contains(receivedBody, `location="/v1/playback/station/s24950"`) {
		t.Errorf("body should carry the station location, got: %s", receivedBody)
	}
	if !strings.Contains(receivedBody, "<itemName>Radio Paradise</itemName>") {
		t.Errorf("body should carry the item name, got: %s", receivedBody)
	}
}

func TestCreateZone_SendsMasterAndMembers(t *testing.T) {
	receivedBody := ""

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/setZone" {
			t.Errorf("Request path = %s, want /setZone", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	zone := Zone{
		Master: "689E19653E96",
		Members: []ZoneMember{
			{IPAddress: "192.168.1.41", DeviceID: "9884E3AB12CD"},
		},
	}
	if err := client.CreateZone(zone); err != nil {
		t.Fatalf("CreateZone() error = %v, want nil", err)
	}

	if !strings.Contains(receivedBody, `master="689E19653E96"`) {
		t.Errorf("body should carry the master, got: %s", receivedBody)
	}
	if !strings.Contains(receivedBody, `ipaddress="192.168.1.41"`) {
		t.Errorf("body should carry the member address, got: %s", receivedBody)
	}
	if !strings.Contains(receivedBody, ">9884E3AB12CD<") {
		t.Errorf("body should carry the member device ID, got: %s", receivedBody)
	}
}

func TestName_GetAndSet(t *testing.T) {
	receivedBody := ""

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/name" {
			t.Errorf("Request path = %s, want /name", r.URL.Path)
		}
		if r.Method == "POST" {
			body, _ := io.ReadAll(r.Body)
			receivedBody = string(body)
			return
		}
		fmt.Fprint(w, `<name deviceID="689E19653E96">Living Room</name>`)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)

	name, err := client.Name()
	if err != nil {
		t.Fatalf("Name() error = %v, want nil", err)
	}
	if name != "Living Room" {
		t.Errorf("Name() = %s, want Living Room", name)
	}

	if err := client.SetName("Kitchen"); err != nil {
		t.Fatalf("SetName() error = %v, want nil", err)
	}
	if receivedBody != "<name>Kitchen</name>" {
		t.Errorf("body = %s, want <name>Kitchen</name>", receivedBody)
	}
}

func TestStorePreset(t *testing.T) {
	receivedBody := ""

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storePreset" {
			t.Errorf("Request path = %s, want /storePreset", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	preset := Preset{
		ID:      2,
		Content: TuneInStationItem("s28589", "BBC 6 Music"),
	}
	if err := client.StorePreset(preset); err != nil {
		t.Fatalf("StorePreset() error = %v, want nil", err)
	}

	if !strings.Contains(receivedBody, `id="2"`) {
		t.Errorf("body should carry the slot id, got: %s", receivedBody)
	}
	if !strings.Contains(receivedBody, `location="/v1/playback/station/s28589"`) {
		t.Errorf("body should carry the content location, got: %s", receivedBody)
	}
}

func TestSelectPreset_InvalidSlot(t *testing.T) {
	client := NewClient("192.168.1.40", 8090)

	if err := client.SelectPreset(0); err == nil {
		t.Error("SelectPreset(0) should return error")
	}
	if err := client.SelectPreset(7); err == nil {
		t.Error("SelectPreset(7) should return error")
	}
}
