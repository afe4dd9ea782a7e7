package bridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/logging"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/soundtouch"
)

const (
	contentType = "Content-Type"
	contentJSON = "application/json"
)

// API serves the bridge's REST surface. Devices are addressed by their
// host:port key, so URLs stay stable across renames while discovery churns.
type API struct {
	manager *Manager
	router  *mux.Router
}

// NewAPI builds the REST handler on top of a manager.
func NewAPI(manager *Manager) *API {
	a := &API{manager: manager}
	a.routes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *API) routes() {
	a.router = mux.NewRouter()

	api := a.router.PathPrefix("/api").Subrouter()
	api.Use(logRequests)

	api.HandleFunc("/devices", a.handleListDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}", a.handleGetDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}/volume", a.handleSetVolume).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/mute", a.handleSetMute).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/power", a.handleSetPower).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/key", a.handlePressKey).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/preset", a.handleSelectPreset).Methods(http.MethodPost)
}

// deviceView is the JSON projection of a controller's cached state.
type deviceView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name,omitempty"`
	Host       string       `json:"host"`
	Port       int          `json:"port"`
	EventPort  int          `json:"event_port"`
	DeviceID   string       `json:"device_id,omitempty"`
	Model      string       `json:"model,omitempty"`
	Reachable  bool         `json:"reachable"`
	Connection string       `json:"connection"`
	PoweredOn  bool         `json:"powered_on"`
	Source     string       `json:"source,omitempty"`
	Track      string       `json:"track,omitempty"`
	Artist     string       `json:"artist,omitempty"`
	Album      string       `json:"album,omitempty"`
	Station    string       `json:"station,omitempty"`
	PlayStatus string       `json:"play_status,omitempty"`
	Volume     int          `json:"volume"`
	Muted      bool         `json:"muted"`
	Bass       int          `json:"bass"`
	Presets    []presetView `json:"presets,omitempty"`
	Zone       *zoneView    `json:"zone,omitempty"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type presetView struct {
	Slot     int    `json:"slot"`
	Name     string `json:"name,omitempty"`
	Source   string `json:"source,omitempty"`
	Location string `json:"location,omitempty"`
}

type zoneView struct {
	Master  string   `json:"master"`
	Members []string `json:"members,omitempty"`
}

func viewOf(state DeviceState) deviceView {
	name := state.Endpoint.Name
	if name == "" {
		name = state.Info.Name
	}

	view := deviceView{
		ID:         state.Endpoint.Key(),
		Name:       name,
		Host:       state.Endpoint.Host,
		Port:       state.Endpoint.Port,
		EventPort:  state.Endpoint.EventPort,
		DeviceID:   state.Info.DeviceID,
		Model:      state.Info.Type,
		Reachable:  state.Reachable,
		Connection: state.Connection.String(),
		PoweredOn:  state.NowPlaying.PoweredOn(),
		Source:     string(state.NowPlaying.Source),
		Track:      state.NowPlaying.Track,
		Artist:     state.NowPlaying.Artist,
		Album:      state.NowPlaying.Album,
		Station:    state.NowPlaying.StationName,
		PlayStatus: string(state.NowPlaying.PlayStatus),
		Volume:     state.Volume.Actual,
		Muted:      state.Volume.Muted,
		Bass:       state.Bass.Actual,
		UpdatedAt:  state.UpdatedAt,
	}

	for _, preset := range state.Presets {
		view.Presets = append(view.Presets, presetView{
			Slot:     preset.ID,
			Name:     preset.Content.Name,
			Source:   string(preset.Content.Source),
			Location: preset.Content.Location,
		})
	}

	if state.Zone.IsActive() {
		zone := &zoneView{Master: state.Zone.Master}
		for _, member := range state.Zone.Members {
			zone.Members = append(zone.Members, member.DeviceID)
		}
		view.Zone = zone
	}

	return view
}

func (a *API) handleListDevices(w http.ResponseWriter, r *http.Request) {
	controllers := a.manager.Controllers()

	views := make([]deviceView, 0, len(controllers))
	for _, ctrl := range controllers {
		views = append(views, viewOf(ctrl.State()))
	}

	writeJSON(w, views, http.StatusOK)
}

func (a *API) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, viewOf(ctrl.State()), http.StatusOK)
}

func (a *API) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Volume *float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Volume == nil {
		writeError(w, "request body must be JSON with a numeric volume field", http.StatusBadRequest)
		return
	}

	if err := ctrl.SetVolume(*req.Volume); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, viewOf(ctrl.State()), http.StatusOK)
}

func (a *API) handleSetMute(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Muted *bool `json:"muted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Muted == nil {
		writeError(w, "request body must be JSON with a boolean muted field", http.StatusBadRequest)
		return
	}

	if err := ctrl.SetMuted(*req.Muted); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, viewOf(ctrl.State()), http.StatusOK)
}

func (a *API) handleSetPower(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		On *bool `json:"on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.On == nil {
		writeError(w, "request body must be JSON with a boolean on field", http.StatusBadRequest)
		return
	}

	if err := ctrl.SetPowered(*req.On); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, viewOf(ctrl.State()), http.StatusOK)
}

func (a *API) handlePressKey(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, "request body must be JSON with a key field", http.StatusBadRequest)
		return
	}

	key, err := soundtouch.ParseKey(req.Key)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := ctrl.PressKey(key); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, viewOf(ctrl.State()), http.StatusOK)
}

func (a *API) handleSelectPreset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Preset *int `json:"preset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Preset == nil {
		writeError(w, "request body must be JSON with a numeric preset field", http.StatusBadRequest)
		return
	}

	if _, err := soundtouch.PresetKey(*req.Preset); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := ctrl.SelectPreset(*req.Preset); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, viewOf(ctrl.State()), http.StatusOK)
}

// lookup resolves the {id} path variable to a controller, answering 404
// itself when the device is unknown.
func (a *API) lookup(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	id := mux.Vars(r)["id"]
	ctrl, ok := a.manager.Controller(id)
	if !ok {
		writeError(w, "unknown device "+id, http.StatusNotFound)
		return nil, false
	}
	return ctrl, true
}

func writeJSON(w http.ResponseWriter, obj interface{}, code int) {
	w.Header().Set(contentType, contentJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		logging.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, map[string]string{"error": message}, code)
}

// writeOpError maps a failed speaker operation to a status code. The bridge
// is a gateway: failures reaching or understanding the device surface as
// 502 so clients can tell them from bridge-side faults.
func writeOpError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if soundtouch.IsTransportError(err) || soundtouch.IsProtocolError(err) || soundtouch.IsDecodeError(err) {
		code = http.StatusBadGateway
	}
	writeError(w, err.Error(), code)
}

// statusRecorder captures the status code a handler writes so the request
// log can include it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
