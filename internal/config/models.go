package config

import (
	"time"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/discovery"
)

// Config represents the entire bridge configuration file.
type Config struct {
	// LogLevel controls logging verbosity ("debug", "info", "warn",
	// "error"). Empty means silent unless SOUNDTOUCH_LOG_LEVEL is set.
	LogLevel string `yaml:"log_level,omitempty"`

	API       APIConfig       `yaml:"api"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Devices   []DeviceConfig  `yaml:"devices,omitempty"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
}

// APIConfig configures the bridge REST listener.
type APIConfig struct {
	// Listen is the bind address for the REST API (default ":8095")
	Listen string `yaml:"listen"`
}

// DiscoveryConfig controls continuous mDNS discovery. Statically
// configured devices are served regardless of this setting.
type DiscoveryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DeviceConfig is one statically configured speaker.
type DeviceConfig struct {
	Name      string `yaml:"name,omitempty"`       // User-friendly name (e.g., "Living Room")
	Host      string `yaml:"host"`                 // IP address or hostname (required)
	Port      int    `yaml:"port,omitempty"`       // HTTP command port (default 8090)
	EventPort int    `yaml:"event_port,omitempty"` // WebSocket push port (default 8080)
}

// TimeoutsConfig holds the timing knobs, all in whole seconds.
type TimeoutsConfig struct {
	RequestSeconds   int `yaml:"request_seconds,omitempty"`   // Per-call HTTP timeout
	ReconnectSeconds int `yaml:"reconnect_seconds,omitempty"` // Event stream reconnect delay
	HeartbeatSeconds int `yaml:"heartbeat_seconds,omitempty"` // Event stream heartbeat interval
}

// Default returns the configuration used when no config file exists:
// continuous discovery on, no static devices, default ports and timeouts.
func Default() *Config {
	cfg := &Config{
		Discovery: DiscoveryConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Endpoint converts a static device entry into a discovery endpoint.
func (d DeviceConfig) Endpoint() discovery.Endpoint {
	return discovery.Endpoint{
		Name:      d.Name,
		Host:      d.Host,
		Port:      d.Port,
		EventPort: d.EventPort,
	}
}

// Endpoints converts all statically configured devices.
func (c *Config) Endpoints() []discovery.Endpoint {
	endpoints := make([]discovery.Endpoint, 0, len(c.Devices))
	for _, d := range c.Devices {
		endpoints = append(endpoints, d.Endpoint())
	}
	return endpoints
}

// RequestTimeout returns the per-call HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeouts.RequestSeconds) * time.Second
}

// ReconnectDelay returns the event stream reconnect delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Timeouts.ReconnectSeconds) * time.Second
}

// HeartbeatInterval returns the event stream heartbeat interval.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Timeouts.HeartbeatSeconds) * time.Second
}
