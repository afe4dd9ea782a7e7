package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/discovery"
)

const (
	appName    = "soundtouch"
	configFile = "config.yaml"

	// DefaultListen is the default bind address for the bridge REST API
	DefaultListen = ":8095"

	// DefaultRequestSeconds is the default per-call HTTP timeout
	DefaultRequestSeconds = 10

	// DefaultReconnectSeconds is the default event stream reconnect delay
	DefaultReconnectSeconds = 10

	// DefaultHeartbeatSeconds is the default event stream heartbeat interval
	DefaultHeartbeatSeconds = 60
)

// GetConfigDir returns the OS-appropriate configuration directory for the
// application. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/soundtouch or $HOME/.config/soundtouch
//   - macOS: $HOME/.config/soundtouch (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\soundtouch
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the default configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads and validates the bridge configuration. An empty path falls
// back to the platform config path, where a missing file yields the
// default configuration. An explicitly given path must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		defaultPath, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
			return Default(), nil
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills omitted fields. Only zero values are replaced, so
// negative timeouts survive for Validate to reject.
func (c *Config) applyDefaults() {
	if c.API.Listen == "" {
		c.API.Listen = DefaultListen
	}
	if c.Timeouts.RequestSeconds == 0 {
		c.Timeouts.RequestSeconds = DefaultRequestSeconds
	}
	if c.Timeouts.ReconnectSeconds == 0 {
		c.Timeouts.ReconnectSeconds = DefaultReconnectSeconds
	}
	if c.Timeouts.HeartbeatSeconds == 0 {
		c.Timeouts.HeartbeatSeconds = DefaultHeartbeatSeconds
	}
	for i := range c.Devices {
		if c.Devices[i].Port == 0 {
			c.Devices[i].Port = discovery.DefaultPort
		}
		if c.Devices[i].EventPort == 0 {
			c.Devices[i].EventPort = discovery.DefaultEventPort
		}
	}
}

// Validate checks the configuration for errors that would break the
// bridge at runtime.
func (c *Config) Validate() error {
	seen := make(map[string]int)
	for i, d := range c.Devices {
		if d.Host == "" {
			return fmt.Errorf("devices[%d]: host is required", i)
		}
		key := d.Endpoint().Key()
		if j, dup := seen[key]; dup {
			return fmt.Errorf("devices[%d]: address %s already configured by devices[%d]", i, key, j)
		}
		seen[key] = i
	}

	if c.Timeouts.RequestSeconds <= 0 {
		return fmt.Errorf("timeouts: request_seconds must be positive, got %d", c.Timeouts.RequestSeconds)
	}
	if c.Timeouts.ReconnectSeconds <= 0 {
		return fmt.Errorf("timeouts: reconnect_seconds must be positive, got %d", c.Timeouts.ReconnectSeconds)
	}
	if c.Timeouts.HeartbeatSeconds <= 0 {
		return fmt.Errorf("timeouts: heartbeat_seconds must be positive, got %d", c.Timeouts.HeartbeatSeconds)
	}

	return nil
}

// Save writes the configuration to disk. Performs an atomic write to
// prevent corruption on crash. An empty path uses the platform config
// path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		configPath, err := GetConfigPath()
		if err != nil {
			return err
		}
		// Create directory with user-only permissions (0700)
		if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		path = configPath
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SoundTouch bridge configuration file
#
# Statically configured speakers are listed under "devices", e.g.:
#
#   devices:
#     - name: Living Room
#       host: 192.168.1.24
#       port: 8090
#       event_port: 8080
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}
