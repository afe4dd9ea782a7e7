// Soundtouch-bridge is a smart home bridge daemon for Bose SoundTouch
// speakers.
//
// It maintains a live controller per speaker (HTTP command client plus
// WebSocket push stream), discovers speakers over mDNS, and exposes a REST
// API for automation platforms to read state and drive playback, volume
// and power.
//
// Usage:
//
//	soundtouch-bridge serve [flags]
//
// See 'soundtouch-bridge serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/bridge"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/config"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/logging"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "soundtouch-bridge",
	Short: "SoundTouch Smart Home Bridge",
	Long: `A smart home bridge daemon for Bose SoundTouch speakers.

The bridge keeps one controller per speaker: an HTTP client for commands
and queries plus a WebSocket stream for push notifications, so speaker
state is served from a live cache instead of per-request device round
trips. Speakers are found via mDNS discovery, static configuration, or
both, and exposed over a REST API.

Note: For one-off speaker control from the terminal, use the separate
'soundtouch' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	configPath string
	listenAddr string
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge",
	Long: `Start the bridge: connect the configured speakers, begin mDNS
discovery when enabled, and serve the REST API.

The bridge runs until interrupted. On SIGINT or SIGTERM it stops the
listener, discovery and every speaker controller before exiting.`,
	Example: `  # Start with the platform config file (or defaults when absent)
  soundtouch-bridge serve

  # Start with an explicit config file
  soundtouch-bridge serve --config /etc/soundtouch/config.yaml

  # Override the listen address and raise verbosity
  soundtouch-bridge serve --listen :9000 --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: platform config path)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "REST API bind address (overrides config)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.API.Listen = listenAddr
	}

	// Flag wins, then environment, then the config file
	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LogLevelEnvVar)
	}
	if level == "" {
		level = cfg.LogLevel
	}
	if err := logging.Initialize(level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	manager := bridge.NewManager(cfg.Endpoints(), cfg.Discovery.Enabled, bridge.ControllerOptions{
		RequestTimeout:    cfg.RequestTimeout(),
		ReconnectDelay:    cfg.ReconnectDelay(),
		HeartbeatInterval: cfg.HeartbeatInterval(),
	})

	return bridge.NewServer(cfg.API.Listen, manager).Start()
}

// initCmd writes a starter configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a starter configuration file with the defaults filled in,
ready to be edited.

Refuses to overwrite an existing file.`,
	Example: `  # Write to the platform config path
  soundtouch-bridge init

  # Write to an explicit path
  soundtouch-bridge init --config ./config.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: platform config path)")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	cfg := config.Default()
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Wrote starter config to %s\n", path)
	fmt.Println("Edit it to pin static speakers or disable discovery, then run 'soundtouch-bridge serve'")
	return nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("soundtouch-bridge %s (commit: %s)\n", version.Version, version.Commit)
	},
}
