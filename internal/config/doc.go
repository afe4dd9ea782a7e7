// Package config loads and validates the bridge configuration file.
//
// The configuration is a YAML file naming the statically configured
// speakers, the REST API bind address, the discovery switch, and the
// timing knobs shared by every device connection:
//
//	log_level: info
//	api:
//	  listen: ":8095"
//	discovery:
//	  enabled: true
//	devices:
//	  - name: Living Room
//	    host: 192.168.1.24
//	    port: 8090
//	    event_port: 8080
//	timeouts:
//	  request_seconds: 10
//	  reconnect_seconds: 10
//	  heartbeat_seconds: 60
//
// # Configuration File Location
//
// When no path is given, the file is looked up in platform-appropriate
// locations:
//   - Linux: $XDG_CONFIG_HOME/soundtouch/config.yaml or $HOME/.config/soundtouch/config.yaml
//   - macOS: $HOME/.config/soundtouch/config.yaml
//   - Windows: %LOCALAPPDATA%\soundtouch\config.yaml
//
// A missing file at the default location yields Default(): continuous
// discovery on, no static devices. An explicitly given path must exist.
//
// # Defaults and Validation
//
// Load fills omitted fields (ports 8090/8080, listen ":8095", timeouts
// 10/10/60 seconds) and rejects devices without a host, duplicate
// host:port pairs, and negative timeouts.
package config
