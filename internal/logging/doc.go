// Package logging provides structured logging for the SoundTouch bridge.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the bridge. It provides both general logging functions
// and specialized functions for protocol-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, dropped frames, heartbeats)
//   - Info: Normal operations (connections, push events, state changes)
//   - Warn: Non-fatal issues (connection drops, reconnects)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device discovered",
//	    zap.String("device_addr", "192.168.1.40:8090"),
//	    zap.String("name", "Living Room"),
//	    zap.String("device_id", "689E19653E96"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Connection Logging:
//
//	logging.LogConnection(deviceAddr, "connecting")
//	logging.LogConnection(deviceAddr, "connected")
//	logging.LogConnection(deviceAddr, "reconnect_pending")
//	logging.LogConnection(deviceAddr, "disconnected")
//
// WebSocket Message Logging:
//
//	logging.LogWebSocketMessage(deviceAddr, "received", msgType, payload)
//	logging.LogWebSocketMessage(deviceAddr, "sent", msgType, payload)
//
// HTTP Request Logging:
//
//	logging.LogHTTPRequest(remoteAddr, method, path, statusCode, duration)
//
// # Configuration
//
// Initialize logging at bridge startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CLI commands use InitializeFromEnv instead, which stays silent unless
// SOUNDTOUCH_LOG_LEVEL is set.
//
// # Output Format
//
// Logs are written to stdout in console format (human-readable) for development
// and can be configured for JSON format in production:
//
//	2025-11-25T10:30:45.123-0800  INFO  Connection event
//	  device_addr=192.168.1.40:8080
//	  event=connected
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
