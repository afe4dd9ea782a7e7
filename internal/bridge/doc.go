// Package bridge runs the long-lived smart-home bridge: one controller per
// SoundTouch speaker, a manager that reconciles the controller set against
// mDNS discovery, and a small REST API for home-automation clients.
//
// # Controllers
//
// A Controller pairs the HTTP control client with the speaker's WebSocket
// event stream and maintains a cached DeviceState. All cache writes happen
// on a single goroutine: push events and refresh results are serialized
// through one loop, so readers always observe a consistent snapshot. The
// full state is re-queried over HTTP each time the event stream connects,
// because pushes only describe changes and anything that happened while
// the socket was down is otherwise lost.
//
// # Device Lifecycle
//
// The Manager starts a controller for every statically configured speaker
// and, when discovery is enabled, for every speaker announced over mDNS.
// Speakers are identified by host:port. Static speakers are pinned: a
// goodbye packet never removes them, and a discovery announcement for the
// same address never replaces them. A discovery failure at startup is not
// fatal; the bridge keeps serving the static set.
//
// # REST API
//
// The API exposes the cached state and the control operations:
//
//	GET  /api/devices              list all tracked speakers
//	GET  /api/devices/{id}         one speaker, id is host:port
//	POST /api/devices/{id}/volume  {"volume": 35}
//	POST /api/devices/{id}/mute    {"muted": true}
//	POST /api/devices/{id}/power   {"on": false}
//	POST /api/devices/{id}/key     {"key": "PLAY"}
//	POST /api/devices/{id}/preset  {"preset": 3}
//
// Reads are served from the cache and never touch the speaker. Writes are
// forwarded synchronously; a speaker that cannot be reached or answers
// with a device error yields 502, an unknown id yields 404, and a malformed
// payload yields 400. Successful writes return the cached device view,
// which reflects the change once the speaker's push notification arrives.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	manager := bridge.NewManager(cfg.Endpoints(), cfg.Discovery.Enabled, bridge.ControllerOptions{
//	    RequestTimeout:    cfg.RequestTimeout(),
//	    ReconnectDelay:    cfg.ReconnectDelay(),
//	    HeartbeatInterval: cfg.HeartbeatInterval(),
//	})
//
//	// Start blocks until shutdown signal or listener error
//	srv := bridge.NewServer(cfg.API.Listen, manager)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles SIGINT and SIGTERM:
//  1. Stop accepting new API requests and drain in-flight ones
//  2. Cancel the discovery browse session
//  3. Disconnect every speaker's event stream
//  4. Flush the logger
//
// # Thread Safety
//
// Manager and Controller methods are safe for concurrent use. The API
// handlers only ever touch them through those methods.
package bridge
