package discovery

import (
	"fmt"
	"net"
	"strconv"
)

// Endpoint identifies a SoundTouch speaker on the network: where to send
// commands and where to attach the event stream.
type Endpoint struct {
	// Name is the advertised service instance name (e.g., "Living Room"),
	// or the configured name for static entries. Informational only;
	// identity is Key().
	Name string

	// Host is an IPv4 address when the announcement carried one,
	// otherwise the advertised hostname.
	Host string

	// Port is the HTTP command/query port (typically 8090)
	Port int

	// EventPort is the WebSocket push-stream port (typically 8080)
	EventPort int
}

// Key returns the deduplication identity of the endpoint. Two
// announcements sharing host:port are the same speaker regardless of
// the instance name they advertise.
func (e Endpoint) Key() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// BaseURL returns the HTTP base URL for the speaker's command API.
func (e Endpoint) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", e.Host, e.Port)
}

// String returns a human-readable string representation of the endpoint.
func (e Endpoint) String() string {
	if e.Name == "" {
		return fmt.Sprintf("SoundTouch at %s:%d", e.Host, e.Port)
	}
	return fmt.Sprintf("SoundTouch %q at %s:%d", e.Name, e.Host, e.Port)
}
