package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/logging"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/soundtouch"
)

const (
	// ServiceType is the DNS-SD service type SoundTouch speakers announce
	ServiceType = "_soundtouch._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for one-shot discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP command port for SoundTouch speakers
	DefaultPort = 8090

	// DefaultEventPort is the default WebSocket push-stream port
	DefaultEventPort = 8080

	// notifyBuffer sizes the continuous-browse notification channel
	notifyBuffer = 16
)

// NotificationType classifies a change reported by continuous browsing.
type NotificationType int

const (
	// Added reports a speaker seen for the first time in this session.
	Added NotificationType = iota

	// Removed reports a previously added speaker announcing departure.
	Removed
)

// String returns the lowercase name of the notification type.
func (t NotificationType) String() string {
	switch t {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Notification reports one change to the set of reachable speakers.
type Notification struct {
	Type     NotificationType
	Endpoint Endpoint
}

// Browser finds SoundTouch speakers via mDNS. It supports one-shot scans
// and continuous browsing; the two modes keep independent device sets.
type Browser struct {
	// Timeout is the maximum time a one-shot Scan waits for announcements
	Timeout time.Duration

	// EventPort is stamped onto every discovered endpoint; speakers only
	// announce their command port
	EventPort int

	mu      sync.Mutex
	tracked map[string]Endpoint // endpoint key -> endpoint, continuous session
	static  map[string]bool     // keys owned by static configuration
	names   map[string]string   // lowercased instance name -> endpoint key
}

// NewBrowser creates a Browser seeded with statically configured
// endpoints. Seeded addresses are pre-tracked: continuous browsing never
// re-adds them, never removes them, and never replaces them with a
// discovered entry sharing the address.
func NewBrowser(static ...Endpoint) *Browser {
	b := &Browser{
		Timeout:   DefaultScanTimeout,
		EventPort: DefaultEventPort,
		tracked:   make(map[string]Endpoint),
		static:    make(map[string]bool),
		names:     make(map[string]string),
	}
	for _, ep := range static {
		key := ep.Key()
		b.tracked[key] = ep
		b.static[key] = true
	}
	return b
}

// Scan browses for speakers until the timeout elapses and returns every
// distinct endpoint seen, deduplicated by host:port. The result set is
// independent of any continuous Browse session.
func (b *Browser) Scan(ctx context.Context) ([]Endpoint, error) {
	scanCtx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, soundtouch.NewDiscoveryError("failed to create mDNS resolver", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)

	var mu sync.Mutex
	seen := make(map[string]bool)
	found := make([]Endpoint, 0)

	go func() {
		for entry := range entries {
			if entry.TTL == 0 {
				continue
			}
			ep := b.endpointFromEntry(entry)
			if ep == nil {
				continue
			}
			mu.Lock()
			if !seen[ep.Key()] {
				seen[ep.Key()] = true
				found = append(found, *ep)
				logging.Debug("Discovered speaker",
					zap.String("name", ep.Name),
					zap.String("address", ep.Key()))
			}
			mu.Unlock()
		}
	}()

	err = resolver.Browse(scanCtx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, soundtouch.NewDiscoveryError("failed to browse for mDNS services", err)
	}

	// Wait for the scan window to close (timeout or cancellation)
	<-scanCtx.Done()

	mu.Lock()
	defer mu.Unlock()
	logging.Debug("Scan complete", zap.Int("speakers", len(found)))
	return found, nil
}

// Browse starts a continuous browse session and returns a channel of
// add/remove notifications. The channel closes when ctx is cancelled.
// Statically seeded addresses never produce notifications.
func (b *Browser) Browse(ctx context.Context) (<-chan Notification, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, soundtouch.NewDiscoveryError("failed to create mDNS resolver", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	notifications := make(chan Notification, notifyBuffer)

	go func() {
		defer close(notifications)
		for entry := range entries {
			n := b.handleEntry(entry)
			if n == nil {
				continue
			}
			select {
			case notifications <- *n:
			case <-ctx.Done():
				return
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, soundtouch.NewDiscoveryError("failed to browse for mDNS services", err)
	}

	return notifications, nil
}

// handleEntry folds one mDNS announcement into the tracked set and
// returns the resulting notification, or nil when nothing changed.
func (b *Browser) handleEntry(entry *zeroconf.ServiceEntry) *Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry.TTL == 0 {
		return b.removeLocked(entry)
	}

	ep := b.endpointFromEntry(entry)
	if ep == nil {
		return nil
	}

	key := ep.Key()
	if entry.Instance != "" {
		b.names[strings.ToLower(entry.Instance)] = key
	}

	if _, ok := b.tracked[key]; ok {
		// Re-announcement of a tracked address, or an address owned by
		// static configuration. Either way nothing changes.
		return nil
	}

	b.tracked[key] = *ep
	logging.Info("Speaker appeared",
		zap.String("name", ep.Name),
		zap.String("address", key))
	return &Notification{Type: Added, Endpoint: *ep}
}

// removeLocked handles a goodbye announcement (TTL 0). Only addresses
// previously added by discovery produce a Removed notification; static
// addresses and unknown addresses are no-ops.
func (b *Browser) removeLocked(entry *zeroconf.ServiceEntry) *Notification {
	var key string
	if ep := b.endpointFromEntry(entry); ep != nil {
		key = ep.Key()
	} else if k, ok := b.names[strings.ToLower(entry.Instance)]; ok {
		// Goodbye packets often omit address records; fall back to the
		// instance name recorded when the speaker appeared.
		key = k
	}
	if key == "" {
		return nil
	}

	ep, ok := b.tracked[key]
	if !ok || b.static[key] {
		return nil
	}

	delete(b.tracked, key)
	logging.Info("Speaker departed",
		zap.String("name", ep.Name),
		zap.String("address", key))
	return &Notification{Type: Removed, Endpoint: ep}
}

// endpointFromEntry converts a zeroconf service entry to an Endpoint.
// Returns nil if the entry carries no usable address.
func (b *Browser) endpointFromEntry(entry *zeroconf.ServiceEntry) *Endpoint {
	// Prefer an IPv4 address; fall back to the advertised hostname
	var host string
	if len(entry.AddrIPv4) > 0 {
		host = entry.AddrIPv4[0].String()
	} else if entry.HostName != "" {
		host = strings.TrimSuffix(entry.HostName, ".")
	}
	if host == "" {
		return nil
	}

	// Get port (default to 8090 if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Endpoint{
		Name:      entry.Instance,
		Host:      host,
		Port:      port,
		EventPort: b.EventPort,
	}
}

// ScanForSpeakers is a convenience function for a one-shot scan with a
// custom timeout. A non-positive timeout uses the default.
func ScanForSpeakers(ctx context.Context, timeout time.Duration) ([]Endpoint, error) {
	browser := NewBrowser()
	if timeout > 0 {
		browser.Timeout = timeout
	}
	return browser.Scan(ctx)
}
