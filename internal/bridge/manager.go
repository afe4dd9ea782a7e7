package bridge

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/discovery"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/logging"
)

// Manager owns the set of tracked speakers. It starts a controller for
// every statically configured endpoint and, when discovery is enabled,
// reconciles continuously discovered speakers against that set. Static
// endpoints always win address conflicts: they are never replaced by a
// discovered entry and never dropped on a goodbye announcement.
type Manager struct {
	opts      ControllerOptions
	browser   *discovery.Browser
	discover  bool
	endpoints []discovery.Endpoint // static endpoints from configuration

	mu          sync.Mutex
	controllers map[string]*Controller // endpoint key -> controller
	static      map[string]bool        // keys owned by static configuration
	started     bool
	stopped     bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager for the given static endpoints. When
// discover is true, Start also launches continuous mDNS discovery.
func NewManager(static []discovery.Endpoint, discover bool, opts ControllerOptions) *Manager {
	m := &Manager{
		opts:        opts,
		browser:     discovery.NewBrowser(static...),
		discover:    discover,
		endpoints:   static,
		controllers: make(map[string]*Controller),
		static:      make(map[string]bool),
	}
	for _, ep := range static {
		m.static[ep.Key()] = true
	}
	return m
}

// Start launches controllers for every static endpoint and, when
// enabled, begins continuous discovery. A discovery failure is logged
// and the static set keeps running.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	for _, ep := range m.endpoints {
		m.startControllerLocked(ep)
	}
	m.mu.Unlock()

	if !m.discover {
		return
	}

	notifications, err := m.browser.Browse(ctx)
	if err != nil {
		logging.Warn("Continuous discovery unavailable, serving static devices only",
			zap.Error(err))
		return
	}

	m.wg.Add(1)
	go m.watchDiscovery(notifications)
}

// Stop halts discovery and stops every controller. It blocks until all
// device connections are torn down. Safe to call more than once.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	cancel := m.cancel

	controllers := make([]*Controller, 0, len(m.controllers))
	for _, ctrl := range m.controllers {
		controllers = append(controllers, ctrl)
	}
	m.controllers = make(map[string]*Controller)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	for _, ctrl := range controllers {
		ctrl.Stop()
	}
}

// Controller returns the controller for an endpoint key (host:port).
func (m *Manager) Controller(key string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.controllers[key]
	return ctrl, ok
}

// Controllers returns every tracked controller, sorted by key for
// stable listings.
func (m *Manager) Controllers() []*Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	controllers := make([]*Controller, 0, len(m.controllers))
	for _, ctrl := range m.controllers {
		controllers = append(controllers, ctrl)
	}
	sort.Slice(controllers, func(i, j int) bool {
		return controllers[i].Key() < controllers[j].Key()
	})
	return controllers
}

// watchDiscovery consumes continuous-browse notifications until the
// browse context is cancelled.
func (m *Manager) watchDiscovery(notifications <-chan discovery.Notification) {
	defer m.wg.Done()
	for n := range notifications {
		switch n.Type {
		case discovery.Added:
			m.addDiscovered(n.Endpoint)
		case discovery.Removed:
			m.removeDiscovered(n.Endpoint)
		}
	}
}

// addDiscovered starts a controller for a newly discovered speaker
// unless its address is already tracked.
func (m *Manager) addDiscovered(ep discovery.Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	if _, ok := m.controllers[ep.Key()]; ok {
		// The browser suppresses static addresses; this guards a racing
		// duplicate announcement.
		return
	}
	m.startControllerLocked(ep)
}

// removeDiscovered stops and drops the controller for a departed
// speaker. Static addresses are never removed.
func (m *Manager) removeDiscovered(ep discovery.Endpoint) {
	key := ep.Key()

	m.mu.Lock()
	if m.static[key] {
		m.mu.Unlock()
		return
	}
	ctrl, ok := m.controllers[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.controllers, key)
	m.mu.Unlock()

	// Stop blocks on connection teardown; run it outside the lock
	ctrl.Stop()
	logging.Info("Stopped tracking departed speaker",
		zap.String("name", ep.Name),
		zap.String("device_addr", key))
}

func (m *Manager) startControllerLocked(ep discovery.Endpoint) {
	ctrl := NewController(ep, m.opts)
	if err := ctrl.Start(); err != nil {
		logging.Error("Failed to start device controller",
			zap.String("device_addr", ep.Key()),
			zap.Error(err))
		return
	}
	m.controllers[ep.Key()] = ctrl
	logging.Info("Tracking speaker",
		zap.String("name", ep.Name),
		zap.String("device_addr", ep.Key()),
		zap.Bool("static", m.static[ep.Key()]))
}
