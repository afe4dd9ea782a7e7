package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/discovery"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/eventstream"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/soundtouch"
)

// Messages bridged from the event stream
type streamStateMsg struct {
	state eventstream.ConnectionState
}

type streamEventMsg struct {
	event eventstream.Event
}

type streamErrorMsg struct {
	err error
}

// snapshotMsg carries the HTTP state baseline fetched on each connect.
// Each section is independent so a partially answering device still
// populates what it can.
type snapshotMsg struct {
	info       soundtouch.Info
	infoOK     bool
	nowPlaying soundtouch.NowPlaying
	nowOK      bool
	volume     soundtouch.Volume
	volumeOK   bool
	err        error
}

// watchKeyMap defines key bindings for the watch dashboard
type watchKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Quit},
	}
}

// WatchModel is the live dashboard for a single speaker. It renders a
// spinner until the event stream connects and the first snapshot lands,
// then a panel of playback, volume and connection state kept current by
// push notifications.
type WatchModel struct {
	endpoint discovery.Endpoint
	client   *soundtouch.Client
	stream   *eventstream.Stream

	// msgs carries state changes and errors bridged from the stream
	// callbacks; decoded events arrive on the stream's own channel.
	msgs chan tea.Msg

	connState  eventstream.ConnectionState
	info       soundtouch.Info
	nowPlaying soundtouch.NowPlaying
	volume     soundtouch.Volume
	lastEvent  string
	lastSeen   time.Time
	lastErr    error
	ready      bool
	quitting   bool

	// UI state
	Width    int
	Height   int
	Spinner  spinner.Model
	Progress progress.Model
	Help     help.Model
	Keys     watchKeyMap
}

// NewWatchModel builds a dashboard for the given speaker. The stream must
// not be connected yet; the model registers its callbacks and connects
// during Init.
func NewWatchModel(endpoint discovery.Endpoint, client *soundtouch.Client, stream *eventstream.Stream) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	keys := watchKeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	// Callbacks run on the stream's goroutine; sends must never block
	// the stream, so a full buffer drops the oldest-style update and the
	// next state change repaints anyway.
	msgs := make(chan tea.Msg, 32)
	stream.SetOnStateChange(func(state eventstream.ConnectionState) {
		select {
		case msgs <- streamStateMsg{state: state}:
		default:
		}
	})
	stream.SetOnError(func(err error) {
		select {
		case msgs <- streamErrorMsg{err: err}:
		default:
		}
	})

	return WatchModel{
		endpoint: endpoint,
		client:   client,
		stream:   stream,
		msgs:     msgs,
		Spinner:  s,
		Progress: bar,
		Help:     help.New(),
		Keys:     keys,
	}
}

// Init connects the stream and starts listening for its activity
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.connectStream, m.waitForActivity)
}

// connectStream starts the stream's connection lifecycle
func (m WatchModel) connectStream() tea.Msg {
	if err := m.stream.Connect(); err != nil {
		return streamErrorMsg{err: err}
	}
	return nil
}

// waitForActivity blocks until the stream produces something to show
func (m WatchModel) waitForActivity() tea.Msg {
	select {
	case msg := <-m.msgs:
		return msg
	case ev := <-m.stream.Events():
		return streamEventMsg{event: ev}
	}
}

// fetchSnapshot queries the full state over HTTP. Push frames only carry
// deltas, so each (re)connect needs a fresh baseline.
func (m WatchModel) fetchSnapshot() tea.Msg {
	var snap snapshotMsg
	var err error

	if snap.info, err = m.client.Info(); err == nil {
		snap.infoOK = true
	} else {
		snap.err = err
	}
	if snap.nowPlaying, err = m.client.NowPlaying(); err == nil {
		snap.nowOK = true
	} else {
		snap.err = err
	}
	if snap.volume, err = m.client.Volume(); err == nil {
		snap.volumeOK = true
	} else {
		snap.err = err
	}
	return snap
}

// Update handles messages and updates the model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.stream.Disconnect()
			return m, tea.Quit
		case "r":
			return m, m.fetchSnapshot
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case streamStateMsg:
		m.connState = msg.state
		m.lastSeen = time.Now()
		if msg.state == eventstream.Connected {
			m.lastErr = nil
			return m, tea.Batch(m.fetchSnapshot, m.waitForActivity)
		}
		return m, m.waitForActivity

	case streamErrorMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}
		return m, m.waitForActivity

	case streamEventMsg:
		m = m.applyEvent(msg.event)
		return m, m.waitForActivity

	case snapshotMsg:
		if msg.infoOK {
			m.info = msg.info
		}
		if msg.nowOK {
			m.nowPlaying = msg.nowPlaying
		}
		if msg.volumeOK {
			m.volume = msg.volume
		}
		m.lastErr = msg.err
		if msg.nowOK || msg.volumeOK {
			m.ready = true
		}
		m.lastSeen = time.Now()
		return m, nil
	}

	return m, nil
}

// applyEvent folds one push notification into the displayed state
func (m WatchModel) applyEvent(ev eventstream.Event) WatchModel {
	switch ev.Type {
	case eventstream.VolumeChanged:
		if ev.Volume != nil {
			m.volume = *ev.Volume
		}
	case eventstream.NowPlayingChanged:
		if ev.NowPlaying != nil {
			m.nowPlaying = *ev.NowPlaying
		}
	}
	m.lastEvent = ev.Type.String()
	m.lastSeen = time.Now()
	return m
}

// View renders the dashboard
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	width := m.Width
	if width == 0 {
		width = GetTerminalWidth()
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}

	if !m.ready {
		return m.renderConnecting()
	}
	return m.renderDashboard(width)
}

// renderConnecting shows the spinner until the first snapshot lands
func (m WatchModel) renderConnecting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Connecting to %s...\n", m.Spinner.View(), m.endpoint))
	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  last error: %v", m.lastErr)))
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("  retrying until the speaker answers"))
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render(m.Help.View(m.Keys)))
	b.WriteString("\n")

	return b.String()
}

// renderDashboard shows the live panel
func (m WatchModel) renderDashboard(width int) string {
	title := m.displayName()

	var rows []string
	rows = append(rows, row("Status", m.renderConnState()))
	rows = append(rows, "")
	rows = append(rows, m.renderNowPlaying()...)
	rows = append(rows, "")
	rows = append(rows, row("Volume", m.renderVolume()))

	if m.lastEvent != "" {
		rows = append(rows, "")
		rows = append(rows, row("Last event", fmt.Sprintf("%s at %s", m.lastEvent, m.lastSeen.Format("15:04:05"))))
	}
	if m.lastErr != nil {
		rows = append(rows, "")
		rows = append(rows, DisconnectedStyle.Render(fmt.Sprintf("error: %v", m.lastErr)))
	}

	panel := PanelStyle.Width(width - 4).Render(strings.Join(rows, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		"  "+TitleStyle.Render(title)+"  "+SubtitleStyle.Render(m.endpoint.Key()),
		panel,
		HelpStyle.Render(m.Help.View(m.Keys)),
		"",
	)
}

// displayName prefers the configured name, then the device-reported one
func (m WatchModel) displayName() string {
	if m.endpoint.Name != "" {
		return m.endpoint.Name
	}
	if m.info.Name != "" {
		return m.info.Name
	}
	return "SoundTouch"
}

func (m WatchModel) renderConnState() string {
	switch m.connState {
	case eventstream.Connected:
		return ConnectedStyle.Render("● connected")
	case eventstream.Connecting:
		return ReconnectingStyle.Render("● connecting")
	case eventstream.ReconnectPending:
		return ReconnectingStyle.Render("● reconnecting")
	default:
		return DisconnectedStyle.Render("● disconnected")
	}
}

// renderNowPlaying renders playback rows, hiding fields the source does
// not report
func (m WatchModel) renderNowPlaying() []string {
	if !m.nowPlaying.PoweredOn() {
		return []string{row("Playback", SubtitleStyle.Render("standby"))}
	}

	rows := []string{row("Source", string(m.nowPlaying.Source))}
	if m.nowPlaying.StationName != "" {
		rows = append(rows, row("Station", m.nowPlaying.StationName))
	}
	if m.nowPlaying.Track != "" {
		rows = append(rows, row("Track", m.nowPlaying.Track))
	}
	if m.nowPlaying.Artist != "" {
		rows = append(rows, row("Artist", m.nowPlaying.Artist))
	}
	if m.nowPlaying.Album != "" {
		rows = append(rows, row("Album", m.nowPlaying.Album))
	}
	if m.nowPlaying.PlayStatus != "" {
		rows = append(rows, row("State", string(m.nowPlaying.PlayStatus)))
	}
	return rows
}

func (m WatchModel) renderVolume() string {
	bar := m.Progress.ViewAs(float64(m.volume.Actual) / 100)
	value := fmt.Sprintf("%s %d", bar, m.volume.Actual)
	if m.volume.Muted {
		value += " " + MutedBadgeStyle.Render("[MUTED]")
	}
	return value
}

// row renders one aligned label/value line
func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
