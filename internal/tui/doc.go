// Package tui implements the terminal user interface for the watch command.
//
// This package provides a live, full-screen dashboard for a single SoundTouch
// speaker. Built using the Bubble Tea framework, it follows the Elm
// architecture with immutable state updates and a clean Model-Update-View
// pattern.
//
// # Architecture
//
// The dashboard has two visual phases:
//   - Connecting: Spinner while the event stream dials and the first HTTP
//     snapshot is fetched
//   - Dashboard: Panel of playback, volume and connection state, kept
//     current by push notifications
//
// The event stream runs its own goroutines. Its callbacks perform
// non-blocking sends into a message channel, and a recurring command
// (waitForActivity) selects on that channel and on the stream's event
// channel, wrapping whatever arrives as a tea.Msg. Update re-issues the
// command after consuming each stream-sourced message, so exactly one
// listener is pending at any time.
//
// Push frames carry deltas only, so each successful connect triggers a full
// HTTP snapshot (info, now playing, volume) to rebuild the baseline.
//
// # Framework Components
//
// The dashboard leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: Connection indicator
//   - bubbles/progress: Volume bar
//   - bubbles/help: Key binding footer
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	client := soundtouch.NewClient(endpoint.Host, endpoint.Port)
//	stream := eventstream.NewStream(endpoint.Host, endpoint.EventPort)
//
//	model := tui.NewWatchModel(endpoint, client, stream)
//	program := tea.NewProgram(model, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Key Bindings
//
//   - r: Re-fetch the HTTP snapshot
//   - q/esc/ctrl+c: Disconnect the stream and quit
//
// # Thread Safety
//
// The Bubble Tea framework ensures thread safety through message passing.
// All model updates occur in a single goroutine; the stream callbacks never
// touch the model, they only send messages.
package tui
