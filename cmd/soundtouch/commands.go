package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/discovery"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/eventstream"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/soundtouch"
	"github.com/Dress13/homebridge-bose-soundtouch/internal/tui"
)

// Speaker command flags
var (
	deviceHost   string
	devicePort   int
	eventPort    int
	scanTimeout  int
	outputFormat string
)

func init() {
	// Common flags for speaker commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceHost, "device", "", "Speaker IP address or hostname (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", soundtouch.DefaultPort, "Speaker HTTP port")
	rootCmd.PersistentFlags().IntVar(&eventPort, "event-port", eventstream.DefaultPort, "Speaker WebSocket notification port")
	rootCmd.PersistentFlags().IntVar(&scanTimeout, "timeout", 10, "Discovery timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(zoneCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(watchCmd)
}

// scanCmd discovers speakers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for SoundTouch speakers on the network",
	Long: `Scan for SoundTouch speakers using mDNS/DNS-SD discovery.

This command browses for SoundTouch service announcements and displays all
discovered speakers with their addresses and ports.`,
	Example: `  # Scan for 10 seconds (default)
  soundtouch scan

  # Quick 3-second scan
  soundtouch scan --timeout 3

  # Longer scan for networks with many speakers
  soundtouch scan --timeout 30`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for SoundTouch speakers (timeout: %ds)...\n\n", scanTimeout)

	endpoints, err := discovery.ScanForSpeakers(context.Background(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(endpoints) == 0 {
		fmt.Println("No speakers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the speaker is powered and on the same network")
		fmt.Println("  - Some networks block multicast; use --device with the IP instead")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d speaker(s):\n\n", len(endpoints))

	for i, ep := range endpoints {
		name := ep.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%d. %s\n", i+1, name)
		fmt.Printf("   Address: %s:%d\n", ep.Host, ep.Port)
		fmt.Printf("   Events:  %s:%d\n", ep.Host, ep.EventPort)
		fmt.Println()
	}

	fmt.Println("Use 'soundtouch status --device <ip>' to inspect a speaker")
	fmt.Println("Use 'soundtouch watch --device <ip>' for a live dashboard")

	return nil
}

// statusCmd displays the speaker's current state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show speaker status",
	Long: `Display the current status of a SoundTouch speaker.

This command queries the speaker for device information, what is playing,
and the volume level.`,
	Example: `  # Status with auto-discovery
  soundtouch status

  # Status of a specific speaker
  soundtouch status --device 192.168.1.24

  # Single-line output
  soundtouch status --device 192.168.1.24 --format compact

  # JSON output for scripting
  soundtouch status --device 192.168.1.24 --format json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	info, err := client.Info()
	if err != nil {
		return fmt.Errorf("failed to query speaker: %w", err)
	}
	nowPlaying, err := client.NowPlaying()
	if err != nil {
		return fmt.Errorf("failed to query playback: %w", err)
	}
	volume, err := client.Volume()
	if err != nil {
		return fmt.Errorf("failed to query volume: %w", err)
	}

	switch outputFormat {
	case "json":
		status := struct {
			Info       soundtouch.Info       `json:"info"`
			NowPlaying soundtouch.NowPlaying `json:"now_playing"`
			Volume     soundtouch.Volume     `json:"volume"`
		}{info, nowPlaying, volume}
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "compact":
		fmt.Println(formatStatusCompact(info, nowPlaying, volume))
	case "detailed":
		fallthrough
	default:
		fmt.Print(formatStatusDetailed(info, nowPlaying, volume))
	}

	return nil
}

func formatStatusDetailed(info soundtouch.Info, np soundtouch.NowPlaying, vol soundtouch.Volume) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", info.Name, info.Type)
	fmt.Fprintf(&b, "  Device ID: %s\n", info.DeviceID)

	if !np.PoweredOn() {
		b.WriteString("  Playback:  standby\n")
	} else {
		fmt.Fprintf(&b, "  Source:    %s\n", np.Source)
		if np.StationName != "" {
			fmt.Fprintf(&b, "  Station:   %s\n", np.StationName)
		}
		if np.Track != "" {
			fmt.Fprintf(&b, "  Track:     %s\n", np.Track)
		}
		if np.Artist != "" {
			fmt.Fprintf(&b, "  Artist:    %s\n", np.Artist)
		}
		if np.Album != "" {
			fmt.Fprintf(&b, "  Album:     %s\n", np.Album)
		}
		if np.PlayStatus != "" {
			fmt.Fprintf(&b, "  State:     %s\n", np.PlayStatus)
		}
	}

	fmt.Fprintf(&b, "  Volume:    %d", vol.Actual)
	if vol.Muted {
		b.WriteString(" (muted)")
	}
	b.WriteString("\n")

	return b.String()
}

func formatStatusCompact(info soundtouch.Info, np soundtouch.NowPlaying, vol soundtouch.Volume) string {
	playback := "standby"
	if np.PoweredOn() {
		switch {
		case np.Track != "":
			playback = fmt.Sprintf("%s: %s - %s", np.Source, np.Artist, np.Track)
		case np.StationName != "":
			playback = fmt.Sprintf("%s: %s", np.Source, np.StationName)
		default:
			playback = string(np.Source)
		}
	}

	muted := ""
	if vol.Muted {
		muted = " muted"
	}
	return fmt.Sprintf("%s | %s | vol %d%s", info.Name, playback, vol.Actual, muted)
}

// volumeCmd shows or sets the volume
var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Show or set the volume",
	Long: `Show the current volume, or set it when a level is given.

Levels are 0-100; values outside that range are clamped.`,
	Example: `  # Show the current volume
  soundtouch volume --device 192.168.1.24

  # Set volume to 35
  soundtouch volume 35 --device 192.168.1.24`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

func runVolume(cmd *cobra.Command, args []string) error {
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	if len(args) == 0 {
		vol, err := client.Volume()
		if err != nil {
			return fmt.Errorf("failed to query volume: %w", err)
		}
		if vol.Muted {
			fmt.Printf("Volume: %d (muted)\n", vol.Actual)
		} else {
			fmt.Printf("Volume: %d\n", vol.Actual)
		}
		return nil
	}

	level, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid volume level %q", args[0])
	}
	if err := client.SetVolume(level); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	// Re-query so a clamped level is reported as the speaker applied it
	if vol, err := client.Volume(); err == nil {
		fmt.Printf("Volume: %d\n", vol.Actual)
	} else {
		fmt.Println("Volume updated")
	}
	return nil
}

// keyCmd sends a remote control key press
var keyCmd = &cobra.Command{
	Use:   "key <name>",
	Short: "Press a remote control key",
	Long: `Send a momentary key press to the speaker.

Key names are matched case-insensitively. Available keys:

  PLAY PAUSE PLAY_PAUSE STOP PREV_TRACK NEXT_TRACK
  POWER MUTE VOLUME_UP VOLUME_DOWN AUX_INPUT
  SHUFFLE_ON SHUFFLE_OFF REPEAT_ONE REPEAT_ALL REPEAT_OFF
  THUMBS_UP THUMBS_DOWN BOOKMARK
  PRESET_1 .. PRESET_6`,
	Example: `  # Toggle play/pause
  soundtouch key play_pause --device 192.168.1.24

  # Skip to the next track
  soundtouch key next_track --device 192.168.1.24`,
	Args: cobra.ExactArgs(1),
	RunE: runKey,
}

func runKey(cmd *cobra.Command, args []string) error {
	key, err := soundtouch.ParseKey(args[0])
	if err != nil {
		return err
	}

	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	if err := client.PressKey(key); err != nil {
		return fmt.Errorf("failed to press %s: %w", key, err)
	}
	fmt.Printf("Pressed %s\n", key)
	return nil
}

// presetCmd lists or selects presets
var presetCmd = &cobra.Command{
	Use:   "preset [slot]",
	Short: "List presets or select one",
	Long: `List the speaker's stored presets, or select one when a slot
number (1-6) is given.`,
	Example: `  # List stored presets
  soundtouch preset --device 192.168.1.24

  # Start playing preset 3
  soundtouch preset 3 --device 192.168.1.24`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreset,
}

func runPreset(cmd *cobra.Command, args []string) error {
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	if len(args) == 0 {
		presets, err := client.Presets()
		if err != nil {
			return fmt.Errorf("failed to list presets: %w", err)
		}
		if len(presets) == 0 {
			fmt.Println("No presets stored.")
			return nil
		}
		for _, p := range presets {
			name := p.Content.Name
			if name == "" {
				name = p.Content.Location
			}
			fmt.Printf("%d. %s (%s)\n", p.ID, name, p.Content.Source)
		}
		return nil
	}

	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid preset slot %q", args[0])
	}
	if err := client.SelectPreset(slot); err != nil {
		return fmt.Errorf("failed to select preset: %w", err)
	}
	fmt.Printf("Selected preset %d\n", slot)
	return nil
}

// sourcesCmd lists the speaker's content sources
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available content sources",
	Long: `List the content sources the speaker knows about and whether each
one is ready to play.`,
	RunE: runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	sources, err := client.Sources()
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if len(sources.Items) == 0 {
		fmt.Println("No sources reported.")
		return nil
	}

	for _, item := range sources.Items {
		name := item.Name
		if name == "" {
			name = string(item.Source)
		}
		fmt.Printf("%-24s %-12s %s\n", name, item.Source, strings.ToLower(item.Status))
	}
	return nil
}

// zoneCmd shows multi-room zone membership
var zoneCmd = &cobra.Command{
	Use:   "zone",
	Short: "Show multi-room zone membership",
	Long: `Show the speaker's multi-room zone: the zone master and every
member, or a note that the speaker plays on its own.`,
	RunE: runZone,
}

func runZone(cmd *cobra.Command, args []string) error {
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	zone, err := client.Zone()
	if err != nil {
		return fmt.Errorf("failed to query zone: %w", err)
	}
	if !zone.IsActive() {
		fmt.Println("Not part of a zone.")
		return nil
	}

	fmt.Printf("Zone master: %s\n", zone.Master)
	for _, member := range zone.Members {
		fmt.Printf("  member %s at %s\n", member.DeviceID, member.IPAddress)
	}
	return nil
}

// nameCmd renames the speaker
var nameCmd = &cobra.Command{
	Use:     "name <new-name>",
	Short:   "Rename the speaker",
	Long:    `Set the speaker's user-visible name, as shown in the SoundTouch app.`,
	Example: `  soundtouch name "Kitchen" --device 192.168.1.24`,
	Args:    cobra.ExactArgs(1),
	RunE:    runName,
}

func runName(cmd *cobra.Command, args []string) error {
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	if err := client.SetName(args[0]); err != nil {
		return fmt.Errorf("failed to rename speaker: %w", err)
	}
	fmt.Printf("Speaker renamed to %q\n", args[0])
	return nil
}

// powerCmd switches the speaker on or off
var powerCmd = &cobra.Command{
	Use:   "power on|off",
	Short: "Switch the speaker on or off",
	Long: `Switch the speaker on or to standby.

The device only has a power toggle, so the current state is checked first
and the toggle is pressed only when it differs from the requested one.`,
	Example: `  soundtouch power on --device 192.168.1.24
  soundtouch power off --device 192.168.1.24`,
	Args: cobra.ExactArgs(1),
	RunE: runPower,
}

func runPower(cmd *cobra.Command, args []string) error {
	var on bool
	switch strings.ToLower(args[0]) {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("invalid power state %q (use on or off)", args[0])
	}

	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	client := soundtouch.NewClient(ep.Host, ep.Port)

	if err := client.SetPowered(on); err != nil {
		return fmt.Errorf("failed to switch power: %w", err)
	}
	fmt.Printf("Power %s\n", strings.ToLower(args[0]))
	return nil
}

// watchCmd opens the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard for a speaker",
	Long: `Open a live dashboard that follows the speaker's push notifications.

The dashboard shows playback, volume and connection state and updates as
the speaker reports changes. Press q to quit.`,
	Example: `  # Watch with auto-discovery
  soundtouch watch

  # Watch a specific speaker
  soundtouch watch --device 192.168.1.24`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}

	client := soundtouch.NewClient(ep.Host, ep.Port)
	stream := eventstream.NewStream(ep.Host, ep.EventPort)

	model := tui.NewWatchModel(ep, client, stream)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}

// resolveEndpoint picks the speaker to talk to: the --device flag when
// given, otherwise a short mDNS scan that must find exactly one speaker.
func resolveEndpoint() (discovery.Endpoint, error) {
	if deviceHost != "" {
		return discovery.Endpoint{Host: deviceHost, Port: devicePort, EventPort: eventPort}, nil
	}

	fmt.Println("No device specified, attempting auto-discovery...")
	endpoints, err := discovery.ScanForSpeakers(context.Background(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return discovery.Endpoint{}, fmt.Errorf("discovery failed: %w", err)
	}

	if len(endpoints) == 0 {
		return discovery.Endpoint{}, fmt.Errorf("no speakers found. Use --device to specify a host manually")
	}

	if len(endpoints) > 1 {
		fmt.Printf("Found %d speakers:\n", len(endpoints))
		for i, ep := range endpoints {
			fmt.Printf("%d. %s\n", i+1, ep)
		}
		return discovery.Endpoint{}, fmt.Errorf("multiple speakers found. Use --device to specify which one")
	}

	ep := endpoints[0]
	fmt.Printf("Found speaker: %s\n\n", ep)
	return ep, nil
}
