// Soundtouch is a command line controller for Bose SoundTouch speakers.
//
// It provides speaker discovery, playback and volume control, preset
// selection, and a live watch dashboard. The tool speaks the speakers'
// local HTTP API directly and needs no cloud account.
//
// Usage:
//
//	soundtouch [command] [flags]
//
// Running without arguments shows the status of the speaker found on the
// network. See 'soundtouch --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "soundtouch",
	Short: "Bose SoundTouch speaker control utility",
	Long: `A command line controller for Bose SoundTouch speakers.

Provides speaker discovery, playback and volume control, preset selection,
and a live watch dashboard, all over the speakers' local network API.

If no command is specified, the speaker's status is shown.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show status when no subcommand provided
		return runStatus(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("soundtouch %s (commit: %s)\n", version.Version, version.Commit)
	},
}
