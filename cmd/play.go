package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <file.flac>",
	Short: "Play a FLAC audio file",
	Long:  "Decode and play a single FLAC file, with a progress bar and play/pause control.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		startPlayerTUI(args[0])
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(playCmd)
}
