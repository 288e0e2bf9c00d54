package cmd

import (
	"fmt"

	"github.com/braheezy/goflac/pkg/flac"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.flac>",
	Short: "Print STREAMINFO and tags for a FLAC file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]
		s, err := flac.Open(filename)
		if err != nil {
			logger.Fatalf("Error opening FLAC file: %v", err)
		}
		defer s.Close()

		info := s.Info()
		fmt.Printf("%s\n", filename)
		fmt.Printf("  Sample rate:    %d Hz\n", info.SampleRate)
		fmt.Printf("  Channels:       %d\n", info.NChannels)
		fmt.Printf("  Bits per sample: %d\n", info.BitsPerSample)
		fmt.Printf("  Total samples:  %d\n", info.SampleCount)
		if info.SampleCount > 0 {
			seconds := float64(info.SampleCount) / float64(info.SampleRate)
			fmt.Printf("  Duration:       %.2fs\n", seconds)
		}
		fmt.Printf("  Block size:     %d - %d\n", info.MinBlockSize, info.MaxBlockSize)
		fmt.Printf("  MD5:            %x\n", info.MD5sum)

		for _, vc := range s.VorbisComments() {
			fmt.Printf("  Vendor:         %s\n", vc.Vendor)
			for _, c := range vc.Comments {
				fmt.Printf("    %s\n", c)
			}
		}
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
