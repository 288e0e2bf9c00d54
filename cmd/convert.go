package cmd

import (
	"os"

	"github.com/braheezy/goflac/pkg/flac"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in.flac> <out.wav>",
	Short: "Convert a FLAC file to WAV",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		inPath, outPath := args[0], args[1]
		if err := convertFLACToWAV(inPath, outPath); err != nil {
			logger.Fatalf("Error converting %s: %v", inPath, err)
		}
		logger.Infof("Wrote %s", outPath)
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

// pcmCollector is a flac.Processor that accumulates every decoded frame's
// samples as signed ints, ready for an audio.IntBuffer.
type pcmCollector struct {
	info    flac.StreamInfo
	samples []int
}

func (c *pcmCollector) OnStreamInfo(info flac.StreamInfo) { c.info = info }

func (c *pcmCollector) OnPCM(pcm []byte) flac.Intent {
	bytesPerSample := int(c.info.BitsPerSample+7) / 8
	for i := 0; i+bytesPerSample <= len(pcm); i += bytesPerSample {
		c.samples = append(c.samples, decodeLittleEndianSigned(pcm[i:i+bytesPerSample]))
	}
	return flac.Continue
}

func decodeLittleEndianSigned(b []byte) int {
	var v int32
	for i := len(b) - 1; i >= 0; i-- {
		v = (v << 8) | int32(b[i])
	}
	shift := uint(32 - len(b)*8)
	return int(v<<shift) >> shift
}

func convertFLACToWAV(inPath, outPath string) error {
	s, err := flac.Open(inPath)
	if err != nil {
		return err
	}
	defer s.Close()

	collector := &pcmCollector{}
	s.RegisterProcessor(collector)
	if err := s.Decode(); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	info := s.Info()
	enc := wav.NewEncoder(out,
		int(info.SampleRate),
		int(info.BitsPerSample),
		int(info.NChannels),
		1, // WAVE_FORMAT_PCM
	)
	defer enc.Close()

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: int(info.NChannels),
			SampleRate:  int(info.SampleRate),
		},
		Data:           collector.samples,
		SourceBitDepth: int(info.BitsPerSample),
	}
	return enc.Write(buf)
}
