package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/braheezy/goflac/pkg/flac"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"
)

// pcmReader is an io.Reader over a fully-decoded interleaved 16-bit PCM
// buffer, for handing to an oto.Player. Mirrors the teacher's qoa.Reader,
// but tracks position in bytes since the buffer already carries raw PCM.
type pcmReader struct {
	data          []byte
	pos           int
	bytesPerFrame int
}

func newPCMReader(data []byte, bytesPerFrame int) *pcmReader {
	return &pcmReader{data: data, bytesPerFrame: bytesPerFrame}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// framesPlayed returns the number of interleaved sample frames consumed so
// far, for progress reporting.
func (r *pcmReader) framesPlayed() int {
	if r.bytesPerFrame == 0 {
		return 0
	}
	return r.pos / r.bytesPerFrame
}

// tickMsg is sent periodically to update the progress bar.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// controlsMsg is sent to control playback state.
type controlsMsg int

const (
	start controlsMsg = iota
	stop
)

func sendControlsMsg(msg controlsMsg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// flacPlayer decodes a FLAC file up front and drives an oto.Player over the
// resulting PCM, reporting progress. Unlike the teacher's qoaPlayer, there is
// no song list behind it: one Stream Driver invocation decodes exactly one
// stream (cmd/keys.go's helpKeyMap has no song-navigation bindings to match).
type flacPlayer struct {
	reader          *pcmReader
	player          *oto.Player
	info            flac.StreamInfo
	startTime       time.Time
	lastPauseTime   time.Time
	totalPausedTime time.Duration
	totalLength     time.Duration
	filename        string
	progress        progress.Model
	paused          bool
}

// model holds the bubbletea application state for a single playing stream.
type model struct {
	player *flacPlayer
	ctx    *oto.Context
}

// pcmDecoder is a flac.Processor that accumulates every decoded frame's
// formatted PCM bytes into one contiguous buffer.
type pcmDecoder struct {
	info flac.StreamInfo
	pcm  []byte
}

func (d *pcmDecoder) OnStreamInfo(info flac.StreamInfo) { d.info = info }

func (d *pcmDecoder) OnPCM(pcm []byte) flac.Intent {
	if d.info.BitsPerSample <= 8 {
		// Sign-extend 1-byte samples into the 16-bit little-endian layout.
		for _, b := range pcm {
			s := int16(int8(b))
			d.pcm = append(d.pcm, byte(s), byte(s>>8))
		}
		return flac.Continue
	}
	d.pcm = append(d.pcm, pcm...)
	return flac.Continue
}

// newFLACPlayer decodes filename fully into memory and wires up an oto
// player over the result. Playback is restricted to streams with
// BitsPerSample <= 16: oto.FormatSignedInt16LE is the only oto output format
// used anywhere in the reference corpus, so there is no grounded way to play
// back higher bit depths.
func (m *model) newFLACPlayer(filename string) *flacPlayer {
	s, err := flac.Open(filename)
	if err != nil {
		logger.Fatalf("Error opening FLAC file: %v", err)
	}
	defer s.Close()

	if s.Info().BitsPerSample > 16 {
		logger.Fatalf("Error: playback only supports FLAC streams of 16 bits per sample or less, got %d", s.Info().BitsPerSample)
	}

	decoder := &pcmDecoder{}
	s.RegisterProcessor(decoder)
	if err := s.Decode(); err != nil {
		logger.Fatalf("Error decoding FLAC data: %v", err)
	}

	info := decoder.info
	bytesPerFrame := 2 * int(info.NChannels)
	var totalLength time.Duration
	if info.SampleRate != 0 {
		totalLength = time.Duration(float64(info.SampleCount)/float64(info.SampleRate)) * time.Second
	}

	prog := progress.New(progress.WithGradient(flacBlue, flacSky))
	prog.ShowPercentage = false
	prog.Width = maxWidth

	reader := newPCMReader(decoder.pcm, bytesPerFrame)
	player := m.ctx.NewPlayer(reader)
	return &flacPlayer{
		filename:    filename,
		reader:      reader,
		info:        info,
		progress:    prog,
		player:      player,
		totalLength: totalLength,
	}
}

// initialModel opens an Oto context sized for the given file's channel
// layout and decodes the file into a player.
func initialModel(filename string) *model {
	s, err := flac.Open(filename)
	if err != nil {
		logger.Fatalf("Error opening FLAC file: %v", err)
	}
	channels := int(s.Info().NChannels)
	sampleRate := int(s.Info().SampleRate)
	s.Close()
	if channels < 1 || channels > 2 {
		logger.Fatalf("Error: playback only supports mono or stereo FLAC streams, got %d channels", channels)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		logger.Fatalf("oto.NewContext failed: %v", err)
	}
	<-ready

	m := &model{ctx: ctx}
	m.player = m.newFLACPlayer(filename)
	return m
}

// startPlayerTUI is the main entry point for the play command.
func startPlayerTUI(filename string) {
	p := tea.NewProgram(initialModel(filename))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

func (m model) Init() tea.Cmd {
	return sendControlsMsg(start)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.player.progress.Width = msg.Width - padding*2 - 4
		if m.player.progress.Width > maxWidth {
			m.player.progress.Width = maxWidth
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.player.player.IsPlaying() {
				m.player.player.Close()
			}
			return m, tea.Quit
		case " ", "p":
			var cmd tea.Cmd
			if m.player.player.IsPlaying() {
				cmd = sendControlsMsg(stop)
			} else {
				cmd = sendControlsMsg(start)
			}
			return m, cmd
		}

	case controlsMsg:
		switch msg {
		case start:
			if !m.player.player.IsPlaying() {
				m.player.player.Play()
				m.player.paused = false
				if m.player.startTime.IsZero() {
					m.player.startTime = time.Now()
				} else {
					m.player.totalPausedTime += time.Since(m.player.lastPauseTime)
					m.player.lastPauseTime = time.Time{}
				}
				return m, tickCmd()
			}
		case stop:
			m.player.player.Pause()
			m.player.lastPauseTime = time.Now()
			m.player.paused = true
		}

	case tickMsg:
		if !m.player.player.IsPlaying() && !m.player.paused {
			return m, tea.Quit
		}
		if m.player.player.IsPlaying() {
			elapsed := time.Since(m.player.startTime) - m.player.totalPausedTime
			var newPercent float64
			if m.player.totalLength > 0 {
				newPercent = elapsed.Seconds() / m.player.totalLength.Seconds()
			}
			cmd := m.player.progress.SetPercent(newPercent)
			return m, tea.Batch(cmd, tickCmd())
		} else if m.player.progress.Percent() >= 1.0 {
			return m, tea.Quit
		}

	case progress.FrameMsg:
		progressModel, cmd := m.player.progress.Update(msg)
		m.player.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	pad := strings.Repeat(" ", 2)
	statusLine := "Press space/p to pause/play, q to quit."
	return fmt.Sprintf("\nPlaying: %s\n\n%s%s\n\n%s%s\n", m.player.filename, pad, m.player.progress.View(), pad, statusLine)
}
