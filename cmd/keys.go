package cmd

import "github.com/charmbracelet/bubbles/key"

// helpKeyMap describes the player's key bindings. Unlike the teacher's
// multi-file browser, there is no song list to navigate here: the Stream
// Driver decodes exactly one stream per invocation (spec's Stream Driver
// is scoped to a single stream), so only transport controls remain.
type helpKeyMap struct {
	togglePlay key.Binding
	quit       key.Binding
	abort      key.Binding
}

var helpKeys = helpKeyMap{
	togglePlay: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space/p", "play/pause"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
	abort: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "stop decoding"),
	),
}

func (k helpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.togglePlay, k.quit}
}
func (k helpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.togglePlay},
		{k.quit},
	}
}
