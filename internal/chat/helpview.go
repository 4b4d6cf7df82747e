package chat

import (
	"fmt"
	"strings"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/nav"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

const helpIntro = `# tern

Channels, their newest messages and an input line share one list.
Expand a channel to load it, open **reader** mode to scroll back through
its history, and write from its input line.

In the input line, ` + "`/attach <path>`" + ` adds a file to the next message.
`

// helpMarkdown lists the bindings of every focus mode.
func helpMarkdown(keys keyMap) string {
	var b strings.Builder
	b.WriteString(helpIntro)
	sections := []struct {
		title string
		focus nav.FocusMode
	}{
		{"Navigation", nav.FocusNavigation},
		{"Reader", nav.FocusReader},
		{"Writing", nav.FocusCompose},
	}
	for _, section := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n| key | action |\n|---|---|\n", section.title)
		for _, column := range (focusKeys{keys: keys, focus: section.focus}).FullHelp() {
			for _, binding := range column {
				writeBindingRow(&b, binding)
			}
		}
	}
	return b.String()
}

func writeBindingRow(b *strings.Builder, binding key.Binding) {
	h := binding.Help()
	if h.Key == "" {
		return
	}
	fmt.Fprintf(b, "| `%s` | %s |\n", h.Key, h.Desc)
}

// renderHelp renders the help page for the current width, reusing the last
// render while the width is unchanged.
func (m *Model) renderHelp() string {
	width := m.state.Cols
	if m.helpCache != "" && m.helpCacheWidth == width {
		return m.helpCache
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		logging.Warn("chat", "help renderer: %v", err)
		return helpMarkdown(m.keys)
	}
	out, err := renderer.Render(helpMarkdown(m.keys))
	if err != nil {
		logging.Warn("chat", "render help: %v", err)
		return helpMarkdown(m.keys)
	}
	m.helpCache = strings.Trim(out, "\n")
	m.helpCacheWidth = width
	return m.helpCache
}
