package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	errorMarker  = "✗ "
	cursorGlyph  = "▏"
	messageInset = "    "
)

func (m *Model) View() string {
	s := m.state
	height := s.VisibleHeight()

	var body []string
	switch {
	case s.View == nav.ViewHelp:
		body = clipLines(m.renderHelp(), height)
	case s.Modal != nil:
		body = clipLines(m.renderModal(), height)
	default:
		body = m.renderList()
	}
	for len(body) < height {
		body = append(body, "")
	}

	lines := make([]string, 0, height+nav.ChromeRows)
	lines = append(lines, m.renderTitle())
	lines = append(lines, body...)
	lines = append(lines, m.renderStatus())
	lines = append(lines, m.help.View(focusKeys{keys: m.keys, focus: s.Focus}))
	return m.zones.Scan(strings.Join(lines, "\n"))
}

func (m *Model) renderTitle() string {
	s := m.state
	left := titleStyle.Render(m.title)
	if s.Focus != nav.FocusNavigation {
		left += dimStyle.Render(" · " + s.Focus.String())
	}
	right := ""
	if s.Loading {
		right = m.spinner.View()
	}
	gap := s.Cols - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return ansi.Truncate(left, s.Cols, "…")
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderStatus() string {
	s := m.state
	if s.Status == "" {
		return ""
	}
	if s.StatusIsError {
		return errorStyle.Render(ansi.Truncate(errorMarker+s.Status, s.Cols, "…"))
	}
	return statusStyle.Render(ansi.Truncate(s.Status, s.Cols, "…"))
}

// renderList draws the rows inside the viewport. Each row is a click zone
// named after its flat index.
func (m *Model) renderList() []string {
	s := m.state
	start, end := s.VisibleRange()
	readerMsg, inReader := s.ReaderMessage()

	lines := make([]string, 0, end-start)
	for idx := start; idx < end; idx++ {
		item := s.Items[idx]
		row := m.renderItem(item)
		row = ansi.Truncate(row, s.Cols, "…")

		switch {
		case inReader && item.Kind == nav.ItemMessage && item.ChannelID == s.ReaderChannel && item.MessageID == readerMsg.ID:
			row = readerStyle.Render(padRow(row, s.Cols))
		case idx == s.Selected && !inReader:
			row = selectedStyle.Render(padRow(row, s.Cols))
		}
		lines = append(lines, m.zones.Mark(rowZone(idx), row))
	}
	return lines
}

func rowZone(idx int) string {
	return fmt.Sprintf("row-%d", idx)
}

// padRow fills a row to the full width so the selection bar spans it.
func padRow(row string, width int) string {
	pad := width - ansi.StringWidth(row)
	if pad <= 0 {
		return row
	}
	return row + strings.Repeat(" ", pad)
}

func (m *Model) renderItem(item nav.FlatItem) string {
	s := m.state
	switch item.Kind {
	case nav.ItemHeader:
		marker := "▾ "
		if item.SourceIndex < len(s.DisplayItems) && s.DisplayItems[item.SourceIndex].Collapsed {
			marker = "▸ "
		}
		return headerStyle.Render(marker + item.Label)
	case nav.ItemChannel:
		return m.renderChannel(item)
	case nav.ItemMessage:
		msg, ok := s.Data[item.ChannelID].Message(item.MessageIndex)
		if !ok {
			return ""
		}
		return renderMessageRow(msg, s.Cols)
	case nav.ItemInput:
		return m.renderInput(item.ChannelID)
	}
	return ""
}

func (m *Model) renderChannel(item nav.FlatItem) string {
	s := m.state
	ch, ok := s.Channel(item.ChannelID)
	if !ok {
		return ""
	}
	marker := "  ▸ "
	if s.IsExpanded(item.ChannelID) {
		marker = "  ▾ "
	}
	row := marker + channelStyle.Render(ch.Label())
	if n := s.Unread[item.ChannelID]; n > 0 {
		row += " " + unreadStyle.Render(fmt.Sprintf("(%d)", n))
	}
	if ch.Topic != "" {
		row += dimStyle.Render("  " + ch.Topic)
	}
	if s.IsExpanded(item.ChannelID) {
		data := s.Data[item.ChannelID]
		switch {
		case data.Loading:
			row += " " + m.spinner.View()
		case data.Err != "" && len(data.Messages) == 0:
			row += " " + errorStyle.Render(errorMarker+data.Err)
		case len(data.Messages) == 0:
			row += dimStyle.Render("  no messages")
		}
	}
	return row
}

// renderMessageRow is the one-line form of a message: author, first line of
// the body, reactions and age.
func renderMessageRow(msg types.Message, cols int) string {
	author := lipgloss.NewStyle().Foreground(colorForAuthor(msg.Author)).Render(msg.Author)
	body := firstLine(msg.Body)
	if msg.ReplyTo != nil {
		body = "↪ " + body
	}
	if len(msg.Attachments) > 0 {
		body += fmt.Sprintf(" 📎%d", len(msg.Attachments))
	}

	var meta []string
	for _, r := range msg.Reactions {
		meta = append(meta, fmt.Sprintf("%s%d", r.Emoji, len(r.Users)))
	}
	if msg.Edited() {
		meta = append(meta, "edited")
	}
	meta = append(meta, humanize.Time(time.Unix(msg.TS, 0)))
	suffix := "  " + strings.Join(meta, " ")

	prefix := messageInset + author + "  "
	room := cols - ansi.StringWidth(prefix) - runewidth.StringWidth(suffix)
	if room < 8 {
		return prefix + body
	}
	body = runewidth.Truncate(body, room, "…")
	return prefix + runewidth.FillRight(body, room) + dimStyle.Render(suffix)
}

func firstLine(body string) string {
	line, rest, _ := strings.Cut(body, "\n")
	if strings.TrimSpace(rest) != "" {
		line += " …"
	}
	return line
}

func (m *Model) renderInput(channelID string) string {
	s := m.state
	c := s.Compose
	if s.Focus != nav.FocusCompose || c.ChannelID != channelID {
		return messageInset + dimStyle.Render("› write a message")
	}

	label := "› "
	switch {
	case c.EditTarget != "":
		label = "edit › "
	case c.ReactTarget != "":
		label = "react › "
	case c.ReplyTarget != "":
		label = "reply › "
	}
	runes := []rune(strings.ReplaceAll(c.Text, "\n", "↵"))
	cursor := c.Cursor
	if cursor > len(runes) {
		cursor = len(runes)
	}
	text := string(runes[:cursor]) + cursorGlyph + string(runes[cursor:])
	row := messageInset + label + text
	if n := len(c.Attachments); n > 0 {
		row += dimStyle.Render(fmt.Sprintf("  [%d attached]", n))
	}
	return row
}

func (m *Model) renderModal() string {
	s := m.state
	width := s.Cols - 4
	if width < minDetailWidth {
		width = minDetailWidth
	}
	title := headerStyle.Render(s.Modal.Title)
	return modalStyle.Width(width).Render(title + "\n" + s.Modal.Body)
}

func clipLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return lines
}
