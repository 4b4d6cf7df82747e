package chat

import (
	"strings"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/mattn/go-runewidth"
)

const notificationWidth = 100

func notifyCmd(channelKey string, msg types.Message) tea.Cmd {
	_, channel := types.SplitChannelKey(channelKey)
	title := "@" + msg.Author + " in #" + channel
	body := truncateNotification(msg.Body, notificationWidth)
	return func() tea.Msg {
		if err := beeep.Notify(title, body, ""); err != nil {
			logging.Warn("notify", "desktop notification: %v", err)
		}
		return nil
	}
}

func truncateNotification(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}
