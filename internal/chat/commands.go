package chat

import (
	"fmt"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// listingMsg carries a refreshed channel listing.
type listingMsg struct {
	listing platform.Listing
	status  string
}

// statusMsg is an informational status line.
type statusMsg string

// errMsg reports a failed operation. The model shows it on the status line.
type errMsg struct {
	op  string
	err error
}

func (e errMsg) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func fail(op string, err error) tea.Msg {
	logging.Error("chat", err, "%s", op)
	return errMsg{op: op, err: err}
}

// loadCmd fetches a channel's newest messages and fills the cache with them
// through the bridge.
// The result carries the generation the load was started under.
func (m *Model) loadCmd(ch types.Channel, generation uint64) tea.Cmd {
	key := ch.Key()
	limit := m.loadLimit
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		msgs, hasMore, err := m.providers.LoadMessages(ctx, ch, limit)
		if err != nil {
			logging.Warn("chat", "load %s: %v", key, err)
			return nav.LoadFailed{ChannelID: key, Generation: generation, Err: err.Error()}
		}
		if err := m.bridge.Fill(ch, generation, msgs); err != nil {
			logging.Warn("chat", "cache %s: %v", key, err)
		}
		return nav.MessagesLoaded{ChannelID: key, Generation: generation, Messages: msgs, HasMore: hasMore}
	}
}

// olderMsg is the merged history after paging back.
type olderMsg struct {
	channelID string
	messages  []types.Message
	hasMore   bool
	seq       uint64
}

// loadOlderCmd pages back from the oldest loaded message and merges the
// page with what is already cached for the channel.
func (m *Model) loadOlderCmd(ch types.Channel, current []types.Message) tea.Cmd {
	if len(current) == 0 {
		return nil
	}
	oldest := current[0].ID
	limit := m.loadLimit
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		page, err := m.providers.LoadOlderMessages(ctx, ch, oldest, limit)
		if err != nil {
			return fail("load older", err)
		}
		merged, seq, err := m.bridge.Merge(ch, page.Messages, current)
		if err != nil {
			logging.Warn("chat", "cache %s: %v", ch.Key(), err)
		}
		return olderMsg{channelID: ch.Key(), messages: merged, hasMore: page.HasMore, seq: seq}
	}
}

// mergeMessages puts older in front of newer, dropping ids already present.
func mergeMessages(older, newer []types.Message) []types.Message {
	seen := make(map[string]bool, len(newer))
	for _, msg := range newer {
		seen[msg.ID] = true
	}
	out := make([]types.Message, 0, len(older)+len(newer))
	for _, msg := range older {
		if !seen[msg.ID] {
			out = append(out, msg)
		}
	}
	return append(out, newer...)
}

func (m *Model) sendCmd(opts platform.SendOptions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		if _, err := m.providers.SendMessage(ctx, opts); err != nil {
			return fail("send", err)
		}
		if opts.ReplyTo != "" {
			return statusMsg("Reply sent.")
		}
		return nil
	}
}

func (m *Model) editCmd(ch types.Channel, messageID, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		if _, err := m.providers.EditMessage(ctx, ch, messageID, body); err != nil {
			return fail("edit", err)
		}
		return statusMsg("Edited.")
	}
}

func (m *Model) deleteCmd(ch types.Channel, messageID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		if err := m.providers.DeleteMessage(ctx, ch, messageID); err != nil {
			return fail("delete", err)
		}
		return statusMsg("Deleted.")
	}
}

func (m *Model) reactCmd(ch types.Channel, messageID, emoji string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		if _, err := m.providers.AddReaction(ctx, ch, messageID, emoji); err != nil {
			return fail("react", err)
		}
		return statusMsg("Reacted " + emoji)
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		listing, err := m.providers.ListChannels(ctx)
		if err != nil {
			return fail("list channels", err)
		}
		return listingMsg{listing: listing}
	}
}

func (m *Model) toggleSectionCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		listing, err := m.providers.ToggleSection(ctx, name)
		if err != nil {
			return fail("toggle section", err)
		}
		return listingMsg{listing: listing}
	}
}

func (m *Model) followCmd(ch types.Channel, follow bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		var (
			listing platform.Listing
			err     error
			verb    = "Followed"
		)
		if follow {
			listing, err = m.providers.Follow(ctx, ch)
		} else {
			verb = "Unfollowed"
			listing, err = m.providers.Unfollow(ctx, ch)
		}
		if err != nil {
			return fail("follow", err)
		}
		return listingMsg{listing: listing, status: fmt.Sprintf("%s %s.", verb, ch.Label())}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return fail("copy", err)
		}
		return statusMsg("Copied message to clipboard.")
	}
}
