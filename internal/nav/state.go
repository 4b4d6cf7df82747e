package nav

import (
	"github.com/adamavenir/tern/internal/types"
)

// Fallback terminal size when the real one cannot be determined.
const (
	DefaultRows = 24
	DefaultCols = 80
)

// FocusMode selects how keys are interpreted.
type FocusMode int

const (
	FocusNavigation FocusMode = iota
	FocusCompose
	FocusReader
)

func (f FocusMode) String() string {
	switch f {
	case FocusNavigation:
		return "navigation"
	case FocusCompose:
		return "compose"
	case FocusReader:
		return "reader"
	default:
		return "unknown"
	}
}

// View is the logical screen being shown.
type View int

const (
	ViewList View = iota
	ViewHelp
)

// ComposeState is the message being written in a channel's input row.
// Cursor is a rune offset into Text.
type ComposeState struct {
	ChannelID   string
	Text        string
	Cursor      int
	ReplyTarget string
	ReactTarget string
	EditTarget  string
	Attachments []types.Attachment
}

// Empty reports whether there is nothing to submit or discard.
func (c ComposeState) Empty() bool {
	return c.Text == "" && c.ReplyTarget == "" && c.ReactTarget == "" &&
		c.EditTarget == "" && len(c.Attachments) == 0
}

// Modal is an overlay shown above the list.
type Modal struct {
	Title string
	Body  string
}

// AppState is the single source of truth for the UI. It is only ever
// changed by Transition, which returns a new value and leaves the previous
// one (including its maps and slices) untouched.
type AppState struct {
	View          View
	Channels      []types.Channel
	DisplayItems  []types.DisplayItem
	Expanded      map[string]bool
	Data          map[string]ExpandedChannelData
	Items         []FlatItem
	Selected      int
	Focus         FocusMode
	ReaderChannel string
	ReaderOffsets map[string]int
	// ReaderSelected indexes into the reader window, 0 being its oldest message.
	ReaderSelected int
	Compose        ComposeState
	ViewportOffset int
	Rows           int
	Cols           int
	Status         string
	StatusIsError  bool
	Loading        bool
	Modal          *Modal
	Unread         map[string]int
	VisibleCount   int

	generation uint64
}

// Options configure a new AppState.
type Options struct {
	Rows         int
	Cols         int
	VisibleCount int
}

// New builds the initial state from the startup channel listing.
func New(channels []types.Channel, display []types.DisplayItem, opts Options) AppState {
	rows, cols := opts.Rows, opts.Cols
	if rows <= 0 || cols <= 0 {
		rows, cols = DefaultRows, DefaultCols
	}
	visible := opts.VisibleCount
	if visible <= 0 {
		visible = DefaultVisibleCount
	}
	s := AppState{
		View:          ViewList,
		Channels:      append([]types.Channel(nil), channels...),
		DisplayItems:  append([]types.DisplayItem(nil), display...),
		Expanded:      map[string]bool{},
		Data:          map[string]ExpandedChannelData{},
		ReaderOffsets: map[string]int{},
		Unread:        map[string]int{},
		Rows:          rows,
		Cols:          cols,
		VisibleCount:  visible,
	}
	s.Items = Build(s.projection())
	s.Selected = firstSelectable(s.Items)
	s.ViewportOffset = Scroll(s.Selected, 0, s.VisibleHeight(), len(s.Items))
	return s
}

// Lookup resolves a channel index from the display items.
func (s AppState) Lookup(index int) (types.Channel, bool) {
	if index < 0 || index >= len(s.Channels) {
		return types.Channel{}, false
	}
	return s.Channels[index], true
}

// Channel finds a channel by key.
func (s AppState) Channel(key string) (types.Channel, bool) {
	for _, ch := range s.Channels {
		if ch.Key() == key {
			return ch, true
		}
	}
	return types.Channel{}, false
}

// SelectedItem returns the flat item under the cursor.
func (s AppState) SelectedItem() (FlatItem, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Items) {
		return FlatItem{}, false
	}
	return s.Items[s.Selected], true
}

// SelectedMessage returns the message under the cursor, if the cursor is on
// a message row.
func (s AppState) SelectedMessage() (types.Message, bool) {
	item, ok := s.SelectedItem()
	if !ok || item.Kind != ItemMessage {
		return types.Message{}, false
	}
	return s.Data[item.ChannelID].Message(item.MessageIndex)
}

// IsExpanded reports whether a channel is expanded.
func (s AppState) IsExpanded(key string) bool {
	return s.Expanded[key]
}

// VisibleHeight is the number of flat rows that fit on screen.
func (s AppState) VisibleHeight() int {
	return VisibleHeight(s.Rows)
}

func (s AppState) projection() ProjectionInput {
	return ProjectionInput{
		DisplayItems:  s.DisplayItems,
		Lookup:        s.Lookup,
		Expanded:      s.Expanded,
		Data:          s.Data,
		ReaderChannel: s.readerChannelForProjection(),
		ReaderOffsets: s.ReaderOffsets,
		VisibleCount:  s.VisibleCount,
	}
}

func (s AppState) readerChannelForProjection() string {
	if s.Focus != FocusReader {
		return ""
	}
	return s.ReaderChannel
}

func firstSelectable(items []FlatItem) int {
	for i, item := range items {
		if item.Kind != ItemHeader {
			return i
		}
	}
	return 0
}

func copyBools(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyInts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyData(in map[string]ExpandedChannelData) map[string]ExpandedChannelData {
	out := make(map[string]ExpandedChannelData, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
