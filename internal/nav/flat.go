package nav

import "github.com/adamavenir/tern/internal/types"

// ItemKind tags the variant of a FlatItem.
type ItemKind int

const (
	ItemHeader ItemKind = iota
	ItemChannel
	ItemMessage
	ItemInput
)

func (k ItemKind) String() string {
	switch k {
	case ItemHeader:
		return "header"
	case ItemChannel:
		return "channel"
	case ItemMessage:
		return "message"
	case ItemInput:
		return "input"
	default:
		return "unknown"
	}
}

// FlatItem is one navigable row of the unified list.
//
// Header rows carry Label and SourceIndex. Channel rows carry ChannelID and
// SourceIndex. Message rows carry ChannelID, MessageIndex (into the channel's
// loaded messages) and MessageID. Input rows carry ChannelID only.
type FlatItem struct {
	Kind         ItemKind
	Label        string
	SourceIndex  int
	ChannelID    string
	MessageIndex int
	MessageID    string
}

// Header builds a section header row.
func Header(label string, source int) FlatItem {
	return FlatItem{Kind: ItemHeader, Label: label, SourceIndex: source}
}

// ChannelRow builds a channel row.
func ChannelRow(channelID string, source int) FlatItem {
	return FlatItem{Kind: ItemChannel, ChannelID: channelID, SourceIndex: source}
}

// MessageRow builds a message row.
func MessageRow(channelID string, index int, messageID string) FlatItem {
	return FlatItem{Kind: ItemMessage, ChannelID: channelID, MessageIndex: index, MessageID: messageID}
}

// InputRow builds the trailing input row of an expanded channel.
func InputRow(channelID string) FlatItem {
	return FlatItem{Kind: ItemInput, ChannelID: channelID}
}

// sameRow reports whether two items point at the same logical row, ignoring
// positional fields that shift when the list is rebuilt.
func sameRow(a, b FlatItem) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ItemHeader:
		return a.Label == b.Label
	case ItemChannel, ItemInput:
		return a.ChannelID == b.ChannelID
	case ItemMessage:
		return a.ChannelID == b.ChannelID && a.MessageID == b.MessageID
	}
	return false
}

// ExpandedChannelData holds the loaded messages of one expanded channel.
// Messages are ordered oldest to newest and are always replaced wholesale.
type ExpandedChannelData struct {
	Messages   []types.Message
	Loading    bool
	HasMore    bool
	Err        string
	Generation uint64
}

// Message returns the message at index, if any.
func (d ExpandedChannelData) Message(index int) (types.Message, bool) {
	if index < 0 || index >= len(d.Messages) {
		return types.Message{}, false
	}
	return d.Messages[index], true
}
