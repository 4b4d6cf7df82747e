package nav

import "github.com/adamavenir/tern/internal/types"

// DefaultVisibleCount is how many messages an expanded channel shows inline.
const DefaultVisibleCount = 5

// ChannelLookup resolves a display item's channel index.
type ChannelLookup func(index int) (types.Channel, bool)

// ProjectionInput is everything the flat list is derived from.
type ProjectionInput struct {
	DisplayItems  []types.DisplayItem
	Lookup        ChannelLookup
	Expanded      map[string]bool
	Data          map[string]ExpandedChannelData
	ReaderChannel string
	ReaderOffsets map[string]int
	VisibleCount  int
}

// Build flattens the header/channel/message/input hierarchy into the
// navigable list. It is pure: identical inputs give identical output.
func Build(in ProjectionInput) []FlatItem {
	visible := in.VisibleCount
	if visible <= 0 {
		visible = DefaultVisibleCount
	}

	items := make([]FlatItem, 0, len(in.DisplayItems))
	for i, entry := range in.DisplayItems {
		if entry.IsHeader() {
			items = append(items, Header(entry.Label, i))
			continue
		}
		if in.Lookup == nil {
			continue
		}
		ch, ok := in.Lookup(entry.ChannelIndex)
		if !ok {
			continue
		}
		key := ch.Key()
		items = append(items, ChannelRow(key, i))
		if !in.Expanded[key] {
			continue
		}

		data := in.Data[key]
		if !data.Loading && len(data.Messages) > 0 {
			offset := 0
			if key == in.ReaderChannel {
				offset = in.ReaderOffsets[key]
			}
			start, end := Window(len(data.Messages), visible, offset)
			for idx := end - 1; idx >= start; idx-- {
				items = append(items, MessageRow(key, idx, data.Messages[idx].ID))
			}
		}
		items = append(items, InputRow(key))
	}
	return items
}

// Window returns the [start, end) range of messages shown for a channel
// holding total messages. offset counts messages hidden on the newest side,
// so offset 0 is the newest window and each +1 reveals one older message.
func Window(total, visible, offset int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	if visible <= 0 {
		visible = DefaultVisibleCount
	}
	offset = clamp(offset, 0, MaxOffset(total, visible))
	end := total - offset
	start := end - visible
	if start < 0 {
		start = 0
	}
	return start, end
}

// MaxOffset is the largest reader offset for a channel of total messages.
func MaxOffset(total, visible int) int {
	if total <= visible {
		return 0
	}
	return total - visible
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
