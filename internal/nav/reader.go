package nav

import "github.com/adamavenir/tern/internal/types"

// enterReader focuses a channel's message window. Offsets survive leaving
// reader mode, so re-entering a visited channel resumes where it was.
func enterReader(s AppState, key string) AppState {
	if !s.Expanded[key] {
		return s
	}
	if s.Focus == FocusCompose {
		s.Compose = ComposeState{}
		s.Focus = FocusNavigation
	}
	s.Focus = FocusReader
	return focusReaderChannel(s, key)
}

func focusReaderChannel(s AppState, key string) AppState {
	s.ReaderChannel = key
	if _, visited := s.ReaderOffsets[key]; !visited {
		s.ReaderOffsets = copyInts(s.ReaderOffsets)
		s.ReaderOffsets[key] = 0
	}
	s.ReaderSelected = s.readerWindowLen(key) - 1
	if s.ReaderSelected < 0 {
		s.ReaderSelected = 0
	}
	return clampReader(s)
}

// readerScroll moves the in-window selection; at the window's edge it slides
// the window instead. Negative deltas move towards older messages.
func readerScroll(s AppState, delta int) AppState {
	if s.Focus != FocusReader || s.ReaderChannel == "" {
		return s
	}
	key := s.ReaderChannel
	total := len(s.Data[key].Messages)
	if total == 0 {
		return s
	}
	maxOffset := MaxOffset(total, s.VisibleCount)
	offset := clamp(s.ReaderOffsets[key], 0, maxOffset)
	sel := s.ReaderSelected
	delta = bounded(delta, total+s.VisibleCount)

	for ; delta < 0; delta++ {
		if sel > 0 {
			sel--
		} else if offset < maxOffset {
			offset++
		}
	}
	for ; delta > 0; delta-- {
		if sel < s.readerWindowLen(key)-1 {
			sel++
		} else if offset > 0 {
			offset--
		}
	}

	s.ReaderOffsets = copyInts(s.ReaderOffsets)
	s.ReaderOffsets[key] = offset
	s.ReaderSelected = sel
	return s
}

// readerFocusAdjacent moves reader focus to the previous or next expanded
// channel in list order without leaving reader mode.
func readerFocusAdjacent(s AppState, delta int) AppState {
	if s.Focus != FocusReader || delta == 0 {
		return s
	}
	var keys []string
	current := -1
	for _, item := range s.Items {
		if item.Kind != ItemChannel || !s.Expanded[item.ChannelID] {
			continue
		}
		if item.ChannelID == s.ReaderChannel {
			current = len(keys)
		}
		keys = append(keys, item.ChannelID)
	}
	if current < 0 {
		return s
	}
	target := current + delta
	if target < 0 || target >= len(keys) {
		return s
	}
	s = focusReaderChannel(s, keys[target])
	if idx := indexOfChannel(s.Items, keys[target]); idx >= 0 {
		s.Selected = idx
	}
	return s
}

// clampReader keeps the reader offset and selection valid after the focused
// channel's messages change.
func clampReader(s AppState) AppState {
	key := s.ReaderChannel
	if key == "" {
		return s
	}
	total := len(s.Data[key].Messages)
	offset, ok := s.ReaderOffsets[key]
	if ok {
		if capped := clamp(offset, 0, MaxOffset(total, s.VisibleCount)); capped != offset {
			s.ReaderOffsets = copyInts(s.ReaderOffsets)
			s.ReaderOffsets[key] = capped
		}
	}
	s.ReaderSelected = clamp(s.ReaderSelected, 0, s.readerWindowLen(key)-1)
	return s
}

func (s AppState) readerWindowLen(key string) int {
	start, end := Window(len(s.Data[key].Messages), s.VisibleCount, s.ReaderOffsets[key])
	return end - start
}

// ReaderWindow returns the [start, end) message range of the reader channel.
func (s AppState) ReaderWindow() (int, int) {
	if s.ReaderChannel == "" {
		return 0, 0
	}
	key := s.ReaderChannel
	return Window(len(s.Data[key].Messages), s.VisibleCount, s.ReaderOffsets[key])
}

// ReaderMessage returns the message selected inside the reader window.
func (s AppState) ReaderMessage() (types.Message, bool) {
	if s.Focus != FocusReader {
		return types.Message{}, false
	}
	start, end := s.ReaderWindow()
	idx := start + s.ReaderSelected
	if idx >= end {
		return types.Message{}, false
	}
	return s.Data[s.ReaderChannel].Message(idx)
}

// ReaderAtOldest reports whether the reader shows the oldest loaded message
// with the selection on it.
func (s AppState) ReaderAtOldest() bool {
	if s.Focus != FocusReader {
		return false
	}
	start, _ := s.ReaderWindow()
	return start == 0 && s.ReaderSelected == 0
}
