package nav

import "github.com/adamavenir/tern/internal/types"

// Transition applies one action and returns the next state. It performs no
// I/O, never panics on out-of-range input, and never mutates the maps or
// slices of the state it was given.
func Transition(s AppState, a Action) AppState {
	switch a := a.(type) {
	case SelectIndex:
		s.Selected = a.Index
	case MoveBy:
		s.Selected += bounded(a.Delta, len(s.Items))
	case PageBy:
		s.Selected += bounded(a.Pages, len(s.Items)) * s.VisibleHeight()
	case SelectChannel:
		if idx := indexOfChannel(s.Items, a.ChannelID); idx >= 0 {
			s.Selected = idx
		}

	case SetChannels:
		s = setChannels(s, a)

	case ToggleExpand:
		if s.Expanded[a.ChannelID] {
			s = collapse(s, a.ChannelID)
		} else {
			s = expand(s, a.ChannelID)
		}
	case Expand:
		s = expand(s, a.ChannelID)
	case Collapse:
		s = collapse(s, a.ChannelID)

	case LoadStarted:
		s = loadStarted(s, a.ChannelID)
	case MessagesLoaded:
		s = messagesLoaded(s, a)
	case LoadFailed:
		s = loadFailed(s, a)
	case ReplaceMessages:
		s = replaceMessages(s, a)
	case MarkUnread:
		if _, ok := s.Channel(a.ChannelID); ok && !s.Expanded[a.ChannelID] {
			s.Unread = copyInts(s.Unread)
			s.Unread[a.ChannelID]++
		}

	case EnterCompose:
		s = enterCompose(s, a.ChannelID)
	case EnterReply:
		s = enterCompose(s, a.ChannelID)
		if s.Focus == FocusCompose {
			s.Compose.ReplyTarget = a.MessageID
		}
	case EnterEdit:
		s = enterCompose(s, a.ChannelID)
		if s.Focus == FocusCompose {
			s.Compose.EditTarget = a.MessageID
			s.Compose.Text = a.Text
			s.Compose.Cursor = runeLen(a.Text)
		}
	case EnterReact:
		s = enterCompose(s, a.ChannelID)
		if s.Focus == FocusCompose {
			s.Compose.ReactTarget = a.MessageID
		}
	case EnterReader:
		s = enterReader(s, a.ChannelID)
	case Cancel:
		s = cancel(s)

	case InsertText, DeleteBackward, DeleteForward, MoveCursor, CursorHome, CursorEnd, ClearText, AddAttachment:
		if s.Focus == FocusCompose {
			s.Compose = editCompose(s.Compose, a)
		}
	case ResetCompose:
		s.Compose = resetCompose(s.Compose)

	case ReaderScroll:
		s = readerScroll(s, a.Delta)
	case ReaderFocusAdjacent:
		s = readerFocusAdjacent(s, a.Delta)

	case Resize:
		if a.Rows <= 0 || a.Cols <= 0 {
			s.Rows, s.Cols = DefaultRows, DefaultCols
		} else {
			s.Rows, s.Cols = a.Rows, a.Cols
		}
	case SetStatus:
		s.Status = a.Text
		s.StatusIsError = a.IsError
	case ClearStatus:
		s.Status = ""
		s.StatusIsError = false
	case SetLoading:
		s.Loading = a.Loading
	case ShowModal:
		s.Modal = &Modal{Title: a.Title, Body: a.Body}
	case CloseModal:
		s.Modal = nil
	case SetView:
		s.View = a.View
	}

	return finalize(s)
}

// finalize rebuilds the flat list, keeps the selection on the same logical
// row where possible, clamps it, and re-derives the viewport. Branches above
// only ever move Selected within the previous list, so the row it points at
// is the one to follow into the rebuilt list.
func finalize(s AppState) AppState {
	anchor, ok := s.SelectedItem()
	s.Items = Build(s.projection())
	if ok {
		s.Selected = relocate(s.Items, anchor, s.Selected)
	}
	if len(s.Items) == 0 {
		s.Selected = 0
		s.ViewportOffset = 0
		return s
	}
	s.Selected = clamp(s.Selected, 0, len(s.Items)-1)
	s.ViewportOffset = Scroll(s.Selected, s.ViewportOffset, s.VisibleHeight(), len(s.Items))
	return s
}

// relocate finds the anchor row in a rebuilt list. Rows that vanished fall
// back to their channel row, and failing that to the previous position.
func relocate(items []FlatItem, anchor FlatItem, fallback int) int {
	for i, item := range items {
		if sameRow(item, anchor) {
			return i
		}
	}
	if anchor.ChannelID != "" {
		if idx := indexOfChannel(items, anchor.ChannelID); idx >= 0 {
			return idx
		}
	}
	return fallback
}

func indexOfChannel(items []FlatItem, key string) int {
	for i, item := range items {
		if item.Kind == ItemChannel && item.ChannelID == key {
			return i
		}
	}
	return -1
}

func indexOfInput(items []FlatItem, key string) int {
	for i, item := range items {
		if item.Kind == ItemInput && item.ChannelID == key {
			return i
		}
	}
	return -1
}

func setChannels(s AppState, a SetChannels) AppState {
	s.Channels = append([]types.Channel(nil), a.Channels...)
	s.DisplayItems = append([]types.DisplayItem(nil), a.DisplayItems...)

	if s.ReaderChannel != "" {
		if _, ok := s.Channel(s.ReaderChannel); !ok {
			s.ReaderChannel = ""
			if s.Focus == FocusReader {
				s.Focus = FocusNavigation
			}
		}
	}
	if s.Focus == FocusCompose {
		if _, ok := s.Channel(s.Compose.ChannelID); !ok {
			s.Compose = ComposeState{}
			s.Focus = FocusNavigation
		}
	}
	return s
}

func (s AppState) nextGeneration() (AppState, uint64) {
	s.generation++
	return s, s.generation
}

func expand(s AppState, key string) AppState {
	if s.Expanded[key] {
		return s
	}
	if _, ok := s.Channel(key); !ok {
		return s
	}
	s.Expanded = copyBools(s.Expanded)
	s.Expanded[key] = true
	if s.Unread[key] != 0 {
		s.Unread = copyInts(s.Unread)
		delete(s.Unread, key)
	}
	return loadStarted(s, key)
}

func collapse(s AppState, key string) AppState {
	if !s.Expanded[key] {
		return s
	}
	s.Expanded = copyBools(s.Expanded)
	delete(s.Expanded, key)
	if s.ReaderChannel == key {
		s.ReaderChannel = ""
		if s.Focus == FocusReader {
			s.Focus = FocusNavigation
		}
	}
	if s.Focus == FocusCompose && s.Compose.ChannelID == key {
		s.Compose = ComposeState{}
		s.Focus = FocusNavigation
	}
	return s
}

// loadStarted marks a channel as loading under a fresh generation. The
// previous messages stay in the entry and are replaced when the load lands.
func loadStarted(s AppState, key string) AppState {
	if !s.Expanded[key] {
		return s
	}
	var gen uint64
	s, gen = s.nextGeneration()
	data := s.Data[key]
	data.Loading = true
	data.Err = ""
	data.Generation = gen
	s.Data = copyData(s.Data)
	s.Data[key] = data
	return s
}

func messagesLoaded(s AppState, a MessagesLoaded) AppState {
	data, ok := s.Data[a.ChannelID]
	if !ok || !s.Expanded[a.ChannelID] || data.Generation != a.Generation {
		return s
	}
	s.Data = copyData(s.Data)
	s.Data[a.ChannelID] = ExpandedChannelData{
		Messages:   append([]types.Message(nil), a.Messages...),
		HasMore:    a.HasMore,
		Generation: a.Generation,
	}
	return clampReader(s)
}

func loadFailed(s AppState, a LoadFailed) AppState {
	data, ok := s.Data[a.ChannelID]
	if !ok || data.Generation != a.Generation {
		return s
	}
	data.Loading = false
	data.Err = a.Err
	s.Data = copyData(s.Data)
	s.Data[a.ChannelID] = data
	return s
}

// replaceMessages installs a pushed snapshot. It takes a new generation so
// any load that was in flight before the push is treated as superseded.
func replaceMessages(s AppState, a ReplaceMessages) AppState {
	if !s.Expanded[a.ChannelID] {
		return s
	}
	var gen uint64
	s, gen = s.nextGeneration()
	s.Data = copyData(s.Data)
	s.Data[a.ChannelID] = ExpandedChannelData{
		Messages:   append([]types.Message(nil), a.Messages...),
		HasMore:    a.HasMore,
		Generation: gen,
	}
	return clampReader(s)
}

func enterCompose(s AppState, key string) AppState {
	if !s.Expanded[key] {
		return s
	}
	if s.Focus == FocusReader {
		s = leaveReader(s)
	}
	s.Focus = FocusCompose
	s.Compose = ComposeState{ChannelID: key}
	if idx := indexOfInput(s.Items, key); idx >= 0 {
		s.Selected = idx
	}
	return s
}

func cancel(s AppState) AppState {
	switch s.Focus {
	case FocusCompose:
		s.Compose = ComposeState{}
		s.Focus = FocusNavigation
	case FocusReader:
		s = leaveReader(s)
	default:
		switch {
		case s.Modal != nil:
			s.Modal = nil
		case s.View != ViewList:
			s.View = ViewList
		default:
			s.Status = ""
			s.StatusIsError = false
		}
	}
	return s
}

func leaveReader(s AppState) AppState {
	s.ReaderChannel = ""
	s.ReaderSelected = 0
	s.Focus = FocusNavigation
	return s
}

// bounded limits a relative move to ±n so adding it cannot overflow.
func bounded(delta, n int) int {
	return clamp(delta, -n, n)
}
