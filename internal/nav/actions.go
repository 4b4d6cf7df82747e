package nav

import "github.com/adamavenir/tern/internal/types"

// Action is a discrete state change fed to Transition.
type Action interface {
	action()
}

// Selection.
type (
	SelectIndex   struct{ Index int }
	MoveBy        struct{ Delta int }
	PageBy        struct{ Pages int }
	SelectChannel struct{ ChannelID string }
)

// Channel listing refresh (startup, section toggle, follow/unfollow).
type SetChannels struct {
	Channels     []types.Channel
	DisplayItems []types.DisplayItem
}

// Expansion.
type (
	ToggleExpand struct{ ChannelID string }
	Expand       struct{ ChannelID string }
	Collapse     struct{ ChannelID string }
)

// Loading. Generation ties a completion to the request that started it.
type (
	LoadStarted    struct{ ChannelID string }
	MessagesLoaded struct {
		ChannelID  string
		Generation uint64
		Messages   []types.Message
		HasMore    bool
	}
	LoadFailed struct {
		ChannelID  string
		Generation uint64
		Err        string
	}
	ReplaceMessages struct {
		ChannelID string
		Messages  []types.Message
		HasMore   bool
	}
	MarkUnread struct{ ChannelID string }
)

// Focus transitions.
type (
	EnterCompose struct{ ChannelID string }
	EnterReply   struct{ ChannelID, MessageID string }
	EnterEdit    struct{ ChannelID, MessageID, Text string }
	EnterReact   struct{ ChannelID, MessageID string }
	EnterReader  struct{ ChannelID string }
	Cancel       struct{}
)

// Compose buffer editing.
type (
	InsertText     struct{ Text string }
	DeleteBackward struct{}
	DeleteForward  struct{}
	MoveCursor     struct{ Delta int }
	CursorHome     struct{}
	CursorEnd      struct{}
	ClearText      struct{}
	AddAttachment  struct{ Attachment types.Attachment }
	ResetCompose   struct{}
)

// Reader mode.
type (
	ReaderScroll        struct{ Delta int }
	ReaderFocusAdjacent struct{ Delta int }
)

// Chrome and transient UI data.
type (
	Resize     struct{ Rows, Cols int }
	SetStatus  struct {
		Text    string
		IsError bool
	}
	ClearStatus struct{}
	SetLoading  struct{ Loading bool }
	ShowModal   struct{ Title, Body string }
	CloseModal  struct{}
	SetView     struct{ View View }
)

func (SelectIndex) action()         {}
func (MoveBy) action()              {}
func (PageBy) action()              {}
func (SelectChannel) action()       {}
func (SetChannels) action()         {}
func (ToggleExpand) action()        {}
func (Expand) action()              {}
func (Collapse) action()            {}
func (LoadStarted) action()         {}
func (MessagesLoaded) action()      {}
func (LoadFailed) action()          {}
func (ReplaceMessages) action()     {}
func (MarkUnread) action()          {}
func (EnterCompose) action()        {}
func (EnterReply) action()          {}
func (EnterEdit) action()           {}
func (EnterReact) action()          {}
func (EnterReader) action()         {}
func (Cancel) action()              {}
func (InsertText) action()          {}
func (DeleteBackward) action()      {}
func (DeleteForward) action()       {}
func (MoveCursor) action()          {}
func (CursorHome) action()          {}
func (CursorEnd) action()           {}
func (ClearText) action()           {}
func (AddAttachment) action()       {}
func (ResetCompose) action()        {}
func (ReaderScroll) action()        {}
func (ReaderFocusAdjacent) action() {}
func (Resize) action()              {}
func (SetStatus) action()           {}
func (ClearStatus) action()         {}
func (SetLoading) action()          {}
func (ShowModal) action()           {}
func (CloseModal) action()          {}
func (SetView) action()             {}
