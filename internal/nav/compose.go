package nav

import (
	"unicode/utf8"

	"github.com/adamavenir/tern/internal/types"
)

// editCompose applies a buffer-editing action. The cursor is kept within
// [0, len(runes)] whatever the action asks for.
func editCompose(c ComposeState, a Action) ComposeState {
	runes := []rune(c.Text)
	cursor := clamp(c.Cursor, 0, len(runes))

	switch a := a.(type) {
	case InsertText:
		if a.Text == "" {
			break
		}
		ins := []rune(a.Text)
		next := make([]rune, 0, len(runes)+len(ins))
		next = append(next, runes[:cursor]...)
		next = append(next, ins...)
		next = append(next, runes[cursor:]...)
		runes = next
		cursor += len(ins)
	case DeleteBackward:
		if cursor > 0 {
			runes = append(append([]rune(nil), runes[:cursor-1]...), runes[cursor:]...)
			cursor--
		}
	case DeleteForward:
		if cursor < len(runes) {
			runes = append(append([]rune(nil), runes[:cursor]...), runes[cursor+1:]...)
		}
	case MoveCursor:
		cursor = clamp(cursor+bounded(a.Delta, len(runes)), 0, len(runes))
	case CursorHome:
		cursor = 0
	case CursorEnd:
		cursor = len(runes)
	case ClearText:
		runes, cursor = nil, 0
	case AddAttachment:
		if a.Attachment.Path == "" {
			break
		}
		attachments := make([]types.Attachment, 0, len(c.Attachments)+1)
		attachments = append(attachments, c.Attachments...)
		c.Attachments = append(attachments, a.Attachment)
	}

	c.Text = string(runes)
	c.Cursor = cursor
	return c
}

// resetCompose clears everything a compose session can carry in one step so
// that no reply, react or edit target leaks into the next message.
func resetCompose(c ComposeState) ComposeState {
	return ComposeState{ChannelID: c.ChannelID}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
