package types

import "strings"

// Channel is a conversation on one platform.
type Channel struct {
	ID         string `json:"id"`
	Platform   string `json:"platform"`
	Name       string `json:"name"`
	Group      string `json:"group,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Following  bool   `json:"following"`
	New        bool   `json:"new,omitempty"`
	Unfollowed bool   `json:"unfollowed,omitempty"`
}

// Key identifies the channel across platforms.
func (c Channel) Key() string {
	return ChannelKey(c.Platform, c.ID)
}

// Label is the display name used in lists.
func (c Channel) Label() string {
	name := c.Name
	if name == "" {
		name = c.ID
	}
	return "#" + name
}

// ChannelKey joins a platform name and a platform-local channel id.
func ChannelKey(platform, id string) string {
	return platform + ":" + id
}

// SplitChannelKey is the inverse of ChannelKey.
func SplitChannelKey(key string) (platform, id string) {
	idx := strings.Index(key, ":")
	if idx < 0 {
		return "", key
	}
	return key[:idx], key[idx+1:]
}

// Reaction groups the users that reacted with one emoji.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

// Attachment is a file reference carried by a message.
type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Message is a single chat message.
type Message struct {
	ID          string       `json:"id"`
	ChannelKey  string       `json:"channel"`
	Author      string       `json:"author"`
	Body        string       `json:"body"`
	TS          int64        `json:"ts"`
	EditedAt    *int64       `json:"edited_at,omitempty"`
	ReplyTo     *string      `json:"reply_to,omitempty"`
	Reactions   []Reaction   `json:"reactions,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Edited reports whether the body was changed after posting.
func (m Message) Edited() bool {
	return m.EditedAt != nil
}

// EventKind names a push-event topic.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// MessageEvent is a push notification about a message change.
// Message is empty for deletes; MessageID is always set.
type MessageEvent struct {
	Kind       EventKind `json:"kind"`
	ChannelKey string    `json:"channel"`
	MessageID  string    `json:"message_id"`
	Message    Message   `json:"message,omitempty"`
}

// DisplayItemKind distinguishes section headers from channel rows.
type DisplayItemKind int

const (
	DisplayHeader DisplayItemKind = iota
	DisplayChannel
)

// DisplayItem is one row of the channel directory.
// ChannelIndex is only meaningful for DisplayChannel rows.
type DisplayItem struct {
	Kind         DisplayItemKind
	Label        string
	ChannelIndex int
	Collapsed    bool
}

// IsHeader reports whether the row is a section header.
func (d DisplayItem) IsHeader() bool {
	return d.Kind == DisplayHeader
}
