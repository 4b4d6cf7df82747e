// Package local is the platform backed by a tern workspace on disk: a
// SQLite database plus an append-only journal that other processes watch.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/db"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
)

// Adapter serves one workspace.
type Adapter struct {
	name     string
	project  core.Project
	db       *sql.DB
	username string
	files    *attachmentStore

	// PollInterval is the fallback re-read of the journal for filesystems
	// that drop change notifications.
	PollInterval time.Duration
	// Debounce coalesces bursts of journal writes.
	Debounce time.Duration
}

// Open opens the workspace database. The platform name defaults to the
// name stored at init, then to the project directory name.
func Open(project core.Project, name, username string) (*Adapter, error) {
	conn, err := db.OpenDatabase(project)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", project.DBPath, err)
	}
	if name == "" {
		name, err = db.GetConfig(conn, db.WorkspaceNameKey)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	if name == "" {
		name = project.Name()
	}
	return &Adapter{
		name:         name,
		project:      project,
		db:           conn,
		username:     username,
		files:        newAttachmentStore(project.AttachmentsDir()),
		PollInterval: 2 * time.Second,
		Debounce:     50 * time.Millisecond,
	}, nil
}

// Close releases the database.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// DB exposes the underlying database, for the message cache.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) key(channelID string) string {
	return types.ChannelKey(a.name, channelID)
}

func (a *Adapter) stamp(msg types.Message) types.Message {
	msg.ChannelKey = a.key(msg.ChannelKey)
	return msg
}

func (a *Adapter) stampAll(msgs []types.Message) []types.Message {
	for i := range msgs {
		msgs[i] = a.stamp(msgs[i])
	}
	return msgs
}

// CreateChannel adds a channel to the workspace.
func (a *Adapter) CreateChannel(ctx context.Context, ch types.Channel) (types.Channel, error) {
	ch.Following = true
	created, err := db.CreateChannel(a.db, ch)
	if err != nil {
		return types.Channel{}, err
	}
	if err := a.journal(db.JournalRecord{Type: db.RecordChannel, ChannelID: created.ID, Channel: &created}); err != nil {
		return types.Channel{}, err
	}
	created.Platform = a.name
	return created, nil
}

// ResolveChannel finds a channel by id or name.
func (a *Adapter) ResolveChannel(ctx context.Context, ref string) (types.Channel, error) {
	ch, err := db.GetChannel(a.db, ref)
	if err != nil {
		return types.Channel{}, err
	}
	if ch == nil {
		return types.Channel{}, fmt.Errorf("%s: %w", ref, platform.ErrUnknownChannel)
	}
	out := toPlatformChannel(*ch)
	out.Platform = a.name
	return out, nil
}

func (a *Adapter) Channels(ctx context.Context) ([]types.Channel, error) {
	channels, err := db.GetChannels(a.db)
	if err != nil {
		return nil, err
	}
	for i := range channels {
		channels[i] = toPlatformChannel(channels[i])
	}
	return channels, nil
}

func toPlatformChannel(ch types.Channel) types.Channel {
	ch.Unfollowed = !ch.Following
	return ch
}

func (a *Adapter) SetFollowing(ctx context.Context, channelID string, following bool) error {
	if err := db.SetFollowing(a.db, channelID, following); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", channelID, platform.ErrUnknownChannel)
		}
		return err
	}
	return a.journal(db.JournalRecord{Type: db.RecordFollow, ChannelID: channelID, Following: &following})
}

func (a *Adapter) LoadMessages(ctx context.Context, ch types.Channel, limit int) ([]types.Message, bool, error) {
	msgs, hasMore, err := db.GetRecentMessages(a.db, ch.ID, limit)
	if err != nil {
		return nil, false, err
	}
	return a.stampAll(msgs), hasMore, nil
}

func (a *Adapter) LoadOlderMessages(ctx context.Context, ch types.Channel, beforeID string, limit int) (platform.OlderPage, error) {
	msgs, hasMore, err := db.GetMessagesBefore(a.db, ch.ID, beforeID, limit)
	if err != nil {
		return platform.OlderPage{}, mapNotFound(err, beforeID)
	}
	msgs = a.stampAll(msgs)
	return platform.OlderPage{Messages: msgs, NewCount: len(msgs), HasMore: hasMore}, nil
}

func (a *Adapter) SendMessage(ctx context.Context, opts platform.SendOptions) (types.Message, error) {
	ch, err := db.GetChannel(a.db, opts.Channel.ID)
	if err != nil {
		return types.Message{}, err
	}
	if ch == nil {
		return types.Message{}, fmt.Errorf("%s: %w", opts.Channel.ID, platform.ErrUnknownChannel)
	}

	msg := types.Message{Author: a.username, Body: opts.Body}
	if opts.ReplyTo != "" {
		replyTo := opts.ReplyTo
		msg.ReplyTo = &replyTo
	}
	for _, att := range opts.Attachments {
		stored, err := a.files.Put(att)
		if err != nil {
			return types.Message{}, fmt.Errorf("attach %s: %w", att.Path, err)
		}
		msg.Attachments = append(msg.Attachments, stored)
	}

	created, err := db.CreateMessage(a.db, ch.ID, msg)
	if err != nil {
		return types.Message{}, err
	}
	if err := a.journal(db.JournalRecord{Type: db.RecordMessage, ChannelID: ch.ID, MessageID: created.ID, Message: &created}); err != nil {
		return types.Message{}, err
	}
	return a.stamp(created), nil
}

func (a *Adapter) EditMessage(ctx context.Context, ch types.Channel, messageID, body string) (types.Message, error) {
	edited, err := db.EditMessage(a.db, messageID, body)
	if err != nil {
		return types.Message{}, mapNotFound(err, messageID)
	}
	if err := a.journal(db.JournalRecord{Type: db.RecordMessageUpdate, ChannelID: ch.ID, MessageID: messageID, Message: &edited}); err != nil {
		return types.Message{}, err
	}
	return a.stamp(edited), nil
}

func (a *Adapter) DeleteMessage(ctx context.Context, ch types.Channel, messageID string) error {
	if err := db.DeleteMessage(a.db, messageID); err != nil {
		return mapNotFound(err, messageID)
	}
	return a.journal(db.JournalRecord{Type: db.RecordMessageDelete, ChannelID: ch.ID, MessageID: messageID})
}

func (a *Adapter) AddReaction(ctx context.Context, ch types.Channel, messageID, emoji string) (types.Message, error) {
	reacted, err := db.AddReaction(a.db, messageID, a.username, emoji)
	if err != nil {
		return types.Message{}, mapNotFound(err, messageID)
	}
	if err := a.journal(db.JournalRecord{
		Type:      db.RecordReaction,
		ChannelID: ch.ID,
		MessageID: messageID,
		Message:   &reacted,
		User:      a.username,
		Emoji:     emoji,
	}); err != nil {
		return types.Message{}, err
	}
	return a.stamp(reacted), nil
}

func (a *Adapter) journal(record db.JournalRecord) error {
	if err := db.AppendJournal(a.project.JournalPath(), record); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

func mapNotFound(err error, id string) error {
	if errors.Is(err, db.ErrMessageNotFound) {
		return fmt.Errorf("%s: %w", id, platform.ErrUnknownMessage)
	}
	return err
}
