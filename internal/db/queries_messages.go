package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/types"
)

// ErrMessageNotFound is returned when a message id does not resolve.
var ErrMessageNotFound = errors.New("message not found")

// messageColumns is the explicit column list for SELECT queries.
const messageColumns = `guid, channel_id, ts, author, body, reply_to, edited_at, attachments`

// CreateMessage inserts a new message into channelID. The returned message
// carries its generated id and timestamp.
func CreateMessage(db DBTX, channelID string, message types.Message) (types.Message, error) {
	if message.TS == 0 {
		message.TS = time.Now().Unix()
	}
	guid, err := generateUniqueGUID(db, "msg")
	if err != nil {
		return types.Message{}, err
	}
	message.ID = guid
	message.ChannelKey = channelID
	message.Reactions = nil
	message.EditedAt = nil
	if err := insertMessage(db, channelID, message); err != nil {
		return types.Message{}, err
	}
	return message, nil
}

func insertMessage(db DBTX, channelID string, message types.Message) error {
	attachments, err := json.Marshal(nonNilAttachments(message.Attachments))
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT OR REPLACE INTO tern_messages (guid, channel_id, ts, author, body, reply_to, edited_at, attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, message.ID, channelID, message.TS, message.Author, message.Body, message.ReplyTo, message.EditedAt, string(attachments))
	return err
}

// GetMessages returns the newest limit messages of a channel, oldest first.
// A non-positive limit returns all of them.
func GetMessages(db DBTX, channelID string, limit int) ([]types.Message, error) {
	messages, _, err := queryPage(db, channelID, nil, limit)
	return messages, err
}

// GetRecentMessages is GetMessages that also reports whether older messages
// exist beyond the limit.
func GetRecentMessages(db DBTX, channelID string, limit int) ([]types.Message, bool, error) {
	return queryPage(db, channelID, nil, limit)
}

// GetMessagesBefore returns up to limit messages older than beforeID, oldest
// first, and whether even older ones exist.
func GetMessagesBefore(db DBTX, channelID, beforeID string, limit int) ([]types.Message, bool, error) {
	anchor, err := GetMessage(db, beforeID)
	if err != nil {
		return nil, false, err
	}
	if anchor == nil {
		return nil, false, ErrMessageNotFound
	}
	return queryPage(db, channelID, anchor, limit)
}

// queryPage selects newest-first so LIMIT applies to the recent end, then
// flips to chronological order. One extra row is read to report hasMore.
func queryPage(db DBTX, channelID string, before *types.Message, limit int) ([]types.Message, bool, error) {
	query := `SELECT ` + messageColumns + ` FROM tern_messages WHERE channel_id = ?`
	args := []any{channelID}
	if before != nil {
		query += ` AND (ts < ? OR (ts = ? AND guid < ?))`
		args = append(args, before.TS, before.TS, before.ID)
	}
	query += ` ORDER BY ts DESC, guid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit+1)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, false, err
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, false, err
	}

	hasMore := false
	if limit > 0 && len(messages) > limit {
		hasMore = true
		messages = messages[:limit]
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if err := loadReactionsForMessages(db, messages); err != nil {
		return nil, false, err
	}
	return messages, hasMore, nil
}

// GetMessage returns a message by id, or nil when not found.
func GetMessage(db DBTX, guid string) (*types.Message, error) {
	row := db.QueryRow(`SELECT `+messageColumns+` FROM tern_messages WHERE guid = ?`, guid)
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	messages := []types.Message{message}
	if err := loadReactionsForMessages(db, messages); err != nil {
		return nil, err
	}
	return &messages[0], nil
}

// EditMessage replaces a message body and stamps edited_at.
func EditMessage(db DBTX, guid, body string) (types.Message, error) {
	now := time.Now().Unix()
	if err := updateMessageBody(db, guid, body, now); err != nil {
		return types.Message{}, err
	}
	message, err := GetMessage(db, guid)
	if err != nil {
		return types.Message{}, err
	}
	if message == nil {
		return types.Message{}, ErrMessageNotFound
	}
	return *message, nil
}

func updateMessageBody(db DBTX, guid, body string, editedAt int64) error {
	result, err := db.Exec(`UPDATE tern_messages SET body = ?, edited_at = ? WHERE guid = ?`, body, editedAt, guid)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteMessage removes a message and its reactions.
func DeleteMessage(db DBTX, guid string) error {
	if _, err := db.Exec(`DELETE FROM tern_reactions WHERE message_guid = ?`, guid); err != nil {
		return err
	}
	result, err := db.Exec(`DELETE FROM tern_messages WHERE guid = ?`, guid)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

type messageRow struct {
	GUID        string
	ChannelID   string
	TS          int64
	Author      string
	Body        string
	ReplyTo     sql.NullString
	EditedAt    sql.NullInt64
	Attachments string
}

func (row messageRow) toMessage() (types.Message, error) {
	var attachments []types.Attachment
	if row.Attachments != "" {
		if err := json.Unmarshal([]byte(row.Attachments), &attachments); err != nil {
			return types.Message{}, err
		}
	}
	if len(attachments) == 0 {
		attachments = nil
	}
	return types.Message{
		ID:          row.GUID,
		ChannelKey:  row.ChannelID,
		Author:      row.Author,
		Body:        row.Body,
		TS:          row.TS,
		EditedAt:    nullIntPtr(row.EditedAt),
		ReplyTo:     nullStringPtr(row.ReplyTo),
		Attachments: attachments,
	}, nil
}

func scanMessages(rows *sql.Rows) ([]types.Message, error) {
	defer rows.Close()
	var messages []types.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func scanMessage(scanner interface{ Scan(dest ...any) error }) (types.Message, error) {
	var row messageRow
	if err := scanner.Scan(&row.GUID, &row.ChannelID, &row.TS, &row.Author, &row.Body, &row.ReplyTo, &row.EditedAt, &row.Attachments); err != nil {
		return types.Message{}, err
	}
	return row.toMessage()
}

func generateUniqueGUID(db DBTX, prefix string) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		guid, err := core.GenerateGUID(prefix)
		if err != nil {
			return "", err
		}
		var exists int
		err = db.QueryRow(`SELECT 1 FROM tern_messages WHERE guid = ?`, guid).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return guid, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("failed to generate unique message id")
}

func nonNilAttachments(in []types.Attachment) []types.Attachment {
	if in == nil {
		return []types.Attachment{}
	}
	return in
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func nullIntPtr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
