package db

import (
	"strings"
	"time"

	"github.com/adamavenir/tern/internal/types"
)

// AddReaction records user reacting to a message with emoji. Repeating the
// same reaction is a no-op.
func AddReaction(db DBTX, guid, user, emoji string) (types.Message, error) {
	message, err := GetMessage(db, guid)
	if err != nil {
		return types.Message{}, err
	}
	if message == nil {
		return types.Message{}, ErrMessageNotFound
	}
	if err := insertReaction(db, guid, user, emoji, time.Now().UnixMilli()); err != nil {
		return types.Message{}, err
	}
	updated, err := GetMessage(db, guid)
	if err != nil {
		return types.Message{}, err
	}
	return *updated, nil
}

func insertReaction(db DBTX, guid, user, emoji string, reactedAt int64) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO tern_reactions (message_guid, user, emoji, reacted_at)
		VALUES (?, ?, ?, ?)
	`, guid, user, emoji, reactedAt)
	return err
}

// loadReactionsForMessages fills Reactions, grouping users per emoji in the
// order the emoji was first used.
func loadReactionsForMessages(db DBTX, messages []types.Message) error {
	if len(messages) == 0 {
		return nil
	}
	placeholders := make([]string, len(messages))
	args := make([]any, len(messages))
	index := make(map[string]int, len(messages))
	for i, msg := range messages {
		placeholders[i] = "?"
		args[i] = msg.ID
		index[msg.ID] = i
	}

	rows, err := db.Query(`
		SELECT message_guid, user, emoji
		FROM tern_reactions
		WHERE message_guid IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY reacted_at ASC, user ASC
	`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var guid, user, emoji string
		if err := rows.Scan(&guid, &user, &emoji); err != nil {
			return err
		}
		msg := &messages[index[guid]]
		msg.Reactions = appendReaction(msg.Reactions, emoji, user)
	}
	return rows.Err()
}

func appendReaction(reactions []types.Reaction, emoji, user string) []types.Reaction {
	for i := range reactions {
		if reactions[i].Emoji == emoji {
			reactions[i].Users = append(reactions[i].Users, user)
			return reactions
		}
	}
	return append(reactions, types.Reaction{Emoji: emoji, Users: []string{user}})
}
