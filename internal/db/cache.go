package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/adamavenir/tern/internal/types"
)

// Cache is the per-platform message cache the sync bridge reads from. It
// stores whole messages as JSON so any platform's messages fit.
type Cache struct {
	db *sql.DB
}

// NewCache wraps an open database.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// GetCachedMessages returns a channel's cached messages oldest first. ok is
// false when the channel has never been filled.
func (c *Cache) GetCachedMessages(platform, channelID string) ([]types.Message, bool, error) {
	var filled int
	err := c.db.QueryRow(`
		SELECT 1 FROM tern_cache_channels WHERE platform = ? AND channel_id = ?
	`, platform, channelID).Scan(&filled)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := c.db.Query(`
		SELECT payload FROM tern_cache_messages
		WHERE platform = ? AND channel_id = ?
		ORDER BY ts ASC, guid ASC
	`, platform, channelID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, false, err
		}
		var msg types.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			return nil, false, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return messages, true, nil
}

// UpsertCachedMessage inserts or replaces one cached message.
func (c *Cache) UpsertCachedMessage(platform, channelID string, message types.Message) error {
	return upsertCached(c.db, platform, channelID, message)
}

// DeleteCachedMessage removes one cached message. Missing ids are ignored.
func (c *Cache) DeleteCachedMessage(platform, channelID, messageID string) error {
	_, err := c.db.Exec(`
		DELETE FROM tern_cache_messages WHERE platform = ? AND channel_id = ? AND guid = ?
	`, platform, channelID, messageID)
	return err
}

// ReplaceCachedMessages swaps a channel's cached messages for a fresh load
// and marks the channel as filled.
func (c *Cache) ReplaceCachedMessages(platform, channelID string, messages []types.Message) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`
		DELETE FROM tern_cache_messages WHERE platform = ? AND channel_id = ?
	`, platform, channelID); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, msg := range messages {
		if err := upsertCached(tx, platform, channelID, msg); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO tern_cache_channels (platform, channel_id, filled_at) VALUES (?, ?, ?)
	`, platform, channelID, time.Now().Unix()); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertCached(db DBTX, platform, channelID string, message types.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT OR REPLACE INTO tern_cache_messages (platform, channel_id, guid, ts, payload)
		VALUES (?, ?, ?, ?, ?)
	`, platform, channelID, message.ID, message.TS, string(payload))
	return err
}
