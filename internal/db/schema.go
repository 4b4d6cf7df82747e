package db

import (
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const schemaSQL = `
-- Local channels
CREATE TABLE IF NOT EXISTS tern_channels (
  id TEXT PRIMARY KEY,                  -- e.g., "general"
  name TEXT NOT NULL UNIQUE,
  grp TEXT NOT NULL DEFAULT '',         -- directory section
  topic TEXT NOT NULL DEFAULT '',
  following INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL           -- unix timestamp
);

-- Local messages
CREATE TABLE IF NOT EXISTS tern_messages (
  guid TEXT PRIMARY KEY,                -- e.g., "msg-a1b2c3d4"
  channel_id TEXT NOT NULL,
  ts INTEGER NOT NULL,                  -- unix timestamp
  author TEXT NOT NULL,
  body TEXT NOT NULL,
  reply_to TEXT,
  edited_at INTEGER,
  attachments TEXT NOT NULL DEFAULT '[]', -- JSON array of {name, path}
  FOREIGN KEY (channel_id) REFERENCES tern_channels(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tern_messages_channel_ts ON tern_messages(channel_id, ts);

CREATE TABLE IF NOT EXISTS tern_reactions (
  message_guid TEXT NOT NULL,
  user TEXT NOT NULL,
  emoji TEXT NOT NULL,
  reacted_at INTEGER NOT NULL,
  PRIMARY KEY (message_guid, user, emoji),
  FOREIGN KEY (message_guid) REFERENCES tern_messages(guid) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tern_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

-- Message cache for any platform, keyed by platform and channel
CREATE TABLE IF NOT EXISTS tern_cache_messages (
  platform TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  guid TEXT NOT NULL,
  ts INTEGER NOT NULL,
  payload TEXT NOT NULL,                -- JSON-encoded message
  PRIMARY KEY (platform, channel_id, guid)
);

CREATE INDEX IF NOT EXISTS idx_tern_cache_channel_ts ON tern_cache_messages(platform, channel_id, ts);

-- Channels whose cache has been populated at least once
CREATE TABLE IF NOT EXISTS tern_cache_channels (
  platform TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  filled_at INTEGER NOT NULL,
  PRIMARY KEY (platform, channel_id)
);
`

// InitSchema creates missing tables.
func InitSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(schemaSQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
