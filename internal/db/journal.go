package db

import (
	"bufio"
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/types"
)

// Journal record types.
const (
	RecordChannel       = "channel"
	RecordFollow        = "follow"
	RecordMessage       = "message"
	RecordMessageUpdate = "message_update"
	RecordMessageDelete = "message_delete"
	RecordReaction      = "reaction"
)

// JournalRecord is one line of the append-only journal. Every local write is
// recorded so other processes can follow along and the database can be
// rebuilt. Message ids and channel ids are local (no platform prefix).
type JournalRecord struct {
	Type      string         `json:"type"`
	TS        int64          `json:"ts"`
	ChannelID string         `json:"channel_id,omitempty"`
	MessageID string         `json:"message_id,omitempty"`
	Channel   *types.Channel `json:"channel,omitempty"`
	Message   *types.Message `json:"message,omitempty"`
	Following *bool          `json:"following,omitempty"`
	User      string         `json:"user,omitempty"`
	Emoji     string         `json:"emoji,omitempty"`
}

// AppendJournal writes one record under an exclusive file lock.
func AppendJournal(path string, record JournalRecord) error {
	if record.TS == 0 {
		record.TS = time.Now().UnixMilli()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return atomicAppend(path, data)
}

func atomicAppend(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadJournalFrom reads the complete records that start at or after offset
// and returns the offset just past the last complete line. A trailing line
// without a newline is still being written and is left for the next read.
func ReadJournalFrom(path string, offset int64) ([]JournalRecord, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, offset, nil
		}
		return nil, offset, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, offset, err
	}
	if info.Size() < offset {
		// Truncated or replaced; start over.
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, err
	}

	reader := bufio.NewReaderSize(f, 64*1024)
	var records []JournalRecord
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, offset, err
		}
		offset += int64(len(line))

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var record JournalRecord
		if err := json.Unmarshal(line, &record); err != nil {
			logging.Warn("journal", "skipping malformed record in %s: %v", path, err)
			continue
		}
		records = append(records, record)
	}
	return records, offset, nil
}

// ReadJournal reads every complete record.
func ReadJournal(path string) ([]JournalRecord, error) {
	records, _, err := ReadJournalFrom(path, 0)
	return records, err
}

// ApplyRecord replays one journal record into the database.
func ApplyRecord(db DBTX, record JournalRecord) error {
	switch record.Type {
	case RecordChannel:
		if record.Channel == nil {
			return fmt.Errorf("channel record without channel")
		}
		return upsertChannel(db, *record.Channel, record.TS/1000)
	case RecordFollow:
		if record.Following == nil {
			return nil
		}
		_, err := db.Exec(`UPDATE tern_channels SET following = ? WHERE id = ?`, boolToInt(*record.Following), record.ChannelID)
		return err
	case RecordMessage:
		if record.Message == nil {
			return fmt.Errorf("message record without message")
		}
		return insertMessage(db, record.ChannelID, *record.Message)
	case RecordMessageUpdate:
		if record.Message == nil || record.Message.EditedAt == nil {
			return nil
		}
		err := updateMessageBody(db, record.MessageID, record.Message.Body, *record.Message.EditedAt)
		if err == ErrMessageNotFound {
			return nil
		}
		return err
	case RecordMessageDelete:
		err := DeleteMessage(db, record.MessageID)
		if err == ErrMessageNotFound {
			return nil
		}
		return err
	case RecordReaction:
		return insertReaction(db, record.MessageID, record.User, record.Emoji, record.TS)
	default:
		logging.Debug("journal", "ignoring record type %q", record.Type)
		return nil
	}
}

// RebuildFromJournal clears local channels and messages and replays the
// journal into them.
func RebuildFromJournal(db *sql.DB, path string) error {
	records, err := ReadJournal(path)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM tern_reactions`,
		`DELETE FROM tern_messages`,
		`DELETE FROM tern_channels`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	for _, record := range records {
		if err := ApplyRecord(tx, record); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s record: %w", record.Type, err)
		}
	}
	return tx.Commit()
}
