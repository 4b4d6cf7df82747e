package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/adamavenir/tern/internal/types"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func createTestChannel(t *testing.T, db *sql.DB, name string) types.Channel {
	t.Helper()
	channel, err := CreateChannel(db, types.Channel{Name: name, Following: true})
	require.NoError(t, err)
	return channel
}

func postTestMessage(t *testing.T, db *sql.DB, channelID, body string, ts int64) types.Message {
	t.Helper()
	msg, err := CreateMessage(db, channelID, types.Message{Author: "sam", Body: body, TS: ts})
	require.NoError(t, err)
	return msg
}

func bodies(messages []types.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Body
	}
	return out
}
