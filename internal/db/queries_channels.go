package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/adamavenir/tern/internal/types"
)

// ErrChannelExists is returned when a channel name is already taken.
var ErrChannelExists = errors.New("channel already exists")

const channelColumns = `id, name, grp, topic, following`

// CreateChannel inserts a channel. The id defaults to the name.
func CreateChannel(db DBTX, channel types.Channel) (types.Channel, error) {
	if channel.ID == "" {
		channel.ID = channel.Name
	}
	existing, err := GetChannel(db, channel.Name)
	if err != nil {
		return types.Channel{}, err
	}
	if existing != nil {
		return types.Channel{}, ErrChannelExists
	}
	_, err = db.Exec(`
		INSERT INTO tern_channels (id, name, grp, topic, following, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, channel.ID, channel.Name, channel.Group, channel.Topic, boolToInt(channel.Following), time.Now().Unix())
	if err != nil {
		return types.Channel{}, err
	}
	return channel, nil
}

// upsertChannel is used when replaying the journal.
func upsertChannel(db DBTX, channel types.Channel, createdAt int64) error {
	_, err := db.Exec(`
		INSERT INTO tern_channels (id, name, grp, topic, following, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, grp = excluded.grp,
			topic = excluded.topic, following = excluded.following
	`, channel.ID, channel.Name, channel.Group, channel.Topic, boolToInt(channel.Following), createdAt)
	return err
}

// GetChannels returns all channels ordered by section then name.
func GetChannels(db DBTX) ([]types.Channel, error) {
	rows, err := db.Query(`SELECT ` + channelColumns + ` FROM tern_channels ORDER BY grp, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []types.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return channels, nil
}

// GetChannel resolves a channel by id or name. Returns nil when not found.
func GetChannel(db DBTX, ref string) (*types.Channel, error) {
	row := db.QueryRow(`SELECT `+channelColumns+` FROM tern_channels WHERE id = ? OR name = ? LIMIT 1`, ref, ref)
	channel, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// SetFollowing updates whether the user follows a channel.
func SetFollowing(db DBTX, id string, following bool) error {
	result, err := db.Exec(`UPDATE tern_channels SET following = ? WHERE id = ?`, boolToInt(following), id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanChannel(scanner interface{ Scan(dest ...any) error }) (types.Channel, error) {
	var channel types.Channel
	var following int
	if err := scanner.Scan(&channel.ID, &channel.Name, &channel.Group, &channel.Topic, &following); err != nil {
		return types.Channel{}, err
	}
	channel.Following = following != 0
	return channel, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
