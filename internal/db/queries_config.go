package db

import "database/sql"

// WorkspaceNameKey stores the name a workspace was initialized with.
const WorkspaceNameKey = "workspace_name"

// GetConfig returns a config value, or "" when unset.
func GetConfig(db DBTX, key string) (string, error) {
	row := db.QueryRow("SELECT value FROM tern_config WHERE key = ?", key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetConfig sets a config value.
func SetConfig(db DBTX, key, value string) error {
	_, err := db.Exec("INSERT OR REPLACE INTO tern_config (key, value) VALUES (?, ?)", key, value)
	return err
}
