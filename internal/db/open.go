package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamavenir/tern/internal/core"
	_ "modernc.org/sqlite"
)

// OpenDatabase opens the SQLite database for a project, creating the schema
// if needed. When the journal is newer than the database (another checkout
// wrote to it, or the db was deleted) the database is rebuilt from it.
func OpenDatabase(project core.Project) (*sql.DB, error) {
	core.EnsureGitignore(filepath.Dir(project.DBPath))

	dbExists := true
	var dbMtime int64
	if info, err := os.Stat(project.DBPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		dbExists = false
	} else {
		dbMtime = info.ModTime().UnixMilli()
	}

	journalMtime := fileMtime(project.JournalPath())
	shouldRebuild := journalMtime > 0 && (!dbExists || journalMtime > dbMtime)

	conn, err := OpenPath(project.DBPath)
	if err != nil {
		return nil, err
	}
	if shouldRebuild {
		if err := RebuildFromJournal(conn, project.JournalPath()); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("rebuild from journal: %w", err)
		}
	}
	return conn, nil
}

// OpenPath opens (or creates) a database file and ensures the schema.
func OpenPath(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	if err := InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return conn, nil
}

func fileMtime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}
