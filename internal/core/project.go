package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotInitialized is returned when no .tern directory is found.
var ErrNotInitialized = errors.New("not initialized. Run 'tern init' first")

// Project represents a tern workspace on disk.
type Project struct {
	Root   string
	DBPath string
}

// Name is the workspace name, taken from the root directory.
func (p Project) Name() string {
	return filepath.Base(p.Root)
}

// Dir is the .tern directory of the project.
func (p Project) Dir() string {
	return filepath.Join(p.Root, projectConfigDir)
}

// JournalPath is the append-only event journal other processes watch.
func (p Project) JournalPath() string {
	return filepath.Join(p.Dir(), "journal.jsonl")
}

// AttachmentsDir holds copies of attached files.
func (p Project) AttachmentsDir() string {
	return filepath.Join(p.Dir(), "attachments")
}

// LogPath is where the chat UI writes its log.
func (p Project) LogPath() string {
	return filepath.Join(p.Dir(), "tern.log")
}

// OpenProject returns the project rooted exactly at root.
func OpenProject(root string) (Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Project{}, err
	}
	dbPath := filepath.Join(abs, projectConfigDir, "tern.db")
	if _, err := os.Stat(dbPath); err != nil {
		return Project{}, fmt.Errorf("%s: %w", abs, ErrNotInitialized)
	}
	return Project{Root: abs, DBPath: dbPath}, nil
}

// DiscoverProject walks up from startDir to find a .tern directory.
func DiscoverProject(startDir string) (Project, error) {
	current := startDir
	if current == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		current = cwd
	}
	current, err := filepath.Abs(current)
	if err != nil {
		return Project{}, err
	}

	for {
		dir := filepath.Join(current, projectConfigDir)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return OpenProject(current)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Project{}, ErrNotInitialized
		}
		current = parent
	}
}

// InitProject creates the .tern directory at dir. The database itself is
// created by the caller when it is first opened.
func InitProject(dir string, force bool) (Project, error) {
	root := dir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Project{}, err
	}

	ternDir := filepath.Join(root, projectConfigDir)
	dbPath := filepath.Join(ternDir, "tern.db")

	if info, err := os.Stat(ternDir); err == nil && info.IsDir() && !force {
		return Project{}, fmt.Errorf("already initialized. Use --force to reinitialize")
	}
	if err := os.MkdirAll(ternDir, 0o755); err != nil {
		return Project{}, err
	}
	EnsureGitignore(ternDir)

	if force {
		for _, path := range []string{dbPath, filepath.Join(ternDir, "journal.jsonl")} {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return Project{}, err
			}
		}
	}
	return Project{Root: root, DBPath: dbPath}, nil
}

// EnsureGitignore keeps local databases, logs and attachments out of git.
func EnsureGitignore(ternDir string) {
	gitignore := filepath.Join(ternDir, ".gitignore")
	entries := []string{"*.db", "*.db-wal", "*.db-shm", "*.log", "attachments/"}

	data, err := os.ReadFile(gitignore)
	if err != nil {
		_ = os.WriteFile(gitignore, []byte(strings.Join(entries, "\n")+"\n"), 0o644)
		return
	}
	content := string(data)

	lines := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		lines[line] = true
	}
	var missing []string
	for _, entry := range entries {
		if !lines[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return
	}
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += strings.Join(missing, "\n") + "\n"
	_ = os.WriteFile(gitignore, []byte(content), 0o644)
}
