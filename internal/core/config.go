package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir    = ".config/tern"
	projectConfigDir = ".tern"
	configFileName   = "config.yaml"
)

// Config holds settings merged from defaults, the user file and the
// project file, in that order.
type Config struct {
	Username          string      `yaml:"username,omitempty"`
	VisibleCount      int         `yaml:"visible_count,omitempty"`
	LoadLimit         int         `yaml:"load_limit,omitempty"`
	Notify            *bool       `yaml:"notify,omitempty"`
	Mouse             *bool       `yaml:"mouse,omitempty"`
	LogLevel          string      `yaml:"log_level,omitempty"`
	Hide              []string    `yaml:"hide,omitempty"`
	CollapsedSections []string    `yaml:"collapsed_sections,omitempty"`
	Workspaces        []Workspace `yaml:"workspaces,omitempty"`
}

// Workspace is a registered project whose channels appear as one platform.
type Workspace struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// NotifyEnabled reports whether desktop notifications are on.
func (c Config) NotifyEnabled() bool {
	return c.Notify == nil || *c.Notify
}

// MouseEnabled reports whether mouse support is on.
func (c Config) MouseEnabled() bool {
	return c.Mouse == nil || *c.Mouse
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Username:     defaultUsername(),
		VisibleCount: 5,
		LoadLimit:    50,
		LogLevel:     "info",
	}
}

func defaultUsername() string {
	for _, key := range []string{"TERN_USER", "USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return strings.ToLower(v)
		}
	}
	return "me"
}

// ConfigEnv overrides the user config file location.
const ConfigEnv = "TERN_CONFIG"

// For tests.
var userConfigPath = func() (string, error) {
	if path := os.Getenv(ConfigEnv); path != "" {
		return path, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, userConfigDir, configFileName), nil
}

// ProjectConfigPath returns the config file inside a project root.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, projectConfigDir, configFileName)
}

// LoadConfig layers the user config and, when projectRoot is set, the
// project config over the defaults. Missing files are skipped.
func LoadConfig(projectRoot string) (Config, error) {
	config := DefaultConfig()

	if path, err := userConfigPath(); err == nil {
		user, err := readConfigFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load user config %s: %w", path, err)
		}
		config = MergeConfigs(config, user)
	}

	if projectRoot != "" {
		path := ProjectConfigPath(projectRoot)
		project, err := readConfigFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load project config %s: %w", path, err)
		}
		config = MergeConfigs(config, project)
	}
	return config, nil
}

func readConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func writeConfigFile(path string, config Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MergeConfigs overlays the non-zero fields of overlay onto base.
// Workspaces merge by name; list fields are replaced wholesale.
func MergeConfigs(base, overlay Config) Config {
	merged := base
	if overlay.Username != "" {
		merged.Username = overlay.Username
	}
	if overlay.VisibleCount > 0 {
		merged.VisibleCount = overlay.VisibleCount
	}
	if overlay.LoadLimit > 0 {
		merged.LoadLimit = overlay.LoadLimit
	}
	if overlay.Notify != nil {
		merged.Notify = overlay.Notify
	}
	if overlay.Mouse != nil {
		merged.Mouse = overlay.Mouse
	}
	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}
	if overlay.Hide != nil {
		merged.Hide = append([]string(nil), overlay.Hide...)
	}
	if overlay.CollapsedSections != nil {
		merged.CollapsedSections = append([]string(nil), overlay.CollapsedSections...)
	}

	if len(overlay.Workspaces) > 0 {
		workspaces := append([]Workspace(nil), base.Workspaces...)
		for _, ws := range overlay.Workspaces {
			replaced := false
			for i := range workspaces {
				if workspaces[i].Name == ws.Name {
					workspaces[i] = ws
					replaced = true
					break
				}
			}
			if !replaced {
				workspaces = append(workspaces, ws)
			}
		}
		merged.Workspaces = workspaces
	}
	return merged
}

// RegisterWorkspace adds or updates a workspace in the user config so that
// chat sessions started elsewhere can find it.
func RegisterWorkspace(name, root string) (Config, error) {
	path, err := userConfigPath()
	if err != nil {
		return Config{}, err
	}
	config, err := readConfigFile(path)
	if err != nil {
		return Config{}, err
	}
	config = MergeConfigs(config, Config{Workspaces: []Workspace{{Name: name, Path: root}}})
	if err := writeConfigFile(path, config); err != nil {
		return Config{}, fmt.Errorf("write user config: %w", err)
	}
	return config, nil
}

// FindWorkspace resolves a workspace by name or path.
func FindWorkspace(ref string, config Config) (Workspace, bool) {
	for _, ws := range config.Workspaces {
		if ws.Name == ref || ws.Path == ref {
			return ws, true
		}
	}
	return Workspace{}, false
}
