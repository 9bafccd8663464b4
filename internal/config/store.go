package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. FOCUSLOG_HEADER.
const EnvPrefix = "FOCUSLOG"

// DefaultPath returns the settings file location: FOCUSLOG_CONFIG if set,
// otherwise $XDG_CONFIG_HOME/focuslog/settings.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "focuslog", "settings.yaml"), nil
}

// FileStore persists Settings as YAML. Reads go through viper so that
// FOCUSLOG_* environment variables override file values; writes go through
// yaml.v3 against the file contents only, so overrides never leak to disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store for the given settings file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the settings file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the settings file, creating it with defaults when missing,
// applies environment overrides and normalizes the result.
func (s *FileStore) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(Default()); err != nil {
			return Settings{}, fmt.Errorf("creating settings file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// Save validates and writes the full settings snapshot.
func (s *FileStore) Save(cfg Settings) error {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(cfg)
}

// SaveCurrentTask rewrites only current_task_text, leaving every other
// value exactly as stored in the file.
func (s *FileStore) SaveCurrentTask(task string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.readFile()
	if err != nil {
		return err
	}
	cfg.CurrentTaskText = task
	return s.write(cfg)
}

// Set parses value into the named key and persists the file.
func (s *FileStore) Set(key, value string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.readFile()
	if err != nil {
		return Settings{}, err
	}
	if err := Apply(&cfg, key, value); err != nil {
		return Settings{}, err
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	if err := s.write(cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func (s *FileStore) readFile() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("decoding settings file: %w", err)
	}
	return cfg, nil
}

func (s *FileStore) write(cfg Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("journal_path", d.JournalPath)
	v.SetDefault("vault_path", d.VaultPath)
	v.SetDefault("note_date_format", d.NoteDateFormat)
	v.SetDefault("default_length_minutes", d.DefaultLengthMinutes)
	v.SetDefault("max_session_length_minutes", d.MaxSessionLengthMinutes)
	v.SetDefault("flush_interval_minutes", d.FlushIntervalMinutes)
	v.SetDefault("header", d.Header)
	v.SetDefault("current_task_text", d.CurrentTaskText)
	v.SetDefault("desktop_notifications", d.DesktopNotifications)
}
