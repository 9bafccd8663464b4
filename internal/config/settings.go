package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinLengthMinutes = 5
	MaxLengthMinutes = 2400

	DefaultHeader         = "# Pomodoro Sessions"
	DefaultNoteDateFormat = "YYYY-MM-DD"
)

// ErrInvalidSetting is returned when a settings value fails validation.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings is the in-memory snapshot of the settings file. The controller
// refreshes it only on session start, reset and explicit reload.
// VaultPath is kept for the external vault scanner that builds task
// suggestions; focuslog stores and shows it but never reads it.
type Settings struct {
	JournalPath             string `yaml:"journal_path" mapstructure:"journal_path"`
	VaultPath               string `yaml:"vault_path" mapstructure:"vault_path"`
	NoteDateFormat          string `yaml:"note_date_format" mapstructure:"note_date_format"`
	DefaultLengthMinutes    int    `yaml:"default_length_minutes" mapstructure:"default_length_minutes"`
	MaxSessionLengthMinutes int    `yaml:"max_session_length_minutes" mapstructure:"max_session_length_minutes"`
	FlushIntervalMinutes    int    `yaml:"flush_interval_minutes" mapstructure:"flush_interval_minutes"`
	Header                  string `yaml:"header" mapstructure:"header"`
	CurrentTaskText         string `yaml:"current_task_text" mapstructure:"current_task_text"`
	DesktopNotifications    bool   `yaml:"desktop_notifications" mapstructure:"desktop_notifications"`
}

// Default returns Settings with the stock values.
func Default() Settings {
	return Settings{
		NoteDateFormat:          DefaultNoteDateFormat,
		DefaultLengthMinutes:    25,
		MaxSessionLengthMinutes: 120,
		FlushIntervalMinutes:    1,
		Header:                  DefaultHeader,
		DesktopNotifications:    true,
	}
}

// ClampLength bounds a session length to [MinLengthMinutes, MaxLengthMinutes].
func ClampLength(minutes int) int {
	if minutes < MinLengthMinutes {
		return MinLengthMinutes
	}
	if minutes > MaxLengthMinutes {
		return MaxLengthMinutes
	}
	return minutes
}

// Normalize fills blanks with defaults and clamps the session length.
func (s Settings) Normalize() Settings {
	d := Default()
	if strings.TrimSpace(s.NoteDateFormat) == "" {
		s.NoteDateFormat = d.NoteDateFormat
	}
	if strings.TrimSpace(s.Header) == "" {
		s.Header = d.Header
	}
	s.Header = strings.TrimSpace(s.Header)
	if s.FlushIntervalMinutes == 0 {
		s.FlushIntervalMinutes = d.FlushIntervalMinutes
	}
	if s.DefaultLengthMinutes == 0 {
		s.DefaultLengthMinutes = d.DefaultLengthMinutes
	}
	s.DefaultLengthMinutes = ClampLength(s.DefaultLengthMinutes)
	return s
}

// Validate rejects values the controller cannot work with.
func (s Settings) Validate() error {
	if s.FlushIntervalMinutes < 1 {
		return fmt.Errorf("%w: flush_interval_minutes must be at least 1, got %d", ErrInvalidSetting, s.FlushIntervalMinutes)
	}
	if s.MaxSessionLengthMinutes < 0 {
		return fmt.Errorf("%w: max_session_length_minutes must not be negative, got %d", ErrInvalidSetting, s.MaxSessionLengthMinutes)
	}
	if !strings.HasPrefix(s.Header, "#") {
		return fmt.Errorf("%w: header %q must start with a # marker", ErrInvalidSetting, s.Header)
	}
	return nil
}

// DefaultLength is the configured session length as a duration.
func (s Settings) DefaultLength() time.Duration {
	return time.Duration(s.DefaultLengthMinutes) * time.Minute
}

// MaxSessionLength is the auto-stop ceiling; zero disables it.
func (s Settings) MaxSessionLength() time.Duration {
	return time.Duration(s.MaxSessionLengthMinutes) * time.Minute
}

// FlushInterval is the period of the journal flush tick.
func (s Settings) FlushInterval() time.Duration {
	return time.Duration(s.FlushIntervalMinutes) * time.Minute
}
