package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys lists the settings keys accepted by Apply, in display order.
var Keys = []string{
	"journal_path",
	"vault_path",
	"note_date_format",
	"default_length_minutes",
	"max_session_length_minutes",
	"flush_interval_minutes",
	"header",
	"current_task_text",
	"desktop_notifications",
}

// Apply parses value and assigns it to the named key. Lengths are clamped
// rather than rejected; non-numeric values are rejected.
func Apply(cfg *Settings, key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "journal_path":
		cfg.JournalPath = value
	case "vault_path":
		cfg.VaultPath = value
	case "note_date_format":
		cfg.NoteDateFormat = value
	case "default_length_minutes":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		cfg.DefaultLengthMinutes = ClampLength(n)
	case "max_session_length_minutes":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		cfg.MaxSessionLengthMinutes = n
	case "flush_interval_minutes":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		cfg.FlushIntervalMinutes = n
	case "header":
		cfg.Header = value
	case "current_task_text":
		cfg.CurrentTaskText = value
	case "desktop_notifications":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", ErrInvalidSetting, key, value)
		}
		cfg.DesktopNotifications = b
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
	}
	return nil
}

// Value returns the display form of the named key.
func (s Settings) Value(key string) string {
	switch key {
	case "journal_path":
		return s.JournalPath
	case "vault_path":
		return s.VaultPath
	case "note_date_format":
		return s.NoteDateFormat
	case "default_length_minutes":
		return strconv.Itoa(s.DefaultLengthMinutes)
	case "max_session_length_minutes":
		return strconv.Itoa(s.MaxSessionLengthMinutes)
	case "flush_interval_minutes":
		return strconv.Itoa(s.FlushIntervalMinutes)
	case "header":
		return s.Header
	case "current_task_text":
		return s.CurrentTaskText
	case "desktop_notifications":
		return strconv.FormatBool(s.DesktopNotifications)
	}
	return ""
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %q", ErrInvalidSetting, key, value)
	}
	return n, nil
}
