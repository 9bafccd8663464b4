package journal

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// momentTokens maps moment.js style date tokens, longest first, to Go
// layout fragments.
var momentTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
}

// FormatDate renders day using a note date format such as "YYYY-MM-DD".
// Only the known tokens are substituted; all other text, and anything
// wrapped in [brackets], is copied literally.
func FormatDate(format string, day time.Time) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			if j := strings.IndexByte(format[i+1:], ']'); j >= 0 {
				b.WriteString(format[i+1 : i+1+j])
				i += j + 2
				continue
			}
		}
		matched := false
		for _, t := range momentTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(day.Format(t.layout))
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

// NotePath returns the daily note for day: dir/<formatted day>.md. Formats
// containing '/' resolve into subdirectories.
func NotePath(dir, format string, day time.Time) string {
	name := FormatDate(format, day) + ".md"
	return filepath.Join(dir, filepath.FromSlash(name))
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FileProbe checks note existence on the local filesystem.
type FileProbe struct{}

func (FileProbe) Exists(path string) bool { return Exists(path) }
