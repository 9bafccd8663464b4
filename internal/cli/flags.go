package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// sessionFlags are shared by the commands that host a running session.
type sessionFlags struct {
	project string
	length  int
	noTUI   bool
}

func addSessionFlags(fs *pflag.FlagSet, f *sessionFlags, withStart bool) {
	if withStart {
		fs.StringVarP(&f.project, "project", "p", "", "Project label written after the task")
		fs.IntVarP(&f.length, "length", "l", 0, "Session length in minutes (default from settings)")
	}
	fs.BoolVar(&f.noTUI, "no-tui", false, "Print timer events instead of opening the timer view")
}

// dateFlag is a YYYY-MM-DD flag value. The zero value means today.
type dateFlag struct {
	t time.Time
}

var _ pflag.Value = (*dateFlag)(nil)

func (d *dateFlag) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(time.DateOnly)
}

func (d *dateFlag) Set(s string) error {
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	d.t = t
	return nil
}

func (d *dateFlag) Type() string { return "date" }

// or returns the flag's date, or fallback when unset.
func (d *dateFlag) or(fallback time.Time) time.Time {
	if d.t.IsZero() {
		return fallback
	}
	return d.t
}
