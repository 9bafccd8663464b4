package testutil

import "sync"

// JournalWriter is the subset of the journal synchronizer the timer uses.
type JournalWriter interface {
	UpsertEntry(path, header, timestampID, entryLine string) error
	RemoveEntry(path, timestampID string) (bool, error)
}

// FailingJournal passes writes through to Journal except while Fail is
// set, in which case every write returns Err without touching the note.
type FailingJournal struct {
	Journal JournalWriter
	Err     error

	mu       sync.Mutex
	fail     bool
	failures int
}

// Fail switches failure injection on or off.
func (f *FailingJournal) Fail(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = on
}

// Failures reports how many writes were rejected.
func (f *FailingJournal) Failures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures
}

func (f *FailingJournal) rejected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		f.failures++
	}
	return f.fail
}

func (f *FailingJournal) UpsertEntry(path, header, timestampID, entryLine string) error {
	if f.rejected() {
		return f.Err
	}
	return f.Journal.UpsertEntry(path, header, timestampID, entryLine)
}

func (f *FailingJournal) RemoveEntry(path, timestampID string) (bool, error) {
	if f.rejected() {
		return false, f.Err
	}
	return f.Journal.RemoveEntry(path, timestampID)
}
