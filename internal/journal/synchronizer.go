// Package journal keeps session entries in a human-edited markdown note.
//
// Every write is a whole-file read, merge and rewrite. The file is shared
// with the user's editor and is never locked: an edit made between the read
// and the write is lost (last writer wins).
package journal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Synchronizer upserts entry lines into a named section of a journal note.
type Synchronizer struct {
	logger *slog.Logger
}

// NewSynchronizer creates a Synchronizer. A nil logger discards output.
func NewSynchronizer(logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Synchronizer{logger: logger}
}

// UpsertEntry writes entryLine into the section that starts at header.
//
// A line already carrying timestampID is replaced in place. Otherwise the
// entry is appended at the end of the header's section, and when no header
// exists a new section is appended to the file. An empty timestampID never
// matches an existing line. The file's trailing-newline property and
// newline convention are preserved.
func (s *Synchronizer) UpsertEntry(path, header, timestampID, entryLine string) error {
	doc, err := readDocument(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeFileAtomic(path, []byte(header+"\n"+entryLine+"\n"), 0o644); err != nil {
			return fmt.Errorf("creating journal %s: %w", path, err)
		}
		s.logger.Debug("journal created", "path", path, "timestamp_id", timestampID)
		return nil
	}
	if err != nil {
		return err
	}

	headerIndex, foundLine := doc.scan(header, timestampID)
	switch {
	case foundLine >= 0:
		doc.lines[foundLine] = entryLine
		s.logger.Debug("journal entry updated", "path", path, "line", foundLine)
	case headerIndex >= 0:
		at := doc.sectionEnd(headerIndex)
		doc.insert(at, entryLine)
		s.logger.Debug("journal entry appended to section", "path", path, "line", at)
	default:
		if n := len(doc.lines); n > 0 && strings.TrimSpace(doc.lines[n-1]) != "" {
			doc.lines = append(doc.lines, "")
		}
		doc.lines = append(doc.lines, header, entryLine)
		s.logger.Debug("journal section created", "path", path, "header", header)
	}

	return doc.write(path)
}

// RemoveEntry deletes the first line carrying timestampID. It reports
// whether a line was removed; a missing file is not an error.
func (s *Synchronizer) RemoveEntry(path, timestampID string) (bool, error) {
	if timestampID == "" {
		return false, nil
	}
	doc, err := readDocument(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, foundLine := doc.scan("", timestampID)
	if foundLine < 0 {
		return false, nil
	}
	doc.lines = append(doc.lines[:foundLine], doc.lines[foundLine+1:]...)
	if err := doc.write(path); err != nil {
		return false, err
	}
	s.logger.Debug("journal entry removed", "path", path, "line", foundLine)
	return true, nil
}

// ReadSection returns the lines of the section that starts at header,
// excluding the header line itself. A missing header yields no lines.
func ReadSection(path, header string) ([]string, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	headerIndex, _ := doc.scan(header, "")
	if headerIndex < 0 {
		return nil, nil
	}
	end := doc.sectionEnd(headerIndex)
	return append([]string(nil), doc.lines[headerIndex+1:end]...), nil
}

// IsHeaderLine reports whether line is an ATX markdown heading: one to six
// '#' characters followed by whitespace. "#tag" lines are not headings.
func IsHeaderLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(trimmed) {
		return false
	}
	return trimmed[n] == ' ' || trimmed[n] == '\t'
}

// document is a journal file split into lines.
type document struct {
	lines           []string
	newline         string
	trailingNewline bool
}

func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return parseDocument(string(data)), nil
}

func parseDocument(content string) *document {
	doc := &document{newline: "\n"}
	if strings.Contains(content, "\r\n") {
		doc.newline = "\r\n"
	}
	doc.trailingNewline = strings.HasSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\r")
	if content == "" && !doc.trailingNewline {
		return doc
	}
	for _, line := range strings.Split(content, "\n") {
		doc.lines = append(doc.lines, strings.TrimSuffix(line, "\r"))
	}
	return doc
}

// scan returns the index of the last line equal to header (after trimming)
// and the first line containing timestampID; -1 when absent.
func (d *document) scan(header, timestampID string) (headerIndex, foundLine int) {
	headerIndex, foundLine = -1, -1
	for i, line := range d.lines {
		if header != "" && strings.TrimSpace(line) == header {
			headerIndex = i
		}
		if foundLine < 0 && timestampID != "" && strings.Contains(line, timestampID) {
			foundLine = i
		}
	}
	return headerIndex, foundLine
}

// sectionEnd returns the index of the next heading after headerIndex, or
// len(lines) when the section runs to end of file.
func (d *document) sectionEnd(headerIndex int) int {
	for i := headerIndex + 1; i < len(d.lines); i++ {
		if IsHeaderLine(d.lines[i]) {
			return i
		}
	}
	return len(d.lines)
}

func (d *document) insert(at int, line string) {
	d.lines = append(d.lines, "")
	copy(d.lines[at+1:], d.lines[at:])
	d.lines[at] = line
}

func (d *document) String() string {
	out := strings.Join(d.lines, d.newline)
	if d.trailingNewline {
		out += d.newline
	}
	return out
}

func (d *document) write(path string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := writeFileAtomic(path, []byte(d.String()), mode); err != nil {
		return fmt.Errorf("writing journal %s: %w", path, err)
	}
	return nil
}

// writeFileAtomic replaces path via a temp file in the same directory so a
// crash mid-write never leaves a truncated journal behind.
func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
