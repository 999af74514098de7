// Package ini reads and writes scalar values in a flat INI file.
//
// Every call opens, scans and closes the file on its own; nothing is cached
// between calls. Section and key names are matched exactly and
// case-sensitively. The first matching key inside the first matching section
// wins.
//
// Writes rewrite the whole file through a temp file that is renamed over the
// original, and are serialized by an advisory lock on "<path>.lock", so a
// reader never observes a half-written file. The lock file is left in place.
// Line endings are kept per line.
package ini

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ReadValue returns the value of key inside section.
func ReadValue(path, section, key string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	doc := parse(data)
	i := doc.find(section, key)
	if i < 0 {
		return "", fmt.Errorf("%w: [%s] %s in %s", ErrNotFound, section, key, path)
	}
	_, v, _ := splitKV(doc.lines[i])
	return v, nil
}

// WriteValue sets key inside section to value. A missing key is appended to
// the end of its section; a missing section is appended to the file.
func WriteValue(path, section, key, value string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock %s: %w", ErrIO, path, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	doc := parse(data)
	doc.set(section, key, value)

	out := doc.bytes()
	if bytes.Equal(out, data) {
		return nil
	}
	return writeFile(path, out)
}

// CreateDefault writes the default skeleton to path. It never overwrites an
// existing file and reports ErrExists in that case.
func CreateDefault(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}
	if _, err := f.WriteString(DefaultDocument); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", ErrIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrIO, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s->%s: %w", ErrIO, tmpName, path, err)
	}
	return nil
}

// document is the file split into lines. Each line keeps its own
// terminator so untouched lines are written back byte for byte.
type document struct {
	lines []string
	// ends holds the terminator of each line: "\n", "\r\n", or "" for an
	// unterminated last line.
	ends []string
	// eol terminates inserted lines; it follows the first line of the file.
	eol string
}

func parse(data []byte) *document {
	doc := &document{eol: "\n"}
	s := string(data)
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			doc.lines = append(doc.lines, s)
			doc.ends = append(doc.ends, "")
			break
		}
		line, end := s[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, end = line[:len(line)-1], "\r\n"
		}
		doc.lines = append(doc.lines, line)
		doc.ends = append(doc.ends, end)
		s = s[i+1:]
	}
	if len(doc.ends) > 0 && doc.ends[0] != "" {
		doc.eol = doc.ends[0]
	}
	return doc
}

func (d *document) bytes() []byte {
	var b strings.Builder
	for i, line := range d.lines {
		b.WriteString(line)
		b.WriteString(d.ends[i])
	}
	return []byte(b.String())
}

// insert places line before index at, terminating the line before it when
// that was the unterminated end of the file.
func (d *document) insert(at int, line string) {
	if at > 0 && d.ends[at-1] == "" {
		d.ends[at-1] = d.eol
	}
	d.lines = append(d.lines, "")
	copy(d.lines[at+1:], d.lines[at:])
	d.lines[at] = line
	d.ends = append(d.ends, "")
	copy(d.ends[at+1:], d.ends[at:])
	d.ends[at] = d.eol
}

// sectionName reports the bracketed name when line is a section header.
func sectionName(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "[") {
		return "", false
	}
	t = strings.TrimPrefix(t, "[")
	if i := strings.IndexByte(t, ']'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t), true
}

func splitKV(line string) (key, value string, ok bool) {
	k, v, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}

// bounds returns the line range (start, end) of the first section named
// section, where start is the header index and end is one past the last line
// belonging to it. start is -1 when the section is absent.
func (d *document) bounds(section string) (start, end int) {
	start = -1
	for i, line := range d.lines {
		name, ok := sectionName(line)
		if !ok {
			continue
		}
		if start >= 0 {
			return start, i
		}
		if name == section {
			start = i
		}
	}
	if start < 0 {
		return -1, -1
	}
	return start, len(d.lines)
}

// find returns the index of the key line, or -1.
func (d *document) find(section, key string) int {
	start, end := d.bounds(section)
	if start < 0 {
		return -1
	}
	for i := start + 1; i < end; i++ {
		if k, _, ok := splitKV(d.lines[i]); ok && k == key {
			return i
		}
	}
	return -1
}

func (d *document) set(section, key, value string) {
	line := key + " = " + value
	if i := d.find(section, key); i >= 0 {
		d.lines[i] = line
		return
	}

	start, end := d.bounds(section)
	if start < 0 {
		d.insert(len(d.lines), "["+section+"]")
		d.insert(len(d.lines), line)
		return
	}

	// Insert after the last non-blank line of the section.
	at := end
	for at > start+1 && strings.TrimSpace(d.lines[at-1]) == "" {
		at--
	}
	d.insert(at, line)
}
