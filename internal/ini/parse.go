// Package ini reads INI-style configuration files and resolves requested keys
// across several files, sections, environment variables and defaults. Values
// are typed with the classify package.
package ini

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Entry is one key/value line.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section is a named group of entries in file order. The root section,
// holding entries before the first header, is named "".
type Section struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Get returns the last value stored under key.
func (s *Section) Get(key string) (string, bool) {
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if s.Entries[i].Key == key {
			return s.Entries[i].Value, true
		}
	}
	return "", false
}

// Document is a parsed INI file.
type Document struct {
	Sections []*Section `json:"sections"`
}

// Section returns the named section, or nil.
func (d *Document) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (d *Document) section(name string) *Section {
	if s := d.Section(name); s != nil {
		return s
	}
	s := &Section{Name: name}
	d.Sections = append(d.Sections, s)
	return s
}

// Parse reads an INI document. A '#' starts a comment running to end of
// line. A repeated section header appends to the existing section. Lines
// without '=' or with an empty key or value are ignored.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	current := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line[0] == '[' {
			if end := strings.IndexByte(line, ']'); end > 0 {
				current = strings.TrimSpace(line[1:end])
				doc.section(current)
				continue
			}
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		s := doc.section(current)
		s.Entries = append(s.Entries, Entry{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ini: %w", err)
	}
	return doc, nil
}

// ParseString parses an in-memory INI document.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}
