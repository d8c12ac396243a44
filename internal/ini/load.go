package ini

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/typesniff/internal/classify"
	"github.com/JonMunkholm/typesniff/internal/logging"
)

// Wildcard candidates for Request.Keys.
const (
	// ContainsWildcard collects every entry whose key contains the output
	// key into a list.
	ContainsWildcard = "*"

	// PrefixWildcard collects every entry whose key starts with the output
	// key into a map.
	PrefixWildcard = "**"
)

// ErrNoConfig is returned when no file could be loaded and there are no
// defaults to fall back on.
var ErrNoConfig = errors.New("no configuration file found")

// Request describes what Load resolves.
type Request struct {
	// Files maps a group name to candidate paths, read in order. Later files
	// override earlier ones. The "" group merges into the top-level result.
	Files map[string][]string `json:"files" validate:"required,min=1"`

	// Sections to resolve; nil means every section found.
	Sections []string `json:"sections,omitempty"`

	// Keys maps an output key to candidate keys. Nil keeps every entry
	// under its own key.
	Keys map[string][]string `json:"keys,omitempty"`

	// Defaults fill keys that neither a file nor the environment provided.
	Defaults map[string]any `json:"defaults,omitempty"`

	// EvalEnv consults environment variables for missing keys.
	EvalEnv bool `json:"eval_env"`
}

// Loader resolves Requests against the filesystem and environment.
type Loader struct {
	classifier *classify.Classifier
	lookupEnv  func(string) (string, bool)
	readFile   func(string) ([]byte, error)
}

// NewLoader returns a Loader that types values with c (nil: defaults).
func NewLoader(c *classify.Classifier) *Loader {
	if c == nil {
		c = classify.New(classify.Options{})
	}
	return &Loader{
		classifier: c,
		lookupEnv:  os.LookupEnv,
		readFile:   os.ReadFile,
	}
}

// Load resolves req. The result maps group name to section name to key to
// typed value; the "" group's sections sit at the top level.
func (l *Loader) Load(ctx context.Context, req Request) (map[string]any, error) {
	logger := logging.FromContext(ctx)

	result := make(map[string]any)
	loadedAny := false

	for group, paths := range req.Files {
		var docs []*Document
		for _, p := range paths {
			path, err := expandHome(p)
			if err != nil {
				return nil, err
			}
			data, err := l.readFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("ini file not found, skipping", "path", path, "group", group)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			doc, err := ParseString(string(data))
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			continue
		}
		loadedAny = true

		sections := l.resolveGroup(docs, req)
		if group == "" {
			for name, values := range sections {
				result[name] = values
			}
			continue
		}
		grouped := make(map[string]any, len(sections))
		for name, values := range sections {
			grouped[name] = values
		}
		result[group] = grouped
	}

	if !loadedAny {
		if len(req.Defaults) == 0 {
			return nil, ErrNoConfig
		}
		return maps.Clone(req.Defaults), nil
	}
	return result, nil
}

// resolveGroup merges the entries of docs section by section and resolves
// the requested keys in each.
func (l *Loader) resolveGroup(docs []*Document, req Request) map[string]map[string]any {
	names := req.Sections
	if names == nil {
		seen := make(map[string]bool)
		for _, d := range docs {
			for _, s := range d.Sections {
				if !seen[s.Name] && len(s.Entries) > 0 {
					seen[s.Name] = true
					names = append(names, s.Name)
				}
			}
		}
	}

	out := make(map[string]map[string]any, len(names))
	for _, name := range names {
		var entries []Entry
		for _, d := range docs {
			if s := d.Section(name); s != nil {
				entries = append(entries, s.Entries...)
			}
		}
		out[name] = l.resolveSection(entries, req)
	}
	return out
}

func (l *Loader) resolveSection(entries []Entry, req Request) map[string]any {
	values := make(map[string]any)

	if req.Keys == nil {
		for _, e := range entries {
			values[e.Key] = l.typed(e.Value)
		}
		return values
	}

	for outKey, candidates := range req.Keys {
		exact := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			switch c {
			case ContainsWildcard:
				var list []any
				for _, e := range entries {
					if strings.Contains(e.Key, outKey) {
						list = append(list, l.typed(e.Value))
					}
				}
				if list != nil {
					values[outKey] = list
				}
			case PrefixWildcard:
				m := make(map[string]any)
				for _, e := range entries {
					if strings.HasPrefix(e.Key, outKey) {
						m[e.Key] = l.typed(e.Value)
					}
				}
				if len(m) > 0 {
					values[outKey] = m
				}
			default:
				exact[c] = true
			}
		}

		for _, e := range entries {
			if exact[e.Key] {
				values[outKey] = l.typed(e.Value)
			}
		}

		if _, ok := values[outKey]; ok {
			continue
		}
		if req.EvalEnv {
			if v, ok := l.fromEnv(candidates); ok {
				values[outKey] = v
				continue
			}
		}
		if d, ok := req.Defaults[outKey]; ok {
			values[outKey] = d
		}
	}
	return values
}

// fromEnv tries each candidate as an environment variable name, first as
// written and then upper-cased.
func (l *Loader) fromEnv(candidates []string) (any, bool) {
	for _, c := range candidates {
		if c == ContainsWildcard || c == PrefixWildcard {
			continue
		}
		if v, ok := l.lookupEnv(c); ok {
			return l.typed(v), true
		}
		if v, ok := l.lookupEnv(strings.ToUpper(c)); ok {
			return l.typed(v), true
		}
	}
	return nil, false
}

func (l *Loader) typed(raw string) any {
	return l.classifier.Classify(raw).Interface()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
