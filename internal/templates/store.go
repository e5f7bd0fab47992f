// Package templates loads named issue and tag templates.
//
// Templates are markdown files with optional YAML front matter. A
// workspace may override any template by name under its templates
// directory; names that resolve nowhere on disk fall back to the
// embedded defaults.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults
var defaultsFS embed.FS

// Kind distinguishes the two template namespaces.
type Kind string

const (
	KindIssue Kind = "issue"
	KindTag   Kind = "tag"
)

// ErrNotFound reports that a template name resolves neither on disk nor
// in the embedded defaults.
var ErrNotFound = errors.New("template not found")

// Store is the loading contract the expansion engine consumes.
type Store interface {
	// Load returns the template body with front matter stripped.
	Load(name string, kind Kind) (string, error)

	// Exists reports whether the template can be loaded.
	Exists(name string, kind Kind) bool
}

// Meta is the optional YAML front matter of a template.
type Meta struct {
	Description string            `yaml:"description"`
	Params      map[string]string `yaml:"params"`
}

// DirStore loads templates from a directory, falling back to the
// embedded defaults. An empty dir serves defaults only.
type DirStore struct {
	dir string
}

// NewDirStore returns a DirStore rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

func subdir(kind Kind) string {
	if kind == KindIssue {
		return "issues"
	}
	return "tags"
}

// raw returns the full template file contents, front matter included.
func (s *DirStore) raw(name string, kind Kind) (string, error) {
	rel := filepath.Join(subdir(kind), name+".md")
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, rel))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("loading template %q: %w", name, err)
		}
	}
	data, err := defaultsFS.ReadFile(path.Join("defaults", subdir(kind), name+".md"))
	if err != nil {
		return "", fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	}
	return string(data), nil
}

// Load implements Store.
func (s *DirStore) Load(name string, kind Kind) (string, error) {
	text, err := s.raw(name, kind)
	if err != nil {
		return "", err
	}
	_, body := splitFrontMatter(text)
	return body, nil
}

// Exists implements Store.
func (s *DirStore) Exists(name string, kind Kind) bool {
	_, err := s.raw(name, kind)
	return err == nil
}

// LoadMeta parses a template's front matter. Templates without front
// matter yield a zero Meta.
func (s *DirStore) LoadMeta(name string, kind Kind) (*Meta, error) {
	text, err := s.raw(name, kind)
	if err != nil {
		return nil, err
	}
	header, _ := splitFrontMatter(text)
	meta := &Meta{}
	if header == "" {
		return meta, nil
	}
	if err := yaml.Unmarshal([]byte(header), meta); err != nil {
		return nil, fmt.Errorf("parsing front matter of %q: %w", name, err)
	}
	return meta, nil
}

// List returns the sorted union of directory and embedded template
// names for a kind.
func (s *DirStore) List(kind Kind) []string {
	seen := map[string]bool{}
	if s.dir != "" {
		entries, err := os.ReadDir(filepath.Join(s.dir, subdir(kind)))
		if err == nil {
			for _, e := range entries {
				if name, ok := strings.CutSuffix(e.Name(), ".md"); ok && !e.IsDir() {
					seen[name] = true
				}
			}
		}
	}
	entries, err := defaultsFS.ReadDir(path.Join("defaults", subdir(kind)))
	if err == nil {
		for _, e := range entries {
			if name, ok := strings.CutSuffix(e.Name(), ".md"); ok {
				seen[name] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitFrontMatter separates a leading `---` fenced YAML block from the
// template body. Text without a complete fence is all body.
func splitFrontMatter(text string) (header, body string) {
	const fence = "---\n"
	if !strings.HasPrefix(text, fence) {
		return "", text
	}
	rest := text[len(fence):]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return "", text
	}
	return rest[:idx], rest[idx+len("\n---\n"):]
}
