// Package store manages the on-disk issue workspace: a `.docket`
// directory holding numbered issue files, workspace templates, and the
// config file. The document engine never touches the filesystem; all
// read-modify-write cycles happen here, serialized by a directory lock.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/hemmendinger/docket/internal/templates"
)

const (
	// RootDirName is the workspace marker directory.
	RootDirName = ".docket"

	issuesSubdir    = "issues"
	templatesSubdir = "templates"
	lockFileName    = "lock"
)

var (
	// ErrNoWorkspace reports that no .docket directory was found walking
	// up from the working directory.
	ErrNoWorkspace = errors.New("no .docket workspace found (run `docket init`)")

	// ErrIssueNotFound reports that no issue file carries the number.
	ErrIssueNotFound = errors.New("issue not found")
)

// issueFileRegex matches issue file names: a zero-padded number, a
// hyphen, a slug, and the .md extension.
var issueFileRegex = regexp.MustCompile(`^(\d{3})-(.+)\.md$`)

// IssueRef identifies one issue file on disk.
type IssueRef struct {
	Number int
	Slug   string
	Path   string
}

// Store is a handle on one workspace's .docket directory.
type Store struct {
	root string
}

// Open returns a Store for an existing .docket directory.
func Open(root string) *Store {
	return &Store{root: root}
}

// Root returns the .docket directory path.
func (s *Store) Root() string { return s.root }

// TemplatesDir returns the workspace template override directory.
func (s *Store) TemplatesDir() string {
	return filepath.Join(s.root, templatesSubdir)
}

func (s *Store) issuesDir() string {
	return filepath.Join(s.root, issuesSubdir)
}

// FindRoot walks up from the working directory looking for a .docket
// directory and returns its path.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, RootDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoWorkspace
		}
		dir = parent
	}
}

// Init creates a workspace under dir and returns its Store. Existing
// workspaces are reused, not clobbered.
func Init(dir string) (*Store, error) {
	root := filepath.Join(dir, RootDirName)
	for _, sub := range []string{
		issuesSubdir,
		filepath.Join(templatesSubdir, "issues"),
		filepath.Join(templatesSubdir, "tags"),
	} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			return nil, fmt.Errorf("creating workspace: %w", err)
		}
	}
	return Open(root), nil
}

// List returns every issue in the workspace, ordered by number.
func (s *Store) List() ([]IssueRef, error) {
	entries, err := os.ReadDir(s.issuesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading issues directory: %w", err)
	}
	var refs []IssueRef
	for _, e := range entries {
		m := issueFileRegex.FindStringSubmatch(e.Name())
		if m == nil || e.IsDir() {
			continue
		}
		number, _ := strconv.Atoi(m[1])
		refs = append(refs, IssueRef{
			Number: number,
			Slug:   m[2],
			Path:   filepath.Join(s.issuesDir(), e.Name()),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Number < refs[j].Number })
	return refs, nil
}

// NextNumber returns one past the highest issue number in use.
func (s *Store) NextNumber() (int, error) {
	refs, err := s.List()
	if err != nil {
		return 0, err
	}
	next := 1
	for _, ref := range refs {
		if ref.Number >= next {
			next = ref.Number + 1
		}
	}
	return next, nil
}

// Find resolves an issue number to its file.
func (s *Store) Find(number int) (*IssueRef, error) {
	refs, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range refs {
		if refs[i].Number == number {
			return &refs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrIssueNotFound, number)
}

// Load returns the full text of an issue.
func (s *Store) Load(number int) (string, error) {
	ref, err := s.Find(number)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return "", fmt.Errorf("reading issue %d: %w", number, err)
	}
	return string(data), nil
}

// Save atomically replaces an issue's text under the workspace lock.
func (s *Store) Save(number int, text string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	ref, err := s.Find(number)
	if err != nil {
		return err
	}
	return writeFileAtomic(ref.Path, []byte(text), 0644)
}

// Create instantiates the named issue template (or "default") with the
// next number and the given title, writes the file, and returns its ref.
func (s *Store) Create(title, templateName string, tmpl templates.Store) (*IssueRef, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	if templateName == "" {
		templateName = "default"
	}
	body, err := tmpl.Load(templateName, templates.KindIssue)
	if err != nil {
		return nil, err
	}

	number, err := s.NextNumber()
	if err != nil {
		return nil, err
	}
	text := strings.NewReplacer(
		"{{number}}", strconv.Itoa(number),
		"{{title}}", title,
	).Replace(body)

	if err := os.MkdirAll(s.issuesDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating issues directory: %w", err)
	}
	ref := IssueRef{
		Number: number,
		Slug:   Slugify(title),
		Path:   filepath.Join(s.issuesDir(), fmt.Sprintf("%03d-%s.md", number, Slugify(title))),
	}
	if err := writeFileAtomic(ref.Path, []byte(text), 0644); err != nil {
		return nil, err
	}
	return &ref, nil
}

// lock takes the workspace directory lock, shared by every mutating CLI
// invocation, and returns the release func.
func (s *Store) lock() (func(), error) {
	fl := flock.New(filepath.Join(s.root, lockFileName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("locking workspace: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

// Slugify reduces a title to a filename slug: diacritics folded away,
// lowercased, non-alphanumerics collapsed to single hyphens, capped at
// 40 characters.
func Slugify(title string) string {
	decomposed := norm.NFD.String(title)
	var b strings.Builder
	lastHyphen := true
	runes := 0
	for _, r := range decomposed {
		if runes >= 40 {
			break
		}
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining mark from decomposition; drop it.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
			runes++
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
				runes++
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "issue"
	}
	return slug
}

// writeFileAtomic writes data through a uniquely named temp file in the
// same directory, fsyncs, and renames into place so a crash mid-write
// never leaves a torn issue file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
