package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, dir string, kind Kind, name, text string) {
	t.Helper()
	sub := filepath.Join(dir, subdir(kind))
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, name+".md"), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_EmbeddedDefaults(t *testing.T) {
	s := NewDirStore("")

	text, err := s.Load("unit-test", KindTag)
	if err != nil {
		t.Fatalf("Load(unit-test) error: %v", err)
	}
	if !strings.Contains(text, "## Steps") {
		t.Errorf("embedded unit-test template missing Steps section:\n%s", text)
	}
	if !strings.Contains(text, "[ACTUAL TASK GOES HERE]") {
		t.Error("embedded unit-test template missing placeholder")
	}

	text, err = s.Load("default", KindIssue)
	if err != nil {
		t.Fatalf("Load(default issue) error: %v", err)
	}
	for _, want := range []string{"{{number}}", "{{title}}", "## Tasks"} {
		if !strings.Contains(text, want) {
			t.Errorf("default issue template missing %q", want)
		}
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := NewDirStore("")
	_, err := s.Load("no-such-template", KindTag)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if s.Exists("no-such-template", KindTag) {
		t.Error("Exists reported a missing template")
	}
}

func TestLoad_DirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, KindTag, "unit-test", "# mine\n\n## Steps\n- Custom step\n- [ACTUAL TASK GOES HERE]\n")
	s := NewDirStore(dir)

	text, err := s.Load("unit-test", KindTag)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Custom step") {
		t.Errorf("directory template not preferred over embedded:\n%s", text)
	}

	// Names absent from the directory still resolve to defaults.
	if !s.Exists("code-review", KindTag) {
		t.Error("embedded fallback lost when dir is set")
	}
}

func TestLoad_StripsFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, KindTag, "fm",
		"---\ndescription: front matter test\nparams:\n  component: what to test\n---\n# fm\n\n## Steps\n- [ACTUAL TASK GOES HERE]\n")
	s := NewDirStore(dir)

	text, err := s.Load("fm", KindTag)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "description:") {
		t.Errorf("front matter leaked into body:\n%s", text)
	}
	if !strings.HasPrefix(text, "# fm\n") {
		t.Errorf("body = %q, want to start at first heading", text)
	}

	meta, err := s.LoadMeta("fm", KindTag)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Description != "front matter test" {
		t.Errorf("Description = %q", meta.Description)
	}
	if meta.Params["component"] != "what to test" {
		t.Errorf("Params = %v", meta.Params)
	}
}

func TestLoadMeta_NoFrontMatter(t *testing.T) {
	s := NewDirStore("")
	meta, err := s.LoadMeta("docs", KindTag)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Description == "" {
		t.Error("embedded docs template should carry a description")
	}
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		header string
		body   string
	}{
		{"none", "# Title\nbody\n", "", "# Title\nbody\n"},
		{"fenced", "---\nkey: v\n---\nbody\n", "key: v", "body\n"},
		{"unclosed", "---\nkey: v\nbody\n", "", "---\nkey: v\nbody\n"},
		{"dashes in body", "# Title\n---\nnot front matter\n", "", "# Title\n---\nnot front matter\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body := splitFrontMatter(tt.in)
			if header != tt.header || body != tt.body {
				t.Errorf("splitFrontMatter = (%q, %q), want (%q, %q)", header, body, tt.header, tt.body)
			}
		})
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, KindTag, "aaa-local", "## Steps\n- [ACTUAL TASK GOES HERE]\n")
	s := NewDirStore(dir)

	names := s.List(KindTag)
	want := map[string]bool{"aaa-local": false, "unit-test": false, "code-review": false, "docs": false}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("List missing %q (got %v)", name, names)
		}
	}
	if !sortedStrings(names) {
		t.Errorf("List not sorted: %v", names)
	}
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
