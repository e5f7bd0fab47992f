package expand

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/hemmendinger/docket/internal/doc"
	"github.com/hemmendinger/docket/internal/templates"
)

// fakeStore serves tag templates from a map, keyed by name.
type fakeStore struct {
	tags map[string]string
}

func (f *fakeStore) Load(name string, kind templates.Kind) (string, error) {
	if kind != templates.KindTag {
		return "", fmt.Errorf("unexpected kind %q", kind)
	}
	text, ok := f.tags[name]
	if !ok {
		return "", templates.ErrNotFound
	}
	return text, nil
}

func (f *fakeStore) Exists(name string, kind templates.Kind) bool {
	_, err := f.Load(name, kind)
	return err == nil
}

const unitTestTemplate = `# unit-test

## Steps
- Write failing tests for {{component}}
- [ACTUAL TASK GOES HERE]
- Run the tests
`

const reviewTemplate = `# code-review

## Steps
- [ACTUAL TASK GOES HERE]
- Re-read the diff
`

const noPlaceholderTemplate = `# docs

## Steps
- Update the docs
`

func newTestExpander(t *testing.T) *Expander {
	t.Helper()
	return New(&fakeStore{tags: map[string]string{
		"unit-test":   unitTestTemplate,
		"code-review": reviewTemplate,
		"docs":        noPlaceholderTemplate,
		"no-steps":    "# no-steps\n\nJust prose, no Steps heading.\n",
	}})
}

func TestTagSteps(t *testing.T) {
	e := newTestExpander(t)
	got := e.TagSteps("unit-test")
	want := []string{"Write failing tests for {{component}}", "[ACTUAL TASK GOES HERE]", "Run the tests"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TagSteps = %v, want %v", got, want)
	}
}

func TestTagSteps_SoftFailures(t *testing.T) {
	e := newTestExpander(t)
	if got := e.TagSteps("missing"); len(got) != 0 {
		t.Errorf("missing template yielded steps: %v", got)
	}
	if got := e.TagSteps("no-steps"); len(got) != 0 {
		t.Errorf("template without Steps yielded: %v", got)
	}
}

func TestCombineSteps_EmptyIdentity(t *testing.T) {
	got := CombineSteps("Fix bug", nil, map[string]string{"k": "v"})
	if !reflect.DeepEqual(got, []string{"Fix bug"}) {
		t.Errorf("CombineSteps identity = %v", got)
	}
}

func TestCombineSteps_PlaceholderAndParams(t *testing.T) {
	steps := []string{"Write failing tests for {{component}}", Placeholder, "Run the tests"}
	got := CombineSteps("Fix bug", steps, map[string]string{"component": "Auth"})
	want := []string{"Write failing tests for Auth", "Fix bug", "Run the tests"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CombineSteps = %v, want %v", got, want)
	}
}

func TestCombineSteps_UnknownParamKeptVerbatim(t *testing.T) {
	got := CombineSteps("Fix bug", []string{"Check {{missing}} first", Placeholder}, nil)
	want := []string{"Check {{missing}} first", "Fix bug"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CombineSteps = %v, want %v", got, want)
	}
}

func TestCombineSteps_NoPlaceholderAppends(t *testing.T) {
	got := CombineSteps("Fix bug", []string{"Update the docs"}, nil)
	want := []string{"Update the docs", "Fix bug"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CombineSteps = %v, want %v", got, want)
	}
}

func TestMergedTagSteps(t *testing.T) {
	e := newTestExpander(t)

	// Single contributing tag: steps come back unchanged.
	got := e.MergedTagSteps([]string{"unit-test", "missing"})
	if !reflect.DeepEqual(got, e.TagSteps("unit-test")) {
		t.Errorf("single-tag merge = %v", got)
	}

	// Two tags with placeholders: first placeholder wins, second dropped.
	got = e.MergedTagSteps([]string{"unit-test", "code-review"})
	want := []string{
		"Write failing tests for {{component}}",
		Placeholder,
		"Run the tests",
		"Re-read the diff",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merge = %v, want %v", got, want)
	}
	if countPlaceholders(got) != 1 {
		t.Errorf("placeholder count = %d, want 1", countPlaceholders(got))
	}

	// No tag carries a placeholder: one is synthesized at the front.
	got = e.MergedTagSteps([]string{"docs", "docs"})
	want = []string{Placeholder, "Update the docs", "Update the docs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("synthesized merge = %v, want %v", got, want)
	}

	if got := e.MergedTagSteps([]string{"missing", "no-steps"}); got != nil {
		t.Errorf("no contributing tags should yield nil, got %v", got)
	}
}

func countPlaceholders(steps []string) int {
	n := 0
	for _, s := range steps {
		if s == Placeholder {
			n++
		}
	}
	return n
}

func TestExpandTask_NoTags(t *testing.T) {
	e := newTestExpander(t)
	got := e.ExpandTask(doc.Task{Text: "Fix bug"})
	if !reflect.DeepEqual(got, []string{"Fix bug"}) {
		t.Errorf("ExpandTask = %v", got)
	}
}

func TestExpandTask_SingleTag(t *testing.T) {
	e := newTestExpander(t)
	got := e.ExpandTask(doc.Task{Text: "Fix bug #unit-test(component=Auth)"})
	want := []string{
		"Write failing tests for Auth",
		"Fix bug #unit-test(component=Auth)",
		"Run the tests",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandTask = %v, want %v", got, want)
	}
}

func TestExpandTask_InvalidTemplateDegrades(t *testing.T) {
	e := newTestExpander(t)
	// docs has no placeholder, so as a single #tag it fails validation
	// and the task comes back as-is.
	got := e.ExpandTask(doc.Task{Text: "Write changelog #docs"})
	if !reflect.DeepEqual(got, []string{"Write changelog #docs"}) {
		t.Errorf("ExpandTask = %v", got)
	}
	got = e.ExpandTask(doc.Task{Text: "Do thing #missing"})
	if !reflect.DeepEqual(got, []string{"Do thing #missing"}) {
		t.Errorf("ExpandTask = %v", got)
	}
}

func TestExpandTask_MultiTagParamsUnion(t *testing.T) {
	e := newTestExpander(t)
	got := e.ExpandTask(doc.Task{Text: "Fix bug #unit-test(component=Auth) #code-review"})
	want := []string{
		"Write failing tests for Auth",
		"Fix bug #unit-test(component=Auth) #code-review",
		"Run the tests",
		"Re-read the diff",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandTask = %v, want %v", got, want)
	}

	// Exactly one slot holds the literal clean task text.
	literal := 0
	for _, step := range got {
		if step == "Fix bug #unit-test(component=Auth) #code-review" {
			literal++
		}
	}
	if literal != 1 {
		t.Errorf("literal task text appears %d times, want 1", literal)
	}
}

func TestExpandTask_StripsExpandTagsOnly(t *testing.T) {
	e := newTestExpander(t)
	got := e.ExpandTask(doc.Task{Text: "Fix bug +docs"})
	if !reflect.DeepEqual(got, []string{"Fix bug"}) {
		t.Errorf("ExpandTask = %v, want +tag stripped", got)
	}
}

func TestExpandOnInsert(t *testing.T) {
	e := newTestExpander(t)

	got := e.ExpandOnInsert("Add caching +unit-test(component=Cache)")
	want := []string{
		"Write failing tests for Cache",
		"Add caching",
		"Run the tests",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandOnInsert = %v, want %v", got, want)
	}

	// A non-trailing +tag does not trigger; directives stay intact.
	got = e.ExpandOnInsert("+unit-test then do the rest")
	if !reflect.DeepEqual(got, []string{"+unit-test then do the rest"}) {
		t.Errorf("ExpandOnInsert = %v, want unchanged", got)
	}

	// Trailing tag with no usable template degrades to the clean text.
	got = e.ExpandOnInsert("Do thing +missing")
	if !reflect.DeepEqual(got, []string{"Do thing"}) {
		t.Errorf("ExpandOnInsert = %v, want clean text", got)
	}
}

func TestValidate(t *testing.T) {
	e := newTestExpander(t)

	if v := e.Validate("unit-test"); !v.Valid || len(v.Errors) != 0 {
		t.Errorf("Validate(unit-test) = %+v, want valid", v)
	}

	v := e.Validate("missing")
	if v.Valid || !reflect.DeepEqual(v.Errors, []string{"Template not found"}) {
		t.Errorf("Validate(missing) = %+v", v)
	}

	v = e.Validate("docs")
	if v.Valid {
		t.Error("docs should be invalid (no placeholder)")
	}
	if !reflect.DeepEqual(v.Errors, []string{"Template must have a [ACTUAL TASK GOES HERE] placeholder in Steps"}) {
		t.Errorf("Errors = %v", v.Errors)
	}

	v = e.Validate("no-steps")
	if v.Valid || len(v.Errors) != 2 {
		t.Errorf("Validate(no-steps) = %+v, want both errors", v)
	}
}
