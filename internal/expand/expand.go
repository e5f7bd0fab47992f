// Package expand implements tag-template step expansion: turning one
// task line into an ordered checklist of steps by merging the templates
// its tags name, with the literal task text spliced into the placeholder
// slot.
package expand

import (
	"regexp"
	"strings"

	"github.com/hemmendinger/docket/internal/doc"
	"github.com/hemmendinger/docket/internal/tag"
	"github.com/hemmendinger/docket/internal/templates"
)

// Placeholder is the literal marker line a tag template uses to say
// where the task text goes.
const Placeholder = "[ACTUAL TASK GOES HERE]"

var (
	stepsHeadingRegex = regexp.MustCompile(`^##\s+Steps\s*$`)
	paramTokenRegex   = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_-]+)\s*\}\}`)
)

// Expander resolves tag templates through an injected store. It holds no
// other state and is safe for concurrent use.
type Expander struct {
	store templates.Store
}

// New returns an Expander backed by the given template store.
func New(store templates.Store) *Expander {
	return &Expander{store: store}
}

// TagSteps loads the named tag template and returns its step list: every
// `- ` line under the `## Steps` heading up to the next heading, prefix
// stripped and text otherwise verbatim. Any load or parse failure yields
// an empty list; to callers an unusable tag simply contributes nothing.
func (e *Expander) TagSteps(name string) []string {
	text, err := e.store.Load(name, templates.KindTag)
	if err != nil {
		return nil
	}
	return stepsFrom(text)
}

func stepsFrom(text string) []string {
	var steps []string
	inSteps := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \r")
		if strings.HasPrefix(trimmed, "#") {
			if inSteps {
				break
			}
			inSteps = stepsHeadingRegex.MatchString(trimmed)
			continue
		}
		if !inSteps {
			continue
		}
		if after, ok := strings.CutPrefix(trimmed, "- "); ok {
			steps = append(steps, after)
		}
	}
	return steps
}

// renderStep substitutes {{key}} tokens against params. Tokens with no
// matching key are kept verbatim.
func renderStep(step string, params map[string]string) string {
	return paramTokenRegex.ReplaceAllStringFunc(step, func(token string) string {
		key := paramTokenRegex.FindStringSubmatch(token)[1]
		if value, ok := params[key]; ok {
			return value
		}
		return token
	})
}

// CombineSteps merges a step list with the literal task text. Empty
// steps are the identity: the task text comes back as the only element.
// Otherwise each step is rendered against params and the first
// placeholder line is replaced in place by the task text; when no
// placeholder exists the task text is appended as the final step.
func CombineSteps(taskText string, steps []string, params map[string]string) []string {
	if len(steps) == 0 {
		return []string{taskText}
	}
	out := make([]string, 0, len(steps)+1)
	placed := false
	for _, step := range steps {
		if !placed && step == Placeholder {
			out = append(out, taskText)
			placed = true
			continue
		}
		out = append(out, renderStep(step, params))
	}
	if !placed {
		out = append(out, taskText)
	}
	return out
}

// MergedTagSteps merges the step lists of several tags in the given
// order. Tags that do not exist or contribute no steps are skipped. The
// placeholder line survives at most once, first occurrence winning; when
// no contributing tag carried one, a placeholder is synthesized at the
// front so the final CombineSteps call still has a slot for the task.
func (e *Expander) MergedTagSteps(names []string) []string {
	var contributing [][]string
	for _, name := range names {
		if !e.store.Exists(name, templates.KindTag) {
			continue
		}
		steps := e.TagSteps(name)
		if len(steps) == 0 {
			continue
		}
		contributing = append(contributing, steps)
	}
	if len(contributing) == 0 {
		return nil
	}
	if len(contributing) == 1 {
		return contributing[0]
	}

	var merged []string
	havePlaceholder := false
	for _, steps := range contributing {
		for _, step := range steps {
			if step == Placeholder {
				if havePlaceholder {
					continue
				}
				havePlaceholder = true
			}
			merged = append(merged, step)
		}
	}
	if !havePlaceholder {
		merged = append([]string{Placeholder}, merged...)
	}
	return merged
}

// ExpandTask expands a task into its ordered step list using the `#` tag
// namespace. The literal text fed into expansion has only `+` tags
// stripped; `#` tags remain part of it. A task with no usable tags comes
// back as a single step.
func (e *Expander) ExpandTask(task doc.Task) []string {
	tags := tag.ExtractTags(task.Text)
	clean := tag.CleanText(task.Text)

	switch len(tags) {
	case 0:
		return []string{clean}
	case 1:
		if !e.Validate(tags[0].Name).Valid {
			return []string{clean}
		}
		return CombineSteps(clean, e.TagSteps(tags[0].Name), tags[0].Params)
	}

	names := make([]string, len(tags))
	params := map[string]string{}
	for i, t := range tags {
		names[i] = t.Name
		for k, v := range t.Params {
			params[k] = v // later tag wins on collision
		}
	}
	return CombineSteps(clean, e.MergedTagSteps(names), params)
}

// ExpandOnInsert applies insertion-time `+tag` expansion to new task
// text. The `+` namespace only triggers when its final directive is the
// trailing token; otherwise the text is returned as a single element,
// directives intact. When it triggers, all `+` tags feed the same merge
// pipeline ExpandTask uses for `#` tags.
func (e *Expander) ExpandOnInsert(text string) []string {
	trailing := tag.TrailingExpandTag(text)
	if trailing == nil {
		return []string{text}
	}

	tags := tag.ExtractExpandTags(text)
	clean := tag.CleanText(text)
	names := make([]string, len(tags))
	params := map[string]string{}
	for i, t := range tags {
		names[i] = t.Name
		for k, v := range t.Params {
			params[k] = v
		}
	}
	steps := e.MergedTagSteps(names)
	if len(steps) == 0 {
		return []string{clean}
	}
	return CombineSteps(clean, steps, params)
}

// Validation is the caller-facing result of template validation. Unlike
// the soft degradation inside TagSteps, validation reports structured
// errors.
type Validation struct {
	Valid  bool
	Errors []string
}

// Validate checks that a tag template is usable for expansion: it must
// have a Steps section whose list contains the placeholder line exactly
// once.
func (e *Expander) Validate(name string) Validation {
	text, err := e.store.Load(name, templates.KindTag)
	if err != nil {
		return Validation{Errors: []string{"Template not found"}}
	}

	var errs []string
	if !hasStepsHeading(text) {
		errs = append(errs, "Template must have a Steps section")
	}
	count := 0
	for _, step := range stepsFrom(text) {
		if step == Placeholder {
			count++
		}
	}
	if count != 1 {
		errs = append(errs, "Template must have a [ACTUAL TASK GOES HERE] placeholder in Steps")
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func hasStepsHeading(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if stepsHeadingRegex.MatchString(strings.TrimRight(line, " \r")) {
			return true
		}
	}
	return false
}
