// Package tag parses the inline directives embedded in task text.
//
// Two prefixes share one grammar. `#name(k=v,...)` is a descriptive tag
// consumed when a task is expanded for display or completion. `+name` is
// an insertion-time trigger, honored only when it is the trailing token
// of the task text. The namespaces are kept orthogonal: expansion reads
// `#`, insertion reads `+`, and CleanText strips only `+`.
package tag

import (
	"regexp"
	"strings"
)

// Tag is one parsed directive: an identifier with optional parameters.
type Tag struct {
	Name   string
	Params map[string]string
}

var (
	hashTagRegex   = regexp.MustCompile(`#([A-Za-z][A-Za-z0-9_-]*)(?:\(([^)]*)\))?`)
	expandTagRegex = regexp.MustCompile(`\+([A-Za-z][A-Za-z0-9_-]*)(?:\(([^)]*)\))?`)
	callRegex      = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)\((.*)\)$`)
)

// Parse parses a bare directive body, either `name` or `name(k=v,...)`.
// Parameter entries without `=` or with an empty key or value are
// silently dropped.
func Parse(raw string) Tag {
	if m := callRegex.FindStringSubmatch(raw); m != nil {
		return Tag{Name: m[1], Params: parseParams(m[2])}
	}
	return Tag{Name: raw, Params: map[string]string{}}
}

func parseParams(s string) map[string]string {
	params := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			continue
		}
		params[key] = value
	}
	return params
}

// ExtractTags returns every `#tag` directive in text, left to right.
func ExtractTags(text string) []Tag {
	return extractAll(hashTagRegex, text)
}

// ExtractExpandTags returns every `+tag` directive in text, left to right.
func ExtractExpandTags(text string) []Tag {
	return extractAll(expandTagRegex, text)
}

func extractAll(re *regexp.Regexp, text string) []Tag {
	var tags []Tag
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		tags = append(tags, Tag{Name: m[1], Params: parseParams(m[2])})
	}
	return tags
}

// IsTagAtEnd reports whether literal occurs in text and the trimmed text
// ends with it. This is the gate for insertion-time `+tag` expansion.
func IsTagAtEnd(text, literal string) bool {
	if literal == "" || !strings.Contains(text, literal) {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(text), literal)
}

// TrailingExpandTag returns the final `+tag` directive when it is the
// trailing token of text, or nil. Non-trailing `+tags` never trigger.
func TrailingExpandTag(text string) *Tag {
	literals := expandTagRegex.FindAllString(text, -1)
	if len(literals) == 0 {
		return nil
	}
	if !IsTagAtEnd(text, literals[len(literals)-1]) {
		return nil
	}
	tags := ExtractExpandTags(text)
	return &tags[len(tags)-1]
}

// CleanText strips every `+tag` directive from text and trims the
// result. `#tags` are ordinary visible text to this variant and are
// left intact.
func CleanText(text string) string {
	return strings.TrimSpace(expandTagRegex.ReplaceAllString(text, ""))
}
