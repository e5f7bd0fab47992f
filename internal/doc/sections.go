package doc

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// Heading patterns. The document format relies on exactly two levels:
	// one `# ` title line and `## ` section headings. A deeper heading
	// like `### Failed attempt` also matches the section pattern, with
	// the extra `#` absorbed into the name, so it opens its own region
	// and ends the enclosing one. Content appended to a section lands
	// before any such sub-block.
	sectionHeadingRegex = regexp.MustCompile(`^## (.+)$`)
	titleHeadingRegex   = regexp.MustCompile(`^# `)
)

// canonicalSections is the fixed set of section names the issue format
// uses. Headings outside this table are allowed but are only matched by
// their exact text.
var canonicalSections = []string{
	"Problem to be solved",
	"Planned approach",
	"Failed approaches",
	"Questions to resolve",
	"Tasks",
	"Instructions",
	"Next steps",
}

var canonicalByKey = buildCanonicalIndex()

func buildCanonicalIndex() map[string]string {
	index := make(map[string]string, len(canonicalSections))
	for _, name := range canonicalSections {
		index[sectionKey(name)] = name
	}
	return index
}

// sectionKey reduces a section name to a lookup key: camelCase boundaries
// become spaces, underscores and hyphens become spaces, everything is
// lowercased and whitespace is collapsed.
func sectionKey(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeSectionName maps case and separator variants (snake_case,
// camelCase, kebab-case, arbitrary case) of the canonical section names
// to their canonical form. Unrecognized input passes through unchanged.
func NormalizeSectionName(s string) string {
	if canonical, ok := canonicalByKey[sectionKey(s)]; ok {
		return canonical
	}
	return s
}

// Sections scans the document and returns its level-2 sections in order.
// A section's content is everything between its heading and the next
// level-1 or level-2 heading, trimmed of leading and trailing blank lines.
func Sections(text string) ([]Section, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	var sections []Section
	var current *Section
	var body []string

	closeSection := func(endLine int) {
		if current == nil {
			return
		}
		current.Content = trimBlankEdges(body)
		current.EndLine = endLine
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	lineNum := -1
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if m := sectionHeadingRegex.FindStringSubmatch(line); m != nil {
			closeSection(lineNum - 1)
			current = &Section{
				Name:      strings.TrimSpace(m[1]),
				StartLine: lineNum,
			}
			continue
		}
		if titleHeadingRegex.MatchString(line) {
			closeSection(lineNum - 1)
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	closeSection(lineNum)

	return sections, nil
}

// trimBlankEdges joins lines after dropping leading and trailing blank ones.
func trimBlankEdges(lines []string) string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// FindSection resolves query through NormalizeSectionName and returns the
// first section whose heading matches it exactly, or nil.
func FindSection(text, query string) (*Section, error) {
	sections, err := Sections(text)
	if err != nil {
		return nil, err
	}
	want := NormalizeSectionName(query)
	for i := range sections {
		if sections[i].Name == want {
			return &sections[i], nil
		}
	}
	return nil, nil
}

// listMarker decides how AddToSection wraps new content for a section:
// checkbox sections (and sections whose body already holds checkbox lines)
// get `- [ ] `, bullet bodies get `- `, anything else is left bare.
func listMarker(section *Section) string {
	switch section.Name {
	case "Tasks", "Questions to resolve":
		return "- [ ] "
	}
	bullet := false
	for _, line := range strings.Split(section.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- [ ]") || strings.HasPrefix(trimmed, "- [x]") {
			return "- [ ] "
		}
		if strings.HasPrefix(trimmed, "- ") {
			bullet = true
		}
	}
	if bullet {
		return "- "
	}
	return ""
}

// AddToSection appends content to the named section and returns the new
// document text. Every line outside the insertion point is carried over
// byte for byte. Returns ErrSectionNotFound when the section is absent.
func AddToSection(text, name, content string) (string, error) {
	section, err := FindSection(text, name)
	if err != nil {
		return "", err
	}
	if section == nil {
		return "", fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}

	entry := content
	if marker := listMarker(section); marker != "" && !strings.HasPrefix(strings.TrimSpace(content), "- ") {
		entry = marker + content
	}

	lines := strings.Split(text, "\n")

	if section.Content == "" {
		// Empty section: the entry becomes its sole content, separated
		// from the heading by one blank line.
		insertAt := section.StartLine + 1
		out := make([]string, 0, len(lines)+2)
		out = append(out, lines[:insertAt]...)
		out = append(out, "", entry)
		out = append(out, lines[insertAt:]...)
		return strings.Join(out, "\n"), nil
	}

	// Append after the last non-blank line of the region.
	insertAt := section.StartLine
	for i := section.StartLine + 1; i <= section.EndLine && i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			insertAt = i
		}
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insertAt+1]...)
	out = append(out, entry)
	out = append(out, lines[insertAt+1:]...)
	return strings.Join(out, "\n"), nil
}

// NoteKind selects how FormatNote wraps a note for its target section.
type NoteKind string

const (
	NoteQuestion NoteKind = "question"
	NoteFailure  NoteKind = "failure"
	NoteTask     NoteKind = "task"
)

// FormatNote is a pure formatting helper for section notes. Questions and
// tasks become checkbox items; failures become a fixed three-part block
// with the reason taken from extra["reason"]. Unknown kinds pass the text
// through unchanged.
func FormatNote(text string, kind NoteKind, extra map[string]string) string {
	switch kind {
	case NoteQuestion, NoteTask:
		return "- [ ] " + text
	case NoteFailure:
		reason := extra["reason"]
		if reason == "" {
			reason = "Not specified"
		}
		return fmt.Sprintf("### Failed attempt\n\n%s\n\n**Reason:** %s", text, reason)
	}
	return text
}
