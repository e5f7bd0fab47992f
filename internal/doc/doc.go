// Package doc implements the issue document engine: section splitting,
// task extraction and mutation, and context assembly over docket's
// plain-text issue format.
//
// A document is never parsed into a retained structure. Every operation
// derives its view fresh from the input text and mutations return a new
// string, so two calls against the same text always agree and callers
// can share documents across goroutines without coordination.
package doc

import "errors"

// Section is a named region of an issue document bounded by level-2
// headings. StartLine is the heading line, EndLine the last line of the
// region (both 0-based).
type Section struct {
	Name      string
	Content   string
	StartLine int
	EndLine   int
}

// Task is one checkbox line inside the Tasks section. Text is the raw
// line content with the checkbox marker removed; tag directives are left
// in place so callers can decide when to strip them. Index is 0-based in
// document order.
type Task struct {
	Text      string
	Completed bool
	Index     int
}

// Sentinel errors for document operations. Callers match with errors.Is.
var (
	// ErrParse reports a structural scan failure over the document text.
	ErrParse = errors.New("document parse failed")

	// ErrSectionNotFound reports that a named section is absent.
	ErrSectionNotFound = errors.New("section not found")

	// ErrTaskIndexOutOfRange reports a task index outside the extracted list.
	ErrTaskIndexOutOfRange = errors.New("task index out of range")

	// ErrTaskLineNotFound reports that the line scan could not reach a task
	// the extractor counted. Under the shared grammar this cannot happen;
	// it is kept as a tripwire.
	ErrTaskLineNotFound = errors.New("task line not found")
)
