// Package dataset fetches bug-fixing problems and narrows them down to the
// records a run works on.
//
// A Record is kept as a loose field map rather than a struct so that fields
// the game does not know about yet survive the round trip untouched.
package dataset

import (
	"encoding/json"
	"fmt"
)

// Field names of the DebugBench schema that bugdle reads.
const (
	FieldSlug           = "slug"
	FieldCategory       = "category"
	FieldSubtype        = "subtype"
	FieldLevel          = "level"
	FieldLanguage       = "language"
	FieldQuestion       = "question"
	FieldSolution       = "solution"
	FieldBuggyCode      = "buggy_code"
	FieldBugExplanation = "bug_explanation"
)

// Record is one dataset row: field name to decoded JSON value.
// Numbers are held as json.Number so they re-encode exactly.
type Record map[string]any

// String returns the field as text. Missing or null fields yield "".
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Slug returns the problem identifier.
func (r Record) Slug() string { return r.String(FieldSlug) }

// Category returns the error category, e.g. "logic error".
func (r Record) Category() string { return r.String(FieldCategory) }

// BuggyCode returns the code snippet containing the bug.
func (r Record) BuggyCode() string { return r.String(FieldBuggyCode) }

// BugExplanation returns the dataset's explanation of the bug.
func (r Record) BugExplanation() string { return r.String(FieldBugExplanation) }

// Label identifies the record in log lines: its slug, or its position
// when the slug is missing.
func (r Record) Label(index int) string {
	if slug := r.Slug(); slug != "" {
		return slug
	}
	return fmt.Sprintf("#%d", index)
}
