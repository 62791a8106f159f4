// Package hint produces the one-sentence clues shown to Bugdle players.
// A prompt is built from each record, sent to a generative model, and the
// answer is attached to the record under a configurable field.
package hint

import (
	"fmt"
	"strings"

	"bugdle/internal/dataset"
)

// PromptStyle selects the prompt template.
type PromptStyle string

const (
	// StyleBasic embeds the buggy code and the bug explanation.
	StyleBasic PromptStyle = "basic"
	// StyleCategorized additionally names the bug category.
	StyleCategorized PromptStyle = "categorized"
)

// ParsePromptStyle validates a style name. Empty means StyleBasic.
func ParsePromptStyle(name string) (PromptStyle, error) {
	switch PromptStyle(strings.ToLower(strings.TrimSpace(name))) {
	case "", StyleBasic:
		return StyleBasic, nil
	case StyleCategorized:
		return StyleCategorized, nil
	default:
		return "", fmt.Errorf("unknown prompt style %q", name)
	}
}

// BuildPrompt renders the prompt for rec. The output depends only on the
// style and the record's fields.
func BuildPrompt(style PromptStyle, rec dataset.Record) string {
	var sb strings.Builder

	switch style {
	case StyleCategorized:
		sb.WriteString("You are a programming coach for a debugging game called Bugdle.\n")
		sb.WriteString("Given the buggy code, its bug category and the explanation of the bug, ")
		sb.WriteString("write exactly one short, clever sentence that hints at the bug.\n")
		sb.WriteString("Do not reveal the fix or name the faulty line; point the player in the right direction.\n\n")
		fmt.Fprintf(&sb, "Code: %s\n", rec.BuggyCode())
		fmt.Fprintf(&sb, "Bug Category: %s\n", rec.Category())
		fmt.Fprintf(&sb, "Bug Explanation: %s\n", rec.BugExplanation())
	default:
		sb.WriteString("You are a coding tutor. Look at this buggy code and the explanation of the bug.\n")
		sb.WriteString("Provide a one-sentence, clever hint for a 'Wordle' style game.\n")
		sb.WriteString("Don't give the answer away, just nudge the player.\n\n")
		fmt.Fprintf(&sb, "Code: %s\n", rec.BuggyCode())
		fmt.Fprintf(&sb, "Bug Explanation: %s\n", rec.BugExplanation())
	}

	return sb.String()
}
