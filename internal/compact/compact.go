// Package compact bounds the inputs of a generation call: chat history
// under a message and character budget, and multi-document context under
// a character budget. Both functions are pure and deterministic; budgets
// are counted in characters (runes), not bytes.
package compact

import (
	"slices"
	"strings"

	"github.com/pavelanni/studybuddy/internal/model"
)

const (
	// HistoryEllipsis prefixes the one truncated turn kept at the old
	// end of a compacted history.
	HistoryEllipsis = "… "

	// TruncationMarker is appended to a document cut to fit the budget.
	TruncationMarker = "[Truncated for length]"

	// NoContentPlaceholder is returned when no document content
	// survives the budget.
	NoContentPlaceholder = "No study material is available for this project yet."
)

// History bounds a chronological chat history to the last maxMessages
// turns and maxChars characters. Turns are kept newest-first until the
// budget runs out; the turn that overflows it is truncated to the tail of
// its text (the final words of a turn carry more context than its start)
// behind an ellipsis marker, and everything older is dropped outright
// rather than spreading the budget thin. The result is chronological.
func History(turns []model.ChatMessage, maxMessages, maxChars int) []model.ChatMessage {
	if maxMessages <= 0 || maxChars <= 0 {
		return nil
	}
	if len(turns) > maxMessages {
		turns = turns[len(turns)-maxMessages:]
	}

	var kept []model.ChatMessage
	remaining := maxChars
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		text := []rune(turn.Content)
		if len(text) <= remaining {
			kept = append(kept, turn)
			remaining -= len(text)
			continue
		}
		if remaining > 0 {
			turn.Content = HistoryEllipsis + string(text[len(text)-remaining:])
			kept = append(kept, turn)
		}
		break
	}

	slices.Reverse(kept)
	return kept
}

// Documents assembles a bounded context string from documents in their
// supplied (upload) order. The document that overflows the budget is
// truncated with a marker and ends the assembly: mixing complete
// documents after a fragmentary one would produce a confusing context.
// Sections are joined with a blank line.
func Documents(docs []model.Document, maxChars int) string {
	var sections []string
	remaining := maxChars
	for _, d := range docs {
		if remaining <= 0 {
			break
		}
		content := []rune(strings.TrimSpace(d.Content))
		if len(content) == 0 {
			continue
		}
		if len(content) <= remaining {
			sections = append(sections, string(content))
			remaining -= len(content)
			continue
		}
		sections = append(sections, string(content[:remaining])+"\n"+TruncationMarker)
		break
	}
	if len(sections) == 0 {
		return NoContentPlaceholder
	}
	return strings.Join(sections, "\n\n")
}
