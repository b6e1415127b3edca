// Package artifact turns unreliable model output into schema-valid study
// artifacts. It extracts a JSON span from free-form text, decodes it,
// validates and repairs the decoded items, and retries the whole pipeline
// once with a stricter prompt before giving up.
package artifact

import "strings"

// ExtractJSON locates the most plausible JSON array or object inside raw
// generated text. A fenced code block, if present, is trusted verbatim
// (models that fence their output fence exactly the payload). Otherwise
// the scan anchors on the first '[' or '{' and walks forward tracking
// bracket depth, skipping bracket characters inside string literals, and
// stops where the depth returns to zero. A naive first-'['-to-last-']'
// slice corrupts nested structures and picks up brackets from prose.
//
// If the text ends before the depth closes, the remainder is returned as
// a best-effort unterminated span and left for the decoder to reject.
func ExtractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if span, ok := fencedBlock(raw); ok {
		return span, nil
	}

	start := strings.IndexAny(raw, "[{")
	if start == -1 {
		return "", ErrNoJSON
	}
	return matchSpan(raw[start:]), nil
}

// fencedBlock returns the trimmed interior of the first triple-backtick
// fence, tolerating a language tag on the opening line.
func fencedBlock(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open == -1 {
		return "", false
	}
	nl := strings.IndexByte(text[open:], '\n')
	if nl == -1 {
		return "", false
	}
	body := text[open+nl+1:]
	end := strings.Index(body, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}

// matchSpan returns the prefix of text covering one balanced JSON value.
// text must start at a '[' or '{'.
func matchSpan(text string) string {
	var (
		depth    int
		opened   bool
		inString bool
		escaped  bool
	)
	for i := 0; i < len(text); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch text[i] {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[', '{':
			if !inString {
				depth++
				opened = true
			}
		case ']', '}':
			if !inString {
				depth--
				if opened && depth == 0 {
					return text[:i+1]
				}
			}
		}
	}
	// Unterminated value; return what we have and let the decoder complain.
	return text
}
