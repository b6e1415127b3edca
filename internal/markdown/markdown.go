// Package markdown repairs the study-guide markdown produced by the
// language model. Models wander off the requested format in recurring
// ways: dropped section headers, hallucinated dialogue turns, trailing
// half-sentences, meta-commentary, and markdown image syntax instead of
// the requested image-prompt lines. Each repair targets one of those.
package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	imagePromptRegex   = regexp.MustCompile(`\[IMAGE_PROMPT:\s*(.*?)\s*\]`)
	markdownImageRegex = regexp.MustCompile(`!\[([^\]]*)\]\([^\)]+\)`)
	excessBlanksRegex  = regexp.MustCompile(`\n{3,}`)

	// Everything after the first of these is a hallucinated continuation
	// of the conversation, not summary content.
	stopPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)---+\s*Human:`),
		regexp.MustCompile(`(?i)---+\s*Revised`),
		regexp.MustCompile(`(?i)---+\s*\*\*Revised`),
		regexp.MustCompile(`(?i)Human:\s*`),
		regexp.MustCompile(`(?i)Assistant:\s*`),
		regexp.MustCompile(`(?i)Revised\s+Introduction`),
		regexp.MustCompile(`(?i)Can you rephrase`),
	}

	cleanupPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Please note.*?(?:\.|$)`),
		regexp.MustCompile(`(?i)Remember.*?(?:\.|$)`),
		regexp.MustCompile(`(?i)Note:.*?(?:\.|$)`),
		regexp.MustCompile(`(?i)\*\*Note:.*?(?:\.|$)`),
	}
)

// FixSummary normalizes generated study-guide markdown: restores the
// leading section header, cuts hallucinated continuations, trims a
// trailing incomplete sentence, strips meta-commentary, converts
// markdown image syntax to [IMAGE_PROMPT: ...] lines, and fixes the
// indentation and blank-line structure.
func FixSummary(md string) string {
	if !strings.HasPrefix(strings.TrimSpace(md), "##") {
		md = "## Introduction\n" + md
	}

	for _, re := range stopPatterns {
		if loc := re.FindStringIndex(md); loc != nil {
			md = md[:loc[0]]
			break
		}
	}

	md = trimIncompleteSentence(strings.TrimSpace(md))

	for _, re := range cleanupPatterns {
		md = re.ReplaceAllString(md, "")
	}

	md = markdownImageRegex.ReplaceAllStringFunc(md, func(m string) string {
		alt := markdownImageRegex.FindStringSubmatch(m)[1]
		if utf8.RuneCountInString(alt) > 10 {
			return "[IMAGE_PROMPT: " + alt + "]"
		}
		return "[IMAGE_PROMPT: An illustration related to the study material]"
	})

	md = reflowLines(md)
	return excessBlanksRegex.ReplaceAllString(strings.TrimSpace(md), "\n\n")
}

// ImagePrompts returns the descriptions of all [IMAGE_PROMPT: ...] lines
// in the markdown, in order.
func ImagePrompts(md string) []string {
	var prompts []string
	for _, m := range imagePromptRegex.FindAllStringSubmatch(md, -1) {
		prompts = append(prompts, m[1])
	}
	return prompts
}

// trimIncompleteSentence drops a trailing fragment the model left when
// it ran out of tokens mid-sentence.
func trimIncompleteSentence(md string) string {
	if md == "" || strings.ContainsRune(".!?)", rune(md[len(md)-1])) {
		return md
	}
	last := max(
		strings.LastIndex(md, ". "),
		strings.LastIndex(md, ".\n"),
		strings.LastIndex(md, "!\n"),
		strings.LastIndex(md, "?\n"),
	)
	if last > 0 {
		return md[:last+1]
	}
	return md
}

// reflowLines strips the indentation the model likes to add (which breaks
// markdown) and guarantees blank lines around headers and image prompts.
func reflowLines(md string) string {
	lines := strings.Split(md, "\n")
	var fixed []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fixed = append(fixed, "")
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "[IMAGE_PROMPT:"):
			if len(fixed) > 0 && fixed[len(fixed)-1] != "" {
				fixed = append(fixed, "")
			}
			fixed = append(fixed, trimmed)
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				fixed = append(fixed, "")
			}
		case strings.HasPrefix(trimmed, "##"):
			if len(fixed) > 0 && fixed[len(fixed)-1] != "" {
				fixed = append(fixed, "")
			}
			fixed = append(fixed, trimmed)
		default:
			fixed = append(fixed, trimmed)
		}
	}
	return strings.Join(fixed, "\n")
}
