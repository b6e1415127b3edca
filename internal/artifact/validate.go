package artifact

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pavelanni/studybuddy/internal/model"
)

// choiceLetters maps bare answer letters to option positions.
const choiceLetters = "abcd"

// ValidateFlashcards checks that every card has a non-empty question and
// answer after trimming. Validation is all-or-nothing: one bad card fails
// the batch, so a returned set is always internally consistent.
func ValidateFlashcards(cards []model.Flashcard) error {
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return &ShapeError{Index: i, Detail: "has an empty question or answer"}
		}
	}
	return nil
}

// ValidateExamQuestions checks every question for exactly four options and
// resolves its correct answer against them, rewriting CorrectAnswer to the
// matched option's verbatim text. Models frequently return the answer as a
// bare letter, a paraphrase, or a truncated phrase; the ordered resolution
// chain recovers those without ever accepting an answer that matches
// nothing. Any unrecoverable question fails the whole batch.
func ValidateExamQuestions(questions []model.ExamQuestion) ([]model.ExamQuestion, error) {
	for i := range questions {
		q := &questions[i]
		if len(q.Options) != 4 {
			return nil, &ShapeError{Index: i, Detail: fmt.Sprintf("has %d options instead of 4", len(q.Options))}
		}
		resolved, ok := resolveAnswer(q.CorrectAnswer, q.Options)
		if !ok {
			return nil, &AnswerError{Index: i, Answer: q.CorrectAnswer}
		}
		q.CorrectAnswer = resolved
	}
	return questions, nil
}

// resolveAnswer maps a possibly-malformed answer onto one option, trying
// in order: exact match, bare choice letter ("B", "c."), normalized
// equality, normalized substring containment in either direction. The
// first match in option order wins; when two options are substrings of
// each other ("Paris" vs "Paris, France") this is a deterministic
// tie-break, not a disambiguation.
func resolveAnswer(answer string, options []string) (string, bool) {
	for _, o := range options {
		if answer == o {
			return o, true
		}
	}

	if idx := bareChoiceLetter(answer); idx >= 0 && idx < len(options) {
		return options[idx], true
	}

	na := normalizeAnswer(answer)
	for _, o := range options {
		if normalizeAnswer(o) == na {
			return o, true
		}
	}

	if na != "" {
		for _, o := range options {
			no := normalizeAnswer(o)
			if no == "" {
				continue
			}
			if strings.Contains(no, na) || strings.Contains(na, no) {
				return o, true
			}
		}
	}

	return "", false
}

// bareChoiceLetter returns the option index for answers like "B", "b.",
// or "C)", and -1 for anything else. Only punctuation may follow the
// letter, so option texts that merely start with A-D don't match.
func bareChoiceLetter(answer string) int {
	s := strings.TrimSpace(answer)
	if s == "" {
		return -1
	}
	idx := strings.IndexByte(choiceLetters, byte(unicode.ToLower(rune(s[0]))))
	if idx == -1 {
		return -1
	}
	for _, r := range s[1:] {
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) {
			return -1
		}
	}
	return idx
}

// normalizeAnswer trims, collapses internal whitespace, lowercases,
// strips a single leading choice-letter prefix ("a.", "b)"), and strips
// a trailing period.
func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if len(s) >= 2 && strings.IndexByte(choiceLetters, s[0]) != -1 &&
		(s[1] == '.' || s[1] == ')' || s[1] == ':') {
		s = strings.TrimSpace(s[2:])
	}
	return strings.TrimSuffix(s, ".")
}
