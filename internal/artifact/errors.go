package artifact

import (
	"errors"
	"fmt"
)

// ErrNoJSON is returned by ExtractJSON when the raw text contains neither
// a fenced block nor a bracket-delimited candidate.
var ErrNoJSON = errors.New("no JSON value found in generated text")

// DecodeError indicates the extracted span is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "the language model returned malformed JSON: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ShapeError indicates the decoded value has the wrong shape: either the
// top-level value is not an array (Index -1), or an item violates a
// structural invariant such as the four-option rule. A shape violation is
// fatal for the whole batch.
type ShapeError struct {
	Index  int
	Detail string
}

func (e *ShapeError) Error() string {
	if e.Index < 0 {
		return "the language model returned a payload that was not a JSON array"
	}
	return fmt.Sprintf("generated item %d %s", e.Index+1, e.Detail)
}

// AnswerError indicates an exam question whose correct answer could not
// be resolved to any of its options. Fatal for the whole batch.
type AnswerError struct {
	Index  int
	Answer string
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("generated exam question %d has a correctAnswer that is not one of the options: %q", e.Index+1, e.Answer)
}

// FatalError is returned after both the initial attempt and the single
// strict retry have failed. It wraps the first attempt's failure, which
// is the more diagnostic of the two: the retry prompt is a generic repair
// instruction, not specific to what went wrong.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "generation failed after retry: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error { return e.Err }
