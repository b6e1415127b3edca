package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelanni/studybuddy/internal/model"
)

// PromptFunc builds the generation prompt for one attempt. The strict
// variant appends an instruction to return only a bracketed JSON array
// with no surrounding text and no fences; it is used for the retry.
type PromptFunc func(strict bool) string

// GenerateFunc invokes the language model and returns its raw text.
// Transport and inference failures are ordinary errors and take the same
// retry path as parse failures.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Flashcards runs the generate → extract → decode → validate pipeline for
// flashcards, escalating to the strict prompt exactly once on failure.
func Flashcards(ctx context.Context, generate GenerateFunc, prompt PromptFunc) ([]model.Flashcard, error) {
	return run(ctx, generate, prompt, parseFlashcards)
}

// ExamQuestions runs the same pipeline for multiple-choice exam
// questions, including answer resolution.
func ExamQuestions(ctx context.Context, generate GenerateFunc, prompt PromptFunc) ([]model.ExamQuestion, error) {
	return run(ctx, generate, prompt, parseExamQuestions)
}

// run bounds every logical request to at most two generate calls. When
// the retry fails too, the returned FatalError carries the first
// attempt's failure.
func run[T any](ctx context.Context, generate GenerateFunc, prompt PromptFunc, parse func(string) ([]T, error)) ([]T, error) {
	items, firstErr := attempt(ctx, generate, prompt(false), parse)
	if firstErr == nil {
		return items, nil
	}
	slog.Warn("generation attempt failed, retrying with strict prompt", "error", firstErr)

	items, retryErr := attempt(ctx, generate, prompt(true), parse)
	if retryErr == nil {
		return items, nil
	}
	slog.Error("strict retry failed", "error", retryErr, "first_error", firstErr)
	return nil, &FatalError{Err: firstErr}
}

func attempt[T any](ctx context.Context, generate GenerateFunc, prompt string, parse func(string) ([]T, error)) ([]T, error) {
	raw, err := generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("text generation: %w", err)
	}
	return parse(raw)
}

func parseFlashcards(raw string) ([]model.Flashcard, error) {
	cards, err := decodeArray[model.Flashcard](raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateFlashcards(cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func parseExamQuestions(raw string) ([]model.ExamQuestion, error) {
	questions, err := decodeArray[model.ExamQuestion](raw)
	if err != nil {
		return nil, err
	}
	return ValidateExamQuestions(questions)
}

func decodeArray[T any](raw string) ([]T, error) {
	span, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		// A type error with no field path means the top-level value
		// itself was not the expected array.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return nil, &ShapeError{Index: -1, Detail: typeErr.Value}
		}
		return nil, &DecodeError{Err: err}
	}
	return items, nil
}
