// Package genai wraps the OpenAI-compatible model endpoints used for
// text and image generation. The rest of the application depends on the
// interfaces here, never on a concrete client; the composition root
// constructs one client at startup and injects it.
package genai

import "context"

// TextGenerator produces free-form text from a prompt. Implementations
// must be safe for concurrent use; callers impose deadlines through the
// context.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// StructuredGenerator is an optional capability of a TextGenerator:
// generation in the backend's JSON mode at temperature zero. JSON mode is
// not perfectly enforced by every OpenAI-compatible server, so callers
// must still treat the returned text as untrusted model output.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, maxTokens int) (string, error)
}
