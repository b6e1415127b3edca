// Package service runs the generation pipelines: it assembles document
// context, calls the language model, and persists validated artifacts.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/studybuddy/internal/artifact"
	"github.com/pavelanni/studybuddy/internal/compact"
	"github.com/pavelanni/studybuddy/internal/genai"
	"github.com/pavelanni/studybuddy/internal/genai/prompts"
	"github.com/pavelanni/studybuddy/internal/markdown"
	"github.com/pavelanni/studybuddy/internal/model"
	"github.com/pavelanni/studybuddy/internal/store"
)

// ErrNoDocuments is returned when generation is requested for a project
// that has no study material uploaded yet.
var ErrNoDocuments = errors.New("project has no documents to generate from")

// Local models sometimes append a fabricated continuation of the chat
// transcript or trailing meta-commentary. Cut the reply at the first one.
var chatArtifacts = []*regexp.Regexp{
	regexp.MustCompile(`(?is)---\s*Human:.*$`),
	regexp.MustCompile(`(?is)\n\s*Human:.*$`),
	regexp.MustCompile(`(?is)\n\s*User:.*$`),
	regexp.MustCompile(`(?is)---\s*Please.*$`),
	regexp.MustCompile(`(?is)---\s*Remember.*$`),
	regexp.MustCompile(`(?is)---\s*Note:.*$`),
}

// Service wires the store and the model clients together behind the
// HTTP handlers.
type Service struct {
	store  *store.Store
	text   genai.TextGenerator
	images *genai.ImageClient
	cfg    model.Config
}

func New(st *store.Store, text genai.TextGenerator, images *genai.ImageClient, cfg model.Config) *Service {
	return &Service{store: st, text: text, images: images, cfg: cfg}
}

// Store exposes the persistence layer for the plain CRUD handlers.
func (s *Service) Store() *store.Store { return s.store }

// generateFunc adapts the configured text generator for the artifact
// pipelines. When the backend supports a structured-output mode it is
// tried first; its output still goes through extraction and validation
// because backends honor the mode to varying degrees.
func (s *Service) generateFunc() artifact.GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		if sg, ok := s.text.(genai.StructuredGenerator); ok {
			out, err := sg.GenerateStructured(ctx, prompt, s.cfg.MaxNewTokens)
			if err == nil {
				return out, nil
			}
			slog.Warn("structured generation failed, falling back to plain completion", "error", err)
		}
		return s.text.Generate(ctx, prompt, s.cfg.MaxNewTokens, s.cfg.Temperature)
	}
}

// materialContext assembles the project's documents into a bounded
// prompt context. Returns ErrNoDocuments when nothing is uploaded.
func (s *Service) materialContext(projectID int64) (string, error) {
	docs, err := s.store.ListDocuments(projectID, true)
	if err != nil {
		return "", fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return "", ErrNoDocuments
	}
	return compact.Documents(docs, s.cfg.ContextMaxChars), nil
}

// GenerateFlashcards regenerates the full flashcard set for a project
// and returns the stored cards.
func (s *Service) GenerateFlashcards(ctx context.Context, projectID int64) ([]model.Flashcard, error) {
	material, err := s.materialContext(projectID)
	if err != nil {
		return nil, err
	}

	cards, err := artifact.Flashcards(ctx, s.generateFunc(), func(strict bool) string {
		return prompts.Flashcards(material, strict)
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.ReplaceFlashcards(projectID, cards); err != nil {
		return nil, fmt.Errorf("store flashcards: %w", err)
	}
	slog.Info("flashcards generated", "project", projectID, "count", len(cards))
	return s.store.ListFlashcards(projectID)
}

// GeneratePracticeExam regenerates a project's practice exam and
// returns the stored questions.
func (s *Service) GeneratePracticeExam(ctx context.Context, projectID int64) ([]model.ExamQuestion, error) {
	material, err := s.materialContext(projectID)
	if err != nil {
		return nil, err
	}

	questions, err := artifact.ExamQuestions(ctx, s.generateFunc(), func(strict bool) string {
		return prompts.Exam(material, strict)
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.ReplaceExamQuestions(projectID, questions); err != nil {
		return nil, fmt.Errorf("store exam questions: %w", err)
	}
	slog.Info("practice exam generated", "project", projectID, "count", len(questions))
	return s.store.ListExamQuestions(projectID)
}

// GenerateSummary produces the study-guide markdown for a project,
// repairs it, optionally renders its illustration prompts, and stores
// the result. Image failures are logged but never fail the summary.
func (s *Service) GenerateSummary(ctx context.Context, projectID int64) (*model.Summary, error) {
	material, err := s.materialContext(projectID)
	if err != nil {
		return nil, err
	}

	raw, err := s.text.Generate(ctx, prompts.Summary(material), s.cfg.MaxNewTokens, s.cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("summary generation: %w", err)
	}

	md := markdown.FixSummary(raw)
	imagePrompts := markdown.ImagePrompts(md)

	var images []string
	if s.cfg.EnableImages && s.images != nil && s.images.Enabled() {
		for _, p := range imagePrompts {
			img, err := s.images.Generate(ctx, p)
			if err != nil {
				slog.Warn("image generation failed", "project", projectID, "prompt", p, "error", err)
				continue
			}
			images = append(images, img)
		}
	}

	sum := model.Summary{
		ProjectID:    projectID,
		Markdown:     md,
		ImagePrompts: imagePrompts,
		Images:       images,
	}
	if err := s.store.UpsertSummary(sum); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}
	slog.Info("summary generated", "project", projectID, "image_prompts", len(imagePrompts), "images", len(images))
	return s.store.GetSummary(projectID)
}

// GenerateAll regenerates flashcards, the practice exam, and the
// summary concurrently. The first failure cancels the rest.
func (s *Service) GenerateAll(ctx context.Context, projectID int64) error {
	// Fail fast before fanning out three pipelines.
	if _, err := s.materialContext(projectID); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.GenerateFlashcards(ctx, projectID)
		return err
	})
	g.Go(func() error {
		_, err := s.GeneratePracticeExam(ctx, projectID)
		return err
	})
	g.Go(func() error {
		_, err := s.GenerateSummary(ctx, projectID)
		return err
	})
	return g.Wait()
}

// Chat answers one tutoring question grounded in the project's
// documents and compacted conversation history, persisting both turns.
func (s *Service) Chat(ctx context.Context, projectID int64, message string) (model.ChatMessage, error) {
	material, err := s.materialContext(projectID)
	if err != nil {
		return model.ChatMessage{}, err
	}

	history, err := s.store.ListChatMessages(projectID)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("list chat messages: %w", err)
	}
	recent := compact.History(history, s.cfg.HistoryMaxMessages, s.cfg.HistoryMaxChars)

	prompt := prompts.Chat(material, prompts.RenderHistory(recent), message)
	raw, err := s.text.Generate(ctx, prompt, s.cfg.MaxNewTokens, s.cfg.Temperature)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("chat generation: %w", err)
	}
	reply := cleanChatReply(raw)

	if _, err := s.store.AddChatMessage(model.ChatMessage{
		ProjectID: projectID, Role: model.RoleUser, Content: message,
	}); err != nil {
		return model.ChatMessage{}, fmt.Errorf("store user message: %w", err)
	}
	id, err := s.store.AddChatMessage(model.ChatMessage{
		ProjectID: projectID, Role: model.RoleAssistant, Content: reply,
	})
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("store assistant message: %w", err)
	}

	return model.ChatMessage{ID: id, ProjectID: projectID, Role: model.RoleAssistant, Content: reply}, nil
}

// GenerateImage renders a single standalone illustration prompt.
func (s *Service) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if s.images == nil || !s.images.Enabled() {
		return "", genai.ErrImagesDisabled
	}
	return s.images.Generate(ctx, prompt)
}

func cleanChatReply(raw string) string {
	reply := strings.TrimSpace(raw)
	for _, re := range chatArtifacts {
		reply = re.ReplaceAllString(reply, "")
	}
	return strings.TrimSpace(reply)
}
