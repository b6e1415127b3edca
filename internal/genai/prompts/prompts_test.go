package prompts

import (
	"strings"
	"testing"

	"github.com/pavelanni/studybuddy/internal/model"
)

func TestFlashcardsPrompt(t *testing.T) {
	material := "Photosynthesis converts light energy into chemical energy."

	t.Run("normal", func(t *testing.T) {
		prompt := Flashcards(material, false)
		if !strings.Contains(prompt, material) {
			t.Error("prompt should embed the study material")
		}
		if !strings.Contains(prompt, "<<<STUDY_MATERIAL>>>") {
			t.Error("prompt should delimit the study material")
		}
		if strings.Contains(prompt, "STRICT MODE") {
			t.Error("normal prompt should not contain the strict suffix")
		}
	})

	t.Run("strict", func(t *testing.T) {
		prompt := Flashcards(material, true)
		if !strings.Contains(prompt, "STRICT MODE") {
			t.Error("strict prompt should contain the strict suffix")
		}
		if strings.TrimSuffix(prompt, strictSuffix) != Flashcards(material, false) {
			t.Error("strict prompt should be the normal prompt plus the strict suffix")
		}
	})
}

func TestExamPrompt(t *testing.T) {
	prompt := Exam("material", false)
	if !strings.Contains(prompt, "EXACTLY 4 options") {
		t.Error("exam prompt should demand exactly four options")
	}
	if !strings.Contains(prompt, `"correctAnswer"`) {
		t.Error("exam prompt should name the correctAnswer field")
	}
	if strict := Exam("material", true); !strings.Contains(strict, "STRICT MODE") {
		t.Error("strict exam prompt should contain the strict suffix")
	}
}

func TestSummaryPrompt(t *testing.T) {
	prompt := Summary("material")
	for _, section := range []string{"## Introduction", "## Key Concepts", "## Summary", "[IMAGE_PROMPT:"} {
		if !strings.Contains(prompt, section) {
			t.Errorf("summary prompt should contain %q", section)
		}
	}
	// Primes the model by ending with the first header.
	if !strings.HasSuffix(prompt, "## Introduction") {
		t.Error("summary prompt should end with the Introduction header")
	}
}

func TestChatPrompt(t *testing.T) {
	prompt := Chat("the context", "User: hi\nAssistant: hello", "what is DNA?")
	if !strings.Contains(prompt, "the context") {
		t.Error("chat prompt should embed the document context")
	}
	if !strings.Contains(prompt, "User: hi\nAssistant: hello") {
		t.Error("chat prompt should embed the conversation")
	}
	if !strings.HasSuffix(prompt, "User: what is DNA?\nAssistant:") {
		t.Error("chat prompt should end with the latest turn")
	}

	empty := Chat("ctx", "", "q")
	if !strings.Contains(empty, "(none)") {
		t.Error("empty conversation should render a placeholder")
	}
}

func TestRenderHistory(t *testing.T) {
	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "What is osmosis?"},
		{Role: model.RoleAssistant, Content: "Movement of water across a membrane."},
	}
	got := RenderHistory(history)
	want := "User: What is osmosis?\nAssistant: Movement of water across a membrane."
	if got != want {
		t.Errorf("RenderHistory() = %q, want %q", got, want)
	}
	if RenderHistory(nil) != "" {
		t.Error("empty history should render empty")
	}
}
