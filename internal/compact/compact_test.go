package compact

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pavelanni/studybuddy/internal/model"
)

func makeTurns(n, charsEach int) []model.ChatMessage {
	turns := make([]model.ChatMessage, n)
	for i := range turns {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		turns[i] = model.ChatMessage{
			ID:      int64(i + 1),
			Role:    role,
			Content: fmt.Sprintf("turn %02d ", i) + strings.Repeat("x", charsEach-8),
		}
	}
	return turns
}

func TestHistoryUnderBudget(t *testing.T) {
	turns := makeTurns(5, 100)
	got := History(turns, 20, 5000)
	if len(got) != 5 {
		t.Fatalf("expected all 5 turns, got %d", len(got))
	}
	for i := range got {
		if got[i].ID != turns[i].ID {
			t.Errorf("turn %d out of order: got ID %d", i, got[i].ID)
		}
	}
}

func TestHistoryMessageCap(t *testing.T) {
	turns := makeTurns(25, 10)
	got := History(turns, 20, 5000)
	if len(got) != 20 {
		t.Fatalf("expected 20 turns, got %d", len(got))
	}
	// The 5 oldest turns are dropped, order preserved among the rest.
	if got[0].ID != 6 {
		t.Errorf("expected oldest kept turn ID 6, got %d", got[0].ID)
	}
	if got[19].ID != 25 {
		t.Errorf("expected newest turn ID 25, got %d", got[19].ID)
	}
}

// 25 turns, maxMessages=20, the 20 most recent total 6000 chars with a
// 5000-char budget: fewer than 20 turns survive, chronological order,
// and the oldest retained turn is tail-truncated behind the ellipsis.
func TestHistoryCharBudget(t *testing.T) {
	turns := makeTurns(25, 300) // last 20 turns = 6000 chars
	got := History(turns, 20, 5000)

	if len(got) >= 20 {
		t.Fatalf("expected fewer than 20 turns, got %d", len(got))
	}
	// 16 full turns (4800) + one truncated to the last 200 chars.
	if len(got) != 17 {
		t.Fatalf("expected 17 turns, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatal("turns not in chronological order")
		}
	}
	oldest := got[0]
	if !strings.HasPrefix(oldest.Content, HistoryEllipsis) {
		t.Errorf("oldest kept turn not marked truncated: %q", oldest.Content[:20])
	}
	tail := strings.TrimPrefix(oldest.Content, HistoryEllipsis)
	if len([]rune(tail)) != 200 {
		t.Errorf("expected 200-char tail, got %d", len([]rune(tail)))
	}
	full := turns[len(turns)-17].Content
	if !strings.HasSuffix(full, tail) {
		t.Error("truncated turn should keep the tail of its text")
	}
	// Newer turns are untouched.
	if got[1].Content != turns[len(turns)-16].Content {
		t.Error("full turns should be unmodified")
	}
}

func TestHistoryExactFitIsNotTruncated(t *testing.T) {
	turns := makeTurns(2, 100)
	got := History(turns, 10, 200)
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	for _, turn := range got {
		if strings.HasPrefix(turn.Content, HistoryEllipsis) {
			t.Error("exact-fit turn should not be truncated")
		}
	}
}

func TestHistoryZeroBudgets(t *testing.T) {
	turns := makeTurns(3, 10)
	if got := History(turns, 0, 100); got != nil {
		t.Errorf("maxMessages 0: expected nil, got %d turns", len(got))
	}
	if got := History(turns, 10, 0); got != nil {
		t.Errorf("maxChars 0: expected nil, got %d turns", len(got))
	}
	if got := History(nil, 10, 100); len(got) != 0 {
		t.Errorf("empty history: expected empty result, got %d", len(got))
	}
}

func doc(id int64, chars int) model.Document {
	return model.Document{ID: id, Title: fmt.Sprintf("doc %d", id), Content: strings.Repeat("a", chars)}
}

// Two documents of 8000 and 6000 chars under a 12000 budget: the first
// in full, the second truncated to 4000 chars plus the marker, a third
// omitted entirely.
func TestDocumentsBudget(t *testing.T) {
	docs := []model.Document{doc(1, 8000), doc(2, 6000), doc(3, 500)}
	got := Documents(docs, 12000)

	sections := strings.Split(got, "\n\n")
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if len([]rune(sections[0])) != 8000 {
		t.Errorf("expected first document in full (8000 chars), got %d", len([]rune(sections[0])))
	}
	if !strings.HasSuffix(sections[1], TruncationMarker) {
		t.Error("second section should carry the truncation marker")
	}
	body := strings.TrimSuffix(sections[1], "\n"+TruncationMarker)
	if len([]rune(body)) != 4000 {
		t.Errorf("expected second document truncated to 4000 chars, got %d", len([]rune(body)))
	}
}

func TestDocumentsAllFit(t *testing.T) {
	docs := []model.Document{doc(1, 100), doc(2, 200)}
	got := Documents(docs, 1000)
	want := strings.Repeat("a", 100) + "\n\n" + strings.Repeat("a", 200)
	if got != want {
		t.Errorf("unexpected assembly: %d chars", len(got))
	}
}

func TestDocumentsSkipsEmptyContent(t *testing.T) {
	docs := []model.Document{
		{ID: 1, Content: "   \n\t"},
		{ID: 2, Content: "actual content"},
	}
	got := Documents(docs, 1000)
	if got != "actual content" {
		t.Errorf("expected whitespace-only document skipped, got %q", got)
	}
}

func TestDocumentsPlaceholder(t *testing.T) {
	tests := []struct {
		name     string
		docs     []model.Document
		maxChars int
	}{
		{"no documents", nil, 1000},
		{"zero budget", []model.Document{doc(1, 100)}, 0},
		{"only empty documents", []model.Document{{ID: 1, Content: "  "}}, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Documents(tt.docs, tt.maxChars); got != NoContentPlaceholder {
				t.Errorf("expected placeholder, got %q", got)
			}
		})
	}
}
