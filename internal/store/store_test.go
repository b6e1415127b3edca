package store

import (
	"database/sql"
	"testing"

	"github.com/pavelanni/studybuddy/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestProject(t *testing.T, s *Store) int64 {
	t.Helper()
	u, err := s.EnsureUser("alice")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	id, err := s.CreateProject(u.ID, "Biology")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return id
}

func TestEnsureUser(t *testing.T) {
	s := newTestStore(t)

	u1, err := s.EnsureUser("alice")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if u1.Name != "alice" {
		t.Errorf("expected name alice, got %q", u1.Name)
	}

	// Ensuring again returns the same user.
	u2, err := s.EnsureUser("alice")
	if err != nil {
		t.Fatalf("EnsureUser again: %v", err)
	}
	if u2.ID != u1.ID {
		t.Errorf("expected same user ID %d, got %d", u1.ID, u2.ID)
	}

	// A different name is a different user.
	u3, err := s.EnsureUser("bob")
	if err != nil {
		t.Fatalf("EnsureUser bob: %v", err)
	}
	if u3.ID == u1.ID {
		t.Error("expected a new user ID for bob")
	}
}

func TestProjectCRUD(t *testing.T) {
	s := newTestStore(t)
	u, _ := s.EnsureUser("alice")

	id, err := s.CreateProject(u.ID, "Biology")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	p, err := s.GetProject(id)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Name != "Biology" {
		t.Errorf("expected name Biology, got %q", p.Name)
	}
	if p.DocumentCount != 0 {
		t.Errorf("expected 0 documents, got %d", p.DocumentCount)
	}

	// Not found.
	if _, err := s.GetProject(9999); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	// Listing is per user, newest first.
	id2, _ := s.CreateProject(u.ID, "Chemistry")
	other, _ := s.EnsureUser("bob")
	s.CreateProject(other.ID, "History")

	projects, err := s.ListProjects(u.ID)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].ID != id2 {
		t.Errorf("expected newest project first, got ID %d", projects[0].ID)
	}

	// Summary update.
	if err := s.UpdateProjectSummary(id, "All about cells"); err != nil {
		t.Fatalf("UpdateProjectSummary: %v", err)
	}
	p, _ = s.GetProject(id)
	if p.Summary != "All about cells" {
		t.Errorf("expected updated summary, got %q", p.Summary)
	}
}

func TestDocuments(t *testing.T) {
	s := newTestStore(t)
	projectID := newTestProject(t, s)

	id1, err := s.AddDocument(model.Document{ProjectID: projectID, Title: "Cells", Content: "Cell content"})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	id2, err := s.AddDocument(model.Document{ProjectID: projectID, Title: "Osmosis", Content: "Osmosis content"})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	// Upload order preserved, content omitted from listings by default.
	docs, err := s.ListDocuments(projectID, false)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != id1 || docs[1].ID != id2 {
		t.Error("documents not in upload order")
	}
	if docs[0].Content != "" {
		t.Error("listing should omit content")
	}

	withContent, err := s.ListDocuments(projectID, true)
	if err != nil {
		t.Fatalf("ListDocuments with content: %v", err)
	}
	if withContent[0].Content != "Cell content" {
		t.Errorf("expected content, got %q", withContent[0].Content)
	}

	// Document count reflected on the project.
	p, _ := s.GetProject(projectID)
	if p.DocumentCount != 2 {
		t.Errorf("expected document count 2, got %d", p.DocumentCount)
	}

	// GetDocument and DeleteDocument.
	d, err := s.GetDocument(id1)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if d.Title != "Cells" {
		t.Errorf("expected title Cells, got %q", d.Title)
	}
	if err := s.DeleteDocument(id1); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetDocument(id1); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows after delete, got %v", err)
	}
}

func TestReplaceFlashcards(t *testing.T) {
	s := newTestStore(t)
	projectID := newTestProject(t, s)

	first := []model.Flashcard{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}
	if err := s.ReplaceFlashcards(projectID, first); err != nil {
		t.Fatalf("ReplaceFlashcards: %v", err)
	}

	cards, err := s.ListFlashcards(projectID)
	if err != nil {
		t.Fatalf("ListFlashcards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Question != "Q1" || cards[0].Answer != "A1" {
		t.Errorf("unexpected first card: %+v", cards[0])
	}

	// Replacement removes the old set entirely.
	second := []model.Flashcard{{Question: "Q3", Answer: "A3"}}
	if err := s.ReplaceFlashcards(projectID, second); err != nil {
		t.Fatalf("ReplaceFlashcards again: %v", err)
	}
	cards, _ = s.ListFlashcards(projectID)
	if len(cards) != 1 || cards[0].Question != "Q3" {
		t.Errorf("expected only the new card, got %+v", cards)
	}
}

func TestReplaceExamQuestions(t *testing.T) {
	s := newTestStore(t)
	projectID := newTestProject(t, s)

	questions := []model.ExamQuestion{
		{
			Question:      "What organelle produces ATP?",
			Options:       []string{"Mitochondria", "Nucleus", "Ribosome", "Golgi apparatus"},
			CorrectAnswer: "Mitochondria",
		},
	}
	if err := s.ReplaceExamQuestions(projectID, questions); err != nil {
		t.Fatalf("ReplaceExamQuestions: %v", err)
	}

	got, err := s.ListExamQuestions(projectID)
	if err != nil {
		t.Fatalf("ListExamQuestions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	q := got[0]
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options round-tripped, got %d", len(q.Options))
	}
	if q.Options[3] != "Golgi apparatus" {
		t.Errorf("options order lost: %v", q.Options)
	}
	if q.CorrectAnswer != "Mitochondria" {
		t.Errorf("expected correct answer Mitochondria, got %q", q.CorrectAnswer)
	}
}

func TestChatMessages(t *testing.T) {
	s := newTestStore(t)
	projectID := newTestProject(t, s)

	for _, m := range []model.ChatMessage{
		{ProjectID: projectID, Role: model.RoleUser, Content: "What is osmosis?"},
		{ProjectID: projectID, Role: model.RoleAssistant, Content: "Water movement across a membrane."},
	} {
		if _, err := s.AddChatMessage(m); err != nil {
			t.Fatalf("AddChatMessage: %v", err)
		}
	}

	msgs, err := s.ListChatMessages(projectID)
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Error("messages not in chronological order")
	}
}

func TestSummaries(t *testing.T) {
	s := newTestStore(t)
	projectID := newTestProject(t, s)

	// None yet.
	sum, err := s.GetSummary(projectID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum != nil {
		t.Error("expected nil summary")
	}

	err = s.UpsertSummary(model.Summary{
		ProjectID:    projectID,
		Markdown:     "## Introduction\nText.",
		ImagePrompts: []string{"a padlock", "a key"},
		Images:       []string{"base64data"},
	})
	if err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}

	sum, err = s.GetSummary(projectID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if len(sum.ImagePrompts) != 2 || sum.ImagePrompts[1] != "a key" {
		t.Errorf("image prompts lost: %v", sum.ImagePrompts)
	}
	if len(sum.Images) != 1 {
		t.Errorf("images lost: %v", sum.Images)
	}

	// Upsert replaces.
	if err := s.UpsertSummary(model.Summary{ProjectID: projectID, Markdown: "## New"}); err != nil {
		t.Fatalf("UpsertSummary update: %v", err)
	}
	sum, _ = s.GetSummary(projectID)
	if sum.Markdown != "## New" {
		t.Errorf("expected replaced markdown, got %q", sum.Markdown)
	}
	if len(sum.ImagePrompts) != 0 {
		t.Errorf("expected cleared image prompts, got %v", sum.ImagePrompts)
	}
}

func TestDeleteProject(t *testing.T) {
	s := newTestStore(t)
	projectID := newTestProject(t, s)

	s.AddDocument(model.Document{ProjectID: projectID, Title: "T", Content: "C"})
	s.ReplaceFlashcards(projectID, []model.Flashcard{{Question: "Q", Answer: "A"}})
	s.AddChatMessage(model.ChatMessage{ProjectID: projectID, Role: model.RoleUser, Content: "hi"})

	if err := s.DeleteProject(projectID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if _, err := s.GetProject(projectID); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
	docs, _ := s.ListDocuments(projectID, false)
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
	cards, _ := s.ListFlashcards(projectID)
	if len(cards) != 0 {
		t.Errorf("expected no flashcards, got %d", len(cards))
	}
	msgs, _ := s.ListChatMessages(projectID)
	if len(msgs) != 0 {
		t.Errorf("expected no chat messages, got %d", len(msgs))
	}
}
