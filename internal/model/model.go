package model

import "time"

// Role represents a chat message role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// User represents a frontend user. Users are created on demand by name;
// there is no credential attached to them.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Project groups the uploaded documents and generated study artifacts
// for one subject.
type Project struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name"`
	Summary       string    `json:"summary,omitempty"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Document is one uploaded piece of study material.
type Document struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Flashcard is a single question/answer study card. Both fields are
// non-empty after trimming once the card has passed validation.
type Flashcard struct {
	ID        int64  `json:"id,omitempty"`
	ProjectID int64  `json:"project_id,omitempty"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// ExamQuestion is a multiple-choice practice exam question. A validated
// question has exactly four options and CorrectAnswer equal to one of
// them verbatim.
type ExamQuestion struct {
	ID            int64    `json:"id,omitempty"`
	ProjectID     int64    `json:"project_id,omitempty"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// ChatMessage is one turn of a project's tutoring conversation.
type ChatMessage struct {
	ID        int64     `json:"id,omitempty"`
	ProjectID int64     `json:"project_id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the generated study-guide markdown for a project, with the
// image prompts extracted from it and any rendered images (base64 JPEG).
type Summary struct {
	ID           int64     `json:"id,omitempty"`
	ProjectID    int64     `json:"project_id,omitempty"`
	Markdown     string    `json:"markdown"`
	ImagePrompts []string  `json:"image_prompts,omitempty"`
	Images       []string  `json:"images,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Config holds runtime generation parameters set via CLI flags.
type Config struct {
	MaxNewTokens       int     // token budget for a single generation call
	Temperature        float32 // sampling temperature for free-text generation
	EnableImages       bool    // render images for summary image prompts
	HistoryMaxMessages int     // chat turns kept when compacting history
	HistoryMaxChars    int     // character budget for compacted history
	ContextMaxChars    int     // character budget for assembled document context
}
