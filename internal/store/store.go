// Package store persists users, projects, documents, generated study
// artifacts and chat history in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/studybuddy/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE TABLE IF NOT EXISTS flashcards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE TABLE IF NOT EXISTS exam_questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		question TEXT NOT NULL,
		options TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE TABLE IF NOT EXISTS summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL UNIQUE,
		markdown TEXT NOT NULL,
		image_prompts TEXT NOT NULL DEFAULT '[]',
		images TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// EnsureUser returns the user with the given name, creating it if needed.
func (s *Store) EnsureUser(name string) (model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, name, created_at FROM users WHERE name = ?`, name,
	).Scan(&u.ID, &u.Name, &u.CreatedAt)
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return model.User{}, err
	}

	now := time.Now()
	res, err := s.db.Exec(`INSERT INTO users (name, created_at) VALUES (?, ?)`, name, now)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: id, Name: name, CreatedAt: now}, nil
}

// CreateProject creates a project for a user.
func (s *Store) CreateProject(userID int64, name string) (int64, error) {
	now := time.Now()
	res, err := s.db.Exec(
		`INSERT INTO projects (user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		userID, name, now, now,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetProject returns a project by ID.
func (s *Store) GetProject(id int64) (model.Project, error) {
	var p model.Project
	err := s.db.QueryRow(
		`SELECT p.id, p.user_id, p.name, p.summary, p.created_at, p.updated_at,
		        (SELECT COUNT(*) FROM documents d WHERE d.project_id = p.id)
		 FROM projects p WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Summary, &p.CreatedAt, &p.UpdatedAt, &p.DocumentCount)
	return p, err
}

// ListProjects returns a user's projects, newest first.
func (s *Store) ListProjects(userID int64) ([]model.Project, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.user_id, p.name, p.summary, p.created_at, p.updated_at,
		        (SELECT COUNT(*) FROM documents d WHERE d.project_id = p.id)
		 FROM projects p WHERE p.user_id = ? ORDER BY p.id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Summary, &p.CreatedAt, &p.UpdatedAt, &p.DocumentCount); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProjectSummary stores the short project summary shown in listings.
func (s *Store) UpdateProjectSummary(id int64, summary string) error {
	_, err := s.db.Exec(
		`UPDATE projects SET summary = ?, updated_at = ? WHERE id = ?`,
		summary, time.Now(), id,
	)
	return err
}

// DeleteProject removes a project and everything belonging to it.
func (s *Store) DeleteProject(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"documents", "flashcards", "exam_questions", "chat_messages", "summaries"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE project_id = ?`, id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddDocument stores a document and touches the project's updated_at.
func (s *Store) AddDocument(doc model.Document) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.Exec(
		`INSERT INTO documents (project_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ProjectID, doc.Title, doc.Content, now, now,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`UPDATE projects SET updated_at = ? WHERE id = ?`, now, doc.ProjectID); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// ListDocuments returns a project's documents in upload order. Content is
// only populated when withContent is set; listings don't need it.
func (s *Store) ListDocuments(projectID int64, withContent bool) ([]model.Document, error) {
	cols := `id, project_id, title, '', created_at, updated_at`
	if withContent {
		cols = `id, project_id, title, content, created_at, updated_at`
	}
	rows, err := s.db.Query(
		`SELECT `+cols+` FROM documents WHERE project_id = ? ORDER BY id`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocument returns a document by ID, including content.
func (s *Store) GetDocument(id int64) (model.Document, error) {
	var d model.Document
	err := s.db.QueryRow(
		`SELECT id, project_id, title, content, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.ProjectID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// DeleteDocument removes a document.
func (s *Store) DeleteDocument(id int64) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}

// ReplaceFlashcards swaps a project's flashcard set atomically. Generation
// is all-or-nothing, so stale cards never mix with a new batch.
func (s *Store) ReplaceFlashcards(projectID int64, cards []model.Flashcard) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM flashcards WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for _, c := range cards {
		if _, err := tx.Exec(
			`INSERT INTO flashcards (project_id, question, answer) VALUES (?, ?, ?)`,
			projectID, c.Question, c.Answer,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListFlashcards returns a project's flashcards.
func (s *Store) ListFlashcards(projectID int64) ([]model.Flashcard, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, question, answer FROM flashcards WHERE project_id = ? ORDER BY id`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cards []model.Flashcard
	for rows.Next() {
		var c model.Flashcard
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Question, &c.Answer); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ReplaceExamQuestions swaps a project's practice exam atomically.
// Options are stored as a JSON array in a text column.
func (s *Store) ReplaceExamQuestions(projectID int64, questions []model.ExamQuestion) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM exam_questions WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO exam_questions (project_id, question, options, correct_answer) VALUES (?, ?, ?, ?)`,
			projectID, q.Question, string(options), q.CorrectAnswer,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListExamQuestions returns a project's practice exam questions.
func (s *Store) ListExamQuestions(projectID int64) ([]model.ExamQuestion, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, question, options, correct_answer FROM exam_questions WHERE project_id = ? ORDER BY id`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.ExamQuestion
	for rows.Next() {
		var q model.ExamQuestion
		var options string
		if err := rows.Scan(&q.ID, &q.ProjectID, &q.Question, &options, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AddChatMessage appends a message to a project's conversation.
func (s *Store) AddChatMessage(msg model.ChatMessage) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO chat_messages (project_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		msg.ProjectID, msg.Role, msg.Content, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListChatMessages returns a project's conversation in chronological order.
func (s *Store) ListChatMessages(projectID int64) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, role, content, created_at FROM chat_messages WHERE project_id = ? ORDER BY id`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpsertSummary inserts or replaces a project's study-guide summary.
func (s *Store) UpsertSummary(sum model.Summary) error {
	prompts, err := json.Marshal(sum.ImagePrompts)
	if err != nil {
		return fmt.Errorf("marshal image prompts: %w", err)
	}
	images, err := json.Marshal(sum.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO summaries (project_id, markdown, image_prompts, images, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET markdown = ?, image_prompts = ?, images = ?, created_at = ?`,
		sum.ProjectID, sum.Markdown, string(prompts), string(images), time.Now(),
		sum.Markdown, string(prompts), string(images), time.Now(),
	)
	return err
}

// GetSummary returns a project's summary, or nil if none exists yet.
func (s *Store) GetSummary(projectID int64) (*model.Summary, error) {
	var sum model.Summary
	var prompts, images string
	err := s.db.QueryRow(
		`SELECT id, project_id, markdown, image_prompts, images, created_at FROM summaries WHERE project_id = ?`, projectID,
	).Scan(&sum.ID, &sum.ProjectID, &sum.Markdown, &prompts, &images, &sum.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(prompts), &sum.ImagePrompts); err != nil {
		return nil, fmt.Errorf("unmarshal image prompts: %w", err)
	}
	if err := json.Unmarshal([]byte(images), &sum.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	return &sum, nil
}
