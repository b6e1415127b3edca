// Package handler exposes the JSON HTTP API.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/studybuddy/internal/artifact"
	"github.com/pavelanni/studybuddy/internal/genai"
	"github.com/pavelanni/studybuddy/internal/model"
	"github.com/pavelanni/studybuddy/internal/service"
)

type Handler struct {
	svc        *service.Service
	textModel  string
	imageModel string
}

func New(svc *service.Service, textModel, imageModel string) *Handler {
	return &Handler{svc: svc, textModel: textModel, imageModel: imageModel}
}

// Routes mounts all API endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/users/ensure", h.ensureUser)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.listProjects)
		r.Post("/", h.createProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", h.getProject)
			r.Delete("/", h.deleteProject)

			r.Get("/documents", h.listDocuments)
			r.Post("/documents", h.addDocument)

			r.Get("/flashcards", h.listFlashcards)
			r.Post("/flashcards", h.generateFlashcards)

			r.Get("/practice-exam", h.listExamQuestions)
			r.Post("/practice-exam", h.generatePracticeExam)

			r.Get("/summary", h.getSummary)
			r.Post("/summary", h.generateSummary)

			r.Get("/chat", h.listChatMessages)
			r.Post("/chat", h.chat)

			r.Post("/generate", h.generateAll)
		})
	})

	r.Get("/documents/{documentID}", h.getDocument)
	r.Delete("/documents/{documentID}", h.deleteDocument)

	r.Post("/images", h.generateImage)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"text_model":  h.textModel,
		"image_model": h.imageModel,
	})
}

func (h *Handler) ensureUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	u, err := h.svc.Store().EnsureUser(req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64  `json:"user_id"`
		Name   string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.UserID == 0 || req.Name == "" {
		writeError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}
	id, err := h.svc.Store().CreateProject(req.UserID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.svc.Store().GetProject(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}
	projects, err := h.svc.Store().ListProjects(userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	p, err := h.svc.Store().GetProject(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	if _, err := h.svc.Store().GetProject(id); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Store().DeleteProject(id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addDocument(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	id, err := h.svc.Store().AddDocument(model.Document{
		ProjectID: projectID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.svc.Store().GetDocument(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	docs, err := h.svc.Store().ListDocuments(projectID, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	d, err := h.svc.Store().GetDocument(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	if _, err := h.svc.Store().GetDocument(id); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Store().DeleteDocument(id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generateFlashcards(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	cards, err := h.svc.GenerateFlashcards(r.Context(), projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) listFlashcards(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	cards, err := h.svc.Store().ListFlashcards(projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if cards == nil {
		cards = []model.Flashcard{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) generatePracticeExam(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	questions, err := h.svc.GeneratePracticeExam(r.Context(), projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) listExamQuestions(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	questions, err := h.svc.Store().ListExamQuestions(projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if questions == nil {
		questions = []model.ExamQuestion{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) generateSummary(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	sum, err := h.svc.GenerateSummary(r.Context(), projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	sum, err := h.svc.Store().GetSummary(projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if sum == nil {
		writeError(w, http.StatusNotFound, "no summary generated yet")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) listChatMessages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	msgs, err := h.svc.Store().ListChatMessages(projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	reply, err := h.svc.Chat(r.Context(), projectID, req.Message)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) generateAll(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	if err := h.svc.GenerateAll(r.Context(), projectID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "generated"})
}

func (h *Handler) generateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	img, err := h.svc.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": img})
}

// fail maps service and store errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var fatal *artifact.FatalError
	switch {
	case errors.As(err, &fatal):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, service.ErrNoDocuments):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, genai.ErrImagesDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
