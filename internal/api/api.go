// Package api exposes the store, board handler, and AI orchestrator to
// the external presentation layer over JSON/HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joescharf/kan/internal/ai"
	"github.com/joescharf/kan/internal/board"
	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/store"
	"github.com/joescharf/kan/internal/views"
)

// Server provides the REST API handlers.
type Server struct {
	app   *store.App
	board *board.Handler
	ai    *ai.Orchestrator
	log   *slog.Logger
}

// NewServer creates a new API server. The orchestrator may run without
// a backend; AI endpoints then answer with fallbacks.
func NewServer(app *store.App, orchestrator *ai.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		app:   app,
		board: board.NewHandler(app),
		ai:    orchestrator,
		log:   logger,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/issues", s.listIssues)
	mux.HandleFunc("POST /api/v1/issues", s.createIssue)
	mux.HandleFunc("GET /api/v1/issues/{id}", s.getIssue)
	mux.HandleFunc("PATCH /api/v1/issues/{id}", s.updateIssue)
	mux.HandleFunc("DELETE /api/v1/issues/{id}", s.deleteIssue)
	mux.HandleFunc("POST /api/v1/issues/{id}/move", s.moveIssue)

	mux.HandleFunc("GET /api/v1/board", s.boardView)
	mux.HandleFunc("POST /api/v1/board/drop", s.boardDrop)

	mux.HandleFunc("GET /api/v1/projects", s.listProjects)
	mux.HandleFunc("POST /api/v1/projects", s.createProject)
	mux.HandleFunc("GET /api/v1/projects/{id}", s.getProject)
	mux.HandleFunc("PATCH /api/v1/projects/{id}", s.updateProject)

	mux.HandleFunc("GET /api/v1/users", s.listUsers)
	mux.HandleFunc("GET /api/v1/workspace", s.currentWorkspace)

	mux.HandleFunc("POST /api/v1/ai", s.aiAction)

	return s.logMiddleware(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Issues ---

// snapshotForRequest overlays query-string filters onto the store
// snapshot so the presentation layer can request ad-hoc views without
// mutating shared filter state.
func (s *Server) snapshotForRequest(r *http.Request) store.Snapshot {
	snap := s.app.Snapshot()
	q := r.URL.Query()

	if v := q.Get("search"); v != "" {
		snap.SearchQuery = v
	}
	if v := q.Get("status"); v != "" {
		for _, p := range strings.Split(v, ",") {
			snap.Filter.Status = append(snap.Filter.Status, models.Status(p))
		}
	}
	if v := q.Get("priority"); v != "" {
		for _, p := range strings.Split(v, ",") {
			snap.Filter.Priority = append(snap.Filter.Priority, models.Priority(p))
		}
	}
	if v := q.Get("label"); v != "" {
		snap.Filter.Labels = append(snap.Filter.Labels, strings.Split(v, ",")...)
	}
	if v := q.Get("assignee"); v != "" {
		snap.Filter.Assignee = append(snap.Filter.Assignee, strings.Split(v, ",")...)
	}
	if v := q.Get("project"); v != "" {
		if p, ok := s.app.FindProject(v); ok {
			snap.CurrentProject = &p
		}
	}
	return snap
}

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.FilteredIssues(s.snapshotForRequest(r)))
}

type createIssueRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	Labels      []string        `json:"labels"`
	AssigneeID  *string         `json:"assignee_id"`
	ProjectID   *string         `json:"project_id"`
	ParentID    *string         `json:"parent_id"`
	Estimate    *int            `json:"estimate"`
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "invalid priority")
		return
	}

	issue, err := s.app.CreateIssue(req.Title, store.CreateOptions{
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Labels:      req.Labels,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		ParentID:    req.ParentID,
		Estimate:    req.Estimate,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	issue, ok := s.app.GetIssue(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "issue not found")
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

type updateIssueRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Status      *models.Status   `json:"status"`
	Priority    *models.Priority `json:"priority"`
	Labels      *[]string        `json:"labels"`
	AssigneeID  **string         `json:"assignee_id"`
	ProjectID   **string         `json:"project_id"`
	Estimate    **int            `json:"estimate"`
	Order       *int             `json:"order"`
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request) {
	var req updateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if req.Priority != nil && !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "invalid priority")
		return
	}

	id := r.PathValue("id")
	err := s.app.UpdateIssue(id, models.IssuePatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Labels:      req.Labels,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		Estimate:    req.Estimate,
		Order:       req.Order,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	issue, _ := s.app.GetIssue(id)
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) deleteIssue(w http.ResponseWriter, r *http.Request) {
	err := s.app.DeleteIssue(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) moveIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	id := r.PathValue("id")
	err := s.app.MoveIssue(id, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	issue, _ := s.app.GetIssue(id)
	writeJSON(w, http.StatusOK, issue)
}

// --- Board ---

func (s *Server) boardView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.IssuesByStatus(s.snapshotForRequest(r)))
}

func (s *Server) boardDrop(w http.ResponseWriter, r *http.Request) {
	var ev board.DropEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	moved, to, err := s.board.HandleDrop(ev)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "status": to})
}

// --- Projects ---

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Projects())
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Color       string  `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := s.app.NewProject(req.Name, req.Description, req.Color)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.app.FindProject(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string               `json:"name"`
		Description **string              `json:"description"`
		Color       *string               `json:"color"`
		LeadID      **string              `json:"lead_id"`
		Status      *models.ProjectStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	err := s.app.UpdateProject(id, models.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		LeadID:      req.LeadID,
		Status:      req.Status,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p, _ := s.app.FindProject(id)
	writeJSON(w, http.StatusOK, p)
}

// --- Reference data ---

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Users())
}

func (s *Server) currentWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := s.app.CurrentWorkspace()
	if ws == nil {
		writeError(w, http.StatusNotFound, "no current workspace")
		return
	}
	writeJSON(w, http.StatusOK, ws)
}
