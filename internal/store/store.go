// Package store holds the single source of truth for all entity
// collections and cross-cutting UI selection state. It is the only
// writer of domain entities; derived views are computed from snapshots.
package store

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/kan/internal/models"
)

var (
	// ErrNotFound is returned when a mutation targets an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrEmptyTitle is returned when an issue is created with a blank title.
	ErrEmptyTitle = errors.New("issue title must not be empty")
)

// App is the in-memory application state container. All methods are
// safe for concurrent use; each mutation runs to completion before any
// read can observe it, and subscribers are notified after every
// successful mutation.
type App struct {
	mu sync.RWMutex

	issues     []models.Issue
	projects   []models.Project
	workspaces []models.Workspace
	users      []models.User

	currentWorkspace *models.Workspace
	currentProject   *models.Project
	currentView      models.ViewType
	selectedIssue    *models.Issue

	sidebarCollapsed   bool
	commandPaletteOpen bool
	createIssueOpen    bool
	aiPanelOpen        bool
	filter             models.Filter
	searchQuery        string

	seq int // highest assigned identifier number

	subs    map[int]func()
	nextSub int

	// now is replaceable in tests.
	now func() time.Time
}

// New creates an empty App with board as the default view.
func New() *App {
	return &App{
		currentView: models.ViewBoard,
		subs:        make(map[int]func()),
		now:         time.Now,
	}
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Subscribe registers fn to run after every successful mutation and
// returns a function that removes the subscription.
func (a *App) Subscribe(fn func()) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// notify runs outside the write lock so subscribers can read the store.
func (a *App) notify() {
	a.mu.RLock()
	fns := make([]func(), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Snapshot is a copy of the state the derived view engine reads.
type Snapshot struct {
	Issues         []models.Issue
	Projects       []models.Project
	Workspaces     []models.Workspace
	Users          []models.User
	CurrentProject *models.Project
	SelectedIssue  *models.Issue
	CurrentView    models.ViewType
	Filter         models.Filter
	SearchQuery    string
}

// Snapshot copies the current state. View computation never holds the
// store lock.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Snapshot{
		Issues:      append([]models.Issue(nil), a.issues...),
		Projects:    append([]models.Project(nil), a.projects...),
		Workspaces:  append([]models.Workspace(nil), a.workspaces...),
		Users:       append([]models.User(nil), a.users...),
		CurrentView: a.currentView,
		Filter:      a.filter,
		SearchQuery: a.searchQuery,
	}
	if a.currentProject != nil {
		p := *a.currentProject
		s.CurrentProject = &p
	}
	if a.selectedIssue != nil {
		i := *a.selectedIssue
		s.SelectedIssue = &i
	}
	return s
}

// --- Issues ---

// CreateOptions carries the optional fields for CreateIssue.
type CreateOptions struct {
	Description *string
	Status      models.Status
	Priority    models.Priority
	Labels      []string
	AssigneeID  *string
	ProjectID   *string
	ParentID    *string
	DueDate     *time.Time
	Estimate    *int
	CreatedBy   string
}

// CreateIssue validates the title, assigns an id and the next
// sequential identifier, applies defaults (backlog, medium), and
// prepends the issue. It is the only way identifiers are assigned.
func (a *App) CreateIssue(title string, opts CreateOptions) (models.Issue, error) {
	if strings.TrimSpace(title) == "" {
		return models.Issue{}, ErrEmptyTitle
	}

	a.mu.Lock()
	now := a.now()
	status := opts.Status
	if status == "" {
		status = models.StatusBacklog
	}
	priority := opts.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	a.seq++
	issue := models.Issue{
		ID:          newULID(),
		Identifier:  fmt.Sprintf("%s-%d", a.identifierPrefixLocked(), a.seq),
		Title:       title,
		Description: opts.Description,
		Status:      status,
		Priority:    priority,
		Labels:      append([]string(nil), opts.Labels...),
		AssigneeID:  opts.AssigneeID,
		ProjectID:   opts.ProjectID,
		ParentID:    opts.ParentID,
		DueDate:     opts.DueDate,
		Estimate:    opts.Estimate,
		CreatedBy:   opts.CreatedBy,
		Order:       len(a.issues),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.currentWorkspace != nil {
		issue.WorkspaceID = a.currentWorkspace.ID
	}
	a.issues = append([]models.Issue{issue}, a.issues...)
	a.mu.Unlock()

	a.notify()
	return issue, nil
}

// identifierPrefixLocked derives the identifier prefix from the current
// workspace slug, e.g. slug "linear" -> "LIN". Caller holds the lock.
func (a *App) identifierPrefixLocked() string {
	if a.currentWorkspace == nil || a.currentWorkspace.Slug == "" {
		return "KAN"
	}
	slug := strings.ToUpper(a.currentWorkspace.Slug)
	if len(slug) > 3 {
		slug = slug[:3]
	}
	return slug
}

// SetIssues replaces the issue collection wholesale.
func (a *App) SetIssues(issues []models.Issue) {
	a.mu.Lock()
	a.issues = append([]models.Issue(nil), issues...)
	for _, i := range issues {
		if n := identifierNumber(i.Identifier); n > a.seq {
			a.seq = n
		}
	}
	a.mu.Unlock()
	a.notify()
}

// AddIssue prepends an already-built issue (most-recent-first ordering).
func (a *App) AddIssue(issue models.Issue) {
	a.mu.Lock()
	a.issues = append([]models.Issue{issue}, a.issues...)
	if n := identifierNumber(issue.Identifier); n > a.seq {
		a.seq = n
	}
	a.mu.Unlock()
	a.notify()
}

// UpdateIssue merges a partial patch into the matching issue and stamps
// UpdatedAt. If the patched issue is also the selected issue, the
// selection is updated in the same operation.
func (a *App) UpdateIssue(id string, patch models.IssuePatch) error {
	a.mu.Lock()
	idx := a.issueIndexLocked(id)
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("update issue %s: %w", id, ErrNotFound)
	}

	applyIssuePatch(&a.issues[idx], patch)
	a.issues[idx].UpdatedAt = a.now()

	if a.selectedIssue != nil && a.selectedIssue.ID == id {
		sel := a.issues[idx]
		a.selectedIssue = &sel
	}
	a.mu.Unlock()

	a.notify()
	return nil
}

// DeleteIssue removes the issue by id and clears a matching selection.
func (a *App) DeleteIssue(id string) error {
	a.mu.Lock()
	idx := a.issueIndexLocked(id)
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("delete issue %s: %w", id, ErrNotFound)
	}

	a.issues = append(a.issues[:idx], a.issues[idx+1:]...)
	if a.selectedIssue != nil && a.selectedIssue.ID == id {
		a.selectedIssue = nil
	}
	a.mu.Unlock()

	a.notify()
	return nil
}

// MoveIssue changes only the issue's status (and UpdatedAt). It does
// not validate that the target is a legal board column; the board
// handler only ever passes valid statuses.
func (a *App) MoveIssue(id string, status models.Status) error {
	return a.UpdateIssue(id, models.IssuePatch{Status: &status})
}

// GetIssue returns a copy of the issue with the given id.
func (a *App) GetIssue(id string) (models.Issue, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if idx := a.issueIndexLocked(id); idx >= 0 {
		return a.issues[idx], true
	}
	return models.Issue{}, false
}

// FindIssue returns a copy of the issue matching id or identifier,
// case-insensitive on the identifier. CLI commands accept either.
func (a *App) FindIssue(ref string) (models.Issue, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, i := range a.issues {
		if i.ID == ref || strings.EqualFold(i.Identifier, ref) {
			return i, true
		}
	}
	return models.Issue{}, false
}

// Issues returns a copy of the issue collection.
func (a *App) Issues() []models.Issue {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Issue(nil), a.issues...)
}

func (a *App) issueIndexLocked(id string) int {
	for i := range a.issues {
		if a.issues[i].ID == id {
			return i
		}
	}
	return -1
}

// identifierNumber parses the numeric suffix of "LIN-123"; 0 if none.
func identifierNumber(identifier string) int {
	idx := strings.LastIndexByte(identifier, '-')
	if idx < 0 {
		return 0
	}
	n := 0
	for _, r := range identifier[idx+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func applyIssuePatch(issue *models.Issue, p models.IssuePatch) {
	if p.Title != nil {
		issue.Title = *p.Title
	}
	if p.Description != nil {
		issue.Description = p.Description
	}
	if p.Status != nil {
		issue.Status = *p.Status
	}
	if p.Priority != nil {
		issue.Priority = *p.Priority
	}
	if p.Labels != nil {
		issue.Labels = append([]string(nil), (*p.Labels)...)
	}
	if p.AssigneeID != nil {
		issue.AssigneeID = *p.AssigneeID
	}
	if p.ProjectID != nil {
		issue.ProjectID = *p.ProjectID
	}
	if p.DueDate != nil {
		issue.DueDate = *p.DueDate
	}
	if p.Estimate != nil {
		issue.Estimate = *p.Estimate
	}
	if p.Order != nil {
		issue.Order = *p.Order
	}
}

// --- Projects ---

// SetProjects replaces the project collection wholesale.
func (a *App) SetProjects(projects []models.Project) {
	a.mu.Lock()
	a.projects = append([]models.Project(nil), projects...)
	a.mu.Unlock()
	a.notify()
}

// AddProject appends a project. There is no delete operation.
func (a *App) AddProject(p models.Project) {
	a.mu.Lock()
	a.projects = append(a.projects, p)
	a.mu.Unlock()
	a.notify()
}

// NewProject builds and appends a project with defaults applied.
func (a *App) NewProject(name string, description *string, color string) (models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return models.Project{}, errors.New("project name must not be empty")
	}
	a.mu.Lock()
	now := a.now()
	if color == "" {
		color = "#8b5cf6"
	}
	p := models.Project{
		ID:          newULID(),
		Name:        name,
		Description: description,
		Color:       color,
		Status:      models.ProjectStatusPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.currentWorkspace != nil {
		p.WorkspaceID = a.currentWorkspace.ID
	}
	a.projects = append(a.projects, p)
	a.mu.Unlock()

	a.notify()
	return p, nil
}

// UpdateProject merges a partial patch into the matching project.
func (a *App) UpdateProject(id string, patch models.ProjectPatch) error {
	a.mu.Lock()
	idx := -1
	for i := range a.projects {
		if a.projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("update project %s: %w", id, ErrNotFound)
	}

	applyProjectPatch(&a.projects[idx], patch)
	a.projects[idx].UpdatedAt = a.now()
	if a.currentProject != nil && a.currentProject.ID == id {
		cur := a.projects[idx]
		a.currentProject = &cur
	}
	a.mu.Unlock()

	a.notify()
	return nil
}

// FindProject returns a copy of the project matching id or name.
func (a *App) FindProject(ref string) (models.Project, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.projects {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return models.Project{}, false
}

// Projects returns a copy of the project collection.
func (a *App) Projects() []models.Project {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Project(nil), a.projects...)
}

func applyProjectPatch(p *models.Project, patch models.ProjectPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Icon != nil {
		p.Icon = *patch.Icon
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	if patch.LeadID != nil {
		p.LeadID = *patch.LeadID
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.TargetDate != nil {
		p.TargetDate = *patch.TargetDate
	}
}

// --- Workspaces and users ---

// SetWorkspaces replaces the workspace collection.
func (a *App) SetWorkspaces(ws []models.Workspace) {
	a.mu.Lock()
	a.workspaces = append([]models.Workspace(nil), ws...)
	a.mu.Unlock()
	a.notify()
}

// SetUsers replaces the user collection.
func (a *App) SetUsers(users []models.User) {
	a.mu.Lock()
	a.users = append([]models.User(nil), users...)
	a.mu.Unlock()
	a.notify()
}

// Users returns a copy of the user collection.
func (a *App) Users() []models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.User(nil), a.users...)
}

// --- Selection and UI state ---

// SetCurrentWorkspace sets the current workspace.
func (a *App) SetCurrentWorkspace(ws *models.Workspace) {
	a.mu.Lock()
	a.currentWorkspace = ws
	a.mu.Unlock()
	a.notify()
}

// CurrentWorkspace returns the current workspace, or nil.
func (a *App) CurrentWorkspace() *models.Workspace {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.currentWorkspace == nil {
		return nil
	}
	ws := *a.currentWorkspace
	return &ws
}

// SetCurrentProject scopes all derived views to the given project.
// Pass nil to clear the scope.
func (a *App) SetCurrentProject(p *models.Project) {
	a.mu.Lock()
	a.currentProject = p
	a.mu.Unlock()
	a.notify()
}

// SetCurrentView switches between board and list presentation.
func (a *App) SetCurrentView(v models.ViewType) {
	a.mu.Lock()
	a.currentView = v
	a.mu.Unlock()
	a.notify()
}

// SetSelectedIssue sets the selected issue. Pass nil to clear.
func (a *App) SetSelectedIssue(issue *models.Issue) {
	a.mu.Lock()
	a.selectedIssue = issue
	a.mu.Unlock()
	a.notify()
}

// SelectedIssue returns a copy of the selected issue, or nil.
func (a *App) SelectedIssue() *models.Issue {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.selectedIssue == nil {
		return nil
	}
	sel := *a.selectedIssue
	return &sel
}

// ToggleSidebar flips the sidebar-collapsed flag and returns the new value.
func (a *App) ToggleSidebar() bool {
	a.mu.Lock()
	a.sidebarCollapsed = !a.sidebarCollapsed
	v := a.sidebarCollapsed
	a.mu.Unlock()
	a.notify()
	return v
}

// SetSidebarCollapsed sets the sidebar-collapsed flag directly.
func (a *App) SetSidebarCollapsed(collapsed bool) {
	a.mu.Lock()
	a.sidebarCollapsed = collapsed
	a.mu.Unlock()
	a.notify()
}

// SidebarCollapsed reports the sidebar-collapsed flag.
func (a *App) SidebarCollapsed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sidebarCollapsed
}

// SetCommandPaletteOpen sets the command palette flag.
func (a *App) SetCommandPaletteOpen(open bool) {
	a.mu.Lock()
	a.commandPaletteOpen = open
	a.mu.Unlock()
	a.notify()
}

// SetCreateIssueOpen sets the create-issue panel flag.
func (a *App) SetCreateIssueOpen(open bool) {
	a.mu.Lock()
	a.createIssueOpen = open
	a.mu.Unlock()
	a.notify()
}

// SetAiPanelOpen sets the AI panel flag.
func (a *App) SetAiPanelOpen(open bool) {
	a.mu.Lock()
	a.aiPanelOpen = open
	a.mu.Unlock()
	a.notify()
}

// SetFilter replaces the active filter.
func (a *App) SetFilter(f models.Filter) {
	a.mu.Lock()
	a.filter = f
	a.mu.Unlock()
	a.notify()
}

// SetSearchQuery replaces the free-text search query.
func (a *App) SetSearchQuery(q string) {
	a.mu.Lock()
	a.searchQuery = q
	a.mu.Unlock()
	a.notify()
}

// ClearFilters resets the filter and the search query together.
func (a *App) ClearFilters() {
	a.mu.Lock()
	a.filter = models.Filter{}
	a.searchQuery = ""
	a.mu.Unlock()
	a.notify()
}
