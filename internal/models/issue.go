package models

import "time"

// Status represents the lifecycle stage of an issue.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusInReview   Status = "in-review"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every status in board order.
var AllStatuses = []Status{
	StatusBacklog,
	StatusTodo,
	StatusInProgress,
	StatusInReview,
	StatusDone,
	StatusCancelled,
}

// BoardStatuses lists the statuses exposed as drag-and-drop board columns.
// Cancelled is reachable only through direct status edits.
var BoardStatuses = []Status{
	StatusBacklog,
	StatusTodo,
	StatusInProgress,
	StatusInReview,
	StatusDone,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority represents the urgency of an issue.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = "no-priority"
)

// AllPriorities lists every priority from most to least urgent.
var AllPriorities = []Priority{
	PriorityUrgent,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
	PriorityNone,
}

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	for _, v := range AllPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Rank returns the sort rank of a priority (urgent first).
func (p Priority) Rank() int {
	for i, v := range AllPriorities {
		if p == v {
			return i
		}
	}
	return len(AllPriorities)
}

// Issue represents a trackable unit of work.
type Issue struct {
	ID          string     `json:"id" yaml:"id"`
	Identifier  string     `json:"identifier" yaml:"identifier"` // e.g. "LIN-123"
	Title       string     `json:"title" yaml:"title"`
	Description *string    `json:"description" yaml:"description"`
	Status      Status     `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Labels      []string   `json:"labels" yaml:"labels"`
	AssigneeID  *string    `json:"assignee_id" yaml:"assignee_id"`
	ProjectID   *string    `json:"project_id" yaml:"project_id"`
	WorkspaceID string     `json:"workspace_id" yaml:"workspace_id"`
	CreatedBy   string     `json:"created_by" yaml:"created_by"`
	DueDate     *time.Time `json:"due_date" yaml:"due_date"`
	Estimate    *int       `json:"estimate" yaml:"estimate"` // story points
	ParentID    *string    `json:"parent_id" yaml:"parent_id"`
	Order       int        `json:"order" yaml:"order"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// IssuePatch is a partial update applied to an issue. Nil fields are
// left untouched.
type IssuePatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Labels      *[]string
	AssigneeID  **string
	ProjectID   **string
	DueDate     **time.Time
	Estimate    **int
	Order       *int
}
