package models

import "time"

// ProjectStatus represents the lifecycle stage of a project.
type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusPaused     ProjectStatus = "paused"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// Project groups issues under a shared goal within a workspace.
type Project struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description *string       `json:"description" yaml:"description"`
	Icon        *string       `json:"icon" yaml:"icon"`
	Color       string        `json:"color" yaml:"color"`
	WorkspaceID string        `json:"workspace_id" yaml:"workspace_id"`
	LeadID      *string       `json:"lead_id" yaml:"lead_id"`
	Status      ProjectStatus `json:"status" yaml:"status"`
	StartDate   *time.Time    `json:"start_date" yaml:"start_date"`
	TargetDate  *time.Time    `json:"target_date" yaml:"target_date"`
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" yaml:"updated_at"`
}

// ProjectPatch is a partial update applied to a project.
type ProjectPatch struct {
	Name        *string
	Description **string
	Icon        **string
	Color       *string
	LeadID      **string
	Status      *ProjectStatus
	StartDate   **time.Time
	TargetDate  **time.Time
}
