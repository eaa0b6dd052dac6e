package models

// ViewType selects how issues are presented.
type ViewType string

const (
	ViewBoard ViewType = "board"
	ViewList  ViewType = "list"
)

// Filter is a transient predicate specification over the issue collection.
// An empty dimension imposes no constraint on that dimension.
type Filter struct {
	Status   []Status   `json:"status,omitempty"`
	Priority []Priority `json:"priority,omitempty"`
	Labels   []string   `json:"labels,omitempty"`
	Assignee []string   `json:"assignee,omitempty"`
	Project  []string   `json:"project,omitempty"`
}

// Empty reports whether the filter constrains nothing.
func (f Filter) Empty() bool {
	return len(f.Status) == 0 && len(f.Priority) == 0 && len(f.Labels) == 0 &&
		len(f.Assignee) == 0 && len(f.Project) == 0
}
