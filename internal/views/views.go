// Package views computes presentation-ready issue sets from store
// snapshots. All functions are pure: calling twice with the same
// snapshot yields structurally equal output.
package views

import (
	"sort"
	"strings"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/store"
)

// FilteredIssues applies, in order: project scope, free-text search,
// then the status/priority/label/assignee filter dimensions. Dimensions
// are conjunctive; values within a dimension are disjunctive. An empty
// dimension imposes no constraint.
func FilteredIssues(s store.Snapshot) []models.Issue {
	out := make([]models.Issue, 0, len(s.Issues))
	for _, issue := range s.Issues {
		if matches(issue, s) {
			out = append(out, issue)
		}
	}
	return out
}

func matches(issue models.Issue, s store.Snapshot) bool {
	if s.CurrentProject != nil {
		if issue.ProjectID == nil || *issue.ProjectID != s.CurrentProject.ID {
			return false
		}
	}

	if s.SearchQuery != "" {
		q := strings.ToLower(s.SearchQuery)
		if !strings.Contains(strings.ToLower(issue.Title), q) &&
			!strings.Contains(strings.ToLower(issue.Identifier), q) &&
			!descriptionContains(issue.Description, q) {
			return false
		}
	}

	f := s.Filter
	if len(f.Status) > 0 && !containsStatus(f.Status, issue.Status) {
		return false
	}
	if len(f.Priority) > 0 && !containsPriority(f.Priority, issue.Priority) {
		return false
	}
	if len(f.Labels) > 0 && !sharesLabel(f.Labels, issue.Labels) {
		return false
	}
	if len(f.Assignee) > 0 {
		if issue.AssigneeID == nil || !containsString(f.Assignee, *issue.AssigneeID) {
			return false
		}
	}
	if len(f.Project) > 0 {
		if issue.ProjectID == nil || !containsString(f.Project, *issue.ProjectID) {
			return false
		}
	}
	return true
}

// descriptionContains reports whether the description contains q.
// A nil description never matches.
func descriptionContains(desc *string, q string) bool {
	return desc != nil && strings.Contains(strings.ToLower(*desc), q)
}

func containsStatus(haystack []models.Status, needle models.Status) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsPriority(haystack []models.Priority, needle models.Priority) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// sharesLabel reports whether the issue shares at least one label with
// the filter set.
func sharesLabel(filter, labels []string) bool {
	for _, f := range filter {
		if containsString(labels, f) {
			return true
		}
	}
	return false
}

// Grouped holds the filtered issues partitioned into the six fixed
// status buckets.
type Grouped map[models.Status][]models.Issue

// IssuesByStatus partitions the filtered issue set by status. Each
// issue keeps its position from the filtered sequence (stable
// partition); buckets are never nil.
func IssuesByStatus(s store.Snapshot) Grouped {
	g := make(Grouped, len(models.AllStatuses))
	for _, status := range models.AllStatuses {
		g[status] = []models.Issue{}
	}
	for _, issue := range FilteredIssues(s) {
		g[issue.Status] = append(g[issue.Status], issue)
	}
	return g
}

// SortedForList orders the filtered issues for the list view: by
// priority rank (urgent first), then by the stable per-status order.
func SortedForList(s store.Snapshot) []models.Issue {
	issues := FilteredIssues(s)
	sort.SliceStable(issues, func(i, j int) bool {
		if ri, rj := issues[i].Priority.Rank(), issues[j].Priority.Rank(); ri != rj {
			return ri < rj
		}
		return issues[i].Order < issues[j].Order
	})
	return issues
}
