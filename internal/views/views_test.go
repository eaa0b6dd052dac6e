package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/store"
)

func strPtr(s string) *string { return &s }

func testSnapshot() store.Snapshot {
	return store.Snapshot{
		Issues: []models.Issue{
			{
				ID: "i1", Identifier: "LIN-1", Title: "Fix login bug",
				Description: strPtr("Crash on submit"),
				Status:      models.StatusTodo, Priority: models.PriorityHigh,
				Labels: []string{"bug", "frontend"}, AssigneeID: strPtr("u1"), ProjectID: strPtr("p1"),
			},
			{
				ID: "i2", Identifier: "LIN-2", Title: "Add dark mode",
				Status: models.StatusBacklog, Priority: models.PriorityLow,
				Labels: []string{"feature", "design"}, ProjectID: strPtr("p1"),
			},
			{
				ID: "i3", Identifier: "LIN-3", Title: "Improve API docs",
				Description: strPtr("Document the auth flow"),
				Status:      models.StatusTodo, Priority: models.PriorityMedium,
				Labels: []string{"documentation"}, AssigneeID: strPtr("u2"), ProjectID: strPtr("p2"),
			},
			{
				ID: "i4", Identifier: "LIN-4", Title: "Ship v2 login flow",
				Status: models.StatusDone, Priority: models.PriorityUrgent,
				Labels: []string{"feature"},
			},
		},
	}
}

func ids(issues []models.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.ID
	}
	return out
}

func TestFilteredIssues_NoConstraints(t *testing.T) {
	s := testSnapshot()
	got := FilteredIssues(s)
	assert.Equal(t, []string{"i1", "i2", "i3", "i4"}, ids(got))
}

func TestFilteredIssues_ProjectScope(t *testing.T) {
	s := testSnapshot()
	s.CurrentProject = &models.Project{ID: "p1"}

	got := FilteredIssues(s)
	// i4 has no project reference and is excluded under a project scope
	assert.Equal(t, []string{"i1", "i2"}, ids(got))
}

func TestFilteredIssues_Search(t *testing.T) {
	t.Run("matches title case-insensitively", func(t *testing.T) {
		s := testSnapshot()
		s.SearchQuery = "LOGIN"
		assert.Equal(t, []string{"i1", "i4"}, ids(FilteredIssues(s)))
	})

	t.Run("matches identifier", func(t *testing.T) {
		s := testSnapshot()
		s.SearchQuery = "lin-3"
		assert.Equal(t, []string{"i3"}, ids(FilteredIssues(s)))
	})

	t.Run("matches description, nil never matches", func(t *testing.T) {
		s := testSnapshot()
		s.SearchQuery = "auth flow"
		assert.Equal(t, []string{"i3"}, ids(FilteredIssues(s)))
	})
}

func TestFilteredIssues_Dimensions(t *testing.T) {
	t.Run("status OR within dimension", func(t *testing.T) {
		s := testSnapshot()
		s.Filter.Status = []models.Status{models.StatusTodo, models.StatusDone}
		assert.Equal(t, []string{"i1", "i3", "i4"}, ids(FilteredIssues(s)))
	})

	t.Run("priority", func(t *testing.T) {
		s := testSnapshot()
		s.Filter.Priority = []models.Priority{models.PriorityUrgent}
		assert.Equal(t, []string{"i4"}, ids(FilteredIssues(s)))
	})

	t.Run("labels share at least one", func(t *testing.T) {
		s := testSnapshot()
		s.Filter.Labels = []string{"feature", "bug"}
		assert.Equal(t, []string{"i1", "i2", "i4"}, ids(FilteredIssues(s)))
	})

	t.Run("assignee requires an assignee", func(t *testing.T) {
		s := testSnapshot()
		s.Filter.Assignee = []string{"u1", "u2"}
		assert.Equal(t, []string{"i1", "i3"}, ids(FilteredIssues(s)))
	})

	t.Run("dimensions are conjunctive", func(t *testing.T) {
		s := testSnapshot()
		s.Filter.Status = []models.Status{models.StatusTodo}
		s.Filter.Labels = []string{"bug"}
		assert.Equal(t, []string{"i1"}, ids(FilteredIssues(s)))
	})

	t.Run("returned issues satisfy every dimension", func(t *testing.T) {
		s := testSnapshot()
		s.Filter = models.Filter{
			Status:   []models.Status{models.StatusTodo, models.StatusBacklog},
			Priority: []models.Priority{models.PriorityHigh, models.PriorityLow},
		}
		for _, issue := range FilteredIssues(s) {
			assert.Contains(t, s.Filter.Status, issue.Status)
			assert.Contains(t, s.Filter.Priority, issue.Priority)
		}
	})
}

func TestFilteredIssues_Idempotent(t *testing.T) {
	s := testSnapshot()
	s.SearchQuery = "login"
	s.Filter.Status = []models.Status{models.StatusTodo}

	first := FilteredIssues(s)
	second := FilteredIssues(s)
	assert.Equal(t, first, second)
}

func TestIssuesByStatus_ExactPartition(t *testing.T) {
	s := testSnapshot()
	grouped := IssuesByStatus(s)

	// Six fixed buckets, never nil
	require.Len(t, grouped, 6)
	for _, status := range models.AllStatuses {
		_, ok := grouped[status]
		require.True(t, ok, "missing bucket %s", status)
	}

	// Union of buckets equals the filtered set, each issue in exactly one
	total := 0
	seen := make(map[string]bool)
	for status, bucket := range grouped {
		for _, issue := range bucket {
			assert.Equal(t, status, issue.Status)
			assert.False(t, seen[issue.ID], "issue %s in two buckets", issue.ID)
			seen[issue.ID] = true
			total++
		}
	}
	assert.Equal(t, len(FilteredIssues(s)), total)
}

func TestIssuesByStatus_StablePartition(t *testing.T) {
	s := testSnapshot()
	grouped := IssuesByStatus(s)

	// i1 precedes i3 in the filtered sequence; the todo bucket keeps that order
	assert.Equal(t, []string{"i1", "i3"}, ids(grouped[models.StatusTodo]))
}

func TestSortedForList(t *testing.T) {
	s := testSnapshot()
	got := SortedForList(s)
	// urgent, high, medium, low
	assert.Equal(t, []string{"i4", "i1", "i3", "i2"}, ids(got))
}
