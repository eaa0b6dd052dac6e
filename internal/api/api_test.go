package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/kan/internal/ai"
	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/store"
)

func strPtr(s string) *string { return &s }

type fakeCompleter struct {
	responses map[string]string
}

func (f *fakeCompleter) Complete(_ context.Context, system, _ string) (string, error) {
	for marker, resp := range f.responses {
		if strings.Contains(system, marker) {
			return resp, nil
		}
	}
	return "", assert.AnError
}

func newTestServer(t *testing.T, completer ai.Completer) (http.Handler, *store.App) {
	t.Helper()
	app := store.New()
	ws := models.Workspace{ID: "ws_test", Name: "Linear Clone", Slug: "linear"}
	app.SetWorkspaces([]models.Workspace{ws})
	app.SetCurrentWorkspace(&ws)

	srv := NewServer(app, ai.New(completer), nil)
	return srv.Router(), app
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestCreateIssue_EndToEnd(t *testing.T) {
	h, _ := newTestServer(t, nil)

	w := doJSON(t, h, "POST", "/api/v1/issues", `{"title": "Fix login bug"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode[models.Issue](t, w)
	assert.Equal(t, "LIN-1", created.Identifier)
	assert.Equal(t, models.StatusBacklog, created.Status)
	assert.Equal(t, models.PriorityMedium, created.Priority)

	// The new issue heads the list
	w = doJSON(t, h, "GET", "/api/v1/issues", "")
	require.Equal(t, http.StatusOK, w.Code)
	issues := decode[[]models.Issue](t, w)
	require.NotEmpty(t, issues)
	assert.Equal(t, created.ID, issues[0].ID)

	// And appears in the board's backlog bucket
	w = doJSON(t, h, "GET", "/api/v1/board", "")
	require.Equal(t, http.StatusOK, w.Code)
	grouped := decode[map[models.Status][]models.Issue](t, w)
	require.Contains(t, grouped, models.StatusBacklog)
	assert.Equal(t, created.ID, grouped[models.StatusBacklog][0].ID)
}

func TestCreateIssue_Validation(t *testing.T) {
	h, _ := newTestServer(t, nil)

	cases := []struct {
		name string
		body string
	}{
		{"empty title", `{"title": "  "}`},
		{"invalid status", `{"title": "T", "status": "archived"}`},
		{"invalid priority", `{"title": "T", "priority": "asap"}`},
		{"bad JSON", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, h, "POST", "/api/v1/issues", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListIssues_QueryFilters(t *testing.T) {
	h, app := newTestServer(t, nil)

	_, err := app.CreateIssue("Login bug", store.CreateOptions{
		Status: models.StatusTodo, Priority: models.PriorityHigh, Labels: []string{"bug"},
	})
	require.NoError(t, err)
	_, err = app.CreateIssue("Dark mode", store.CreateOptions{
		Status: models.StatusBacklog, Priority: models.PriorityLow, Labels: []string{"feature"},
	})
	require.NoError(t, err)

	w := doJSON(t, h, "GET", "/api/v1/issues?status=todo&label=bug", "")
	require.Equal(t, http.StatusOK, w.Code)
	issues := decode[[]models.Issue](t, w)
	require.Len(t, issues, 1)
	assert.Equal(t, "Login bug", issues[0].Title)

	w = doJSON(t, h, "GET", "/api/v1/issues?search=dark", "")
	issues = decode[[]models.Issue](t, w)
	require.Len(t, issues, 1)
	assert.Equal(t, "Dark mode", issues[0].Title)

	// Ad-hoc query filters never touch shared state
	w = doJSON(t, h, "GET", "/api/v1/issues", "")
	issues = decode[[]models.Issue](t, w)
	assert.Len(t, issues, 2)
}

func TestGetUpdateDeleteIssue(t *testing.T) {
	h, app := newTestServer(t, nil)
	issue, err := app.CreateIssue("Patchable", store.CreateOptions{})
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		w := doJSON(t, h, "GET", "/api/v1/issues/"+issue.ID, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, issue.ID, decode[models.Issue](t, w).ID)
	})

	t.Run("get unknown", func(t *testing.T) {
		w := doJSON(t, h, "GET", "/api/v1/issues/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("patch", func(t *testing.T) {
		w := doJSON(t, h, "PATCH", "/api/v1/issues/"+issue.ID, `{"title": "Patched", "priority": "urgent"}`)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[models.Issue](t, w)
		assert.Equal(t, "Patched", got.Title)
		assert.Equal(t, models.PriorityUrgent, got.Priority)
	})

	t.Run("patch invalid status", func(t *testing.T) {
		w := doJSON(t, h, "PATCH", "/api/v1/issues/"+issue.ID, `{"status": "archived"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch unknown", func(t *testing.T) {
		w := doJSON(t, h, "PATCH", "/api/v1/issues/nope", `{"title": "x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, h, "DELETE", "/api/v1/issues/"+issue.ID, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, h, "DELETE", "/api/v1/issues/"+issue.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMoveIssue(t *testing.T) {
	h, app := newTestServer(t, nil)
	issue, err := app.CreateIssue("Movable", store.CreateOptions{})
	require.NoError(t, err)

	w := doJSON(t, h, "POST", "/api/v1/issues/"+issue.ID+"/move", `{"status": "done"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusDone, decode[models.Issue](t, w).Status)

	w = doJSON(t, h, "POST", "/api/v1/issues/"+issue.ID+"/move", `{"status": "archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, "POST", "/api/v1/issues/nope/move", `{"status": "done"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoardDrop(t *testing.T) {
	h, app := newTestServer(t, nil)
	issue, err := app.CreateIssue("Draggable", store.CreateOptions{Status: models.StatusTodo})
	require.NoError(t, err)

	w := doJSON(t, h, "POST", "/api/v1/board/drop",
		`{"active_id": "`+issue.ID+`", "over_id": "in-progress"}`)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[map[string]any](t, w)
	assert.Equal(t, true, res["moved"])
	assert.Equal(t, "in-progress", res["status"])

	// Dropping back on its own column is a cancel
	w = doJSON(t, h, "POST", "/api/v1/board/drop",
		`{"active_id": "`+issue.ID+`", "over_id": "in-progress"}`)
	res = decode[map[string]any](t, w)
	assert.Equal(t, false, res["moved"])
}

func TestProjects(t *testing.T) {
	h, _ := newTestServer(t, nil)

	w := doJSON(t, h, "POST", "/api/v1/projects", `{"name": "Mobile App", "color": "#ff0000"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	p := decode[models.Project](t, w)
	assert.Equal(t, models.ProjectStatusPlanned, p.Status)

	w = doJSON(t, h, "GET", "/api/v1/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, "PATCH", "/api/v1/projects/"+p.ID, `{"status": "in-progress"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ProjectStatusInProgress, decode[models.Project](t, w).Status)

	w = doJSON(t, h, "GET", "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Project](t, w), 1)

	w = doJSON(t, h, "POST", "/api/v1/projects", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkspaceAndUsers(t *testing.T) {
	h, app := newTestServer(t, nil)
	app.SetUsers([]models.User{{ID: "u1", Name: strPtr("Alex"), Email: "alex@example.com"}})

	w := doJSON(t, h, "GET", "/api/v1/workspace", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "linear", decode[models.Workspace](t, w).Slug)

	w = doJSON(t, h, "GET", "/api/v1/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 1)
}

func TestAIAction(t *testing.T) {
	t.Run("no backend", func(t *testing.T) {
		h, _ := newTestServer(t, nil)
		w := doJSON(t, h, "POST", "/api/v1/ai", `{"action": "suggestLabels", "title": "T"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("detectDuplicates with no titles needs no backend", func(t *testing.T) {
		h, _ := newTestServer(t, nil)
		w := doJSON(t, h, "POST", "/api/v1/ai", `{"action": "detectDuplicates", "title": "T"}`)
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[aiResponse](t, w)
		assert.True(t, res.Success)
	})

	t.Run("suggestLabels", func(t *testing.T) {
		h, _ := newTestServer(t, &fakeCompleter{responses: map[string]string{
			"suggest labels": `["bug", "frontend"]`,
		}})
		w := doJSON(t, h, "POST", "/api/v1/ai", `{"action": "suggestLabels", "title": "Fix login bug"}`)
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[aiResponse](t, w)
		assert.True(t, res.Success)
		assert.Equal(t, []any{"bug", "frontend"}, res.Data)
	})

	t.Run("suggestPriority falls back on backend failure", func(t *testing.T) {
		h, _ := newTestServer(t, &fakeCompleter{})
		w := doJSON(t, h, "POST", "/api/v1/ai", `{"action": "suggestPriority", "title": "T"}`)
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[aiResponse](t, w)
		assert.True(t, res.Success)
		assert.Equal(t, "medium", res.Data)
	})

	t.Run("improveDescription", func(t *testing.T) {
		h, _ := newTestServer(t, &fakeCompleter{responses: map[string]string{
			"improve issue-tracker task descriptions": "A clearer description.",
		}})
		w := doJSON(t, h, "POST", "/api/v1/ai", `{"action": "improveDescription", "title": "T", "description": "rough"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "A clearer description.", decode[aiResponse](t, w).Data)
	})

	t.Run("unknown action", func(t *testing.T) {
		h, _ := newTestServer(t, &fakeCompleter{})
		w := doJSON(t, h, "POST", "/api/v1/ai", `{"action": "summarize", "title": "T"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t, nil)

	req := httptest.NewRequest("OPTIONS", "/api/v1/issues", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
