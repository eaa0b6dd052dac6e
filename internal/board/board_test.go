package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/store"
)

func newTestBoard(t *testing.T) (*Handler, *store.App, models.Issue, models.Issue) {
	t.Helper()
	app := store.New()

	todo, err := app.CreateIssue("In todo", store.CreateOptions{Status: models.StatusTodo})
	require.NoError(t, err)
	done, err := app.CreateIssue("Already done", store.CreateOptions{Status: models.StatusDone})
	require.NoError(t, err)

	return NewHandler(app), app, todo, done
}

func TestHandleDrop_NoTarget(t *testing.T) {
	h, app, todo, _ := newTestBoard(t)

	var fired int
	app.Subscribe(func() { fired++ })

	moved, _, err := h.HandleDrop(DropEvent{ActiveID: todo.ID})
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Zero(t, fired, "no store mutations on cancel")
}

func TestHandleDrop_ColumnTarget(t *testing.T) {
	h, app, todo, _ := newTestBoard(t)

	moved, to, err := h.HandleDrop(DropEvent{ActiveID: todo.ID, OverID: "in-progress"})
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, models.StatusInProgress, to)

	got, ok := app.GetIssue(todo.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestHandleDrop_OwnColumnIsCancel(t *testing.T) {
	h, app, todo, _ := newTestBoard(t)

	var fired int
	app.Subscribe(func() { fired++ })

	moved, _, err := h.HandleDrop(DropEvent{ActiveID: todo.ID, OverID: "todo"})
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Zero(t, fired)
}

func TestHandleDrop_CardTarget(t *testing.T) {
	h, app, todo, done := newTestBoard(t)

	moved, to, err := h.HandleDrop(DropEvent{ActiveID: todo.ID, OverID: done.ID})
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, models.StatusDone, to)

	got, ok := app.GetIssue(todo.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusDone, got.Status)
}

func TestHandleDrop_CardInSameColumnIsCancel(t *testing.T) {
	h, app, todo, _ := newTestBoard(t)

	other, err := app.CreateIssue("Also todo", store.CreateOptions{Status: models.StatusTodo})
	require.NoError(t, err)

	var fired int
	app.Subscribe(func() { fired++ })

	moved, _, err := h.HandleDrop(DropEvent{ActiveID: todo.ID, OverID: other.ID})
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Zero(t, fired)
}

func TestHandleDrop_StaleDraggedIssue(t *testing.T) {
	h, _, _, _ := newTestBoard(t)

	moved, _, err := h.HandleDrop(DropEvent{ActiveID: "gone", OverID: "done"})
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestHandleDrop_UnknownTargetIsCancel(t *testing.T) {
	h, app, todo, _ := newTestBoard(t)

	var fired int
	app.Subscribe(func() { fired++ })

	// Cancelled is not a board column, and neither is a random id
	for _, over := range []string{"cancelled", "mystery-id"} {
		moved, _, err := h.HandleDrop(DropEvent{ActiveID: todo.ID, OverID: over})
		require.NoError(t, err)
		assert.False(t, moved)
	}
	assert.Zero(t, fired)
}
