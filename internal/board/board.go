// Package board translates drag-and-drop release events into status
// moves on the store, or no-ops.
package board

import (
	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/store"
)

// DropEvent is an "item released over target" event from the drag
// layer. OverID is empty when the item was released outside any target;
// otherwise it names either a visible column or another issue card.
type DropEvent struct {
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

// Handler resolves drop events against a store.
type Handler struct {
	app *store.App
}

// NewHandler creates a drop handler over the given store.
func NewHandler(app *store.App) *Handler {
	return &Handler{app: app}
}

// HandleDrop resolves the drop target and moves the dragged issue if
// the resolved status differs from its current one. Dropping on the
// issue's own column, on a card in the same column, or nowhere is a
// pure cancel: zero store mutations. A stale ActiveID is likewise a
// no-op rather than an error.
func (h *Handler) HandleDrop(ev DropEvent) (moved bool, to models.Status, err error) {
	if ev.OverID == "" {
		return false, "", nil
	}

	dragged, ok := h.app.GetIssue(ev.ActiveID)
	if !ok {
		return false, "", nil
	}

	// Column drop: the target is one of the five visible board columns.
	if target := columnStatus(ev.OverID); target != "" {
		if dragged.Status == target {
			return false, "", nil
		}
		if err := h.app.MoveIssue(dragged.ID, target); err != nil {
			return false, "", err
		}
		return true, target, nil
	}

	// Card drop: resolve the target status from the issue under the cursor.
	over, ok := h.app.GetIssue(ev.OverID)
	if !ok || dragged.Status == over.Status {
		return false, "", nil
	}
	if err := h.app.MoveIssue(dragged.ID, over.Status); err != nil {
		return false, "", err
	}
	return true, over.Status, nil
}

// columnStatus maps a drop-target id to a visible board column, or ""
// if the id is not a column. Cancelled is never offered as a column.
func columnStatus(id string) models.Status {
	for _, s := range models.BoardStatuses {
		if string(s) == id {
			return s
		}
	}
	return ""
}
