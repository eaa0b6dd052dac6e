package api

import (
	"encoding/json"
	"net/http"
)

// aiRequest is the wire contract with the presentation layer: one
// request per action, carrying the action identifier and its fields.
type aiRequest struct {
	Action         string   `json:"action"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ExistingTitles []string `json:"existingTitles"`
}

// aiResponse is the success/error envelope for AI actions.
type aiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) aiAction(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, aiResponse{Error: "invalid JSON"})
		return
	}

	// detectDuplicates with no existing titles short-circuits before the
	// availability check; it never needs a backend.
	if req.Action == "detectDuplicates" && len(req.ExistingTitles) == 0 {
		writeJSON(w, http.StatusOK, aiResponse{Success: true, Data: []string{}})
		return
	}

	if !s.ai.Available() {
		writeJSON(w, http.StatusServiceUnavailable, aiResponse{Error: "AI backend not configured"})
		return
	}

	ctx := r.Context()
	switch req.Action {
	case "suggestLabels":
		res := s.ai.SuggestLabels(ctx, req.Title, req.Description)
		writeJSON(w, http.StatusOK, aiResponse{Success: true, Data: res.Items})
	case "suggestPriority":
		p := s.ai.SuggestPriority(ctx, req.Title, req.Description)
		writeJSON(w, http.StatusOK, aiResponse{Success: true, Data: string(p)})
	case "breakdown":
		res := s.ai.Breakdown(ctx, req.Title, req.Description)
		writeJSON(w, http.StatusOK, aiResponse{Success: true, Data: res.Items})
	case "improveDescription":
		improved := s.ai.ImproveDescription(ctx, req.Title, req.Description)
		writeJSON(w, http.StatusOK, aiResponse{Success: true, Data: improved})
	case "detectDuplicates":
		res := s.ai.DetectDuplicates(ctx, req.Title, req.ExistingTitles)
		writeJSON(w, http.StatusOK, aiResponse{Success: true, Data: res.Items})
	default:
		writeJSON(w, http.StatusBadRequest, aiResponse{Error: "invalid action"})
	}
}
