// Package ai maps issue text to structured suggestions from a
// completion backend. Every single-action call degrades to a documented
// fallback rather than surfacing an error; only the umbrella Suggest
// flow can fail, and only when no backend is configured.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joescharf/kan/internal/models"
)

// ErrUnavailable is returned by Suggest when no completer is configured.
var ErrUnavailable = errors.New("no AI backend configured")

// Completer is the black-box text-completion service behind the
// orchestrator. Production code uses AnthropicCompleter; tests inject
// fakes.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ListResult is the outcome of a list-producing action. Structured is
// false when the response could not be parsed as JSON and Items holds
// the cleaned raw text as a single degenerate entry.
type ListResult struct {
	Items      []string
	Raw        string
	Structured bool
}

// Orchestrator dispatches suggestion actions to a Completer and parses
// the responses. The zero-value orchestrator (nil completer) answers
// every action with its fallback.
type Orchestrator struct {
	c Completer
}

// New creates an orchestrator over the given completer. A nil completer
// is allowed and puts the orchestrator in degraded mode.
func New(c Completer) *Orchestrator {
	return &Orchestrator{c: c}
}

// Available reports whether a completion backend is configured.
func (o *Orchestrator) Available() bool {
	return o.c != nil
}

// SuggestLabels suggests up to three labels from the fixed vocabulary.
// Any backend failure yields an empty result.
func (o *Orchestrator) SuggestLabels(ctx context.Context, title, description string) ListResult {
	if o.c == nil {
		return ListResult{Items: []string{}}
	}
	system, user := buildLabelsPrompt(title, description)
	text, err := o.c.Complete(ctx, system, user)
	if err != nil {
		return ListResult{Items: []string{}}
	}
	res := parseList(stripFence(text))
	if res.Structured && len(res.Items) > 3 {
		res.Items = res.Items[:3]
	}
	return res
}

// SuggestPriority suggests a priority for the issue. The response is
// lower-cased, trimmed, and validated against the priority vocabulary;
// anything else, including backend failure, normalizes to medium.
func (o *Orchestrator) SuggestPriority(ctx context.Context, title, description string) models.Priority {
	if o.c == nil {
		return models.PriorityMedium
	}
	system, user := buildPriorityPrompt(title, description)
	text, err := o.c.Complete(ctx, system, user)
	if err != nil {
		return models.PriorityMedium
	}
	return normalizePriority(stripFence(text))
}

// Breakdown splits the issue into up to five subtask titles. Any
// backend failure yields an empty result; an unparseable response
// degrades to a single raw-text entry.
func (o *Orchestrator) Breakdown(ctx context.Context, title, description string) ListResult {
	if o.c == nil {
		return ListResult{Items: []string{}}
	}
	system, user := buildBreakdownPrompt(title, description)
	text, err := o.c.Complete(ctx, system, user)
	if err != nil {
		return ListResult{Items: []string{}}
	}
	res := parseList(stripFence(text))
	if res.Structured && len(res.Items) > 5 {
		res.Items = res.Items[:5]
	}
	return res
}

// ImproveDescription rewrites a rough description. Any failure returns
// the original description unchanged.
func (o *Orchestrator) ImproveDescription(ctx context.Context, title, description string) string {
	if o.c == nil {
		return description
	}
	system, user := buildImprovePrompt(title, description)
	text, err := o.c.Complete(ctx, system, user)
	if err != nil {
		return description
	}
	cleaned := stripFence(text)
	if cleaned == "" {
		return description
	}
	return cleaned
}

// DetectDuplicates returns the existing titles judged duplicates of the
// new title. An empty existing-titles slice short-circuits to an empty
// result without issuing a request.
func (o *Orchestrator) DetectDuplicates(ctx context.Context, title string, existingTitles []string) ListResult {
	if len(existingTitles) == 0 || o.c == nil {
		return ListResult{Items: []string{}}
	}
	system, user := buildDuplicatesPrompt(title, existingTitles)
	text, err := o.c.Complete(ctx, system, user)
	if err != nil {
		return ListResult{Items: []string{}}
	}
	return parseList(stripFence(text))
}

// Suggestion bundles the results of the combined suggest flow.
type Suggestion struct {
	Labels     ListResult
	Priority   models.Priority
	Duplicates ListResult
}

// Suggest dispatches labels, priority, and duplicate detection
// concurrently and joins when all have settled. A failure in one action
// never aborts the others; each applies its own fallback. The only
// surfaced failure is a missing backend.
func (o *Orchestrator) Suggest(ctx context.Context, title, description string, existingTitles []string) (Suggestion, error) {
	if o.c == nil {
		return Suggestion{}, ErrUnavailable
	}

	var s Suggestion
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Labels = o.SuggestLabels(ctx, title, description)
		return nil
	})
	g.Go(func() error {
		s.Priority = o.SuggestPriority(ctx, title, description)
		return nil
	})
	g.Go(func() error {
		s.Duplicates = o.DetectDuplicates(ctx, title, existingTitles)
		return nil
	})
	_ = g.Wait()
	return s, nil
}

// stripFence removes enclosing markdown code fences from a response.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) > 1 {
		text = lines[1]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// parseList parses cleaned text as a JSON string array. A failed parse
// degrades to a single unstructured entry holding the cleaned text.
func parseList(cleaned string) ListResult {
	var items []string
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		if cleaned == "" {
			return ListResult{Items: []string{}, Raw: cleaned}
		}
		return ListResult{Items: []string{cleaned}, Raw: cleaned}
	}
	if items == nil {
		items = []string{}
	}
	return ListResult{Items: items, Raw: cleaned, Structured: true}
}

// normalizePriority validates a priority token against the five-value
// vocabulary, defaulting to medium.
func normalizePriority(text string) models.Priority {
	p := models.Priority(strings.ToLower(strings.TrimSpace(text)))
	if p.Valid() {
		return p
	}
	return models.PriorityMedium
}
