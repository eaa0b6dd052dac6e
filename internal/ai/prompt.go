package ai

import (
	"fmt"
	"strings"

	"github.com/joescharf/kan/internal/models"
)

// buildLabelsPrompt constructs the prompts for label suggestion.
func buildLabelsPrompt(title, description string) (system, user string) {
	system = fmt.Sprintf(`You suggest labels for issue-tracker tasks. Based on the task title and description, suggest 2-3 relevant labels from this list: [%s].

Return only a JSON array of label strings, nothing else. Example: ["bug", "urgent"]`,
		strings.Join(models.AvailableLabels, ", "))

	user = taskBlock(title, description)
	return
}

// buildPriorityPrompt constructs the prompts for priority suggestion.
func buildPriorityPrompt(title, description string) (system, user string) {
	system = `You triage issue-tracker tasks. Based on the task, suggest a priority level: urgent, high, medium, low, or no-priority.

Return only one word from the options above.`

	user = taskBlock(title, description)
	return
}

// buildBreakdownPrompt constructs the prompts for task breakdown.
func buildBreakdownPrompt(title, description string) (system, user string) {
	system = `You break issue-tracker tasks into smaller, actionable subtasks (maximum 5).

Return only a JSON array of task title strings. Example: ["Set up database schema", "Create API endpoints"]`

	user = taskBlock(title, description)
	return
}

// buildImprovePrompt constructs the prompts for description rewriting.
func buildImprovePrompt(title, description string) (system, user string) {
	system = `You improve issue-tracker task descriptions to be clearer and more actionable. Keep it concise but comprehensive.

Return only the improved description text, nothing else.`

	if description == "" {
		description = "No description provided"
	}
	var sb strings.Builder
	sb.WriteString("Title: ")
	sb.WriteString(title)
	sb.WriteString("\nCurrent description: ")
	sb.WriteString(description)
	user = sb.String()
	return
}

// buildDuplicatesPrompt constructs the prompts for duplicate detection.
func buildDuplicatesPrompt(title string, existingTitles []string) (system, user string) {
	system = `You compare a new issue-tracker task against existing tasks and find duplicates (exact or semantic matches).

Return a JSON array of duplicate titles. If none, return [].`

	var sb strings.Builder
	fmt.Fprintf(&sb, "New task: %q\n\nExisting tasks:\n", title)
	for i, t := range existingTitles {
		fmt.Fprintf(&sb, "%d. %q\n", i+1, t)
	}
	user = sb.String()
	return
}

func taskBlock(title, description string) string {
	var sb strings.Builder
	sb.WriteString("Title: ")
	sb.WriteString(title)
	sb.WriteString("\nDescription: ")
	sb.WriteString(description)
	return sb.String()
}
