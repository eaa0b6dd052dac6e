package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/output"
	"github.com/joescharf/kan/internal/store"
)

var (
	aiDesc   string
	aiApply  bool
	aiCreate bool
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "AI suggestions for issues",
	Long: `AI-backed helpers for issue creation and editing: label and
priority suggestion, task breakdown, duplicate detection, and
description rewriting.

Requires an Anthropic API key (config anthropic.api_key or
ANTHROPIC_API_KEY). Single actions fall back to safe defaults when the
backend is unreachable.`,
}

var aiSuggestCmd = &cobra.Command{
	Use:   "suggest <title or issue>",
	Short: "Suggest labels, priority, and duplicates for a draft issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return aiSuggestRun(cmd.Context(), args[0])
	},
}

var aiBreakdownCmd = &cobra.Command{
	Use:   "breakdown <title or issue>",
	Short: "Break a task into subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return aiBreakdownRun(cmd.Context(), args[0])
	},
}

var aiImproveCmd = &cobra.Command{
	Use:   "improve <issue>",
	Short: "Rewrite an issue description to be clearer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return aiImproveRun(cmd.Context(), args[0])
	},
}

var aiDuplicatesCmd = &cobra.Command{
	Use:   "duplicates <title>",
	Short: "Check a draft title against existing issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return aiDuplicatesRun(cmd.Context(), args[0])
	},
}

func init() {
	aiSuggestCmd.Flags().StringVar(&aiDesc, "desc", "", "Draft description")
	aiSuggestCmd.Flags().BoolVar(&aiApply, "apply", false, "Apply suggested labels and priority to the issue (when <issue> is an existing issue)")

	aiBreakdownCmd.Flags().StringVar(&aiDesc, "desc", "", "Draft description")
	aiBreakdownCmd.Flags().BoolVar(&aiCreate, "create", false, "Create the subtasks as issues (when <issue> is an existing issue, they become its children)")

	aiImproveCmd.Flags().BoolVar(&aiApply, "apply", false, "Write the improved description back to the issue")

	aiCmd.AddCommand(aiSuggestCmd)
	aiCmd.AddCommand(aiBreakdownCmd)
	aiCmd.AddCommand(aiImproveCmd)
	aiCmd.AddCommand(aiDuplicatesCmd)
	rootCmd.AddCommand(aiCmd)
}

// resolveDraft interprets the argument as an existing issue reference
// when possible, falling back to treating it as a draft title.
func resolveDraft(a *store.App, ref string) (title, desc string, issue *models.Issue) {
	if found, ok := a.FindIssue(ref); ok {
		title = found.Title
		if found.Description != nil {
			desc = *found.Description
		}
		return title, desc, &found
	}
	return ref, aiDesc, nil
}

func aiSuggestRun(ctx context.Context, ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	orch := newOrchestrator()

	title, desc, issue := resolveDraft(a, ref)
	if desc == "" {
		desc = aiDesc
	}

	existing := make([]string, 0)
	for _, i := range a.Issues() {
		if issue != nil && i.ID == issue.ID {
			continue
		}
		existing = append(existing, i.Title)
	}

	suggestion, err := orch.Suggest(ctx, title, desc, existing)
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}

	if len(suggestion.Labels.Items) > 0 {
		label := "Labels:"
		if !suggestion.Labels.Structured {
			label = "Labels (unparsed):"
		}
		ui.Info("%s %s", label, strings.Join(suggestion.Labels.Items, ", "))
	} else {
		ui.Info("Labels: none suggested")
	}
	ui.Info("Priority: %s", output.PriorityColor(string(suggestion.Priority)))
	if len(suggestion.Duplicates.Items) > 0 {
		ui.Warning("Possible duplicates:")
		for _, d := range suggestion.Duplicates.Items {
			fmt.Fprintf(ui.ErrOut, "  - %s\n", d)
		}
	} else {
		ui.Info("No duplicates found")
	}

	if aiApply && issue != nil {
		merged := mergeLabels(issue.Labels, suggestion.Labels.Items)
		patch := models.IssuePatch{
			Labels:   &merged,
			Priority: &suggestion.Priority,
		}
		if err := a.UpdateIssue(issue.ID, patch); err != nil {
			return err
		}
		ui.Success("Applied suggestions to %s", output.Cyan(issue.Identifier))
	}
	return nil
}

func aiBreakdownRun(ctx context.Context, ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	orch := newOrchestrator()

	title, desc, issue := resolveDraft(a, ref)
	res := orch.Breakdown(ctx, title, desc)
	if len(res.Items) == 0 {
		ui.Info("No subtasks suggested.")
		return nil
	}
	if !res.Structured {
		ui.Warning("Response was not structured; showing raw text")
	}

	for i, sub := range res.Items {
		fmt.Fprintf(ui.Out, "%d. %s\n", i+1, sub)
	}

	if aiCreate && res.Structured {
		if dryRun {
			ui.DryRunMsg("Would create %d subtasks", len(res.Items))
			return nil
		}
		for _, sub := range res.Items {
			opts := store.CreateOptions{}
			if issue != nil {
				opts.ParentID = &issue.ID
				opts.ProjectID = issue.ProjectID
			}
			created, err := a.CreateIssue(sub, opts)
			if err != nil {
				ui.Warning("Skipped %q: %v", sub, err)
				continue
			}
			ui.Success("Created %s: %s", output.Cyan(created.Identifier), created.Title)
		}
	}
	return nil
}

func aiImproveRun(ctx context.Context, ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	orch := newOrchestrator()

	title, desc, issue := resolveDraft(a, ref)
	improved := orch.ImproveDescription(ctx, title, desc)

	fmt.Fprintln(ui.Out, improved)

	if aiApply && issue != nil && improved != desc {
		if err := a.UpdateIssue(issue.ID, models.IssuePatch{Description: &improved}); err != nil {
			return err
		}
		ui.Success("Updated description of %s", output.Cyan(issue.Identifier))
	}
	return nil
}

func aiDuplicatesRun(ctx context.Context, title string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	orch := newOrchestrator()

	existing := make([]string, 0)
	for _, i := range a.Issues() {
		existing = append(existing, i.Title)
	}

	res := orch.DetectDuplicates(ctx, title, existing)
	if len(res.Items) == 0 {
		ui.Success("No duplicates found")
		return nil
	}
	ui.Warning("Found %d potential duplicate(s):", len(res.Items))
	for _, d := range res.Items {
		fmt.Fprintf(ui.ErrOut, "  - %s\n", d)
	}
	return nil
}

// mergeLabels unions existing and suggested labels, preserving order.
func mergeLabels(existing, suggested []string) []string {
	seen := make(map[string]bool, len(existing))
	out := append([]string(nil), existing...)
	for _, l := range existing {
		seen[l] = true
	}
	for _, l := range suggested {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
