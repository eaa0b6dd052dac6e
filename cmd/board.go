package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/output"
	"github.com/joescharf/kan/internal/store"
	"github.com/joescharf/kan/internal/views"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the kanban board",
	Long:  "Show issues grouped into the five board columns. Cancelled issues are hidden; use 'kan issue list --status cancelled' to see them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		return boardRun(a)
	},
}

func init() {
	boardCmd.Flags().StringVar(&issueProject, "project", "", "Scope to a project")
	boardCmd.Flags().StringVar(&issueSearch, "search", "", "Free-text search")
	rootCmd.AddCommand(boardCmd)
}

func boardRun(a *store.App) error {
	snap := a.Snapshot()
	snap.SearchQuery = issueSearch
	if issueProject != "" {
		p, ok := a.FindProject(issueProject)
		if !ok {
			return fmt.Errorf("project %q not found", issueProject)
		}
		snap.CurrentProject = &p
	}

	grouped := views.IssuesByStatus(snap)

	for _, status := range models.BoardStatuses {
		issues := grouped[status]
		meta := models.StatusConfig[status]
		fmt.Fprintf(ui.Out, "%s (%d)\n", output.StatusColor(meta.Label), len(issues))
		if len(issues) == 0 {
			fmt.Fprintf(ui.Out, "  %s\n\n", output.Dim("empty"))
			continue
		}
		for _, issue := range issues {
			fmt.Fprintf(ui.Out, "  %s  %s  %s\n",
				output.Cyan(issue.Identifier),
				issue.Title,
				output.PriorityColor(string(issue.Priority)),
			)
		}
		fmt.Fprintln(ui.Out)
	}
	return nil
}
