package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/output"
	"github.com/joescharf/kan/internal/store"
	"github.com/joescharf/kan/internal/views"
)

var (
	issueTitle    string
	issueDesc     string
	issuePriority string
	issueStatus   string
	issueLabels   []string
	issueAssignee string
	issueProject  string
	issueEstimate int
	issueSearch   string
	filterStatus   []string
	filterPriority []string
	filterLabels   []string
	filterAssignee []string
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues",
	Long:  "Create, list, inspect, move, and delete issues.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		return issueListRun(a)
	},
}

var issueAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueAddRun()
	},
}

var issueListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List issues",
	Long:    "List issues, optionally filtered by status, priority, label, assignee, project, or free-text search.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		return issueListRun(a)
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue>",
	Short: "Show issue details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(args[0])
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <issue>",
	Short: "Update an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueUpdateRun(args[0])
	},
}

var issueMoveCmd = &cobra.Command{
	Use:   "move <issue> <status>",
	Short: "Move an issue to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueMoveRun(args[0], args[1])
	},
}

var issueDeleteCmd = &cobra.Command{
	Use:     "delete <issue>",
	Aliases: []string{"rm"},
	Short:   "Delete an issue",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueDeleteRun(args[0])
	},
}

func init() {
	issueAddCmd.Flags().StringVar(&issueTitle, "title", "", "Issue title (required)")
	issueAddCmd.Flags().StringVar(&issueDesc, "desc", "", "Issue description")
	issueAddCmd.Flags().StringVar(&issuePriority, "priority", "", "Priority: urgent, high, medium, low, no-priority")
	issueAddCmd.Flags().StringVar(&issueStatus, "status", "", "Status (default backlog)")
	issueAddCmd.Flags().StringSliceVar(&issueLabels, "label", nil, "Label to apply (repeatable)")
	issueAddCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Assignee user id or email")
	issueAddCmd.Flags().StringVar(&issueProject, "project", "", "Project name or id")
	issueAddCmd.Flags().IntVar(&issueEstimate, "estimate", 0, "Story-point estimate")
	_ = issueAddCmd.MarkFlagRequired("title")

	issueListCmd.Flags().StringSliceVar(&filterStatus, "status", nil, "Filter by status (repeatable)")
	issueListCmd.Flags().StringSliceVar(&filterPriority, "priority", nil, "Filter by priority (repeatable)")
	issueListCmd.Flags().StringSliceVar(&filterLabels, "label", nil, "Filter by label (repeatable)")
	issueListCmd.Flags().StringSliceVar(&filterAssignee, "assignee", nil, "Filter by assignee id (repeatable)")
	issueListCmd.Flags().StringVar(&issueProject, "project", "", "Scope to a project")
	issueListCmd.Flags().StringVar(&issueSearch, "search", "", "Free-text search over title, identifier, and description")

	issueUpdateCmd.Flags().StringVar(&issueTitle, "title", "", "New title")
	issueUpdateCmd.Flags().StringVar(&issueDesc, "desc", "", "New description")
	issueUpdateCmd.Flags().StringVar(&issueStatus, "status", "", "New status")
	issueUpdateCmd.Flags().StringVar(&issuePriority, "priority", "", "New priority")
	issueUpdateCmd.Flags().StringSliceVar(&issueLabels, "label", nil, "Replace labels (repeatable)")

	issueCmd.AddCommand(issueAddCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueMoveCmd)
	issueCmd.AddCommand(issueDeleteCmd)
	rootCmd.AddCommand(issueCmd)
}

func issueAddRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}

	opts := store.CreateOptions{Labels: issueLabels}
	if issueDesc != "" {
		opts.Description = &issueDesc
	}
	if issueStatus != "" {
		s := models.Status(issueStatus)
		if !s.Valid() {
			return fmt.Errorf("invalid status %q", issueStatus)
		}
		opts.Status = s
	}
	if issuePriority != "" {
		p := models.Priority(issuePriority)
		if !p.Valid() {
			return fmt.Errorf("invalid priority %q", issuePriority)
		}
		opts.Priority = p
	}
	if issueAssignee != "" {
		id, err := resolveUser(a, issueAssignee)
		if err != nil {
			return err
		}
		opts.AssigneeID = &id
	}
	if issueProject != "" {
		p, ok := a.FindProject(issueProject)
		if !ok {
			return fmt.Errorf("project %q not found", issueProject)
		}
		opts.ProjectID = &p.ID
	}
	if issueEstimate > 0 {
		opts.Estimate = &issueEstimate
	}

	if dryRun {
		ui.DryRunMsg("Would add issue: %s", issueTitle)
		return nil
	}

	issue, err := a.CreateIssue(issueTitle, opts)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}

	ui.Success("Created %s: %s", output.Cyan(issue.Identifier), issue.Title)
	return nil
}

func issueListRun(a *store.App) error {
	snap := a.Snapshot()
	snap.SearchQuery = issueSearch
	for _, s := range filterStatus {
		snap.Filter.Status = append(snap.Filter.Status, models.Status(s))
	}
	for _, p := range filterPriority {
		snap.Filter.Priority = append(snap.Filter.Priority, models.Priority(p))
	}
	snap.Filter.Labels = append(snap.Filter.Labels, filterLabels...)
	snap.Filter.Assignee = append(snap.Filter.Assignee, filterAssignee...)
	if issueProject != "" {
		p, ok := a.FindProject(issueProject)
		if !ok {
			return fmt.Errorf("project %q not found", issueProject)
		}
		snap.CurrentProject = &p
	}

	issues := views.SortedForList(snap)
	if len(issues) == 0 {
		ui.Info("No issues found.")
		return nil
	}

	projectNames := projectNameCache(a)

	table := ui.Table([]string{"ID", "Title", "Status", "Priority", "Labels", "Project"})
	for _, issue := range issues {
		projName := ""
		if issue.ProjectID != nil {
			projName = projectNames[*issue.ProjectID]
		}
		_ = table.Append([]string{
			output.Cyan(issue.Identifier),
			issue.Title,
			output.StatusColor(string(issue.Status)),
			output.PriorityColor(string(issue.Priority)),
			strings.Join(issue.Labels, ","),
			projName,
		})
	}
	_ = table.Render()
	return nil
}

func issueShowRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	issue, ok := a.FindIssue(ref)
	if !ok {
		return fmt.Errorf("issue %q not found", ref)
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(issue.Identifier), issue.Title)
	fmt.Fprintf(ui.Out, "Status:   %s\n", output.StatusColor(string(issue.Status)))
	fmt.Fprintf(ui.Out, "Priority: %s\n", output.PriorityColor(string(issue.Priority)))
	if len(issue.Labels) > 0 {
		fmt.Fprintf(ui.Out, "Labels:   %s\n", strings.Join(issue.Labels, ", "))
	}
	if issue.AssigneeID != nil {
		fmt.Fprintf(ui.Out, "Assignee: %s\n", userDisplay(a, *issue.AssigneeID))
	}
	if issue.ProjectID != nil {
		if p, ok := a.FindProject(*issue.ProjectID); ok {
			fmt.Fprintf(ui.Out, "Project:  %s\n", p.Name)
		}
	}
	if issue.Estimate != nil {
		fmt.Fprintf(ui.Out, "Estimate: %d\n", *issue.Estimate)
	}
	fmt.Fprintf(ui.Out, "Created:  %s\n", issue.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(ui.Out, "Updated:  %s\n", issue.UpdatedAt.Format("2006-01-02 15:04"))
	if issue.Description != nil && *issue.Description != "" {
		fmt.Fprintf(ui.Out, "\n%s\n", *issue.Description)
	}
	return nil
}

func issueUpdateRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	issue, ok := a.FindIssue(ref)
	if !ok {
		return fmt.Errorf("issue %q not found", ref)
	}

	patch := models.IssuePatch{}
	if issueTitle != "" {
		patch.Title = &issueTitle
	}
	if issueDesc != "" {
		patch.Description = &issueDesc
	}
	if issueStatus != "" {
		s := models.Status(issueStatus)
		if !s.Valid() {
			return fmt.Errorf("invalid status %q", issueStatus)
		}
		patch.Status = &s
	}
	if issuePriority != "" {
		p := models.Priority(issuePriority)
		if !p.Valid() {
			return fmt.Errorf("invalid priority %q", issuePriority)
		}
		patch.Priority = &p
	}
	if issueLabels != nil {
		patch.Labels = &issueLabels
	}

	if dryRun {
		ui.DryRunMsg("Would update issue %s", issue.Identifier)
		return nil
	}

	if err := a.UpdateIssue(issue.ID, patch); err != nil {
		return err
	}
	ui.Success("Updated %s", output.Cyan(issue.Identifier))
	return nil
}

func issueMoveRun(ref, status string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	s := models.Status(status)
	if !s.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}

	issue, ok := a.FindIssue(ref)
	if !ok {
		return fmt.Errorf("issue %q not found", ref)
	}

	if dryRun {
		ui.DryRunMsg("Would move %s to %s", issue.Identifier, status)
		return nil
	}

	if err := a.MoveIssue(issue.ID, s); err != nil {
		return err
	}
	ui.Success("Moved %s to %s", output.Cyan(issue.Identifier), output.StatusColor(status))
	return nil
}

func issueDeleteRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	issue, ok := a.FindIssue(ref)
	if !ok {
		return fmt.Errorf("issue %q not found", ref)
	}

	if dryRun {
		ui.DryRunMsg("Would delete %s", issue.Identifier)
		return nil
	}

	if err := a.DeleteIssue(issue.ID); err != nil {
		return err
	}
	ui.Success("Deleted %s", output.Cyan(issue.Identifier))
	return nil
}

// projectNameCache maps project ids to names for display.
func projectNameCache(a *store.App) map[string]string {
	names := make(map[string]string)
	for _, p := range a.Projects() {
		names[p.ID] = p.Name
	}
	return names
}

// resolveUser matches a user by id or email.
func resolveUser(a *store.App, ref string) (string, error) {
	for _, u := range a.Users() {
		if u.ID == ref || strings.EqualFold(u.Email, ref) {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("user %q not found", ref)
}

// userDisplay returns the user's name, falling back to email then id.
func userDisplay(a *store.App, id string) string {
	for _, u := range a.Users() {
		if u.ID == id {
			if u.Name != nil && *u.Name != "" {
				return *u.Name
			}
			return u.Email
		}
	}
	return id
}
