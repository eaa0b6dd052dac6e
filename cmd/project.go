package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/output"
)

var (
	projectName   string
	projectDesc   string
	projectColor  string
	projectStatus string
	projectLead   string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAddRun()
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show project details and its issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(args[0])
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <project>",
	Short: "Update a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectUpdateRun(args[0])
	},
}

func init() {
	projectAddCmd.Flags().StringVar(&projectName, "name", "", "Project name (required)")
	projectAddCmd.Flags().StringVar(&projectDesc, "desc", "", "Project description")
	projectAddCmd.Flags().StringVar(&projectColor, "color", "", "Display color, e.g. #8b5cf6")
	_ = projectAddCmd.MarkFlagRequired("name")

	projectUpdateCmd.Flags().StringVar(&projectName, "name", "", "New name")
	projectUpdateCmd.Flags().StringVar(&projectDesc, "desc", "", "New description")
	projectUpdateCmd.Flags().StringVar(&projectStatus, "status", "", "New status: planned, in-progress, paused, completed, cancelled")
	projectUpdateCmd.Flags().StringVar(&projectLead, "lead", "", "Lead user id or email")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectAddRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}

	var desc *string
	if projectDesc != "" {
		desc = &projectDesc
	}

	if dryRun {
		ui.DryRunMsg("Would add project: %s", projectName)
		return nil
	}

	p, err := a.NewProject(projectName, desc, projectColor)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	ui.Success("Created project %s", output.Cyan(p.Name))
	return nil
}

func projectListRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}

	projects := a.Projects()
	if len(projects) == 0 {
		ui.Info("No projects found.")
		return nil
	}

	// Count open issues per project
	counts := make(map[string]int)
	for _, issue := range a.Issues() {
		if issue.ProjectID != nil && issue.Status != models.StatusDone && issue.Status != models.StatusCancelled {
			counts[*issue.ProjectID]++
		}
	}

	table := ui.Table([]string{"Name", "Status", "Lead", "Open", "Description"})
	for _, p := range projects {
		lead := ""
		if p.LeadID != nil {
			lead = userDisplay(a, *p.LeadID)
		}
		desc := ""
		if p.Description != nil {
			desc = *p.Description
		}
		_ = table.Append([]string{
			output.Cyan(p.Name),
			output.StatusColor(string(p.Status)),
			lead,
			fmt.Sprintf("%d", counts[p.ID]),
			desc,
		})
	}
	_ = table.Render()
	return nil
}

func projectShowRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	p, ok := a.FindProject(ref)
	if !ok {
		return fmt.Errorf("project %q not found", ref)
	}

	fmt.Fprintf(ui.Out, "%s [%s]\n", output.Cyan(p.Name), output.StatusColor(string(p.Status)))
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintf(ui.Out, "%s\n", *p.Description)
	}
	if p.LeadID != nil {
		fmt.Fprintf(ui.Out, "Lead: %s\n", userDisplay(a, *p.LeadID))
	}
	fmt.Fprintln(ui.Out)

	// Project issues, scoped the same way the board scopes them.
	issueProject = ref
	return issueListRun(a)
}

func projectUpdateRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	p, ok := a.FindProject(ref)
	if !ok {
		return fmt.Errorf("project %q not found", ref)
	}

	patch := models.ProjectPatch{}
	if projectName != "" {
		patch.Name = &projectName
	}
	if projectDesc != "" {
		d := &projectDesc
		patch.Description = &d
	}
	if projectStatus != "" {
		s := models.ProjectStatus(projectStatus)
		patch.Status = &s
	}
	if projectLead != "" {
		id, err := resolveUser(a, projectLead)
		if err != nil {
			return err
		}
		lead := &id
		patch.LeadID = &lead
	}

	if dryRun {
		ui.DryRunMsg("Would update project %s", p.Name)
		return nil
	}

	if err := a.UpdateProject(p.ID, patch); err != nil {
		return err
	}
	ui.Success("Updated project %s", output.Cyan(p.Name))
	return nil
}
