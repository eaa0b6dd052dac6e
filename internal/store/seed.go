package store

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/kan/internal/models"
)

//go:embed seed.yaml
var seedFS embed.FS

type seedData struct {
	Workspaces []models.Workspace `yaml:"workspaces"`
	Users      []models.User      `yaml:"users"`
	Projects   []models.Project   `yaml:"projects"`
	Issues     []models.Issue     `yaml:"issues"`
}

// Seed populates the store from the embedded dataset when the issue
// collection is empty. It sets the first workspace as current and
// initializes the identifier counter from the highest seeded number.
// Seeding an already-populated store is a no-op.
func (a *App) Seed() error {
	a.mu.Lock()
	if len(a.issues) > 0 {
		a.mu.Unlock()
		return nil
	}

	raw, err := seedFS.ReadFile("seed.yaml")
	if err != nil {
		a.mu.Unlock()
		return fmt.Errorf("read seed dataset: %w", err)
	}

	var data seedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("parse seed dataset: %w", err)
	}

	a.workspaces = data.Workspaces
	a.users = data.Users
	a.projects = data.Projects
	a.issues = data.Issues
	if len(a.workspaces) > 0 {
		ws := a.workspaces[0]
		a.currentWorkspace = &ws
	}
	for _, i := range a.issues {
		if n := identifierNumber(i.Identifier); n > a.seq {
			a.seq = n
		}
	}
	a.mu.Unlock()

	a.notify()
	return nil
}
