// Package prefs persists the small UI-preference subset that survives a
// process restart. All entity data is ephemeral by design; only the
// view mode and the sidebar-collapsed flag are written to disk.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/kan/internal/models"
)

// Prefs is the persisted UI-preference subset.
type Prefs struct {
	View             models.ViewType `yaml:"view"`
	SidebarCollapsed bool            `yaml:"sidebar_collapsed"`
}

// Default returns the preferences used when no file exists.
func Default() Prefs {
	return Prefs{View: models.ViewBoard}
}

// Load reads preferences from dir/prefs.yaml. A missing file yields the
// defaults without error.
func Load(dir string) (Prefs, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "prefs.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read prefs: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Default(), fmt.Errorf("parse prefs: %w", err)
	}
	if p.View != models.ViewBoard && p.View != models.ViewList {
		p.View = models.ViewBoard
	}
	return p, nil
}

// Save writes preferences to dir/prefs.yaml, creating dir if needed.
func Save(dir string, p Prefs) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create prefs directory: %w", err)
	}
	raw, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefs.yaml"), raw, 0644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
