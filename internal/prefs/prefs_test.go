package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/kan/internal/models"
)

func TestLoad_MissingFile(t *testing.T) {
	p, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, models.ViewBoard, p.View)
	assert.False(t, p.SidebarCollapsed)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "kan")

	want := Prefs{View: models.ViewList, SidebarCollapsed: true}
	require.NoError(t, Save(dir, want))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_UnknownViewFallsBackToBoard(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("view: gantt\nsidebar_collapsed: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.yaml"), raw, 0644))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, models.ViewBoard, got.View)
	assert.True(t, got.SidebarCollapsed)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.yaml"), []byte("{not yaml"), 0644))

	got, err := Load(dir)
	assert.Error(t, err)
	assert.Equal(t, Default(), got)
}
