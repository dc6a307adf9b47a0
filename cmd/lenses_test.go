package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "repolens.dev/pkg/repolens/internal/model"
)

func TestLensesCommand(t *testing.T) {
	cmd := newLensesCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.NoError(t, err)

	for _, name := range []string{"architecture", "debug", "security", "onboarding", "minimal"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestRenderLensTable(t *testing.T) {
	out := renderLensTable([]m.Lens{
		{
			Name:          "architecture",
			Description:   "High-level code structure",
			TruncateMode:  m.TruncateStructure,
			TruncateLines: 2000,
			SortBy:        m.SortByName,
			SortOrder:     m.SortAsc,
			Groups:        []m.PriorityGroup{{Pattern: "src/**", Priority: 85}},
		},
		{Name: "debug", Description: "Recent changes"},
	})

	assert.Contains(t, out, "architecture")
	assert.Contains(t, out, "structure (2000)")
	assert.Contains(t, out, "name asc")
	assert.Contains(t, out, "debug")
	assert.Contains(t, out, "none") // empty mode renders as none
}
