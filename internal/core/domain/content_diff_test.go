package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalLines(t *testing.T) {
	lines, err := CanonicalLines(Artifact{
		Name:       "RE-1",
		Type:       "requirement",
		Attributes: map[string]string{"priority": "high"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		`attributes.priority: "high"`,
		`body: ""`,
		`name: "RE-1"`,
		`summary: ""`,
		`type: "requirement"`,
	}, lines)

	lines, err = CanonicalLines(Document{Name: "SRS", Artifacts: []string{"RE-1", "RE-2"}})
	require.NoError(t, err)
	assert.Contains(t, lines, `artifacts[0]: "RE-1"`)
	assert.Contains(t, lines, `artifacts[1]: "RE-2"`)

	lines, err = CanonicalLines(nil)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestDiffContent(t *testing.T) {
	diff, err := DiffContent("a", map[string]any{"x": 1, "y": 2}, "b", map[string]any{"x": 1, "y": 3})
	require.NoError(t, err)
	assert.Equal(t, "--- a\n+++ b\n@@ -1,2 +1,2 @@\n x: 1\n-y: 2\n+y: 3\n", diff)

	diff, err = DiffContent("a", nil, "b", map[string]any{"x": true})
	require.NoError(t, err)
	assert.Equal(t, "--- a\n+++ b\n@@ -1,0 +1,1 @@\n+x: true\n", diff)
}
