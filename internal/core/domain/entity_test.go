package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEntity(t *testing.T) {
	projectID := uuid.New()

	e, err := NewBaseEntity(projectID, KindArtifact, "  RE-1 ")
	require.NoError(t, err)
	assert.Equal(t, "RE-1", e.Name)
	assert.Equal(t, KindArtifact, e.Kind)

	_, err = NewBaseEntity(projectID, KindArtifact, "   ")
	assert.ErrorIs(t, err, ErrInvalidEntityName)

	_, err = NewBaseEntity(projectID, "model", "x")
	assert.ErrorIs(t, err, ErrInvalidEntityKind)

	_, err = NewBaseEntity(uuid.Nil, KindDocument, "x")
	assert.ErrorIs(t, err, ErrMissingProjectID)
}

func TestParseEntityKind(t *testing.T) {
	kind, err := ParseEntityKind("Trace_Link")
	require.NoError(t, err)
	assert.Equal(t, KindTraceLink, kind)

	_, err = ParseEntityKind("model")
	assert.ErrorIs(t, err, ErrInvalidEntityKind)
}

func TestContentEquality(t *testing.T) {
	a := Artifact{Name: "RE-1", Body: "x"}
	b := Artifact{Name: "RE-1", Body: "x", Attributes: map[string]string{}}
	assert.True(t, a.Equal(b))
	b.Attributes["priority"] = "high"
	assert.False(t, a.Equal(b))

	d1 := Document{Name: "SRS", Artifacts: []string{"RE-1", "RE-2"}}
	d2 := Document{Name: "SRS", Artifacts: []string{"RE-2", "RE-1"}}
	assert.True(t, d1.Equal(d2))
	d2.Artifacts = []string{"RE-2"}
	assert.False(t, d1.Equal(d2))

	link := TraceLink{Source: "RE-1", Target: "DD-1", TraceType: TraceTypeManual}
	assert.Equal(t, "RE-1->DD-1", link.NaturalKey())
	other := link
	other.Approval = ApprovalApproved
	assert.False(t, link.Equal(other))
}

func TestCommitItem_RequestsRemoval(t *testing.T) {
	content := Artifact{Name: "RE-1"}
	assert.False(t, CommitItem[Artifact]{Content: &content}.RequestsRemoval())
	assert.True(t, CommitItem[Artifact]{Name: "RE-1"}.RequestsRemoval())
	assert.True(t, CommitItem[Artifact]{Content: &content, Hint: ModRemoved}.RequestsRemoval())
}

func TestParseModes(t *testing.T) {
	mode, err := ParseCommitMode("")
	require.NoError(t, err)
	assert.Equal(t, CommitModeIncremental, mode)

	_, err = ParseCommitMode("replace")
	assert.ErrorIs(t, err, ErrInvalidCommitMode)

	mod, err := ParseModificationType("removed")
	require.NoError(t, err)
	assert.True(t, mod.IsRemoval())

	_, err = ParseModificationType("RENAMED")
	assert.ErrorIs(t, err, ErrInvalidModType)

	traceType, err := ParseTraceType(" generated ")
	require.NoError(t, err)
	assert.Equal(t, TraceTypeGenerated, traceType)

	_, err = ParseTraceType("foo")
	assert.ErrorIs(t, err, ErrInvalidTraceType)
}
