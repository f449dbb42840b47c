package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectVersion(t *testing.T) {
	projectID := uuid.New()

	v, err := NewProjectVersion(projectID, 1, 2, 3)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, "1.2.3", v.String())

	_, err = NewProjectVersion(uuid.Nil, 1, 0, 0)
	assert.ErrorIs(t, err, ErrMissingProjectID)

	_, err = NewProjectVersion(projectID, 0, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidProjectVersion)
}

func TestProjectVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b ProjectVersion
		want int
	}{
		{ProjectVersion{Major: 1}, ProjectVersion{Major: 2}, -1},
		{ProjectVersion{Major: 2}, ProjectVersion{Major: 1, Minor: 99}, 1},
		{ProjectVersion{Major: 1, Minor: 2}, ProjectVersion{Major: 1, Minor: 10}, -1},
		{ProjectVersion{Major: 1, Minor: 2, Revision: 3}, ProjectVersion{Major: 1, Minor: 2, Revision: 3}, 0},
		{ProjectVersion{Major: 1, Minor: 2, Revision: 4}, ProjectVersion{Major: 1, Minor: 2, Revision: 3}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Compare(tt.b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, -tt.want, tt.b.Compare(tt.a), "%s vs %s", tt.b, tt.a)
	}

	a, b := ProjectVersion{Major: 1}, ProjectVersion{Major: 1, Revision: 1}
	assert.True(t, a.Before(b))
	assert.True(t, a.AtOrBefore(a))
	assert.False(t, b.AtOrBefore(a))
}

func TestProjectVersion_Next(t *testing.T) {
	v := ProjectVersion{Major: 1, Minor: 4, Revision: 7}

	major, minor, revision, err := v.Next(BumpMajor)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 0}, []int{major, minor, revision})

	major, minor, revision, err = v.Next(BumpMinor)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 0}, []int{major, minor, revision})

	major, minor, revision, err = v.Next(BumpRevision)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 8}, []int{major, minor, revision})

	_, _, _, err = v.Next("patch")
	assert.ErrorIs(t, err, ErrInvalidVersionBump)
}
