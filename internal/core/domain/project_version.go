package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VersionBump string

const (
	BumpMajor    VersionBump = "major"
	BumpMinor    VersionBump = "minor"
	BumpRevision VersionBump = "revision"
)

// ProjectVersion is one point in a project's history. Versions of the same
// project are totally ordered by (Major, Minor, Revision).
type ProjectVersion struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ProjectID uuid.UUID `json:"project_id"`
	Major     int       `json:"major"`
	Minor     int       `json:"minor"`
	Revision  int       `json:"revision"`
}

// NewProjectVersion creates a new ProjectVersion
func NewProjectVersion(projectID uuid.UUID, major, minor, revision int) (*ProjectVersion, error) {
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if major < 0 || minor < 0 || revision < 0 {
		return nil, ErrInvalidProjectVersion
	}

	return &ProjectVersion{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		ProjectID: projectID,
		Major:     major,
		Minor:     minor,
		Revision:  revision,
	}, nil
}

// Compare returns -1, 0 or 1 when v orders before, equal to or after other.
// Only the ordinals are compared; callers check the project separately.
func (v ProjectVersion) Compare(other ProjectVersion) int {
	switch {
	case v.Major != other.Major:
		return compareInt(v.Major, other.Major)
	case v.Minor != other.Minor:
		return compareInt(v.Minor, other.Minor)
	default:
		return compareInt(v.Revision, other.Revision)
	}
}

func (v ProjectVersion) Before(other ProjectVersion) bool {
	return v.Compare(other) < 0
}

func (v ProjectVersion) AtOrBefore(other ProjectVersion) bool {
	return v.Compare(other) <= 0
}

// SameProject reports whether both versions belong to one project.
func (v ProjectVersion) SameProject(other ProjectVersion) bool {
	return v.ProjectID == other.ProjectID
}

// Next returns the ordinals that follow v for the given bump.
func (v ProjectVersion) Next(bump VersionBump) (major, minor, revision int, err error) {
	switch bump {
	case BumpMajor:
		return v.Major + 1, 0, 0, nil
	case BumpMinor:
		return v.Major, v.Minor + 1, 0, nil
	case BumpRevision:
		return v.Major, v.Minor, v.Revision + 1, nil
	default:
		return 0, 0, 0, ErrInvalidVersionBump
	}
}

func (v ProjectVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
