package dto

import (
	"time"

	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
)

// CreateVersionRequest carries either explicit ordinals or a bump relative to
// the project's latest version.
type CreateVersionRequest struct {
	Major    *int   `json:"major"`
	Minor    *int   `json:"minor"`
	Revision *int   `json:"revision"`
	Bump     string `json:"bump"`
}

func (r CreateVersionRequest) HasOrdinals() bool {
	return r.Major != nil || r.Minor != nil || r.Revision != nil
}

func (r CreateVersionRequest) Ordinals() (major, minor, revision int) {
	deref := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	return deref(r.Major), deref(r.Minor), deref(r.Revision)
}

type VersionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt string    `json:"created_at"`
	ProjectID uuid.UUID `json:"project_id"`
	Major     int       `json:"major"`
	Minor     int       `json:"minor"`
	Revision  int       `json:"revision"`
	Label     string    `json:"label"`
}

type ListVersionsResponse struct {
	Items []VersionResponse `json:"items"`
	Total int               `json:"total"`
}

func ToVersionResponse(v *domain.ProjectVersion) VersionResponse {
	return VersionResponse{
		ID:        v.ID,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
		ProjectID: v.ProjectID,
		Major:     v.Major,
		Minor:     v.Minor,
		Revision:  v.Revision,
		Label:     v.String(),
	}
}

func ToListVersionsResponse(versions []*domain.ProjectVersion) ListVersionsResponse {
	items := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		items = append(items, ToVersionResponse(v))
	}
	return ListVersionsResponse{Items: items, Total: len(items)}
}
