package dto

import (
	"time"

	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
)

type RecordResponse struct {
	ID               uuid.UUID `json:"id"`
	CreatedAt        string    `json:"created_at"`
	BaseEntityID     uuid.UUID `json:"base_entity_id"`
	VersionID        uuid.UUID `json:"version_id"`
	Version          string    `json:"version"`
	ModificationType string    `json:"modification_type"`
	Content          any       `json:"content,omitempty"`
}

func ToRecordResponse[C any](r *domain.Record[C]) RecordResponse {
	resp := RecordResponse{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		BaseEntityID:     r.BaseEntityID,
		VersionID:        r.Version.ID,
		Version:          r.Version.String(),
		ModificationType: string(r.ModificationType),
	}
	if content, ok := r.Content.Get(); ok {
		resp.Content = content
	}
	return resp
}

// EntityStateResponse is the materialized state of one kind at a version,
// keyed by base entity id.
type EntityStateResponse struct {
	Version  VersionResponse              `json:"version"`
	Kind     string                       `json:"kind"`
	Entities map[uuid.UUID]RecordResponse `json:"entities"`
}

func ToEntityStateResponse[C any](v *domain.ProjectVersion, kind domain.EntityKind, state map[uuid.UUID]*domain.Record[C]) EntityStateResponse {
	entities := make(map[uuid.UUID]RecordResponse, len(state))
	for id, rec := range state {
		entities[id] = ToRecordResponse(rec)
	}
	return EntityStateResponse{
		Version:  ToVersionResponse(v),
		Kind:     string(kind),
		Entities: entities,
	}
}

type BaseEntityResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt string    `json:"created_at"`
	ProjectID uuid.UUID `json:"project_id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
}

type HistoryResponse struct {
	Entity  BaseEntityResponse `json:"entity"`
	Records []RecordResponse   `json:"records"`
}

func ToHistoryResponse[C any](entity *domain.BaseEntity, history []*domain.Record[C]) HistoryResponse {
	records := make([]RecordResponse, 0, len(history))
	for _, rec := range history {
		records = append(records, ToRecordResponse(rec))
	}
	return HistoryResponse{
		Entity: BaseEntityResponse{
			ID:        entity.ID,
			CreatedAt: entity.CreatedAt.Format(time.RFC3339),
			ProjectID: entity.ProjectID,
			Kind:      string(entity.Kind),
			Name:      entity.Name,
		},
		Records: records,
	}
}

type DeltaResponse struct {
	Baseline   VersionResponse    `json:"baseline"`
	Target     VersionResponse    `json:"target"`
	Artifacts  domain.EntityDelta `json:"artifacts"`
	TraceLinks domain.EntityDelta `json:"trace_links"`
	Documents  domain.EntityDelta `json:"documents"`
}

func ToDeltaResponse(d *domain.ProjectDelta) DeltaResponse {
	return DeltaResponse{
		Baseline:   ToVersionResponse(&d.Baseline),
		Target:     ToVersionResponse(&d.Target),
		Artifacts:  d.Artifacts,
		TraceLinks: d.TraceLinks,
		Documents:  d.Documents,
	}
}
