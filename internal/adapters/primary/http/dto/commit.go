package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
)

type CommitRequest struct {
	Mode  string              `json:"mode"`
	Items []CommitItemRequest `json:"items" binding:"required"`
}

// CommitItemRequest is one entity representation. Content is decoded into the
// kind addressed by the route; an absent or null content requests removal.
type CommitItemRequest struct {
	ID               *uuid.UUID      `json:"id"`
	Name             string          `json:"name"`
	Content          json.RawMessage `json:"content"`
	ModificationType string          `json:"modification_type"`
}

// ToCommitItems decodes the request items into content type C.
func ToCommitItems[C any](items []CommitItemRequest) ([]domain.CommitItem[C], error) {
	out := make([]domain.CommitItem[C], 0, len(items))
	for i, item := range items {
		ci := domain.CommitItem[C]{ID: item.ID, Name: item.Name}

		if raw := bytes.TrimSpace(item.Content); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			var content C
			if err := json.Unmarshal(raw, &content); err != nil {
				return nil, fmt.Errorf("items[%d].content: %w", i, err)
			}
			ci.Content = &content
		}

		if item.ModificationType != "" {
			hint, err := domain.ParseModificationType(item.ModificationType)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, err)
			}
			ci.Hint = hint
		}
		out = append(out, ci)
	}
	return out, nil
}

type ItemResultResponse struct {
	Index            int        `json:"index"`
	Name             string     `json:"name"`
	BaseEntityID     *uuid.UUID `json:"base_entity_id,omitempty"`
	Outcome          string     `json:"outcome"`
	ModificationType string     `json:"modification_type,omitempty"`
	Error            string     `json:"error,omitempty"`
	Reason           string     `json:"reason,omitempty"`
}

type CommitSummaryResponse struct {
	Added    []uuid.UUID `json:"added"`
	Modified []uuid.UUID `json:"modified"`
	Removed  []uuid.UUID `json:"removed"`
	NoOps    int         `json:"no_ops"`
	Failed   int         `json:"failed"`
}

type CommitResponse struct {
	Version VersionResponse       `json:"version"`
	Kind    string                `json:"kind"`
	Items   []ItemResultResponse  `json:"items"`
	Summary CommitSummaryResponse `json:"summary"`
	Error   string                `json:"error,omitempty"`
}

func ToCommitResponse[C any](result *domain.CommitResult[C]) CommitResponse {
	items := make([]ItemResultResponse, 0, len(result.Items))
	for _, item := range result.Items {
		resp := ItemResultResponse{
			Index:   item.Index,
			Name:    item.Name,
			Outcome: string(item.Outcome),
			Reason:  item.Reason,
		}
		if item.BaseEntityID != uuid.Nil {
			id := item.BaseEntityID
			resp.BaseEntityID = &id
		}
		if item.Record != nil {
			resp.ModificationType = string(item.Record.ModificationType)
		}
		if item.Err != nil {
			resp.Error = item.Err.Error()
		}
		items = append(items, resp)
	}

	n := domain.NewCommitNotification(result)
	return CommitResponse{
		Version: ToVersionResponse(&result.Version),
		Kind:    string(result.Kind),
		Items:   items,
		Summary: CommitSummaryResponse{
			Added:    n.Added,
			Modified: n.Modified,
			Removed:  n.Removed,
			NoOps:    result.Summary.NoOps,
			Failed:   result.Summary.Failed,
		},
	}
}
