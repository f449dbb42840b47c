package flatfile

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/services"
)

var artifactColumns = map[string]bool{"name": true, "type": true, "summary": true, "body": true}

// Importer loads a complete artifact or trace link set from a spreadsheet and
// commits it to one project version. Entities absent from the file are removed.
type Importer struct {
	reg *services.Registry
}

func NewImporter(reg *services.Registry) *Importer {
	return &Importer{reg: reg}
}

func (i *Importer) ImportArtifacts(ctx context.Context, projectID, versionID uuid.UUID, fileName string, r io.Reader) (*domain.CommitResult[domain.Artifact], error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	artifacts, err := ParseArtifacts(fileName, payload)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"file":    fileName,
		"version": versionID,
		"rows":    len(artifacts),
	}).Info("importing artifacts")

	return i.reg.Artifacts.Commits.Commit(ctx, domain.Commit[domain.Artifact]{
		ProjectID: projectID,
		VersionID: versionID,
		Mode:      domain.CommitModeCompleteSet,
		Items:     toItems(artifacts),
	})
}

func (i *Importer) ImportTraceLinks(ctx context.Context, projectID, versionID uuid.UUID, fileName string, r io.Reader) (*domain.CommitResult[domain.TraceLink], error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	links, err := ParseTraceLinks(fileName, payload)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"file":    fileName,
		"version": versionID,
		"rows":    len(links),
	}).Info("importing trace links")

	return i.reg.TraceLinks.Commits.Commit(ctx, domain.Commit[domain.TraceLink]{
		ProjectID: projectID,
		VersionID: versionID,
		Mode:      domain.CommitModeCompleteSet,
		Items:     toItems(links),
	})
}

// ParseArtifacts reads name, type, summary and body columns. Any other
// non-empty column becomes an attribute keyed by its header.
func ParseArtifacts(fileName string, payload []byte) ([]domain.Artifact, error) {
	t, err := parseTable(fileName, payload)
	if err != nil {
		return nil, err
	}
	cols, err := t.require("name")
	if err != nil {
		return nil, err
	}

	cell := func(row []string, name string) string {
		if idx := t.column(name); idx >= 0 {
			return row[idx]
		}
		return ""
	}

	out := make([]domain.Artifact, 0, len(t.rows))
	for n, row := range t.rows {
		name := row[cols["name"]]
		if name == "" {
			return nil, fmt.Errorf("row %d: %w", n+2, domain.ErrInvalidEntityName)
		}
		a := domain.Artifact{
			Name:    name,
			Type:    cell(row, "type"),
			Summary: cell(row, "summary"),
			Body:    cell(row, "body"),
		}
		for idx, header := range t.headers {
			if header == "" || artifactColumns[header] || row[idx] == "" {
				continue
			}
			if a.Attributes == nil {
				a.Attributes = make(map[string]string)
			}
			a.Attributes[header] = row[idx]
		}
		out = append(out, a)
	}
	return out, nil
}

// ParseTraceLinks reads source, target and an optional type column. Missing
// types default to MANUAL; an optional score column must be numeric.
func ParseTraceLinks(fileName string, payload []byte) ([]domain.TraceLink, error) {
	t, err := parseTable(fileName, payload)
	if err != nil {
		return nil, err
	}
	cols, err := t.require("source", "target")
	if err != nil {
		return nil, err
	}
	typeCol, scoreCol := t.column("type"), t.column("score")

	out := make([]domain.TraceLink, 0, len(t.rows))
	for n, row := range t.rows {
		link := domain.TraceLink{
			Source:    row[cols["source"]],
			Target:    row[cols["target"]],
			TraceType: domain.TraceTypeManual,
			Approval:  domain.ApprovalUnreviewed,
		}
		if link.Source == "" || link.Target == "" {
			return nil, fmt.Errorf("row %d: %w", n+2, domain.ErrInvalidEntityName)
		}
		if typeCol >= 0 && row[typeCol] != "" {
			traceType, err := domain.ParseTraceType(row[typeCol])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w: %q", n+2, err, row[typeCol])
			}
			link.TraceType = traceType
		}
		if scoreCol >= 0 && row[scoreCol] != "" {
			score, err := strconv.ParseFloat(row[scoreCol], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid score %q", n+2, row[scoreCol])
			}
			link.Score = score
		}
		out = append(out, link)
	}
	return out, nil
}

func toItems[C any](contents []C) []domain.CommitItem[C] {
	items := make([]domain.CommitItem[C], len(contents))
	for i := range contents {
		items[i] = domain.CommitItem[C]{Content: &contents[i]}
	}
	return items
}
