package handlers

import (
	"errors"
	"net/http"

	"artifact-version-service/internal/adapters/primary/http/dto"
	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) Commit(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	kind, err := domain.ParseEntityKind(c.Param("kind"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	versionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version id"})
		return
	}

	var req dto.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch kind {
	case domain.KindArtifact:
		commitKind(c, h.reg.Artifacts, projectID, versionID, req)
	case domain.KindTraceLink:
		commitKind(c, h.reg.TraceLinks, projectID, versionID, req)
	case domain.KindDocument:
		commitKind(c, h.reg.Documents, projectID, versionID, req)
	}
}

func commitKind[C any](c *gin.Context, svc *services.KindServices[C], projectID, versionID uuid.UUID, req dto.CommitRequest) {
	mode, err := domain.ParseCommitMode(req.Mode)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items, err := dto.ToCommitItems[C](req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := svc.Commits.Commit(c.Request.Context(), domain.Commit[C]{
		ProjectID: projectID,
		VersionID: versionID,
		Mode:      mode,
		Items:     items,
	})
	if err != nil {
		log.WithError(err).WithField("version_id", versionID).Error("commit failed")
		// An aborted commit keeps the records it appended; report them.
		if result != nil && errors.Is(err, domain.ErrDuplicateVersionRecord) {
			resp := dto.ToCommitResponse(result)
			resp.Error = err.Error()
			c.JSON(http.StatusConflict, resp)
			return
		}
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommitResponse(result))
}
