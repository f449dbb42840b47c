package handlers

import (
	"net/http"

	"artifact-version-service/internal/adapters/primary/http/dto"
	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListEntityState(c *gin.Context) {
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

	version, ok := h.loadVersion(c, projectID, c.Param("id"))
	if !ok {
		return
	}

	switch kind {
	case domain.KindArtifact:
		listState(c, h.reg.Artifacts, version)
	case domain.KindTraceLink:
		listState(c, h.reg.TraceLinks, version)
	case domain.KindDocument:
		listState(c, h.reg.Documents, version)
	}
}

func listState[C any](c *gin.Context, svc *services.KindServices[C], version *domain.ProjectVersion) {
	state, err := svc.Store.AllEffectiveAt(c.Request.Context(), *version)
	if err != nil {
		log.WithError(err).Error("list entity state failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntityStateResponse(version, svc.Store.Kind().Kind, state))
}

func (h *Handler) GetEntityHistory(c *gin.Context) {
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

	entityID, err := uuid.Parse(c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
		return
	}

	switch kind {
	case domain.KindArtifact:
		history(c, h.reg.Artifacts, projectID, entityID)
	case domain.KindTraceLink:
		history(c, h.reg.TraceLinks, projectID, entityID)
	case domain.KindDocument:
		history(c, h.reg.Documents, projectID, entityID)
	}
}

func history[C any](c *gin.Context, svc *services.KindServices[C], projectID, entityID uuid.UUID) {
	entity, err := svc.Store.Entity(c.Request.Context(), entityID)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	if entity.ProjectID != projectID {
		mapDomainError(c, domain.ErrUnknownBaseEntity)
		return
	}

	records, err := svc.Store.HistoryOf(c.Request.Context(), entityID)
	if err != nil {
		log.WithError(err).Error("get entity history failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryResponse(entity, records))
}

// DiffEntity returns a unified diff of one entity between the baseline and
// target versions given as query parameters.
func (h *Handler) DiffEntity(c *gin.Context) {
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

	entityID, err := uuid.Parse(c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
		return
	}

	baseline, ok := h.loadVersion(c, projectID, c.Query("baseline"))
	if !ok {
		return
	}
	target, ok := h.loadVersion(c, projectID, c.Query("target"))
	if !ok {
		return
	}

	switch kind {
	case domain.KindArtifact:
		diff(c, h.reg.Artifacts, entityID, baseline, target)
	case domain.KindTraceLink:
		diff(c, h.reg.TraceLinks, entityID, baseline, target)
	case domain.KindDocument:
		diff(c, h.reg.Documents, entityID, baseline, target)
	}
}

func diff[C any](c *gin.Context, svc *services.KindServices[C], entityID uuid.UUID, baseline, target *domain.ProjectVersion) {
	out, err := svc.Delta.DiffEntity(c.Request.Context(), entityID, *baseline, *target)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.String(http.StatusOK, out)
}
