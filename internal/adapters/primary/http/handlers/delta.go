package handlers

import (
	"net/http"

	"artifact-version-service/internal/adapters/primary/http/dto"
	"artifact-version-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetProjectDelta(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
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

	delta, err := h.reg.Delta.Calculate(c.Request.Context(), baseline.ID, target.ID)
	if err != nil {
		log.WithError(err).Error("calculate delta failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeltaResponse(delta))
}
