package handlers

import (
	"artifact-version-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	reg *services.Registry
}

func New(reg *services.Registry) *Handler {
	return &Handler{reg: reg}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Project Versions
	r.GET("/versions", h.ListVersions)
	r.GET("/versions/:id", h.GetVersion)
	r.POST("/versions", h.CreateVersion)

	// Commits and materialized state
	r.POST("/versions/:id/commits/:kind", h.Commit)
	r.GET("/versions/:id/entities/:kind", h.ListEntityState)

	// Entity history
	r.GET("/entities/:kind/:entity_id/history", h.GetEntityHistory)
	r.GET("/entities/:kind/:entity_id/diff", h.DiffEntity)

	// Delta
	r.GET("/delta", h.GetProjectDelta)
}
