package handlers

import (
	"net/http"

	"artifact-version-service/internal/adapters/primary/http/dto"
	"artifact-version-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListVersions(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	versions, err := h.reg.Versions.List(c.Request.Context(), projectID)
	if err != nil {
		log.WithError(err).Error("list versions failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListVersionsResponse(versions))
}

func (h *Handler) GetVersion(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	version, ok := h.loadVersion(c, projectID, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToVersionResponse(version))
}

func (h *Handler) CreateVersion(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	var req dto.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var version *domain.ProjectVersion
	switch {
	case req.Bump != "" && req.HasOrdinals():
		c.JSON(http.StatusBadRequest, gin.H{"error": "specify either bump or major/minor/revision, not both"})
		return
	case req.Bump != "":
		version, err = h.reg.Versions.CreateNext(c.Request.Context(), projectID, domain.VersionBump(req.Bump))
	default:
		major, minor, revision := req.Ordinals()
		version, err = h.reg.Versions.Create(c.Request.Context(), projectID, major, minor, revision)
	}
	if err != nil {
		log.WithError(err).Error("create version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToVersionResponse(version))
}

// loadVersion resolves a version id and checks it belongs to the project.
// It writes the error response itself and reports whether to continue.
func (h *Handler) loadVersion(c *gin.Context, projectID uuid.UUID, raw string) (*domain.ProjectVersion, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version id"})
		return nil, false
	}

	version, err := h.reg.Versions.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return nil, false
	}
	if version.ProjectID != projectID {
		mapDomainError(c, domain.ErrProjectVersionNotFound)
		return nil, false
	}
	return version, true
}

func getProjectID(c *gin.Context) (uuid.UUID, error) {
	header := c.GetHeader("Project-ID")
	if header == "" {
		return uuid.Nil, domain.ErrMissingProjectID
	}
	return uuid.Parse(header)
}
