package handlers

import (
	"errors"
	"net/http"

	"artifact-version-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrProjectVersionNotFound),
		errors.Is(err, domain.ErrUnknownBaseEntity),
		errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrProjectVersionConflict),
		errors.Is(err, domain.ErrDuplicateVersionRecord),
		errors.Is(err, domain.ErrBaseEntityConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrMissingProjectID),
		errors.Is(err, domain.ErrInvalidProjectVersion),
		errors.Is(err, domain.ErrInvalidVersionBump),
		errors.Is(err, domain.ErrCrossProjectVersion),
		errors.Is(err, domain.ErrInvalidEntityName),
		errors.Is(err, domain.ErrInvalidEntityKind),
		errors.Is(err, domain.ErrInvalidRecord),
		errors.Is(err, domain.ErrInvalidModType),
		errors.Is(err, domain.ErrInvalidCommitMode),
		errors.Is(err, domain.ErrUnresolvedReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
