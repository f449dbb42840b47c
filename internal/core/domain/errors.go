package domain

import "errors"

// ============================================================================
// Project Version Errors
// ============================================================================

var (
	ErrProjectVersionNotFound = errors.New("project version not found")
	ErrProjectVersionConflict = errors.New("project version with this number already exists in the project")
	ErrInvalidProjectVersion  = errors.New("project version numbers must be non-negative")
	ErrInvalidVersionBump     = errors.New("version bump must be one of major, minor, revision")
	ErrCrossProjectVersion    = errors.New("project versions belong to different projects")
	ErrMissingProjectID       = errors.New("project ID is required (Project-ID header)")
)

// ============================================================================
// Versioned Entity Errors
// ============================================================================

// Not found errors
var (
	ErrUnknownBaseEntity = errors.New("unknown base entity")
	ErrRecordNotFound    = errors.New("version record not found")
)

// Conflict errors
var (
	// ErrDuplicateVersionRecord signals a second record for the same
	// (base entity, project version) pair. It is never recoverable inside a commit.
	ErrDuplicateVersionRecord = errors.New("version record already exists for this entity and version")
	ErrBaseEntityConflict     = errors.New("base entity with this name already exists in the project")
)

// Validation errors
var (
	ErrInvalidEntityName   = errors.New("entity name is required")
	ErrInvalidEntityKind   = errors.New("unsupported entity kind")
	ErrInvalidRecord       = errors.New("modification type does not match record content")
	ErrInvalidModType      = errors.New("invalid modification type")
	ErrInvalidCommitMode   = errors.New("invalid commit mode")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrInvalidTraceType    = errors.New("trace type must be MANUAL or GENERATED")
)

// Outcome markers
var (
	// ErrAlreadyRemoved is attached to no-op results; it is never reported as a failure.
	ErrAlreadyRemoved = errors.New("entity already removed")
	ErrSuperseded     = errors.New("superseded by a later item for the same entity in this commit")
)

// ============================================================================
// Import Errors
// ============================================================================

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingColumn     = errors.New("required column missing")
	ErrUnexpectedCell    = errors.New("value outside the header columns")
)
