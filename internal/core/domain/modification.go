package domain

import "strings"

// ModificationType tags a VersionRecord. Any type may follow any other in an
// entity's history; REMOVED followed by ADDED is a re-creation.
type ModificationType string

const (
	ModAdded    ModificationType = "ADDED"
	ModModified ModificationType = "MODIFIED"
	ModRemoved  ModificationType = "REMOVED"
)

func ParseModificationType(s string) (ModificationType, error) {
	switch m := ModificationType(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModAdded, ModModified, ModRemoved:
		return m, nil
	default:
		return "", ErrInvalidModType
	}
}

func (m ModificationType) IsRemoval() bool {
	return m == ModRemoved
}
