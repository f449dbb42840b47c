package domain

import "maps"

// Artifact is the content of a requirement, design element or other
// engineering artifact at one project version.
type Artifact struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Summary    string            `json:"summary"`
	Body       string            `json:"body"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (a Artifact) NaturalKey() string {
	return a.Name
}

// Equal treats a nil attribute map and an empty one as the same content.
func (a Artifact) Equal(other Artifact) bool {
	return a.Name == other.Name &&
		a.Type == other.Type &&
		a.Summary == other.Summary &&
		a.Body == other.Body &&
		maps.Equal(a.Attributes, other.Attributes)
}
