package domain

import "slices"

// Document groups a set of artifacts under a name.
type Document struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	DocumentType string   `json:"document_type"`
	Artifacts    []string `json:"artifacts,omitempty"`
}

func (d Document) NaturalKey() string {
	return d.Name
}

// Equal ignores the order of the artifact list.
func (d Document) Equal(other Document) bool {
	if d.Name != other.Name || d.Description != other.Description || d.DocumentType != other.DocumentType {
		return false
	}
	if len(d.Artifacts) != len(other.Artifacts) {
		return false
	}
	a := slices.Clone(d.Artifacts)
	b := slices.Clone(other.Artifacts)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
