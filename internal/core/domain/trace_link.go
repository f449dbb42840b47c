package domain

import (
	"fmt"
	"strings"
)

type ApprovalStatus string

const (
	ApprovalUnreviewed ApprovalStatus = "UNREVIEWED"
	ApprovalApproved   ApprovalStatus = "APPROVED"
	ApprovalDeclined   ApprovalStatus = "DECLINED"
)

type TraceType string

const (
	TraceTypeManual    TraceType = "MANUAL"
	TraceTypeGenerated TraceType = "GENERATED"
)

func ParseTraceType(s string) (TraceType, error) {
	switch t := TraceType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TraceTypeManual, TraceTypeGenerated:
		return t, nil
	default:
		return "", ErrInvalidTraceType
	}
}

// TraceLink connects two artifacts by name. Both ends must be effective at the
// version the link is committed to.
type TraceLink struct {
	Source    string         `json:"source"`
	Target    string         `json:"target"`
	TraceType TraceType      `json:"trace_type"`
	Approval  ApprovalStatus `json:"approval"`
	Score     float64        `json:"score"`
}

// NaturalKey identifies a link by its ordered endpoints.
func (t TraceLink) NaturalKey() string {
	return TraceLinkKey(t.Source, t.Target)
}

func (t TraceLink) Equal(other TraceLink) bool {
	return t == other
}

func TraceLinkKey(source, target string) string {
	return fmt.Sprintf("%s->%s", source, target)
}
