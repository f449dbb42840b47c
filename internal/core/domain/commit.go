package domain

import (
	"github.com/google/uuid"
)

type CommitMode string

const (
	// CommitModeIncremental applies only the supplied changes.
	CommitModeIncremental CommitMode = "incremental"
	// CommitModeCompleteSet declares the whole current set; anything effective
	// at the preceding version but not supplied is removed.
	CommitModeCompleteSet CommitMode = "complete_set"
)

func ParseCommitMode(s string) (CommitMode, error) {
	switch m := CommitMode(s); m {
	case "", CommitModeIncremental:
		return CommitModeIncremental, nil
	case CommitModeCompleteSet:
		return m, nil
	default:
		return "", ErrInvalidCommitMode
	}
}

// CommitItem is one caller-supplied entity representation. A nil Content or a
// REMOVED hint requests removal. ADDED and MODIFIED hints are advisory.
type CommitItem[C any] struct {
	ID      *uuid.UUID
	Name    string
	Content *C
	Hint    ModificationType
}

func (i CommitItem[C]) RequestsRemoval() bool {
	return i.Content == nil || i.Hint.IsRemoval()
}

// Commit is a batch of changes targeting exactly one project version.
type Commit[C any] struct {
	ProjectID uuid.UUID
	VersionID uuid.UUID
	Mode      CommitMode
	Items     []CommitItem[C]
}

type ItemOutcome string

const (
	OutcomeApplied ItemOutcome = "APPLIED"
	OutcomeNoOp    ItemOutcome = "NO_OP"
	OutcomeFailed  ItemOutcome = "FAILED"
)

// ItemResult reports what happened to one commit item. Index is the item's
// position in the batch, or -1 for removals synthesized by a complete-set commit.
type ItemResult[C any] struct {
	Index        int
	Name         string
	BaseEntityID uuid.UUID
	Outcome      ItemOutcome
	Record       *Record[C]
	Err          error
	Reason       string
}

// CommitSummary groups the applied records by modification type.
type CommitSummary[C any] struct {
	Added    []*Record[C]
	Modified []*Record[C]
	Removed  []*Record[C]
	NoOps    int
	Failed   int
}

func (s *CommitSummary[C]) Applied() int {
	return len(s.Added) + len(s.Modified) + len(s.Removed)
}

func (s *CommitSummary[C]) add(r ItemResult[C]) {
	switch r.Outcome {
	case OutcomeNoOp:
		s.NoOps++
	case OutcomeFailed:
		s.Failed++
	case OutcomeApplied:
		switch r.Record.ModificationType {
		case ModAdded:
			s.Added = append(s.Added, r.Record)
		case ModModified:
			s.Modified = append(s.Modified, r.Record)
		case ModRemoved:
			s.Removed = append(s.Removed, r.Record)
		}
	}
}

type CommitResult[C any] struct {
	Version ProjectVersion
	Kind    EntityKind
	Items   []ItemResult[C]
	Summary CommitSummary[C]
}

// Append records an item result and folds it into the summary.
func (r *CommitResult[C]) Append(item ItemResult[C]) {
	r.Items = append(r.Items, item)
	r.Summary.add(item)
}

// CommitNotification is the kind-independent view of a commit handed to the
// notification collaborator.
type CommitNotification struct {
	ProjectID uuid.UUID
	Version   ProjectVersion
	Kind      EntityKind
	Added     []uuid.UUID
	Modified  []uuid.UUID
	Removed   []uuid.UUID
}

func NewCommitNotification[C any](result *CommitResult[C]) CommitNotification {
	ids := func(records []*Record[C]) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(records))
		for _, r := range records {
			out = append(out, r.BaseEntityID)
		}
		return out
	}
	return CommitNotification{
		ProjectID: result.Version.ProjectID,
		Version:   result.Version,
		Kind:      result.Kind,
		Added:     ids(result.Summary.Added),
		Modified:  ids(result.Summary.Modified),
		Removed:   ids(result.Summary.Removed),
	}
}
