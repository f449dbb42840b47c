package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

// CommitProcessor applies batches of changes of one entity kind to a single
// target version. Items fail independently; only a duplicate version record
// aborts the batch.
type CommitProcessor[C any] struct {
	store    *VersionedStore[C]
	versions *ProjectVersionService
	refs     ReferenceResolver[C]
	notifier ports.ChangeNotifier
	locks    *VersionLocks
}

// NewCommitProcessor wires a processor. refs and notifier may be nil; a nil
// locks gets a private lock set.
func NewCommitProcessor[C any](store *VersionedStore[C], versions *ProjectVersionService, refs ReferenceResolver[C], notifier ports.ChangeNotifier, locks *VersionLocks) *CommitProcessor[C] {
	if locks == nil {
		locks = NewVersionLocks()
	}
	return &CommitProcessor[C]{
		store:    store,
		versions: versions,
		refs:     refs,
		notifier: notifier,
		locks:    locks,
	}
}

// draft is the classified, not yet persisted form of one commit item.
type draft[C any] struct {
	index   int
	name    string
	entity  *domain.BaseEntity
	isNew   bool
	modType domain.ModificationType
	content domain.Content[C]

	noop   bool
	record *domain.Record[C]
	reason string
	err    error
}

func (d *draft[C]) fail(err error) {
	d.err = err
}

func (d *draft[C]) skip(rec *domain.Record[C], reason string) {
	d.noop = true
	d.record = rec
	d.reason = reason
}

// Commit classifies every item against the version preceding the target, then
// appends the resulting records. Nothing is written until every item has been
// classified, so a cancelled context before that point leaves no trace.
func (p *CommitProcessor[C]) Commit(ctx context.Context, commit domain.Commit[C]) (*domain.CommitResult[C], error) {
	kind := p.store.Kind().Kind
	ctx, span := tracer.Start(ctx, "CommitProcessor.Commit", trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("version_id", commit.VersionID.String()),
		attribute.Int("items", len(commit.Items)),
	))
	defer span.End()

	mode, err := domain.ParseCommitMode(string(commit.Mode))
	if err != nil {
		return nil, err
	}

	target, err := p.versions.Get(ctx, commit.VersionID)
	if err != nil {
		return nil, err
	}
	if commit.ProjectID != uuid.Nil && commit.ProjectID != target.ProjectID {
		return nil, domain.ErrCrossProjectVersion
	}

	start := time.Now()
	defer func() {
		commitDuration.WithLabelValues(string(kind), string(mode)).Observe(time.Since(start).Seconds())
	}()

	unlock := p.locks.Lock(target.ProjectID, target.ID)
	defer unlock()

	preceding, err := p.versions.Preceding(ctx, *target)
	if err != nil {
		return nil, err
	}

	drafts, err := p.plan(ctx, commit.Items, *target, preceding)
	if errors.Is(err, domain.ErrDuplicateVersionRecord) {
		return p.abort(span, &domain.CommitResult[C]{Version: *target, Kind: kind}, err)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.CommitResult[C]{Version: *target, Kind: kind}
	if err := p.apply(ctx, drafts, *target, result); err != nil {
		return p.abort(span, result, err)
	}

	if mode == domain.CommitModeCompleteSet && preceding != nil {
		if err := p.reconcile(ctx, drafts, *target, *preceding, result); err != nil {
			return p.abort(span, result, err)
		}
	}

	for _, item := range result.Items {
		commitItemsTotal.WithLabelValues(string(kind), string(item.Outcome)).Inc()
	}

	log.WithFields(log.Fields{
		"kind":     kind,
		"project":  target.ProjectID,
		"version":  target.String(),
		"mode":     mode,
		"added":    len(result.Summary.Added),
		"modified": len(result.Summary.Modified),
		"removed":  len(result.Summary.Removed),
		"no_ops":   result.Summary.NoOps,
		"failed":   result.Summary.Failed,
	}).Info("commit applied")

	if p.notifier != nil && result.Summary.Applied() > 0 {
		p.notifier.Notify(ctx, domain.NewCommitNotification(result))
	}

	return result, nil
}

func (p *CommitProcessor[C]) abort(span trace.Span, result *domain.CommitResult[C], err error) (*domain.CommitResult[C], error) {
	kind := p.store.Kind().Kind
	commitAborts.WithLabelValues(string(kind)).Inc()
	span.SetStatus(codes.Error, err.Error())
	log.WithError(err).WithFields(log.Fields{
		"kind":    kind,
		"version": result.Version.String(),
		"applied": result.Summary.Applied(),
	}).Error("commit aborted")
	return result, err
}

// plan resolves and classifies every item without writing anything.
func (p *CommitProcessor[C]) plan(ctx context.Context, items []domain.CommitItem[C], target domain.ProjectVersion, preceding *domain.ProjectVersion) ([]*draft[C], error) {
	drafts := make([]*draft[C], len(items))
	byEntity := make(map[uuid.UUID]*draft[C], len(items))
	planned := make(map[string]*domain.BaseEntity)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := &draft[C]{index: i, name: p.itemName(item)}
		drafts[i] = d

		entity, isNew, err := p.resolve(ctx, item, d.name, target, planned)
		if err != nil {
			d.fail(err)
			continue
		}
		d.entity, d.isNew, d.name = entity, isNew, entity.Name

		// A later item for the same entity corrects the earlier, unpersisted draft.
		if earlier, ok := byEntity[entity.ID]; ok && earlier.err == nil {
			earlier.skip(nil, domain.ErrSuperseded.Error())
		}
		byEntity[entity.ID] = d

		if err := p.classify(ctx, d, item, target, preceding); err != nil {
			return nil, err
		}
	}
	return drafts, nil
}

func (p *CommitProcessor[C]) itemName(item domain.CommitItem[C]) string {
	if item.Name != "" || item.Content == nil {
		return strings.TrimSpace(item.Name)
	}
	return strings.TrimSpace(p.store.Kind().NaturalKey(*item.Content))
}

// resolve finds the item's base entity. Unknown names are planned as new
// entities unless the item asks for removal.
func (p *CommitProcessor[C]) resolve(ctx context.Context, item domain.CommitItem[C], name string, target domain.ProjectVersion, planned map[string]*domain.BaseEntity) (*domain.BaseEntity, bool, error) {
	if item.ID != nil {
		entity, err := p.store.Entity(ctx, *item.ID)
		if errors.Is(err, domain.ErrUnknownBaseEntity) {
			return nil, false, fmt.Errorf("%w: %s", domain.ErrUnknownBaseEntity, item.ID)
		}
		if err != nil {
			return nil, false, err
		}
		if entity.ProjectID != target.ProjectID {
			return nil, false, fmt.Errorf("%w: %s", domain.ErrUnknownBaseEntity, item.ID)
		}
		return entity, false, nil
	}

	if name == "" {
		return nil, false, domain.ErrInvalidEntityName
	}
	if entity, ok := planned[name]; ok {
		return entity, true, nil
	}

	entity, err := p.store.EntityByName(ctx, target.ProjectID, name)
	switch {
	case err == nil:
		return entity, false, nil
	case !errors.Is(err, domain.ErrUnknownBaseEntity):
		return nil, false, err
	case item.RequestsRemoval():
		return nil, false, fmt.Errorf("%w: %q", domain.ErrUnknownBaseEntity, name)
	}

	entity, err = domain.NewBaseEntity(target.ProjectID, p.store.Kind().Kind, name)
	if err != nil {
		return nil, false, err
	}
	planned[name] = entity
	return entity, true, nil
}

// classify decides the modification type of a resolved item. Only storage
// invariant violations are returned; item problems are recorded on the draft.
func (p *CommitProcessor[C]) classify(ctx context.Context, d *draft[C], item domain.CommitItem[C], target domain.ProjectVersion, preceding *domain.ProjectVersion) error {
	var predecessor, existing *domain.Record[C]
	if !d.isNew {
		var err error
		if preceding != nil {
			if predecessor, err = p.store.LatestRecordAt(ctx, d.entity.ID, *preceding); err != nil {
				d.fail(err)
				return nil
			}
		}
		if existing, err = p.store.RecordAt(ctx, d.entity.ID, target); err != nil {
			d.fail(err)
			return nil
		}
	}
	hasPredecessor := predecessor != nil && !predecessor.IsRemoved()

	switch {
	case item.RequestsRemoval():
		if !hasPredecessor {
			return p.skipUnchanged(d, predecessor, existing, domain.Removed[C](), target, domain.ErrAlreadyRemoved.Error())
		}
		d.modType, d.content = domain.ModRemoved, domain.Removed[C]()

	default:
		if p.refs != nil {
			if err := p.refs.Resolve(ctx, target, *item.Content); err != nil {
				d.fail(err)
				return nil
			}
		}
		switch {
		case !hasPredecessor:
			d.modType = domain.ModAdded
		case p.store.Kind().ContentEquals(predecessor.Content.Value(), *item.Content):
			return p.skipUnchanged(d, predecessor, existing, domain.Present(*item.Content), target, "content unchanged")
		default:
			d.modType = domain.ModModified
		}
		d.content = domain.Present(*item.Content)
	}

	if item.Hint != "" && item.Hint != d.modType {
		log.WithFields(log.Fields{
			"entity":   d.name,
			"hint":     item.Hint,
			"computed": d.modType,
		}).Debug("modification hint differs from computed type")
	}

	return p.compareExisting(d, existing, target)
}

// skipUnchanged records a no-op for an item that matches its predecessor. A
// record already at the target version wins over the predecessor: the item is
// a retry only if it asks for that record's state.
func (p *CommitProcessor[C]) skipUnchanged(d *draft[C], predecessor, existing *domain.Record[C], content domain.Content[C], target domain.ProjectVersion, reason string) error {
	if existing == nil {
		d.skip(predecessor, reason)
		return nil
	}
	if p.store.Kind().sameContent(existing.Content, content) {
		d.skip(existing, "already applied at this version")
		return nil
	}
	return p.duplicate(d, target)
}

// checkExisting turns a retry of an already applied change into a no-op and
// rejects any other second record at the target version.
func (p *CommitProcessor[C]) checkExisting(ctx context.Context, d *draft[C], target domain.ProjectVersion) error {
	existing, err := p.store.RecordAt(ctx, d.entity.ID, target)
	if err != nil {
		d.fail(err)
		return nil
	}
	return p.compareExisting(d, existing, target)
}

func (p *CommitProcessor[C]) compareExisting(d *draft[C], existing *domain.Record[C], target domain.ProjectVersion) error {
	if existing == nil {
		return nil
	}
	if existing.ModificationType == d.modType && p.store.Kind().sameContent(existing.Content, d.content) {
		d.skip(existing, "already applied at this version")
		return nil
	}
	return p.duplicate(d, target)
}

func (p *CommitProcessor[C]) duplicate(d *draft[C], target domain.ProjectVersion) error {
	return fmt.Errorf("%s %q at %s: %w", p.store.Kind().Kind, d.name, target, domain.ErrDuplicateVersionRecord)
}

// apply persists the drafts in item order. A duplicate record is fatal.
func (p *CommitProcessor[C]) apply(ctx context.Context, drafts []*draft[C], target domain.ProjectVersion, result *domain.CommitResult[C]) error {
	created := make(map[uuid.UUID]bool)

	for _, d := range drafts {
		item := domain.ItemResult[C]{Index: d.index, Name: d.name}
		if d.entity != nil {
			item.BaseEntityID = d.entity.ID
		}

		switch {
		case d.err != nil:
			item.Outcome, item.Err, item.Reason = domain.OutcomeFailed, d.err, d.err.Error()
			result.Append(item)
			continue
		case d.noop:
			item.Outcome, item.Record, item.Reason = domain.OutcomeNoOp, d.record, d.reason
			result.Append(item)
			continue
		}

		if d.isNew && !created[d.entity.ID] {
			planned := d.entity.ID
			err := p.store.entities.Create(ctx, d.entity)
			if errors.Is(err, domain.ErrBaseEntityConflict) {
				err = p.adopt(ctx, d, target)
			}
			if err != nil {
				if errors.Is(err, domain.ErrDuplicateVersionRecord) {
					return err
				}
				item.Outcome, item.Err, item.Reason = domain.OutcomeFailed, err, err.Error()
				result.Append(item)
				continue
			}
			created[planned] = true
			item.BaseEntityID = d.entity.ID
			if d.noop {
				item.Outcome, item.Record, item.Reason = domain.OutcomeNoOp, d.record, d.reason
				result.Append(item)
				continue
			}
		}

		rec, err := p.store.Append(ctx, d.entity, target, d.modType, d.content)
		if errors.Is(err, domain.ErrDuplicateVersionRecord) {
			return err
		}
		if err != nil {
			item.Outcome, item.Err, item.Reason = domain.OutcomeFailed, err, err.Error()
			result.Append(item)
			continue
		}
		item.Outcome, item.Record = domain.OutcomeApplied, rec
		result.Append(item)
	}
	return nil
}

// adopt switches a draft planned as a new entity to the entity another writer
// created under the same name after planning. The draft stays an addition
// only while nothing is effective for that entity at the target version.
func (p *CommitProcessor[C]) adopt(ctx context.Context, d *draft[C], target domain.ProjectVersion) error {
	entity, err := p.store.EntityByName(ctx, target.ProjectID, d.name)
	if err != nil {
		return err
	}
	d.entity, d.isNew = entity, false

	latest, err := p.store.LatestRecordAt(ctx, entity.ID, target)
	if err != nil {
		return err
	}
	switch {
	case latest == nil:
		return nil
	case latest.Version.ID == target.ID:
		return p.compareExisting(d, latest, target)
	case latest.IsRemoved():
		return nil
	}
	return fmt.Errorf("%w: %q", domain.ErrBaseEntityConflict, d.name)
}

// reconcile removes every entity effective at the preceding version that the
// complete-set commit did not mention.
func (p *CommitProcessor[C]) reconcile(ctx context.Context, drafts []*draft[C], target, preceding domain.ProjectVersion, result *domain.CommitResult[C]) error {
	previous, err := p.store.AllEffectiveAt(ctx, preceding)
	if err != nil {
		return err
	}

	supplied := make(map[uuid.UUID]bool, len(drafts))
	for _, d := range drafts {
		if d.entity != nil {
			supplied[d.entity.ID] = true
		}
	}

	missing := make([]uuid.UUID, 0)
	for id := range previous {
		if !supplied[id] {
			missing = append(missing, id)
		}
	}
	missing = domain.SortedIDs(missing)

	for _, id := range missing {
		item := domain.ItemResult[C]{Index: -1, BaseEntityID: id}

		entity, err := p.store.Entity(ctx, id)
		if err != nil {
			item.Outcome, item.Err, item.Reason = domain.OutcomeFailed, err, err.Error()
			result.Append(item)
			continue
		}
		item.Name = entity.Name

		d := &draft[C]{index: -1, name: entity.Name, entity: entity, modType: domain.ModRemoved, content: domain.Removed[C]()}
		if err := p.checkExisting(ctx, d, target); err != nil {
			return err
		}
		if d.noop {
			item.Outcome, item.Record, item.Reason = domain.OutcomeNoOp, d.record, d.reason
			result.Append(item)
			continue
		}

		rec, err := p.store.Append(ctx, entity, target, domain.ModRemoved, domain.Removed[C]())
		if errors.Is(err, domain.ErrDuplicateVersionRecord) {
			return err
		}
		if err != nil {
			item.Outcome, item.Err, item.Reason = domain.OutcomeFailed, err, err.Error()
			result.Append(item)
			continue
		}
		item.Outcome, item.Record, item.Reason = domain.OutcomeApplied, rec, "not in complete set"
		result.Append(item)
	}
	return nil
}
