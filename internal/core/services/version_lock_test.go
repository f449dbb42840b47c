package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact-version-service/internal/core/domain"
)

func TestVersionLocks_SerializesSameVersion(t *testing.T) {
	locks := NewVersionLocks()
	project, version := uuid.New(), uuid.New()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(project, version)
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, locks.locks)
}

func TestVersionLocks_OtherVersionsDoNotBlock(t *testing.T) {
	locks := NewVersionLocks()
	project := uuid.New()

	unlock := locks.Lock(project, uuid.New())
	defer unlock()

	done := make(chan struct{})
	go func() {
		locks.Lock(project, uuid.New())()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different version blocked")
	}
}

func TestCommitProcessor_ConcurrentCommitsSameVersion(t *testing.T) {
	f := newFixture(t)
	v1 := f.version(1, 0, 0)

	const writers = 8
	results := make([]*domain.CommitResult[domain.Artifact], writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.reg.Artifacts.Commits.Commit(f.ctx, domain.Commit[domain.Artifact]{
				VersionID: v1.ID,
				Items:     []domain.CommitItem[domain.Artifact]{upsert(artifact("RE-1", "alpha"))},
			})
		}(i)
	}
	wg.Wait()

	applied := 0
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i].Items, 1)
		switch results[i].Items[0].Outcome {
		case domain.OutcomeApplied:
			applied++
		default:
			assert.Equal(t, domain.OutcomeNoOp, results[i].Items[0].Outcome)
			assert.Equal(t, "already applied at this version", results[i].Items[0].Reason)
		}
	}
	assert.Equal(t, 1, applied)

	history, err := f.reg.Artifacts.Store.HistoryOf(f.ctx, f.artifactID("RE-1"))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCommitProcessor_ConcurrentConflictingCommits(t *testing.T) {
	f := newFixture(t)
	v1 := f.version(1, 0, 0)

	const writers = 4
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := string(rune('a' + i))
			_, errs[i] = f.reg.Artifacts.Commits.Commit(f.ctx, domain.Commit[domain.Artifact]{
				VersionID: v1.ID,
				Items:     []domain.CommitItem[domain.Artifact]{upsert(artifact("RE-1", body))},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateVersionRecord)
	}
	assert.Equal(t, 1, succeeded)

	history, err := f.reg.Artifacts.Store.HistoryOf(f.ctx, f.artifactID("RE-1"))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
