package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*Registry, *Clock) {
	clock := NewClock()
	return NewRegistry(clock, DefaultLimits()), clock
}

func mustSubmit(t *testing.T, r *Registry, owner AccountID, deps []JobID) JobID {
	t.Helper()
	id, err := r.Submit(owner, []byte("meta"), deps, 100)
	require.NoError(t, err)
	return id
}

func TestSubmitAssignsIncreasingIDs(t *testing.T) {
	r, _ := newTestRegistry()

	var last JobID
	for i := 0; i < 5; i++ {
		id, err := r.Submit("alice", nil, nil, 100)
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, id, last)
		}
		last = id
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name     string
		metadata []byte
		deps     []JobID
		deadline Height
		code     ErrorCode
	}{
		{
			name:     "metadata too large",
			metadata: bytes.Repeat([]byte{0xab}, 257),
			deadline: 100,
			code:     CodeMetadataTooLarge,
		},
		{
			name:     "too many dependencies",
			deps:     make([]JobID, 11),
			deadline: 100,
			code:     CodeTooManyDependencies,
		},
		{
			name:     "deadline at current height",
			deadline: 0,
			code:     CodeDeadlineInPast,
		},
		{
			name:     "dependency does not exist",
			deps:     []JobID{42},
			deadline: 100,
			code:     CodeDependencyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry()
			before := r.NextID()

			_, err := r.Submit("alice", tt.metadata, tt.deps, tt.deadline)
			assert.Equal(t, tt.code, CodeOf(err))
			assert.Equal(t, before, r.NextID(), "id counter must not advance on rejection")
		})
	}
}

func TestSubmitDeadlineMustBeStrictlyFuture(t *testing.T) {
	r, clock := newTestRegistry()
	clock.Set(50)

	_, err := r.Submit("alice", nil, nil, 50)
	assert.Equal(t, CodeDeadlineInPast, CodeOf(err))

	_, err = r.Submit("alice", nil, nil, 51)
	assert.NoError(t, err)
}

func TestSubmitDependencyDepthBound(t *testing.T) {
	clock := NewClock()
	limits := DefaultLimits()
	limits.MaxDependencyDepth = 3
	r := NewRegistry(clock, limits)

	a := mustSubmit(t, r, "alice", nil)
	b := mustSubmit(t, r, "alice", []JobID{a})
	c := mustSubmit(t, r, "alice", []JobID{b})

	// Depending on c walks c, b, a at depths 0..2, still within the bound.
	d, err := r.Submit("alice", nil, []JobID{c}, 100)
	require.NoError(t, err)

	// Depending on d walks one level deeper and trips it.
	_, err = r.Submit("alice", nil, []JobID{d}, 100)
	assert.Equal(t, CodeMaxDependencyDepthExceeded, CodeOf(err))
}

func TestSubmitPerAccountCap(t *testing.T) {
	clock := NewClock()
	limits := DefaultLimits()
	limits.MaxJobsPerAccount = 2
	r := NewRegistry(clock, limits)

	mustSubmit(t, r, "alice", nil)
	mustSubmit(t, r, "alice", nil)

	_, err := r.Submit("alice", nil, nil, 100)
	assert.Equal(t, CodeMaxJobsReached, CodeOf(err))

	// Other accounts are unaffected.
	_, err = r.Submit("bob", nil, nil, 100)
	assert.NoError(t, err)
}

func TestTransitionTable(t *testing.T) {
	all := []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusVerified, JobStatusFailed}
	allowed := map[JobStatus][]JobStatus{
		JobStatusPending:    {JobStatusInProgress, JobStatusFailed},
		JobStatusInProgress: {JobStatusCompleted, JobStatusFailed, JobStatusVerified},
		JobStatusCompleted:  {JobStatusVerified},
		JobStatusVerified:   {},
		JobStatusFailed:     {},
	}

	path := map[JobStatus][]JobStatus{
		JobStatusPending:    {},
		JobStatusInProgress: {JobStatusInProgress},
		JobStatusCompleted:  {JobStatusInProgress, JobStatusCompleted},
		JobStatusVerified:   {JobStatusInProgress, JobStatusCompleted, JobStatusVerified},
		JobStatusFailed:     {JobStatusFailed},
	}

	for from, steps := range path {
		for _, to := range all {
			r, _ := newTestRegistry()
			id := mustSubmit(t, r, "alice", nil)
			for _, step := range steps {
				require.NoError(t, r.Transition("alice", id, step))
			}

			err := r.Transition("alice", id, to)
			if contains(allowed[from], to) {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
			} else {
				assert.Equal(t, CodeInvalidStatusTransition, CodeOf(err), "%s -> %s should be rejected", from, to)
				job, ok := r.Job(id)
				require.True(t, ok)
				assert.Equal(t, from, job.Status, "rejected transition must not change state")
			}
		}
	}
}

func TestTransitionAuthorization(t *testing.T) {
	r, _ := newTestRegistry()
	id := mustSubmit(t, r, "alice", nil)

	err := r.Transition("bob", id, JobStatusInProgress)
	assert.Equal(t, CodeNotAuthorized, CodeOf(err))

	err = r.Transition("alice", 99, JobStatusInProgress)
	assert.Equal(t, CodeJobNotFound, CodeOf(err))
}

func TestTransitionUpdatesStatusIndex(t *testing.T) {
	r, _ := newTestRegistry()
	id := mustSubmit(t, r, "alice", nil)

	require.NoError(t, r.Transition("alice", id, JobStatusInProgress))
	assert.Empty(t, r.JobsByStatus(JobStatusPending))
	assert.Equal(t, []JobID{id}, r.JobsByStatus(JobStatusInProgress))
}

func TestCompletionHeightRecordedOnce(t *testing.T) {
	r, clock := newTestRegistry()
	id := mustSubmit(t, r, "alice", nil)

	require.NoError(t, r.Transition("alice", id, JobStatusInProgress))
	clock.Set(7)
	require.NoError(t, r.Transition("alice", id, JobStatusCompleted))

	job, _ := r.Job(id)
	require.NotNil(t, job.CompletedAt)
	assert.Equal(t, Height(7), *job.CompletedAt)

	clock.Set(9)
	require.NoError(t, r.Transition("alice", id, JobStatusVerified))

	job, _ = r.Job(id)
	assert.Equal(t, Height(7), *job.CompletedAt, "verification must not overwrite the completion height")
}

func TestRemove(t *testing.T) {
	r, _ := newTestRegistry()
	id := mustSubmit(t, r, "alice", nil)

	// Pending jobs cannot be removed, and a failed removal leaves every
	// index intact.
	err := r.Remove("alice", id)
	assert.Equal(t, CodeInvalidStatusTransition, CodeOf(err))
	assert.Equal(t, []JobID{id}, r.JobsByOwner("alice"))
	assert.Equal(t, []JobID{id}, r.JobsByStatus(JobStatusPending))

	require.NoError(t, r.Transition("alice", id, JobStatusInProgress))
	require.NoError(t, r.Transition("alice", id, JobStatusCompleted))

	err = r.Remove("bob", id)
	assert.Equal(t, CodeNotAuthorized, CodeOf(err))

	require.NoError(t, r.Remove("alice", id))
	_, ok := r.Job(id)
	assert.False(t, ok)
	assert.Empty(t, r.JobsByOwner("alice"))
	assert.Empty(t, r.JobsByStatus(JobStatusCompleted))
}

func TestDependenciesMet(t *testing.T) {
	r, _ := newTestRegistry()
	dep := mustSubmit(t, r, "alice", nil)
	id := mustSubmit(t, r, "alice", []JobID{dep})

	assert.False(t, r.DependenciesMet(id), "pending dependency is unmet")

	require.NoError(t, r.Transition("alice", dep, JobStatusInProgress))
	assert.False(t, r.DependenciesMet(id), "in-progress dependency is unmet")

	require.NoError(t, r.Transition("alice", dep, JobStatusCompleted))
	assert.True(t, r.DependenciesMet(id))

	require.NoError(t, r.Transition("alice", dep, JobStatusVerified))
	assert.True(t, r.DependenciesMet(id), "verified dependency is met")

	require.NoError(t, r.Remove("alice", dep))
	assert.False(t, r.DependenciesMet(id), "removed dependency is unmet")

	assert.False(t, r.DependenciesMet(99), "missing job has no met dependencies")
}

func TestReadyJobsScenario(t *testing.T) {
	r, _ := newTestRegistry()

	a := mustSubmit(t, r, "alice", nil)
	b := mustSubmit(t, r, "alice", []JobID{a})

	assert.Equal(t, []JobID{a}, r.ReadyJobs())

	require.NoError(t, r.Transition("alice", a, JobStatusInProgress))
	assert.Empty(t, r.ReadyJobs())

	require.NoError(t, r.Transition("alice", a, JobStatusCompleted))
	assert.Equal(t, []JobID{b}, r.ReadyJobs())
}

func TestJobsFilterAndPagination(t *testing.T) {
	r, _ := newTestRegistry()
	for i := 0; i < 3; i++ {
		mustSubmit(t, r, "alice", nil)
	}
	bob := mustSubmit(t, r, "bob", nil)
	require.NoError(t, r.Transition("bob", bob, JobStatusInProgress))

	owner := AccountID("alice")
	jobs, total := r.Jobs(JobFilter{Owner: &owner})
	assert.Equal(t, 3, total)
	assert.Len(t, jobs, 3)

	status := JobStatusInProgress
	jobs, total = r.Jobs(JobFilter{Status: &status})
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, bob, jobs[0].ID)

	jobs, total = r.Jobs(JobFilter{Owner: &owner, Limit: 2, Offset: 2})
	assert.Equal(t, 3, total)
	assert.Len(t, jobs, 1)
}

func TestStatusBucketCapacity(t *testing.T) {
	clock := NewClock()
	limits := DefaultLimits()
	limits.MaxStatusBucket = 2
	r := NewRegistry(clock, limits)

	mustSubmit(t, r, "alice", nil)
	mustSubmit(t, r, "alice", nil)

	_, err := r.Submit("alice", nil, nil, 100)
	assert.Equal(t, CodeStatusBucketFull, CodeOf(err))
}

func TestJobReturnsCopy(t *testing.T) {
	r, _ := newTestRegistry()
	id, err := r.Submit("alice", []byte("meta"), nil, 100)
	require.NoError(t, err)

	job, _ := r.Job(id)
	job.Metadata[0] = 'X'

	fresh, _ := r.Job(id)
	assert.Equal(t, []byte("meta"), fresh.Metadata)
}

func contains(statuses []JobStatus, s JobStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
