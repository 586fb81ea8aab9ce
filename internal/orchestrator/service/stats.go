package service

import (
	"github.com/milanv/jobhub/internal/orchestrator/core"
)

// StatsSnapshot is a consistent view of every counter the orchestrator
// exposes, taken under the service lock.
type StatsSnapshot struct {
	Height core.Height

	// Live job population.
	JobsByStatus map[core.JobStatus]int
	TotalJobs    int
	NextJobID    core.JobID

	// Monotonic operation totals.
	JobsSubmitted uint64
	JobsCompleted uint64
	JobsFailed    uint64
	JobsVerified  uint64
	JobsRemoved   uint64

	Verification core.VerificationStats
	Events       core.EventStats

	PendingEvents int

	// Execution time in heights, over the retained sample window.
	SampleCount        int
	AvgExecutionHeight uint64
}

// Stats returns a snapshot of the orchestrator's state counters.
func (s *Service) Stats() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	byStatus := make(map[core.JobStatus]int, 5)
	total := 0
	for _, status := range []core.JobStatus{
		core.JobStatusPending,
		core.JobStatusInProgress,
		core.JobStatusCompleted,
		core.JobStatusVerified,
		core.JobStatusFailed,
	} {
		n := len(s.registry.JobsByStatus(status))
		byStatus[status] = n
		total += n
	}

	return StatsSnapshot{
		Height:             s.clock.Now(),
		JobsByStatus:       byStatus,
		TotalJobs:          total,
		NextJobID:          s.registry.NextID(),
		JobsSubmitted:      s.counters.jobsSubmitted,
		JobsCompleted:      s.counters.jobsCompleted,
		JobsFailed:         s.counters.jobsFailed,
		JobsVerified:       s.counters.jobsVerified,
		JobsRemoved:        s.counters.jobsRemoved,
		Verification:       s.verifier.Stats(),
		Events:             s.hub.Stats(),
		PendingEvents:      len(s.hub.PendingEvents()),
		SampleCount:        s.samples.Len(),
		AvgExecutionHeight: s.samples.Average(),
	}
}

// ExecutionSamples returns the retained execution-time samples oldest first.
func (s *Service) ExecutionSamples() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples.Values()
}
