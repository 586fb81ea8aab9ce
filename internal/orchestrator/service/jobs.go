package service

import (
	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/journal"
)

// SubmitJob validates and stores a new pending job.
func (s *Service) SubmitJob(owner core.AccountID, metadata []byte, dependencies []core.JobID, deadline core.Height) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.registry.Submit(owner, metadata, dependencies, deadline)
	if err != nil {
		return core.Job{}, err
	}
	s.counters.jobsSubmitted++

	s.record(journal.KindJobSubmit, jobSubmitOp{
		Owner:        string(owner),
		Metadata:     metadata,
		Dependencies: jobIDsToUint64(dependencies),
		Deadline:     uint64(deadline),
	})
	s.logger.Info("Job submitted",
		"job_id", uint64(id),
		"owner", string(owner),
		"dependencies", len(dependencies),
		"deadline", uint64(deadline),
	)

	job, _ := s.registry.Job(id)
	return job, nil
}

// TransitionJob moves a job along the status machine with the requester's
// authority and returns the updated record.
func (s *Service) TransitionJob(requester core.AccountID, id core.JobID, to core.JobStatus) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyTransition(requester, id, to); err != nil {
		return core.Job{}, err
	}

	s.record(journal.KindJobTransition, jobTransitionOp{
		Requester: string(requester),
		JobID:     uint64(id),
		To:        string(to),
	})
	s.logger.Info("Job transitioned", "job_id", uint64(id), "to", string(to))

	job, _ := s.registry.Job(id)
	return job, nil
}

func (s *Service) applyTransition(requester core.AccountID, id core.JobID, to core.JobStatus) error {
	var prev *core.Height
	if job, ok := s.registry.Job(id); ok {
		prev = job.CompletedAt
	}
	if err := s.registry.Transition(requester, id, to); err != nil {
		return err
	}
	switch to {
	case core.JobStatusCompleted:
		s.counters.jobsCompleted++
	case core.JobStatusFailed:
		s.counters.jobsFailed++
	case core.JobStatusVerified:
		s.counters.jobsVerified++
	}
	s.recordCompletion(id, prev)
	return nil
}

// RemoveJob deletes a terminal job.
func (s *Service) RemoveJob(owner core.AccountID, id core.JobID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Remove(owner, id); err != nil {
		return err
	}
	s.counters.jobsRemoved++

	s.record(journal.KindJobRemove, jobRemoveOp{Owner: string(owner), JobID: uint64(id)})
	s.logger.Info("Job removed", "job_id", uint64(id), "owner", string(owner))
	return nil
}

// GetJob returns the job record.
func (s *Service) GetJob(id core.JobID) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.registry.Job(id)
	if !ok {
		return core.Job{}, core.NewError(core.CodeJobNotFound, "job %d does not exist", id)
	}
	return job, nil
}

// DependenciesMet reports whether every dependency of the job is satisfied.
func (s *Service) DependenciesMet(id core.JobID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.DependenciesMet(id)
}

// ListJobs returns filtered jobs plus the total match count before paging.
func (s *Service) ListJobs(filter core.JobFilter) ([]core.Job, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Jobs(filter)
}

// ReadyJobs returns every pending job whose dependencies are all satisfied.
func (s *Service) ReadyJobs() []core.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.registry.ReadyJobs()
	jobs := make([]core.Job, 0, len(ids))
	for _, id := range ids {
		if job, ok := s.registry.Job(id); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func jobIDsToUint64(ids []core.JobID) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
