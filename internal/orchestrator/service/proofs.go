package service

import (
	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/journal"
)

// SubmitProof stores or overwrites the proof and result record for a job.
func (s *Service) SubmitProof(submitter core.AccountID, id core.JobID, resultHash core.Hash, scheme core.ProofScheme, proof []byte) (core.JobResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.verifier.SubmitProof(submitter, id, resultHash, scheme, proof); err != nil {
		return core.JobResult{}, err
	}

	s.record(journal.KindProofSubmit, proofSubmitOp{
		Submitter:  string(submitter),
		JobID:      uint64(id),
		ResultHash: resultHash.String(),
		Scheme:     string(scheme),
		Proof:      proof,
	})
	s.logger.Info("Proof submitted",
		"job_id", uint64(id),
		"scheme", string(scheme),
		"proof_bytes", len(proof),
	)

	result, _ := s.verifier.Result(id)
	return result, nil
}

// VerifyProof runs scheme verification over the stored proof. Both outcomes
// mutate the verification counters, so rejections are journaled alongside
// acceptances; only precondition failures (no result, already verified) are
// not.
func (s *Service) VerifyProof(verifier core.AccountID, id core.JobID) (core.JobResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.applyVerify(verifier, id)
	if err != nil && !core.IsCode(err, core.CodeInvalidProof) {
		return core.JobResult{}, err
	}

	s.record(journal.KindProofVerify, proofVerifyOp{Verifier: string(verifier), JobID: uint64(id)})
	if err != nil {
		s.logger.Warn("Proof rejected", "job_id", uint64(id), "error", err)
		return core.JobResult{}, err
	}
	s.logger.Info("Proof verified", "job_id", uint64(id))

	result, _ := s.verifier.Result(id)
	return result, nil
}

func (s *Service) applyVerify(verifier core.AccountID, id core.JobID) error {
	var prev *core.Height
	if job, ok := s.registry.Job(id); ok {
		prev = job.CompletedAt
	}
	if err := s.verifier.VerifyProof(verifier, id); err != nil {
		return err
	}
	s.countVerifiedJob(id)
	s.recordCompletion(id, prev)
	return nil
}

// MarkVerified is the administrative bypass. Authorization happens at the
// API layer; here it behaves like a verification that always accepts.
func (s *Service) MarkVerified(id core.JobID) (core.JobResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyMarkVerified(id); err != nil {
		return core.JobResult{}, err
	}

	s.record(journal.KindMarkVerified, markVerifiedOp{JobID: uint64(id)})
	s.logger.Warn("Result force-verified", "job_id", uint64(id))

	result, _ := s.verifier.Result(id)
	return result, nil
}

func (s *Service) applyMarkVerified(id core.JobID) error {
	var prev *core.Height
	if job, ok := s.registry.Job(id); ok {
		prev = job.CompletedAt
	}
	if err := s.verifier.MarkVerified(id); err != nil {
		return err
	}
	s.countVerifiedJob(id)
	s.recordCompletion(id, prev)
	return nil
}

// countVerifiedJob bumps the verified total when the job actually sits in
// Verified after the gate ran. The gate drops its transition error, so a
// failed job can carry a verified result without the job counting here.
func (s *Service) countVerifiedJob(id core.JobID) {
	if job, ok := s.registry.Job(id); ok && job.Status == core.JobStatusVerified {
		s.counters.jobsVerified++
	}
}

// GetResult returns the job's result record.
func (s *Service) GetResult(id core.JobID) (core.JobResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.verifier.Result(id)
	if !ok {
		return core.JobResult{}, core.NewError(core.CodeResultNotFound, "job %d has no submitted result", id)
	}
	return result, nil
}
