package core

// JobReader is the view of the registry the verification gate needs: job
// existence and status, nothing else.
type JobReader interface {
	Job(id JobID) (Job, bool)
}

// Verifier gates job completion behind proof verification. It stores one
// JobResult and one proof blob per job, dispatches verification by the
// declared scheme, and on acceptance asks the registry to move the job to
// Verified with the owner's authority.
//
// Not safe for concurrent use; the service layer serializes access.
type Verifier struct {
	clock  *Clock
	limits Limits
	jobs   JobReader
	trans  OwnerTransition

	results map[JobID]*JobResult
	proofs  map[JobID][]byte
	stats   VerificationStats
}

func NewVerifier(clock *Clock, limits Limits, jobs JobReader, trans OwnerTransition) *Verifier {
	return &Verifier{
		clock:   clock,
		limits:  limits,
		jobs:    jobs,
		trans:   trans,
		results: make(map[JobID]*JobResult),
		proofs:  make(map[JobID][]byte),
	}
}

// SubmitProof stores or overwrites the proof blob and result record for a
// job. Allowed while the job is InProgress or Completed and the result is
// not yet verified.
func (v *Verifier) SubmitProof(submitter AccountID, id JobID, resultHash Hash, scheme ProofScheme, proof []byte) error {
	job, ok := v.jobs.Job(id)
	if !ok {
		return opErrorf(CodeJobNotFound, "job %d does not exist", id)
	}
	if job.Status != JobStatusInProgress && job.Status != JobStatusCompleted {
		return opErrorf(CodeInvalidJobStatus, "job %d is %s, proofs need IN_PROGRESS or COMPLETED", id, job.Status)
	}
	if result, ok := v.results[id]; ok && result.Verified {
		return opErrorf(CodeAlreadyVerified, "job %d already has a verified result", id)
	}
	if len(proof) > v.limits.MaxProofBytes {
		return opErrorf(CodeProofTooLarge, "proof is %d bytes, limit %d", len(proof), v.limits.MaxProofBytes)
	}

	v.proofs[id] = append([]byte(nil), proof...)
	v.results[id] = &JobResult{
		ResultHash:  resultHash,
		Scheme:      scheme,
		SubmittedAt: v.clock.Now(),
	}
	v.stats.ProofsSubmitted++
	return nil
}

// VerifyProof runs scheme dispatch over the stored proof. On acceptance the
// result is marked verified and the job is transitioned to Verified as its
// owner. On rejection only the failed counter moves.
func (v *Verifier) VerifyProof(verifier AccountID, id JobID) error {
	result, ok := v.results[id]
	if !ok {
		return opErrorf(CodeResultNotFound, "job %d has no submitted result", id)
	}
	if result.Verified {
		return opErrorf(CodeAlreadyVerified, "job %d already has a verified result", id)
	}
	proof, ok := v.proofs[id]
	if !ok {
		return opErrorf(CodeInvalidProof, "job %d has no proof blob", id)
	}

	var accepted bool
	switch result.Scheme {
	case ProofSchemeSignature:
		accepted = verifySignature(proof)
	case ProofSchemeMerkleRoot:
		accepted = verifyMerkleRoot(proof)
	case ProofSchemeHash:
		accepted = verifyHash(result.ResultHash, proof)
	}

	if !accepted {
		v.stats.ProofsFailed++
		return opErrorf(CodeInvalidProof, "proof for job %d rejected by %s scheme", id, result.Scheme)
	}

	result.Verified = true
	v.stats.ProofsVerified++
	// The owner may have failed the job between proof submission and
	// verification; the verified flag stands regardless, so the transition
	// error is intentionally dropped.
	_ = v.trans.TransitionAsOwner(id, JobStatusVerified)
	return nil
}

// MarkVerified is the privileged recovery path: sets the verified flag and
// requests the owner transition without scheme dispatch. Admin authorization
// is enforced by the caller.
func (v *Verifier) MarkVerified(id JobID) error {
	result, ok := v.results[id]
	if !ok {
		return opErrorf(CodeResultNotFound, "job %d has no submitted result", id)
	}
	result.Verified = true
	v.stats.ProofsVerified++
	_ = v.trans.TransitionAsOwner(id, JobStatusVerified)
	return nil
}

// Result returns a copy of the job's result record.
func (v *Verifier) Result(id JobID) (JobResult, bool) {
	result, ok := v.results[id]
	if !ok {
		return JobResult{}, false
	}
	return *result, true
}

// IsVerified reports whether the job has a verified result.
func (v *Verifier) IsVerified(id JobID) bool {
	result, ok := v.results[id]
	return ok && result.Verified
}

func (v *Verifier) Stats() VerificationStats {
	return v.stats
}

// verifySignature stands in for a real signature check: anything shorter
// than a 64-byte signature is malformed and rejected.
func verifySignature(proof []byte) bool {
	return len(proof) >= 64
}

// verifyMerkleRoot stands in for Merkle path verification: an empty proof
// carries no path and is rejected.
func verifyMerkleRoot(proof []byte) bool {
	return len(proof) > 0
}

// verifyHash is fully specified: the content hash of the proof bytes must
// equal the declared result hash byte-exact.
func verifyHash(expected Hash, proof []byte) bool {
	return HashBytes(proof) == expected
}
