package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) (*Verifier, *Registry) {
	t.Helper()
	clock := NewClock()
	registry := NewRegistry(clock, DefaultLimits())
	verifier := NewVerifier(clock, DefaultLimits(), registry, registry.OwnerTransitions())
	return verifier, registry
}

func submitInProgressJob(t *testing.T, r *Registry, owner AccountID) JobID {
	t.Helper()
	id, err := r.Submit(owner, nil, nil, 100)
	require.NoError(t, err)
	require.NoError(t, r.Transition(owner, id, JobStatusInProgress))
	return id
}

func TestSubmitProofPreconditions(t *testing.T) {
	verifier, registry := newTestVerifier(t)

	err := verifier.SubmitProof("worker", 99, Hash{}, ProofSchemeHash, nil)
	assert.Equal(t, CodeJobNotFound, CodeOf(err))

	pending, err := registry.Submit("alice", nil, nil, 100)
	require.NoError(t, err)
	err = verifier.SubmitProof("worker", pending, Hash{}, ProofSchemeHash, nil)
	assert.Equal(t, CodeInvalidJobStatus, CodeOf(err))

	id := submitInProgressJob(t, registry, "alice")
	err = verifier.SubmitProof("worker", id, Hash{}, ProofSchemeHash, bytes.Repeat([]byte{1}, 4097))
	assert.Equal(t, CodeProofTooLarge, CodeOf(err))

	assert.Equal(t, uint64(0), verifier.Stats().ProofsSubmitted)
}

func TestSubmitProofOverwritesUnverifiedResult(t *testing.T) {
	verifier, registry := newTestVerifier(t)
	id := submitInProgressJob(t, registry, "alice")

	require.NoError(t, verifier.SubmitProof("worker", id, HashBytes([]byte("one")), ProofSchemeHash, []byte("one")))
	require.NoError(t, verifier.SubmitProof("worker", id, HashBytes([]byte("two")), ProofSchemeHash, []byte("two")))

	result, ok := verifier.Result(id)
	require.True(t, ok)
	assert.Equal(t, HashBytes([]byte("two")), result.ResultHash)
	assert.False(t, result.Verified)
	assert.Equal(t, uint64(2), verifier.Stats().ProofsSubmitted)
}

func TestVerifyHashProof(t *testing.T) {
	verifier, registry := newTestVerifier(t)
	id := submitInProgressJob(t, registry, "alice")
	require.NoError(t, registry.Transition("alice", id, JobStatusCompleted))

	proof := []byte("computation result")
	require.NoError(t, verifier.SubmitProof("worker", id, HashBytes(proof), ProofSchemeHash, proof))
	require.NoError(t, verifier.VerifyProof("anyone", id))

	assert.True(t, verifier.IsVerified(id))
	job, _ := registry.Job(id)
	assert.Equal(t, JobStatusVerified, job.Status)
	assert.Equal(t, uint64(1), verifier.Stats().ProofsVerified)
}

func TestVerifyHashProofSingleByteFlip(t *testing.T) {
	verifier, registry := newTestVerifier(t)
	id := submitInProgressJob(t, registry, "alice")

	proof := []byte("computation result")
	flipped := append([]byte(nil), proof...)
	flipped[0] ^= 0x01

	require.NoError(t, verifier.SubmitProof("worker", id, HashBytes(proof), ProofSchemeHash, flipped))
	err := verifier.VerifyProof("anyone", id)
	assert.Equal(t, CodeInvalidProof, CodeOf(err))

	// Rejection moves only the failed counter.
	assert.False(t, verifier.IsVerified(id))
	job, _ := registry.Job(id)
	assert.Equal(t, JobStatusInProgress, job.Status)
	assert.Equal(t, uint64(1), verifier.Stats().ProofsFailed)
	assert.Equal(t, uint64(0), verifier.Stats().ProofsVerified)
}

func TestVerifySignatureProof(t *testing.T) {
	tests := []struct {
		name     string
		proof    []byte
		accepted bool
	}{
		{"64 byte signature accepted", bytes.Repeat([]byte{0x5a}, 64), true},
		{"oversized signature accepted", bytes.Repeat([]byte{0x5a}, 96), true},
		{"undersized signature rejected", bytes.Repeat([]byte{0x5a}, 63), false},
		{"empty proof rejected", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, registry := newTestVerifier(t)
			id := submitInProgressJob(t, registry, "alice")
			require.NoError(t, verifier.SubmitProof("worker", id, Hash{}, ProofSchemeSignature, tt.proof))

			err := verifier.VerifyProof("anyone", id)
			if tt.accepted {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, CodeInvalidProof, CodeOf(err))
			}
		})
	}
}

func TestVerifyMerkleRootProof(t *testing.T) {
	verifier, registry := newTestVerifier(t)
	id := submitInProgressJob(t, registry, "alice")

	require.NoError(t, verifier.SubmitProof("worker", id, Hash{}, ProofSchemeMerkleRoot, []byte{0x01}))
	assert.NoError(t, verifier.VerifyProof("anyone", id))
}

func TestVerifyInProgressJobMovesToVerified(t *testing.T) {
	verifier, registry := newTestVerifier(t)
	id := submitInProgressJob(t, registry, "alice")

	proof := []byte("result")
	require.NoError(t, verifier.SubmitProof("worker", id, HashBytes(proof), ProofSchemeHash, proof))
	require.NoError(t, verifier.VerifyProof("anyone", id))

	job, _ := registry.Job(id)
	assert.Equal(t, JobStatusVerified, job.Status)
	require.NotNil(t, job.CompletedAt, "verification of a running job records the completion height")
}

func TestVerifyTwiceFailsAlreadyVerified(t *testing.T) {
	verifier, registry := newTestVerifier(t)
	id := submitInProgressJob(t, registry, "alice")

	proof := []byte("result")
	require.NoError(t, verifier.SubmitProof("worker", id, HashBytes(proof), ProofSchemeHash, proof))
	require.NoError(t, verifier.VerifyProof("anyone", id))

	err := verifier.VerifyProof("anyone", id)
	assert.Equal(t, CodeAlreadyVerified, CodeOf(err))

	err = verifier.SubmitProof("worker", id, HashBytes(proof), ProofSchemeHash, proof)
	assert.Equal(t, CodeAlreadyVerified, CodeOf(err))
}

func TestVerifyWithoutResult(t *testing.T) {
	verifier, _ := newTestVerifier(t)
	err := verifier.VerifyProof("anyone", 0)
	assert.Equal(t, CodeResultNotFound, CodeOf(err))
}

func TestMarkVerifiedBypassesDispatch(t *testing.T) {
	verifier, registry := newTestVerifier(t)
	id := submitInProgressJob(t, registry, "alice")

	// An undersized signature would never verify, but the administrative
	// path does not run dispatch.
	require.NoError(t, verifier.SubmitProof("worker", id, Hash{}, ProofSchemeSignature, []byte{0x01}))
	require.NoError(t, verifier.MarkVerified(id))

	assert.True(t, verifier.IsVerified(id))
	job, _ := registry.Job(id)
	assert.Equal(t, JobStatusVerified, job.Status)

	err := verifier.MarkVerified(99)
	assert.Equal(t, CodeResultNotFound, CodeOf(err))
}
