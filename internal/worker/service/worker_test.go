package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orchcore "github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/shared/logging"
	"github.com/milanv/jobhub/pkg/client"
)

type mockOrchestratorClient struct {
	mu sync.Mutex

	ready    []client.Job
	readyErr error

	transitions map[uint64][]string
	proofs      map[uint64][]byte
	verified    []uint64

	submitProofErr error
}

func newMockClient() *mockOrchestratorClient {
	return &mockOrchestratorClient{
		transitions: make(map[uint64][]string),
		proofs:      make(map[uint64][]byte),
	}
}

func (m *mockOrchestratorClient) ReadyJobs(ctx context.Context) ([]client.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readyErr != nil {
		return nil, m.readyErr
	}
	out := m.ready
	m.ready = nil
	return out, nil
}

func (m *mockOrchestratorClient) TransitionJob(ctx context.Context, id uint64, status string) (*client.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[id] = append(m.transitions[id], status)
	return &client.Job{ID: id, Status: status}, nil
}

func (m *mockOrchestratorClient) SubmitProof(ctx context.Context, id uint64, resultHash, scheme string, proof []byte) (*client.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitProofErr != nil {
		return nil, m.submitProofErr
	}
	m.proofs[id] = proof
	return &client.Result{JobID: id, ResultHash: resultHash, Scheme: scheme}, nil
}

func (m *mockOrchestratorClient) VerifyProof(ctx context.Context, id uint64) (*client.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified = append(m.verified, id)
	return &client.Result{JobID: id, Verified: true}, nil
}

func TestExecutorIsDeterministic(t *testing.T) {
	exec := NewHashChainExecutor()
	job := client.Job{ID: 7, Metadata: []byte("meta")}

	first, err := exec.Execute(context.Background(), job)
	require.NoError(t, err)
	second, err := exec.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := exec.Execute(context.Background(), client.Job{ID: 8, Metadata: []byte("meta")})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestExecutorHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHashChainExecutor().Execute(ctx, client.Job{ID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerRunsOwnedReadyJob(t *testing.T) {
	mock := newMockClient()
	mock.ready = []client.Job{
		{ID: 3, Owner: "worker-a", Status: "PENDING"},
		{ID: 4, Owner: "somebody-else", Status: "PENDING"},
	}

	w := NewWorkerService(mock, NewHashChainExecutor(), "worker-a", 10*time.Millisecond, 5, logging.Nop{}).(*workerService)
	w.poll(context.Background())

	mock.mu.Lock()
	defer mock.mu.Unlock()

	assert.Equal(t, []string{
		string(orchcore.JobStatusInProgress),
		string(orchcore.JobStatusCompleted),
	}, mock.transitions[3])
	assert.Empty(t, mock.transitions[4])
	assert.Equal(t, []uint64{3}, mock.verified)

	proof := mock.proofs[3]
	require.NotEmpty(t, proof)
	expected, err := NewHashChainExecutor().Execute(context.Background(), client.Job{ID: 3, Owner: "worker-a", Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, expected, proof)
}

func TestWorkerRespectsMaxBatch(t *testing.T) {
	mock := newMockClient()
	for i := uint64(0); i < 5; i++ {
		mock.ready = append(mock.ready, client.Job{ID: i, Owner: "worker-a"})
	}

	w := NewWorkerService(mock, NewHashChainExecutor(), "worker-a", 10*time.Millisecond, 2, logging.Nop{}).(*workerService)
	w.poll(context.Background())

	mock.mu.Lock()
	defer mock.mu.Unlock()
	assert.Len(t, mock.verified, 2)
}

func TestWorkerFailsJobOnProofSubmissionError(t *testing.T) {
	mock := newMockClient()
	mock.ready = []client.Job{{ID: 1, Owner: "worker-a"}}
	mock.submitProofErr = errors.New("proof rejected")

	w := NewWorkerService(mock, NewHashChainExecutor(), "worker-a", 10*time.Millisecond, 5, logging.Nop{}).(*workerService)
	w.poll(context.Background())

	mock.mu.Lock()
	defer mock.mu.Unlock()
	assert.Equal(t, []string{
		string(orchcore.JobStatusInProgress),
		string(orchcore.JobStatusFailed),
	}, mock.transitions[1])
	assert.Empty(t, mock.verified)
}

func TestWorkerRunStopsOnContextCancel(t *testing.T) {
	mock := newMockClient()
	w := NewWorkerService(mock, NewHashChainExecutor(), "worker-a", time.Millisecond, 1, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
