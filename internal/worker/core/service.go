package core

import (
	"context"

	"github.com/milanv/jobhub/pkg/client"
)

// OrchestratorClient is the slice of the REST client the worker loop needs.
type OrchestratorClient interface {
	ReadyJobs(ctx context.Context) ([]client.Job, error)
	TransitionJob(ctx context.Context, id uint64, status string) (*client.Job, error)
	SubmitProof(ctx context.Context, id uint64, resultHash, scheme string, proof []byte) (*client.Result, error)
	VerifyProof(ctx context.Context, id uint64) (*client.Result, error)
}

type WorkerService interface {
	Run(ctx context.Context) error
}

// JobExecutor produces the result bytes for a claimed job. The returned
// bytes are the proof; their content hash is the declared result hash.
type JobExecutor interface {
	Execute(ctx context.Context, job client.Job) ([]byte, error)
}
