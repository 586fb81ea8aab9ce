package service

import (
	"context"
	"fmt"

	orchcore "github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/worker/core"
	"github.com/milanv/jobhub/pkg/client"
)

// hashChainRounds sets how much work the placeholder computation does.
const hashChainRounds = 16

type hashChainExecutor struct{}

// NewHashChainExecutor returns an executor that derives a deterministic
// result from the job id and metadata by iterating a hash chain. Every
// worker computes the same bytes for the same job, so independently
// submitted proofs agree.
func NewHashChainExecutor() core.JobExecutor {
	return &hashChainExecutor{}
}

func (e *hashChainExecutor) Execute(ctx context.Context, job client.Job) ([]byte, error) {
	seed := []byte(fmt.Sprintf("jobhub:job:%d:", job.ID))
	seed = append(seed, job.Metadata...)

	digest := orchcore.HashBytes(seed)
	for i := 0; i < hashChainRounds; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		digest = orchcore.HashBytes(digest[:])
	}
	return digest[:], nil
}
