package service

import (
	"context"
	"time"

	orchcore "github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/shared/logging"
	"github.com/milanv/jobhub/internal/worker/core"
	"github.com/milanv/jobhub/pkg/client"
)

type workerService struct {
	client       core.OrchestratorClient
	executor     core.JobExecutor
	account      string
	pollInterval time.Duration
	maxBatch     int
	logger       logging.Logger
}

func NewWorkerService(
	orchestrator core.OrchestratorClient,
	executor core.JobExecutor,
	account string,
	pollInterval time.Duration,
	maxBatch int,
	logger logging.Logger,
) core.WorkerService {
	return &workerService{
		client:       orchestrator,
		executor:     executor,
		account:      account,
		pollInterval: pollInterval,
		maxBatch:     maxBatch,
		logger:       logger,
	}
}

func (w *workerService) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll claims up to maxBatch of the account's ready jobs and runs each one
// through execute, prove, complete, verify.
func (w *workerService) poll(ctx context.Context) {
	ready, err := w.client.ReadyJobs(ctx)
	if err != nil {
		w.logger.Error("Failed to fetch ready jobs", "error", err)
		return
	}

	claimed := 0
	for _, job := range ready {
		if claimed >= w.maxBatch {
			return
		}
		if job.Owner != w.account {
			continue
		}
		if err := w.runJob(ctx, job); err != nil {
			w.logger.Error("Job run failed", "job_id", job.ID, "error", err)
		}
		claimed++
	}
}

func (w *workerService) runJob(ctx context.Context, job client.Job) error {
	if _, err := w.client.TransitionJob(ctx, job.ID, string(orchcore.JobStatusInProgress)); err != nil {
		return err
	}
	w.logger.Info("Job claimed", "job_id", job.ID)

	output, err := w.executor.Execute(ctx, job)
	if err != nil {
		w.fail(ctx, job.ID)
		return err
	}

	resultHash := orchcore.HashBytes(output)
	if _, err := w.client.SubmitProof(ctx, job.ID, resultHash.String(), string(orchcore.ProofSchemeHash), output); err != nil {
		w.fail(ctx, job.ID)
		return err
	}

	if _, err := w.client.TransitionJob(ctx, job.ID, string(orchcore.JobStatusCompleted)); err != nil {
		return err
	}

	result, err := w.client.VerifyProof(ctx, job.ID)
	if err != nil {
		return err
	}

	w.logger.Info("Job finished",
		"job_id", job.ID,
		"result_hash", result.ResultHash,
		"verified", result.Verified,
	)
	return nil
}

// fail moves the job to FAILED after an unrecoverable step. Its own error is
// only logged; the caller reports the original failure.
func (w *workerService) fail(ctx context.Context, id uint64) {
	if _, err := w.client.TransitionJob(ctx, id, string(orchcore.JobStatusFailed)); err != nil {
		w.logger.Error("Failed to mark job failed", "job_id", id, "error", err)
	}
}
