// Package service wires the registry, verifier and hub behind a single
// mutex, adds journaling and metrics, and exposes the operations the API
// layer calls. Core structs are single-writer; this package is the writer.
package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/journal"
	"github.com/milanv/jobhub/internal/shared/logging"
)

type Service struct {
	mu sync.Mutex

	clock    *core.Clock
	registry *core.Registry
	verifier *core.Verifier
	hub      *core.Hub
	samples  *core.SampleHistory

	counters counters

	journal   *journal.Journal
	replaying bool

	logger logging.Logger
}

// counters are monotonic operation totals. Unlike the live status buckets
// they survive job removal, which is what the metrics endpoint reports.
type counters struct {
	jobsSubmitted uint64
	jobsCompleted uint64
	jobsFailed    uint64
	jobsVerified  uint64
	jobsRemoved   uint64
}

// New builds a service over fresh core state. A non-nil journal is replayed
// first, pinning the clock to each recorded height so the rebuilt state is
// identical to the state that produced the journal, then used to persist
// every further mutation. Pass nil to run without persistence.
func New(limits core.Limits, jnl *journal.Journal, logger logging.Logger) (*Service, error) {
	clock := core.NewClock()
	registry := core.NewRegistry(clock, limits)
	s := &Service{
		clock:    clock,
		registry: registry,
		verifier: core.NewVerifier(clock, limits, registry, registry.OwnerTransitions()),
		hub:      core.NewHub(clock, limits, registry),
		samples:  core.NewSampleHistory(limits.MaxSampleHistory),
		journal:  jnl,
		logger:   logger,
	}
	if jnl != nil {
		if err := s.restore(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Height returns the current logical height.
func (s *Service) Height() core.Height {
	return s.clock.Now()
}

// AdvanceHeight moves the logical clock forward one height and returns the
// new value. Called by the ticker, never by request handlers.
func (s *Service) AdvanceHeight() core.Height {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Advance()
}

// record appends the applied operation to the journal. The mutation has
// already happened, so an append failure is logged and swallowed rather than
// reported as an operation failure.
func (s *Service) record(kind journal.Kind, payload any) {
	if s.journal == nil || s.replaying {
		return
	}
	if err := s.journal.Append(uint64(s.clock.Now()), kind, payload); err != nil {
		s.logger.Error("Journal append failed", "kind", string(kind), "error", err)
	}
}

// Journal payload shapes. These are the persistence format; changing a field
// invalidates existing journals.

type jobSubmitOp struct {
	Owner        string   `json:"owner"`
	Metadata     []byte   `json:"metadata,omitempty"`
	Dependencies []uint64 `json:"dependencies,omitempty"`
	Deadline     uint64   `json:"deadline"`
}

type jobTransitionOp struct {
	Requester string `json:"requester"`
	JobID     uint64 `json:"job_id"`
	To        string `json:"to"`
}

type jobRemoveOp struct {
	Owner string `json:"owner"`
	JobID uint64 `json:"job_id"`
}

type proofSubmitOp struct {
	Submitter  string `json:"submitter"`
	JobID      uint64 `json:"job_id"`
	ResultHash string `json:"result_hash"`
	Scheme     string `json:"scheme"`
	Proof      []byte `json:"proof,omitempty"`
}

type proofVerifyOp struct {
	Verifier string `json:"verifier"`
	JobID    uint64 `json:"job_id"`
}

type markVerifiedOp struct {
	JobID uint64 `json:"job_id"`
}

type eventSubmitOp struct {
	Submitter    string  `json:"submitter"`
	Kind         string  `json:"kind"`
	Payload      []byte  `json:"payload,omitempty"`
	OriginDomain *uint32 `json:"origin_domain,omitempty"`
}

type triggerRegisterOp struct {
	Owner       string `json:"owner"`
	EventID     uint64 `json:"event_id"`
	ActionKind  string `json:"action_kind"`
	ActionJobID uint64 `json:"action_job_id"`
	Condition   []byte `json:"condition,omitempty"`
}

type eventProcessOp struct {
	Caller  string `json:"caller"`
	EventID uint64 `json:"event_id"`
}

type triggerDeactivateOp struct {
	Owner     string `json:"owner"`
	TriggerID uint64 `json:"trigger_id"`
}

// restore replays the journal through the same apply paths live requests
// use, with the clock pinned to each entry's height. Any divergence between
// the journal and what the core accepts means the file does not match the
// code that wrote it, and is reported as corruption. The one tolerated error
// is a rejected proof during verification: rejections are journaled too, and
// replaying one reproduces the failed counter.
func (s *Service) restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaying = true
	defer func() { s.replaying = false }()

	entries := 0
	err := s.journal.Replay(func(e journal.Entry) error {
		entries++
		s.clock.Set(core.Height(e.Height))
		if err := s.applyEntry(e); err != nil {
			return fmt.Errorf("journal entry %d (%s): %w", e.Seq, e.Kind, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Journal replayed", "entries", entries, "height", uint64(s.clock.Now()))
	return nil
}

func (s *Service) applyEntry(e journal.Entry) error {
	switch e.Kind {
	case journal.KindJobSubmit:
		var op jobSubmitOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		deps := make([]core.JobID, len(op.Dependencies))
		for i, d := range op.Dependencies {
			deps[i] = core.JobID(d)
		}
		_, err := s.registry.Submit(core.AccountID(op.Owner), op.Metadata, deps, core.Height(op.Deadline))
		if err == nil {
			s.counters.jobsSubmitted++
		}
		return err

	case journal.KindJobTransition:
		var op jobTransitionOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		status, ok := core.ParseJobStatus(op.To)
		if !ok {
			return fmt.Errorf("unknown status %q", op.To)
		}
		return s.applyTransition(core.AccountID(op.Requester), core.JobID(op.JobID), status)

	case journal.KindJobRemove:
		var op jobRemoveOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		err := s.registry.Remove(core.AccountID(op.Owner), core.JobID(op.JobID))
		if err == nil {
			s.counters.jobsRemoved++
		}
		return err

	case journal.KindProofSubmit:
		var op proofSubmitOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		hash, err := core.ParseHash(op.ResultHash)
		if err != nil {
			return err
		}
		scheme, ok := core.ParseProofScheme(op.Scheme)
		if !ok {
			return fmt.Errorf("unknown proof scheme %q", op.Scheme)
		}
		return s.verifier.SubmitProof(core.AccountID(op.Submitter), core.JobID(op.JobID), hash, scheme, op.Proof)

	case journal.KindProofVerify:
		var op proofVerifyOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		err := s.applyVerify(core.AccountID(op.Verifier), core.JobID(op.JobID))
		if core.IsCode(err, core.CodeInvalidProof) {
			return nil
		}
		return err

	case journal.KindMarkVerified:
		var op markVerifiedOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		return s.applyMarkVerified(core.JobID(op.JobID))

	case journal.KindEventSubmit:
		var op eventSubmitOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		kind, ok := core.ParseEventKind(op.Kind)
		if !ok {
			return fmt.Errorf("unknown event kind %q", op.Kind)
		}
		_, err := s.hub.SubmitEvent(core.AccountID(op.Submitter), kind, op.Payload, op.OriginDomain)
		return err

	case journal.KindTriggerRegister:
		var op triggerRegisterOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		action, ok := core.ParseActionKind(op.ActionKind)
		if !ok {
			return fmt.Errorf("unknown action kind %q", op.ActionKind)
		}
		_, err := s.hub.RegisterTrigger(
			core.AccountID(op.Owner),
			core.EventID(op.EventID),
			core.TriggerAction{Kind: action, JobID: core.JobID(op.ActionJobID)},
			op.Condition,
		)
		return err

	case journal.KindEventProcess:
		var op eventProcessOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		_, err := s.hub.ProcessEvent(core.AccountID(op.Caller), core.EventID(op.EventID))
		return err

	case journal.KindTriggerDeactivate:
		var op triggerDeactivateOp
		if err := json.Unmarshal(e.Payload, &op); err != nil {
			return err
		}
		return s.hub.DeactivateTrigger(core.AccountID(op.Owner), core.TriggerID(op.TriggerID))

	default:
		return fmt.Errorf("unknown journal kind %q", e.Kind)
	}
}

// recordCompletion updates totals and the execution-time history after a job
// first reaches Completed or Verified. prev is the job's CompletedAt before
// the mutation; the sample is recorded once, on the nil-to-set edge.
func (s *Service) recordCompletion(id core.JobID, prev *core.Height) {
	job, ok := s.registry.Job(id)
	if !ok || job.CompletedAt == nil || prev != nil {
		return
	}
	s.samples.Record(uint64(*job.CompletedAt - job.SubmittedAt))
}
