package core

// AccountID identifies an external caller. The REST layer maps the
// authenticated identity onto this; the core only compares it for ownership.
type AccountID string

// Height is the monotonic logical clock value stamped onto submissions,
// completions and deadlines.
type Height uint64

type JobID uint64

type EventID uint64

type TriggerID uint64

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusVerified   JobStatus = "VERIFIED"
	JobStatusFailed     JobStatus = "FAILED"
)

// ParseJobStatus maps the wire representation back onto a status value.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusVerified, JobStatusFailed:
		return JobStatus(s), true
	}
	return "", false
}

// Terminal reports whether a job in this status can be removed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusVerified
}

type Job struct {
	ID           JobID
	Owner        AccountID
	Metadata     []byte
	Dependencies []JobID
	Deadline     Height
	Status       JobStatus
	SubmittedAt  Height
	CompletedAt  *Height
}

type ProofScheme string

const (
	ProofSchemeSignature  ProofScheme = "SIGNATURE"
	ProofSchemeMerkleRoot ProofScheme = "MERKLE_ROOT"
	ProofSchemeHash       ProofScheme = "HASH"
)

func ParseProofScheme(s string) (ProofScheme, bool) {
	switch ProofScheme(s) {
	case ProofSchemeSignature, ProofSchemeMerkleRoot, ProofSchemeHash:
		return ProofScheme(s), true
	}
	return "", false
}

// JobResult records the latest proof submission for a job. Verified flips
// false to true exactly once and is never reset.
type JobResult struct {
	ResultHash  Hash
	Scheme      ProofScheme
	SubmittedAt Height
	Verified    bool
}

type EventKind string

const (
	EventKindLocal       EventKind = "LOCAL"
	EventKindCrossOrigin EventKind = "CROSS_ORIGIN"
	EventKindTimer       EventKind = "TIMER"
	EventKindCondition   EventKind = "CONDITION"
)

func ParseEventKind(s string) (EventKind, bool) {
	switch EventKind(s) {
	case EventKindLocal, EventKindCrossOrigin, EventKindTimer, EventKindCondition:
		return EventKind(s), true
	}
	return "", false
}

type Event struct {
	ID           EventID
	Kind         EventKind
	Payload      []byte
	CreatedAt    Height
	Processed    bool
	OriginDomain *uint32
}

type ActionKind string

const (
	ActionStartJob        ActionKind = "START_JOB"
	ActionExternalMessage ActionKind = "EXTERNAL_MESSAGE"
	ActionCustom          ActionKind = "CUSTOM"
)

func ParseActionKind(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case ActionStartJob, ActionExternalMessage, ActionCustom:
		return ActionKind(s), true
	}
	return "", false
}

// TriggerAction is what a rule does when its watched event is processed.
// JobID is only meaningful for ActionStartJob.
type TriggerAction struct {
	Kind  ActionKind
	JobID JobID
}

type TriggerRule struct {
	ID        TriggerID
	Owner     AccountID
	EventID   EventID
	Action    TriggerAction
	Condition []byte
	CreatedAt Height
	Active    bool
}

type VerificationStats struct {
	ProofsSubmitted uint64
	ProofsVerified  uint64
	ProofsFailed    uint64
}

type EventStats struct {
	EventsSubmitted   uint64
	EventsProcessed   uint64
	TriggersActivated uint64
	CrossOriginEvents uint64
}

// JobFilter narrows ListJobs results. Nil fields match everything.
type JobFilter struct {
	Owner  *AccountID
	Status *JobStatus
	Limit  int
	Offset int
}

// Limits bounds every collection the core owns. Operations that would grow a
// collection past its limit fail with a capacity error instead of evicting.
type Limits struct {
	MaxMetadataBytes      int
	MaxDependencies       int
	MaxJobsPerAccount     int
	MaxDependencyDepth    int
	MaxStatusBucket       int
	MaxProofBytes         int
	MaxPayloadBytes       int
	MaxConditionBytes     int
	MaxTriggersPerAccount int
	MaxTriggersPerEvent   int
	MaxPendingEvents      int
	MaxSampleHistory      int
}

// DefaultLimits mirrors the bounds the system was originally deployed with.
func DefaultLimits() Limits {
	return Limits{
		MaxMetadataBytes:      256,
		MaxDependencies:       10,
		MaxJobsPerAccount:     100,
		MaxDependencyDepth:    10,
		MaxStatusBucket:       1000,
		MaxProofBytes:         4096,
		MaxPayloadBytes:       512,
		MaxConditionBytes:     128,
		MaxTriggersPerAccount: 50,
		MaxTriggersPerEvent:   100,
		MaxPendingEvents:      1000,
		MaxSampleHistory:      1000,
	}
}
