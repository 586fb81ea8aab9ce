package rest

// Request and response payloads for the orchestrator REST API. Byte fields
// travel as base64 strings, which encoding/json does for []byte; hashes
// travel as 64-character hex strings.

type SubmitJobRequest struct {
	Metadata     []byte   `json:"metadata,omitempty"`
	Dependencies []uint64 `json:"dependencies,omitempty"`
	Deadline     uint64   `json:"deadline"`
}

type TransitionJobRequest struct {
	Status string `json:"status"`
}

type JobResponse struct {
	ID           uint64   `json:"id"`
	Owner        string   `json:"owner"`
	Metadata     []byte   `json:"metadata,omitempty"`
	Dependencies []uint64 `json:"dependencies,omitempty"`
	Deadline     uint64   `json:"deadline"`
	Status       string   `json:"status"`
	SubmittedAt  uint64   `json:"submitted_at"`
	CompletedAt  *uint64  `json:"completed_at,omitempty"`

	// Only set on single-job reads.
	DependenciesMet *bool `json:"dependencies_met,omitempty"`
}

type ListJobsResponse struct {
	Jobs       []JobResponse `json:"jobs"`
	Total      int           `json:"total"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
	NextOffset *int          `json:"next_offset,omitempty"`
}

type ReadyJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type SubmitProofRequest struct {
	ResultHash string `json:"result_hash"`
	Scheme     string `json:"scheme"`
	Proof      []byte `json:"proof,omitempty"`
}

type ResultResponse struct {
	JobID       uint64 `json:"job_id"`
	ResultHash  string `json:"result_hash"`
	Scheme      string `json:"scheme"`
	SubmittedAt uint64 `json:"submitted_at"`
	Verified    bool   `json:"verified"`
}

type SubmitEventRequest struct {
	Kind         string  `json:"kind"`
	Payload      []byte  `json:"payload,omitempty"`
	OriginDomain *uint32 `json:"origin_domain,omitempty"`
}

type EventResponse struct {
	ID           uint64  `json:"id"`
	Kind         string  `json:"kind"`
	Payload      []byte  `json:"payload,omitempty"`
	CreatedAt    uint64  `json:"created_at"`
	Processed    bool    `json:"processed"`
	OriginDomain *uint32 `json:"origin_domain,omitempty"`
}

type PendingEventsResponse struct {
	EventIDs []uint64 `json:"event_ids"`
}

type TriggerFiredInfo struct {
	TriggerID  uint64  `json:"trigger_id"`
	Action     string  `json:"action"`
	StartedJob *uint64 `json:"started_job,omitempty"`
}

type ProcessEventResponse struct {
	EventID       uint64             `json:"event_id"`
	TriggersFired []TriggerFiredInfo `json:"triggers_fired"`
}

type TriggerActionInfo struct {
	Kind  string `json:"kind"`
	JobID uint64 `json:"job_id,omitempty"`
}

type RegisterTriggerRequest struct {
	EventID   uint64            `json:"event_id"`
	Action    TriggerActionInfo `json:"action"`
	Condition []byte            `json:"condition,omitempty"`
}

type TriggerResponse struct {
	ID        uint64            `json:"id"`
	Owner     string            `json:"owner"`
	EventID   uint64            `json:"event_id"`
	Action    TriggerActionInfo `json:"action"`
	Condition []byte            `json:"condition,omitempty"`
	CreatedAt uint64            `json:"created_at"`
	Active    bool              `json:"active"`
}

type ListTriggersResponse struct {
	TriggerIDs []uint64 `json:"trigger_ids"`
}

type StatsResponse struct {
	Height             uint64         `json:"height"`
	JobsByStatus       map[string]int `json:"jobs_by_status"`
	TotalJobs          int            `json:"total_jobs"`
	JobsSubmitted      uint64         `json:"jobs_submitted"`
	JobsCompleted      uint64         `json:"jobs_completed"`
	JobsFailed         uint64         `json:"jobs_failed"`
	JobsVerified       uint64         `json:"jobs_verified"`
	JobsRemoved        uint64         `json:"jobs_removed"`
	ProofsSubmitted    uint64         `json:"proofs_submitted"`
	ProofsVerified     uint64         `json:"proofs_verified"`
	ProofsFailed       uint64         `json:"proofs_failed"`
	EventsSubmitted    uint64         `json:"events_submitted"`
	EventsProcessed    uint64         `json:"events_processed"`
	TriggersActivated  uint64         `json:"triggers_activated"`
	CrossOriginEvents  uint64         `json:"cross_origin_events"`
	PendingEvents      int            `json:"pending_events"`
	SampleCount        int            `json:"sample_count"`
	AvgExecutionHeight uint64         `json:"avg_execution_height"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Height uint64 `json:"height"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
