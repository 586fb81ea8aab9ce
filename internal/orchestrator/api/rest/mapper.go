package rest

import (
	"github.com/milanv/jobhub/internal/orchestrator/core"
)

func toJobResponse(job core.Job) JobResponse {
	resp := JobResponse{
		ID:           uint64(job.ID),
		Owner:        string(job.Owner),
		Metadata:     job.Metadata,
		Dependencies: make([]uint64, 0, len(job.Dependencies)),
		Deadline:     uint64(job.Deadline),
		Status:       string(job.Status),
		SubmittedAt:  uint64(job.SubmittedAt),
	}
	for _, dep := range job.Dependencies {
		resp.Dependencies = append(resp.Dependencies, uint64(dep))
	}
	if len(resp.Dependencies) == 0 {
		resp.Dependencies = nil
	}
	if job.CompletedAt != nil {
		h := uint64(*job.CompletedAt)
		resp.CompletedAt = &h
	}
	return resp
}

func toJobResponses(jobs []core.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobResponse(job))
	}
	return out
}

func toResultResponse(id core.JobID, result core.JobResult) ResultResponse {
	return ResultResponse{
		JobID:       uint64(id),
		ResultHash:  result.ResultHash.String(),
		Scheme:      string(result.Scheme),
		SubmittedAt: uint64(result.SubmittedAt),
		Verified:    result.Verified,
	}
}

func toEventResponse(event core.Event) EventResponse {
	resp := EventResponse{
		ID:        uint64(event.ID),
		Kind:      string(event.Kind),
		Payload:   event.Payload,
		CreatedAt: uint64(event.CreatedAt),
		Processed: event.Processed,
	}
	if event.OriginDomain != nil {
		d := *event.OriginDomain
		resp.OriginDomain = &d
	}
	return resp
}

func toTriggerResponse(trigger core.TriggerRule) TriggerResponse {
	return TriggerResponse{
		ID:      uint64(trigger.ID),
		Owner:   string(trigger.Owner),
		EventID: uint64(trigger.EventID),
		Action: TriggerActionInfo{
			Kind:  string(trigger.Action.Kind),
			JobID: uint64(trigger.Action.JobID),
		},
		Condition: trigger.Condition,
		CreatedAt: uint64(trigger.CreatedAt),
		Active:    trigger.Active,
	}
}

func toTriggerFiredInfos(fired []core.TriggerFired) []TriggerFiredInfo {
	out := make([]TriggerFiredInfo, 0, len(fired))
	for _, f := range fired {
		info := TriggerFiredInfo{
			TriggerID: uint64(f.TriggerID),
			Action:    string(f.Action),
		}
		if f.StartedJob != nil {
			id := uint64(*f.StartedJob)
			info.StartedJob = &id
		}
		out = append(out, info)
	}
	return out
}
