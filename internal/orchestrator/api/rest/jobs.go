package rest

import (
	"net/http"
	"strconv"

	"github.com/milanv/jobhub/internal/orchestrator/core"
)

func (a *API) submitJob(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	var req SubmitJobRequest
	if !a.decode(w, r, &req) {
		return
	}

	deps := make([]core.JobID, len(req.Dependencies))
	for i, d := range req.Dependencies {
		deps[i] = core.JobID(d)
	}

	job, err := a.svc.SubmitJob(account, req.Metadata, deps, core.Height(req.Deadline))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, toJobResponse(job))
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	job, err := a.svc.GetJob(core.JobID(id))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	resp := toJobResponse(job)
	met := a.svc.DependenciesMet(job.ID)
	resp.DependenciesMet = &met
	a.respondJSON(w, http.StatusOK, resp)
}

func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := core.JobFilter{Limit: 10}
	if owner := query.Get("owner"); owner != "" {
		account := core.AccountID(owner)
		filter.Owner = &account
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status, ok := core.ParseJobStatus(statusStr)
		if !ok {
			a.respondError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown status "+statusStr)
			return
		}
		filter.Status = &status
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	jobs, total := a.svc.ListJobs(filter)

	var nextOffset *int
	if end := filter.Offset + len(jobs); end < total {
		next := end
		nextOffset = &next
	}

	a.respondJSON(w, http.StatusOK, ListJobsResponse{
		Jobs:       toJobResponses(jobs),
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		NextOffset: nextOffset,
	})
}

func (a *API) readyJobs(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, ReadyJobsResponse{Jobs: toJobResponses(a.svc.ReadyJobs())})
}

func (a *API) transitionJob(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req TransitionJobRequest
	if !a.decode(w, r, &req) {
		return
	}
	status, valid := core.ParseJobStatus(req.Status)
	if !valid {
		a.respondError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown status "+req.Status)
		return
	}

	job, err := a.svc.TransitionJob(account, core.JobID(id), status)
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, toJobResponse(job))
}

func (a *API) removeJob(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.RemoveJob(account, core.JobID(id)); err != nil {
		a.respondOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
