package rest

import (
	"net/http"

	"github.com/milanv/jobhub/internal/orchestrator/core"
)

func (a *API) submitEvent(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	var req SubmitEventRequest
	if !a.decode(w, r, &req) {
		return
	}
	kind, valid := core.ParseEventKind(req.Kind)
	if !valid {
		a.respondError(w, http.StatusBadRequest, "INVALID_KIND", "unknown event kind "+req.Kind)
		return
	}

	event, err := a.svc.SubmitEvent(account, kind, req.Payload, req.OriginDomain)
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, toEventResponse(event))
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	event, err := a.svc.GetEvent(core.EventID(id))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, toEventResponse(event))
}

func (a *API) pendingEvents(w http.ResponseWriter, r *http.Request) {
	ids := a.svc.PendingEvents()
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	a.respondJSON(w, http.StatusOK, PendingEventsResponse{EventIDs: out})
}

func (a *API) processEvent(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	fired, err := a.svc.ProcessEvent(account, core.EventID(id))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, ProcessEventResponse{
		EventID:       id,
		TriggersFired: toTriggerFiredInfos(fired),
	})
}

func (a *API) registerTrigger(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	var req RegisterTriggerRequest
	if !a.decode(w, r, &req) {
		return
	}
	kind, valid := core.ParseActionKind(req.Action.Kind)
	if !valid {
		a.respondError(w, http.StatusBadRequest, "INVALID_ACTION", "unknown action kind "+req.Action.Kind)
		return
	}
	action := core.TriggerAction{Kind: kind, JobID: core.JobID(req.Action.JobID)}

	trigger, err := a.svc.RegisterTrigger(account, core.EventID(req.EventID), action, req.Condition)
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, toTriggerResponse(trigger))
}

func (a *API) getTrigger(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	trigger, err := a.svc.GetTrigger(core.TriggerID(id))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, toTriggerResponse(trigger))
}

func (a *API) listTriggers(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		a.respondError(w, http.StatusBadRequest, "MISSING_OWNER", "owner query parameter is required")
		return
	}
	ids := a.svc.AccountTriggers(core.AccountID(owner))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	a.respondJSON(w, http.StatusOK, ListTriggersResponse{TriggerIDs: out})
}

func (a *API) deactivateTrigger(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeactivateTrigger(account, core.TriggerID(id)); err != nil {
		a.respondOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
