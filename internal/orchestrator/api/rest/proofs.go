package rest

import (
	"net/http"

	"github.com/milanv/jobhub/internal/orchestrator/core"
)

func (a *API) submitProof(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req SubmitProofRequest
	if !a.decode(w, r, &req) {
		return
	}

	hash, err := core.ParseHash(req.ResultHash)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "INVALID_HASH", err.Error())
		return
	}
	scheme, valid := core.ParseProofScheme(req.Scheme)
	if !valid {
		a.respondError(w, http.StatusBadRequest, "INVALID_SCHEME", "unknown proof scheme "+req.Scheme)
		return
	}

	result, err := a.svc.SubmitProof(account, core.JobID(id), hash, scheme, req.Proof)
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, toResultResponse(core.JobID(id), result))
}

func (a *API) getResult(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	result, err := a.svc.GetResult(core.JobID(id))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, toResultResponse(core.JobID(id), result))
}

func (a *API) verifyProof(w http.ResponseWriter, r *http.Request) {
	account, ok := a.account(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	result, err := a.svc.VerifyProof(account, core.JobID(id))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, toResultResponse(core.JobID(id), result))
}

func (a *API) markVerified(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	result, err := a.svc.MarkVerified(core.JobID(id))
	if err != nil {
		a.respondOpError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, toResultResponse(core.JobID(id), result))
}
