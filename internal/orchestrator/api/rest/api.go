package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/service"
	"github.com/milanv/jobhub/internal/shared/logging"
)

// Header carrying the caller's account identity. The orchestrator trusts
// the deployment's edge to authenticate; this layer only maps the header
// onto ownership checks.
const accountHeader = "X-Account"

// Header carrying the administrative bearer token for the recovery
// endpoints.
const adminTokenHeader = "X-Admin-Token"

type API struct {
	svc        *service.Service
	adminToken string
	logger     logging.Logger
}

// NewAPI builds the handler set. An empty adminToken disables the
// administrative endpoints.
func NewAPI(svc *service.Service, adminToken string, logger logging.Logger) *API {
	return &API{svc: svc, adminToken: adminToken, logger: logger}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/jobs", a.submitJob)
	mux.HandleFunc("GET /api/jobs", a.listJobs)
	mux.HandleFunc("GET /api/jobs/ready", a.readyJobs)
	mux.HandleFunc("GET /api/jobs/{id}", a.getJob)
	mux.HandleFunc("POST /api/jobs/{id}/status", a.transitionJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", a.removeJob)

	mux.HandleFunc("POST /api/jobs/{id}/proof", a.submitProof)
	mux.HandleFunc("GET /api/jobs/{id}/result", a.getResult)
	mux.HandleFunc("POST /api/jobs/{id}/verify", a.verifyProof)
	mux.HandleFunc("POST /api/jobs/{id}/verify-admin", a.markVerified)

	mux.HandleFunc("POST /api/events", a.submitEvent)
	mux.HandleFunc("GET /api/events/pending", a.pendingEvents)
	mux.HandleFunc("GET /api/events/{id}", a.getEvent)
	mux.HandleFunc("POST /api/events/{id}/process", a.processEvent)

	mux.HandleFunc("POST /api/triggers", a.registerTrigger)
	mux.HandleFunc("GET /api/triggers", a.listTriggers)
	mux.HandleFunc("GET /api/triggers/{id}", a.getTrigger)
	mux.HandleFunc("POST /api/triggers/{id}/deactivate", a.deactivateTrigger)

	mux.HandleFunc("GET /api/stats", a.getStats)
	mux.HandleFunc("GET /api/health", a.getHealth)
	mux.HandleFunc("GET /metrics", a.getMetrics)
}

// account extracts the caller identity, failing the request when absent.
func (a *API) account(w http.ResponseWriter, r *http.Request) (core.AccountID, bool) {
	account := r.Header.Get(accountHeader)
	if account == "" {
		a.respondError(w, http.StatusBadRequest, "MISSING_ACCOUNT", accountHeader+" header is required")
		return "", false
	}
	return core.AccountID(account), true
}

// requireAdmin gates the administrative endpoints on the configured token.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if a.adminToken == "" || r.Header.Get(adminTokenHeader) != a.adminToken {
		a.respondError(w, http.StatusForbidden, string(core.CodeNotAuthorized), "administrative token required")
		return false
	}
	return true
}

// pathID parses the {id} path segment as an unsigned integer.
func (a *API) pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "INVALID_ID", "id must be an unsigned integer")
		return 0, false
	}
	return id, true
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.respondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return false
	}
	return true
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, code string, message string) {
	a.respondJSON(w, statusCode, ErrorResponse{
		Error:   code,
		Message: message,
		Code:    statusCode,
	})
}

// respondOpError maps the core error taxonomy onto HTTP statuses.
func (a *API) respondOpError(w http.ResponseWriter, err error) {
	code := core.CodeOf(err)
	if code == "" {
		a.respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	status := http.StatusInternalServerError
	switch code.Class() {
	case core.ClassNotFound:
		status = http.StatusNotFound
	case core.ClassAuthorization:
		status = http.StatusForbidden
	case core.ClassCapacity:
		status = http.StatusUnprocessableEntity
	case core.ClassStateConflict:
		status = http.StatusConflict
	case core.ClassProofRejection:
		status = http.StatusUnprocessableEntity
	}
	a.respondError(w, status, string(code), err.Error())
}
