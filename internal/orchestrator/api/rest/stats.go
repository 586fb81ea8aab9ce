package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/service"
)

func (a *API) getStats(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, toStatsResponse(a.svc.Stats()))
}

func (a *API) getHealth(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Height: uint64(a.svc.Height()),
	})
}

func toStatsResponse(s service.StatsSnapshot) StatsResponse {
	byStatus := make(map[string]int, len(s.JobsByStatus))
	for status, n := range s.JobsByStatus {
		byStatus[string(status)] = n
	}
	return StatsResponse{
		Height:             uint64(s.Height),
		JobsByStatus:       byStatus,
		TotalJobs:          s.TotalJobs,
		JobsSubmitted:      s.JobsSubmitted,
		JobsCompleted:      s.JobsCompleted,
		JobsFailed:         s.JobsFailed,
		JobsVerified:       s.JobsVerified,
		JobsRemoved:        s.JobsRemoved,
		ProofsSubmitted:    s.Verification.ProofsSubmitted,
		ProofsVerified:     s.Verification.ProofsVerified,
		ProofsFailed:       s.Verification.ProofsFailed,
		EventsSubmitted:    s.Events.EventsSubmitted,
		EventsProcessed:    s.Events.EventsProcessed,
		TriggersActivated:  s.Events.TriggersActivated,
		CrossOriginEvents:  s.Events.CrossOriginEvents,
		PendingEvents:      s.PendingEvents,
		SampleCount:        s.SampleCount,
		AvgExecutionHeight: s.AvgExecutionHeight,
	}
}

// getMetrics renders the counters in the Prometheus text exposition format.
func (a *API) getMetrics(w http.ResponseWriter, r *http.Request) {
	s := a.svc.Stats()

	var b strings.Builder
	writeMetric(&b, "jobhub_height", "gauge", "Current logical height.", uint64(s.Height))
	writeMetric(&b, "jobhub_jobs_submitted_total", "counter", "Jobs accepted.", s.JobsSubmitted)
	writeMetric(&b, "jobhub_jobs_completed_total", "counter", "Jobs moved to COMPLETED.", s.JobsCompleted)
	writeMetric(&b, "jobhub_jobs_failed_total", "counter", "Jobs moved to FAILED.", s.JobsFailed)
	writeMetric(&b, "jobhub_jobs_verified_total", "counter", "Jobs moved to VERIFIED.", s.JobsVerified)
	writeMetric(&b, "jobhub_jobs_removed_total", "counter", "Terminal jobs removed.", s.JobsRemoved)
	writeMetric(&b, "jobhub_proofs_submitted_total", "counter", "Proof submissions accepted.", s.Verification.ProofsSubmitted)
	writeMetric(&b, "jobhub_proofs_verified_total", "counter", "Proofs accepted by verification.", s.Verification.ProofsVerified)
	writeMetric(&b, "jobhub_proofs_failed_total", "counter", "Proofs rejected by verification.", s.Verification.ProofsFailed)
	writeMetric(&b, "jobhub_events_submitted_total", "counter", "Events accepted.", s.Events.EventsSubmitted)
	writeMetric(&b, "jobhub_events_processed_total", "counter", "Events processed.", s.Events.EventsProcessed)
	writeMetric(&b, "jobhub_triggers_activated_total", "counter", "Trigger activations.", s.Events.TriggersActivated)
	writeMetric(&b, "jobhub_cross_origin_events_total", "counter", "Cross-origin events accepted.", s.Events.CrossOriginEvents)
	writeMetric(&b, "jobhub_pending_events", "gauge", "Events awaiting processing.", uint64(s.PendingEvents))
	writeMetric(&b, "jobhub_execution_height_avg", "gauge", "Mean job execution time in heights over the sample window.", s.AvgExecutionHeight)

	b.WriteString("# HELP jobhub_jobs Live jobs by status.\n# TYPE jobhub_jobs gauge\n")
	for _, status := range []core.JobStatus{
		core.JobStatusPending,
		core.JobStatusInProgress,
		core.JobStatusCompleted,
		core.JobStatusVerified,
		core.JobStatusFailed,
	} {
		fmt.Fprintf(&b, "jobhub_jobs{status=%q} %d\n", string(status), s.JobsByStatus[status])
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(b.String()))
}

func writeMetric(b *strings.Builder, name, kind, help string, value uint64) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n%s %d\n", name, help, name, kind, name, value)
}
