package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/service"
	"github.com/milanv/jobhub/internal/shared/logging"
)

func writeRuleFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validRules = `
submitter: system
events:
  - kind: TIMER
    payload: nightly
  - kind: CROSS_ORIGIN
    payload: remote
    origin_domain: 7
triggers:
  - owner: system
    event_index: 0
    action:
      kind: START_JOB
      job_id: 0
  - owner: ops
    event_index: 1
    action:
      kind: CUSTOM
    condition: always
`

func TestLoadExpandsGlobsRecursively(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "a/one.yaml", validRules)
	writeRuleFile(t, dir, "a/b/two.yaml", validRules)
	writeRuleFile(t, dir, "ignored.txt", "not yaml rules")

	files, err := Load([]string{filepath.Join(dir, "**", "*.yaml")})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "system", files[0].Submitter)
	assert.Len(t, files[0].Events, 2)
	assert.Len(t, files[0].Triggers, 2)
	assert.NotEmpty(t, files[0].Path())
}

func TestLoadDeduplicatesOverlappingPatterns(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "one.yaml", validRules)

	files, err := Load([]string{
		filepath.Join(dir, "*.yaml"),
		filepath.Join(dir, "one.yaml"),
	})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing submitter", "events: []\ntriggers: []\n"},
		{"unknown event kind", "submitter: s\nevents:\n  - kind: BOGUS\n"},
		{"unknown action kind", "submitter: s\ntriggers:\n  - owner: o\n    event_id: 0\n    action:\n      kind: BOGUS\n"},
		{"missing event reference", "submitter: s\ntriggers:\n  - owner: o\n    action:\n      kind: CUSTOM\n"},
		{"event index out of range", "submitter: s\ntriggers:\n  - owner: o\n    event_index: 3\n    action:\n      kind: CUSTOM\n"},
		{"not yaml", "{{{{"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeRuleFile(t, dir, "bad.yaml", tc.content)
			_, err := Load([]string{filepath.Join(dir, "*.yaml")})
			assert.Error(t, err)
		})
	}
}

func TestApplySeedsEventsAndTriggers(t *testing.T) {
	svc, err := service.New(core.DefaultLimits(), nil, logging.Nop{})
	require.NoError(t, err)

	job, err := svc.SubmitJob("system", nil, nil, 100)
	require.NoError(t, err)
	require.Equal(t, core.JobID(0), job.ID)

	dir := t.TempDir()
	writeRuleFile(t, dir, "rules.yaml", validRules)

	files, err := Load([]string{filepath.Join(dir, "*.yaml")})
	require.NoError(t, err)
	require.Len(t, files, 1)

	eventIDs, triggerIDs, err := files[0].Apply(svc)
	require.NoError(t, err)
	require.Len(t, eventIDs, 2)
	require.Len(t, triggerIDs, 2)

	event, err := svc.GetEvent(eventIDs[1])
	require.NoError(t, err)
	assert.Equal(t, core.EventKindCrossOrigin, event.Kind)
	require.NotNil(t, event.OriginDomain)
	assert.Equal(t, uint32(7), *event.OriginDomain)

	trigger, err := svc.GetTrigger(triggerIDs[0])
	require.NoError(t, err)
	assert.Equal(t, eventIDs[0], trigger.EventID)
	assert.Equal(t, core.ActionStartJob, trigger.Action.Kind)
	assert.Equal(t, job.ID, trigger.Action.JobID)

	// Processing the seeded timer event starts the referenced job.
	fired, err := svc.ProcessEvent("system", eventIDs[0])
	require.NoError(t, err)
	require.Len(t, fired, 1)
	require.NotNil(t, fired[0].StartedJob)
	assert.Equal(t, job.ID, *fired[0].StartedJob)
}
