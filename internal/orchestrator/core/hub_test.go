package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *Registry) {
	t.Helper()
	clock := NewClock()
	registry := NewRegistry(clock, DefaultLimits())
	return NewHub(clock, DefaultLimits(), registry), registry
}

func TestSubmitEvent(t *testing.T) {
	hub, _ := newTestHub(t)

	first, err := hub.SubmitEvent("alice", EventKindLocal, []byte("payload"), nil)
	require.NoError(t, err)
	second, err := hub.SubmitEvent("alice", EventKindTimer, nil, nil)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	event, ok := hub.Event(first)
	require.True(t, ok)
	assert.Equal(t, EventKindLocal, event.Kind)
	assert.False(t, event.Processed)
	assert.Equal(t, []EventID{first, second}, hub.PendingEvents())
	assert.Equal(t, uint64(2), hub.Stats().EventsSubmitted)
}

func TestSubmitEventPayloadBound(t *testing.T) {
	hub, _ := newTestHub(t)
	_, err := hub.SubmitEvent("alice", EventKindLocal, bytes.Repeat([]byte{1}, 513), nil)
	assert.Equal(t, CodePayloadTooLarge, CodeOf(err))
}

func TestSubmitEventQueueCapacity(t *testing.T) {
	clock := NewClock()
	limits := DefaultLimits()
	limits.MaxPendingEvents = 2
	registry := NewRegistry(clock, limits)
	hub := NewHub(clock, limits, registry)

	_, err := hub.SubmitEvent("alice", EventKindLocal, nil, nil)
	require.NoError(t, err)
	_, err = hub.SubmitEvent("alice", EventKindLocal, nil, nil)
	require.NoError(t, err)

	_, err = hub.SubmitEvent("alice", EventKindLocal, nil, nil)
	assert.Equal(t, CodeMaxEventsReached, CodeOf(err))
}

func TestCrossOriginCounter(t *testing.T) {
	hub, _ := newTestHub(t)
	domain := uint32(2007)

	_, err := hub.SubmitEvent("alice", EventKindCrossOrigin, nil, &domain)
	require.NoError(t, err)
	_, err = hub.SubmitEvent("alice", EventKindLocal, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), hub.Stats().CrossOriginEvents)
}

func TestRegisterTriggerCaps(t *testing.T) {
	clock := NewClock()
	limits := DefaultLimits()
	limits.MaxTriggersPerAccount = 1
	limits.MaxTriggersPerEvent = 2
	registry := NewRegistry(clock, limits)
	hub := NewHub(clock, limits, registry)

	_, err := hub.RegisterTrigger("alice", 0, TriggerAction{Kind: ActionCustom}, bytes.Repeat([]byte{1}, 129))
	assert.Equal(t, CodePayloadTooLarge, CodeOf(err))

	_, err = hub.RegisterTrigger("alice", 0, TriggerAction{Kind: ActionCustom}, nil)
	require.NoError(t, err)
	_, err = hub.RegisterTrigger("alice", 0, TriggerAction{Kind: ActionCustom}, nil)
	assert.Equal(t, CodeMaxTriggersReached, CodeOf(err))

	_, err = hub.RegisterTrigger("bob", 0, TriggerAction{Kind: ActionCustom}, nil)
	require.NoError(t, err)
	_, err = hub.RegisterTrigger("carol", 0, TriggerAction{Kind: ActionCustom}, nil)
	assert.Equal(t, CodeMaxTriggersReached, CodeOf(err), "per-event trigger list is bounded independently")
}

func TestProcessEventFiresTriggersOnce(t *testing.T) {
	hub, registry := newTestHub(t)

	job, err := registry.Submit("alice", nil, nil, 100)
	require.NoError(t, err)

	eventID, err := hub.SubmitEvent("alice", EventKindLocal, nil, nil)
	require.NoError(t, err)

	_, err = hub.RegisterTrigger("alice", eventID, TriggerAction{Kind: ActionStartJob, JobID: job}, nil)
	require.NoError(t, err)
	_, err = hub.RegisterTrigger("alice", eventID, TriggerAction{Kind: ActionCustom}, nil)
	require.NoError(t, err)

	fired, err := hub.ProcessEvent("anyone", eventID)
	require.NoError(t, err)
	require.Len(t, fired, 2)
	require.NotNil(t, fired[0].StartedJob)
	assert.Equal(t, job, *fired[0].StartedJob)
	assert.Nil(t, fired[1].StartedJob)

	started, _ := registry.Job(job)
	assert.Equal(t, JobStatusInProgress, started.Status)

	event, _ := hub.Event(eventID)
	assert.True(t, event.Processed)
	assert.Empty(t, hub.PendingEvents())
	assert.Equal(t, uint64(2), hub.Stats().TriggersActivated)
	assert.Equal(t, uint64(1), hub.Stats().EventsProcessed)

	// Second processing fails and fires nothing.
	_, err = hub.ProcessEvent("anyone", eventID)
	assert.Equal(t, CodeAlreadyProcessed, CodeOf(err))
	assert.Equal(t, uint64(2), hub.Stats().TriggersActivated)
}

func TestProcessEventUnknown(t *testing.T) {
	hub, _ := newTestHub(t)
	_, err := hub.ProcessEvent("anyone", 42)
	assert.Equal(t, CodeEventNotFound, CodeOf(err))
}

func TestStartJobAuthorizedAsTriggerOwner(t *testing.T) {
	hub, registry := newTestHub(t)

	job, err := registry.Submit("alice", nil, nil, 100)
	require.NoError(t, err)

	eventID, err := hub.SubmitEvent("carol", EventKindLocal, nil, nil)
	require.NoError(t, err)

	// Bob's trigger cannot start Alice's job; the activation still counts
	// and event processing still succeeds.
	_, err = hub.RegisterTrigger("bob", eventID, TriggerAction{Kind: ActionStartJob, JobID: job}, nil)
	require.NoError(t, err)

	fired, err := hub.ProcessEvent("anyone", eventID)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Nil(t, fired[0].StartedJob)

	unchanged, _ := registry.Job(job)
	assert.Equal(t, JobStatusPending, unchanged.Status)
	assert.Equal(t, uint64(1), hub.Stats().TriggersActivated)
}

func TestStartJobMissingTarget(t *testing.T) {
	hub, _ := newTestHub(t)

	eventID, err := hub.SubmitEvent("alice", EventKindLocal, nil, nil)
	require.NoError(t, err)
	_, err = hub.RegisterTrigger("alice", eventID, TriggerAction{Kind: ActionStartJob, JobID: 77}, nil)
	require.NoError(t, err)

	fired, err := hub.ProcessEvent("anyone", eventID)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Nil(t, fired[0].StartedJob)
}

func TestDeactivateTrigger(t *testing.T) {
	hub, _ := newTestHub(t)

	eventID, err := hub.SubmitEvent("alice", EventKindLocal, nil, nil)
	require.NoError(t, err)
	triggerID, err := hub.RegisterTrigger("alice", eventID, TriggerAction{Kind: ActionCustom}, nil)
	require.NoError(t, err)

	err = hub.DeactivateTrigger("bob", triggerID)
	assert.Equal(t, CodeNotAuthorized, CodeOf(err))

	err = hub.DeactivateTrigger("alice", 99)
	assert.Equal(t, CodeTriggerNotFound, CodeOf(err))

	require.NoError(t, hub.DeactivateTrigger("alice", triggerID))
	trigger, _ := hub.Trigger(triggerID)
	assert.False(t, trigger.Active)

	// Inactive triggers are retained but skipped.
	fired, err := hub.ProcessEvent("anyone", eventID)
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Equal(t, uint64(0), hub.Stats().TriggersActivated)
}

func TestAutoProcessPendingFIFO(t *testing.T) {
	hub, _ := newTestHub(t)

	var ids []EventID
	for i := 0; i < 5; i++ {
		id, err := hub.SubmitEvent("alice", EventKindTimer, nil, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	processed := hub.AutoProcessPending("system", 3)
	assert.Equal(t, ids[:3], processed)
	assert.Equal(t, ids[3:], hub.PendingEvents())

	processed = hub.AutoProcessPending("system", 10)
	assert.Equal(t, ids[3:], processed)
	assert.Empty(t, hub.PendingEvents())

	assert.Empty(t, hub.AutoProcessPending("system", 10))
}

func TestAccountTriggers(t *testing.T) {
	hub, _ := newTestHub(t)

	a, err := hub.RegisterTrigger("alice", 0, TriggerAction{Kind: ActionCustom}, nil)
	require.NoError(t, err)
	b, err := hub.RegisterTrigger("alice", 1, TriggerAction{Kind: ActionExternalMessage}, nil)
	require.NoError(t, err)
	_, err = hub.RegisterTrigger("bob", 0, TriggerAction{Kind: ActionCustom}, nil)
	require.NoError(t, err)

	assert.Equal(t, []TriggerID{a, b}, hub.AccountTriggers("alice"))
}
