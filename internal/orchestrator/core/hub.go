package core

// JobTransitioner is the view of the registry the hub needs to fire
// start-job actions. The transition is authorized as the trigger's owner,
// which the registry checks like any external request.
type JobTransitioner interface {
	Job(id JobID) (Job, bool)
	Transition(requester AccountID, id JobID, to JobStatus) error
}

// TriggerFired describes one trigger activation during event processing.
// StartedJob is non-nil when a start-job action moved a job to InProgress.
type TriggerFired struct {
	TriggerID  TriggerID
	EventID    EventID
	Action     ActionKind
	StartedJob *JobID
}

// Hub owns events, trigger rules and the bounded pending queue. Each event
// is processed exactly once; each active trigger bound to it fires exactly
// once during that processing.
//
// Not safe for concurrent use; the service layer serializes access.
type Hub struct {
	clock  *Clock
	limits Limits
	jobs   JobTransitioner

	nextEventID   EventID
	nextTriggerID TriggerID
	events        map[EventID]*Event
	triggers      map[TriggerID]*TriggerRule
	byOwner       map[AccountID][]TriggerID
	byEvent       map[EventID][]TriggerID
	pending       []EventID
	stats         EventStats
}

func NewHub(clock *Clock, limits Limits, jobs JobTransitioner) *Hub {
	return &Hub{
		clock:    clock,
		limits:   limits,
		jobs:     jobs,
		events:   make(map[EventID]*Event),
		triggers: make(map[TriggerID]*TriggerRule),
		byOwner:  make(map[AccountID][]TriggerID),
		byEvent:  make(map[EventID][]TriggerID),
	}
}

// SubmitEvent creates an event and appends it to the pending queue.
func (h *Hub) SubmitEvent(submitter AccountID, kind EventKind, payload []byte, originDomain *uint32) (EventID, error) {
	if len(payload) > h.limits.MaxPayloadBytes {
		return 0, opErrorf(CodePayloadTooLarge, "payload is %d bytes, limit %d", len(payload), h.limits.MaxPayloadBytes)
	}
	if len(h.pending) >= h.limits.MaxPendingEvents {
		return 0, opErrorf(CodeMaxEventsReached, "pending queue at capacity %d", h.limits.MaxPendingEvents)
	}

	id := h.nextEventID
	h.nextEventID++

	event := &Event{
		ID:        id,
		Kind:      kind,
		Payload:   append([]byte(nil), payload...),
		CreatedAt: h.clock.Now(),
	}
	if originDomain != nil {
		d := *originDomain
		event.OriginDomain = &d
	}
	h.events[id] = event
	h.pending = append(h.pending, id)

	h.stats.EventsSubmitted++
	if kind == EventKindCrossOrigin {
		h.stats.CrossOriginEvents++
	}
	return id, nil
}

// RegisterTrigger creates an active rule watching an event id. The event
// need not exist yet; ids are allocated sequentially, so rules may be set up
// ahead of the events they watch.
func (h *Hub) RegisterTrigger(owner AccountID, eventID EventID, action TriggerAction, condition []byte) (TriggerID, error) {
	if len(condition) > h.limits.MaxConditionBytes {
		return 0, opErrorf(CodePayloadTooLarge, "condition is %d bytes, limit %d", len(condition), h.limits.MaxConditionBytes)
	}
	if len(h.byOwner[owner]) >= h.limits.MaxTriggersPerAccount {
		return 0, opErrorf(CodeMaxTriggersReached, "account %s already has %d triggers", owner, len(h.byOwner[owner]))
	}
	if len(h.byEvent[eventID]) >= h.limits.MaxTriggersPerEvent {
		return 0, opErrorf(CodeMaxTriggersReached, "event %d already has %d triggers", eventID, len(h.byEvent[eventID]))
	}

	id := h.nextTriggerID
	h.nextTriggerID++

	trigger := &TriggerRule{
		ID:        id,
		Owner:     owner,
		EventID:   eventID,
		Action:    action,
		CreatedAt: h.clock.Now(),
		Active:    true,
	}
	if condition != nil {
		trigger.Condition = append([]byte(nil), condition...)
	}
	h.triggers[id] = trigger
	h.byOwner[owner] = append(h.byOwner[owner], id)
	h.byEvent[eventID] = append(h.byEvent[eventID], id)
	return id, nil
}

// ProcessEvent fires every active trigger bound to the event once, marks the
// event processed and drops it from the pending queue. A second call for the
// same event fails with AlreadyProcessed and fires nothing.
func (h *Hub) ProcessEvent(caller AccountID, eventID EventID) ([]TriggerFired, error) {
	event, ok := h.events[eventID]
	if !ok {
		return nil, opErrorf(CodeEventNotFound, "event %d does not exist", eventID)
	}
	if event.Processed {
		return nil, opErrorf(CodeAlreadyProcessed, "event %d already processed", eventID)
	}

	var fired []TriggerFired
	for _, triggerID := range h.byEvent[eventID] {
		trigger, ok := h.triggers[triggerID]
		if !ok || !trigger.Active {
			continue
		}
		if !h.conditionMet(trigger) {
			continue
		}
		fired = append(fired, h.fire(trigger, eventID))
	}

	event.Processed = true
	h.pending = removeEventID(h.pending, eventID)
	h.stats.EventsProcessed++
	return fired, nil
}

// conditionMet evaluates a trigger's condition blob. Extension point: until
// a condition language exists, any condition is satisfied.
func (h *Hub) conditionMet(trigger *TriggerRule) bool {
	return true
}

func (h *Hub) fire(trigger *TriggerRule, eventID EventID) TriggerFired {
	result := TriggerFired{
		TriggerID: trigger.ID,
		EventID:   eventID,
		Action:    trigger.Action.Kind,
	}
	switch trigger.Action.Kind {
	case ActionStartJob:
		target := trigger.Action.JobID
		if _, ok := h.jobs.Job(target); ok {
			// Authorized as the trigger owner, not the event submitter. A
			// trigger on somebody else's job fails authorization here, which
			// does not abort the rest of the event's triggers.
			if err := h.jobs.Transition(trigger.Owner, target, JobStatusInProgress); err == nil {
				id := target
				result.StartedJob = &id
			}
		}
	case ActionExternalMessage, ActionCustom:
		// Hand-off points for external collaborators; no core state changes.
	}
	h.stats.TriggersActivated++
	return result
}

// AutoProcessPending processes up to maxBatch pending events in FIFO order,
// skipping entries that were already processed directly.
// Returns the ids actually processed.
func (h *Hub) AutoProcessPending(caller AccountID, maxBatch int) []EventID {
	processed := make([]EventID, 0, maxBatch)
	for len(processed) < maxBatch && len(h.pending) > 0 {
		eventID := h.pending[0]
		event, ok := h.events[eventID]
		if !ok || event.Processed {
			h.pending = h.pending[1:]
			continue
		}
		if _, err := h.ProcessEvent(caller, eventID); err != nil {
			h.pending = h.pending[1:]
			continue
		}
		processed = append(processed, eventID)
	}
	return processed
}

// DeactivateTrigger flips a rule inactive. The rule is retained and skipped
// by future processing; the flag never flips back.
func (h *Hub) DeactivateTrigger(owner AccountID, triggerID TriggerID) error {
	trigger, ok := h.triggers[triggerID]
	if !ok {
		return opErrorf(CodeTriggerNotFound, "trigger %d does not exist", triggerID)
	}
	if trigger.Owner != owner {
		return opErrorf(CodeNotAuthorized, "account %s does not own trigger %d", owner, triggerID)
	}
	trigger.Active = false
	return nil
}

// Event returns a copy of the event record.
func (h *Hub) Event(id EventID) (Event, bool) {
	event, ok := h.events[id]
	if !ok {
		return Event{}, false
	}
	out := *event
	out.Payload = append([]byte(nil), event.Payload...)
	if event.OriginDomain != nil {
		d := *event.OriginDomain
		out.OriginDomain = &d
	}
	return out, true
}

// Trigger returns a copy of the rule record.
func (h *Hub) Trigger(id TriggerID) (TriggerRule, bool) {
	trigger, ok := h.triggers[id]
	if !ok {
		return TriggerRule{}, false
	}
	out := *trigger
	out.Condition = append([]byte(nil), trigger.Condition...)
	return out, true
}

// PendingEvents returns the pending queue in FIFO order.
func (h *Hub) PendingEvents() []EventID {
	return append([]EventID(nil), h.pending...)
}

// AccountTriggers returns the account's trigger ids in registration order.
func (h *Hub) AccountTriggers(owner AccountID) []TriggerID {
	return append([]TriggerID(nil), h.byOwner[owner]...)
}

func (h *Hub) Stats() EventStats {
	return h.stats
}

func removeEventID(ids []EventID, id EventID) []EventID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
