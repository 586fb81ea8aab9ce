package service

import (
	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/journal"
)

// SubmitEvent creates an event and queues it for processing.
func (s *Service) SubmitEvent(submitter core.AccountID, kind core.EventKind, payload []byte, originDomain *uint32) (core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.hub.SubmitEvent(submitter, kind, payload, originDomain)
	if err != nil {
		return core.Event{}, err
	}

	s.record(journal.KindEventSubmit, eventSubmitOp{
		Submitter:    string(submitter),
		Kind:         string(kind),
		Payload:      payload,
		OriginDomain: originDomain,
	})
	s.logger.Info("Event submitted",
		"event_id", uint64(id),
		"kind", string(kind),
		"payload_bytes", len(payload),
	)

	event, _ := s.hub.Event(id)
	return event, nil
}

// ProcessEvent fires the event's active triggers once and marks it processed.
func (s *Service) ProcessEvent(caller core.AccountID, eventID core.EventID) ([]core.TriggerFired, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fired, err := s.hub.ProcessEvent(caller, eventID)
	if err != nil {
		return nil, err
	}

	s.record(journal.KindEventProcess, eventProcessOp{Caller: string(caller), EventID: uint64(eventID)})
	s.logger.Info("Event processed", "event_id", uint64(eventID), "triggers_fired", len(fired))
	for _, f := range fired {
		if f.StartedJob != nil {
			s.logger.Info("Trigger started job",
				"trigger_id", uint64(f.TriggerID),
				"event_id", uint64(f.EventID),
				"job_id", uint64(*f.StartedJob),
			)
		}
	}
	return fired, nil
}

// AutoProcessPending drains up to maxBatch queued events in FIFO order.
// Called from the ticker between requests.
func (s *Service) AutoProcessPending(caller core.AccountID, maxBatch int) []core.EventID {
	s.mu.Lock()
	defer s.mu.Unlock()

	processed := s.hub.AutoProcessPending(caller, maxBatch)
	for _, id := range processed {
		s.record(journal.KindEventProcess, eventProcessOp{Caller: string(caller), EventID: uint64(id)})
	}
	if len(processed) > 0 {
		s.logger.Debug("Pending events processed", "count", len(processed))
	}
	return processed
}

// RegisterTrigger creates an active rule watching an event id.
func (s *Service) RegisterTrigger(owner core.AccountID, eventID core.EventID, action core.TriggerAction, condition []byte) (core.TriggerRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.hub.RegisterTrigger(owner, eventID, action, condition)
	if err != nil {
		return core.TriggerRule{}, err
	}

	s.record(journal.KindTriggerRegister, triggerRegisterOp{
		Owner:       string(owner),
		EventID:     uint64(eventID),
		ActionKind:  string(action.Kind),
		ActionJobID: uint64(action.JobID),
		Condition:   condition,
	})
	s.logger.Info("Trigger registered",
		"trigger_id", uint64(id),
		"event_id", uint64(eventID),
		"action", string(action.Kind),
		"owner", string(owner),
	)

	trigger, _ := s.hub.Trigger(id)
	return trigger, nil
}

// DeactivateTrigger flips a rule inactive, permanently.
func (s *Service) DeactivateTrigger(owner core.AccountID, triggerID core.TriggerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hub.DeactivateTrigger(owner, triggerID); err != nil {
		return err
	}

	s.record(journal.KindTriggerDeactivate, triggerDeactivateOp{Owner: string(owner), TriggerID: uint64(triggerID)})
	s.logger.Info("Trigger deactivated", "trigger_id", uint64(triggerID), "owner", string(owner))
	return nil
}

// GetEvent returns the event record.
func (s *Service) GetEvent(id core.EventID) (core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.hub.Event(id)
	if !ok {
		return core.Event{}, core.NewError(core.CodeEventNotFound, "event %d does not exist", id)
	}
	return event, nil
}

// GetTrigger returns the trigger record.
func (s *Service) GetTrigger(id core.TriggerID) (core.TriggerRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trigger, ok := s.hub.Trigger(id)
	if !ok {
		return core.TriggerRule{}, core.NewError(core.CodeTriggerNotFound, "trigger %d does not exist", id)
	}
	return trigger, nil
}

// PendingEvents returns the event queue in FIFO order.
func (s *Service) PendingEvents() []core.EventID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub.PendingEvents()
}

// AccountTriggers returns an account's trigger ids in registration order.
func (s *Service) AccountTriggers(owner core.AccountID) []core.TriggerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub.AccountTriggers(owner)
}
