// Package rules loads trigger bootstrap files. Operators describe events to
// seed and triggers to register in YAML; the orchestrator applies them once
// at startup so a fresh deployment comes up with its standing rules in place.
package rules

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/service"
)

// File is one bootstrap document. Triggers reference either an event seeded
// by the same file (by index) or a pre-existing event id.
type File struct {
	Submitter string        `yaml:"submitter"`
	Events    []EventSpec   `yaml:"events"`
	Triggers  []TriggerSpec `yaml:"triggers"`

	path string
}

type EventSpec struct {
	Kind         string  `yaml:"kind"`
	Payload      string  `yaml:"payload"`
	OriginDomain *uint32 `yaml:"origin_domain"`
}

type TriggerSpec struct {
	Owner      string     `yaml:"owner"`
	EventIndex *int       `yaml:"event_index"`
	EventID    *uint64    `yaml:"event_id"`
	Action     ActionSpec `yaml:"action"`
	Condition  string     `yaml:"condition"`
}

type ActionSpec struct {
	Kind  string `yaml:"kind"`
	JobID uint64 `yaml:"job_id"`
}

// Load expands the glob patterns and parses every matched file, in sorted
// path order so application is deterministic.
func Load(patterns []string) ([]File, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad rule pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	files := make([]File, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rule file %s: %w", path, err)
		}
		var f File
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse rule file %s: %w", path, err)
		}
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("rule file %s: %w", path, err)
		}
		f.path = path
		files = append(files, f)
	}
	return files, nil
}

func (f *File) validate() error {
	if f.Submitter == "" {
		return fmt.Errorf("submitter is required")
	}
	for i, e := range f.Events {
		if _, ok := core.ParseEventKind(e.Kind); !ok {
			return fmt.Errorf("event %d: unknown kind %q", i, e.Kind)
		}
	}
	for i, t := range f.Triggers {
		if t.Owner == "" {
			return fmt.Errorf("trigger %d: owner is required", i)
		}
		if (t.EventIndex == nil) == (t.EventID == nil) {
			return fmt.Errorf("trigger %d: exactly one of event_index or event_id is required", i)
		}
		if t.EventIndex != nil && (*t.EventIndex < 0 || *t.EventIndex >= len(f.Events)) {
			return fmt.Errorf("trigger %d: event_index %d out of range", i, *t.EventIndex)
		}
		if _, ok := core.ParseActionKind(t.Action.Kind); !ok {
			return fmt.Errorf("trigger %d: unknown action kind %q", i, t.Action.Kind)
		}
	}
	return nil
}

// Path returns where the file was loaded from.
func (f *File) Path() string {
	return f.path
}

// Apply seeds the file's events and registers its triggers against the
// service. Returns the seeded event ids and registered trigger ids.
func (f *File) Apply(svc *service.Service) ([]core.EventID, []core.TriggerID, error) {
	eventIDs := make([]core.EventID, 0, len(f.Events))
	for i, e := range f.Events {
		kind, _ := core.ParseEventKind(e.Kind)
		event, err := svc.SubmitEvent(core.AccountID(f.Submitter), kind, []byte(e.Payload), e.OriginDomain)
		if err != nil {
			return nil, nil, fmt.Errorf("seed event %d: %w", i, err)
		}
		eventIDs = append(eventIDs, event.ID)
	}

	triggerIDs := make([]core.TriggerID, 0, len(f.Triggers))
	for i, t := range f.Triggers {
		var eventID core.EventID
		if t.EventIndex != nil {
			eventID = eventIDs[*t.EventIndex]
		} else {
			eventID = core.EventID(*t.EventID)
		}
		kind, _ := core.ParseActionKind(t.Action.Kind)
		action := core.TriggerAction{Kind: kind, JobID: core.JobID(t.Action.JobID)}

		trigger, err := svc.RegisterTrigger(core.AccountID(t.Owner), eventID, action, []byte(t.Condition))
		if err != nil {
			return nil, nil, fmt.Errorf("register trigger %d: %w", i, err)
		}
		triggerIDs = append(triggerIDs, trigger.ID)
	}
	return eventIDs, triggerIDs, nil
}

// ApplyAll applies every file in order.
func ApplyAll(files []File, svc *service.Service) error {
	for i := range files {
		if _, _, err := files[i].Apply(svc); err != nil {
			return fmt.Errorf("apply %s: %w", files[i].path, err)
		}
	}
	return nil
}
