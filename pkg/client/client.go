// Package client is a typed HTTP client for the orchestrator REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	accountHeader    = "X-Account"
	adminTokenHeader = "X-Admin-Token"
)

// APIError is a non-2xx response decoded from the orchestrator's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Client talks to one orchestrator. Account is sent as the caller identity
// on every request; AdminToken only on the administrative calls.
type Client struct {
	baseURL    string
	account    string
	adminToken string
	http       *http.Client
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithAdminToken(token string) Option {
	return func(c *Client) { c.adminToken = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL, account string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		account: account,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, admin bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.account != "" {
		req.Header.Set(accountHeader, c.account)
	}
	if admin {
		req.Header.Set(adminTokenHeader, c.adminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error == "" {
			return &APIError{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: string(raw)}
		}
		return &APIError{Status: resp.StatusCode, Code: apiErr.Error, Message: apiErr.Message}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Job mirrors the orchestrator's job representation.
type Job struct {
	ID           uint64   `json:"id"`
	Owner        string   `json:"owner"`
	Metadata     []byte   `json:"metadata,omitempty"`
	Dependencies []uint64 `json:"dependencies,omitempty"`
	Deadline     uint64   `json:"deadline"`
	Status       string   `json:"status"`
	SubmittedAt  uint64   `json:"submitted_at"`
	CompletedAt  *uint64  `json:"completed_at,omitempty"`

	// Only set on single-job reads.
	DependenciesMet *bool `json:"dependencies_met,omitempty"`
}

type Result struct {
	JobID       uint64 `json:"job_id"`
	ResultHash  string `json:"result_hash"`
	Scheme      string `json:"scheme"`
	SubmittedAt uint64 `json:"submitted_at"`
	Verified    bool   `json:"verified"`
}

type Event struct {
	ID           uint64  `json:"id"`
	Kind         string  `json:"kind"`
	Payload      []byte  `json:"payload,omitempty"`
	CreatedAt    uint64  `json:"created_at"`
	Processed    bool    `json:"processed"`
	OriginDomain *uint32 `json:"origin_domain,omitempty"`
}

type TriggerFired struct {
	TriggerID  uint64  `json:"trigger_id"`
	Action     string  `json:"action"`
	StartedJob *uint64 `json:"started_job,omitempty"`
}

type TriggerAction struct {
	Kind  string `json:"kind"`
	JobID uint64 `json:"job_id,omitempty"`
}

type Trigger struct {
	ID        uint64        `json:"id"`
	Owner     string        `json:"owner"`
	EventID   uint64        `json:"event_id"`
	Action    TriggerAction `json:"action"`
	Condition []byte        `json:"condition,omitempty"`
	CreatedAt uint64        `json:"created_at"`
	Active    bool          `json:"active"`
}

type Stats struct {
	Height             uint64         `json:"height"`
	JobsByStatus       map[string]int `json:"jobs_by_status"`
	TotalJobs          int            `json:"total_jobs"`
	JobsSubmitted      uint64         `json:"jobs_submitted"`
	JobsCompleted      uint64         `json:"jobs_completed"`
	JobsFailed         uint64         `json:"jobs_failed"`
	JobsVerified       uint64         `json:"jobs_verified"`
	JobsRemoved        uint64         `json:"jobs_removed"`
	ProofsSubmitted    uint64         `json:"proofs_submitted"`
	ProofsVerified     uint64         `json:"proofs_verified"`
	ProofsFailed       uint64         `json:"proofs_failed"`
	EventsSubmitted    uint64         `json:"events_submitted"`
	EventsProcessed    uint64         `json:"events_processed"`
	TriggersActivated  uint64         `json:"triggers_activated"`
	CrossOriginEvents  uint64         `json:"cross_origin_events"`
	PendingEvents      int            `json:"pending_events"`
	SampleCount        int            `json:"sample_count"`
	AvgExecutionHeight uint64         `json:"avg_execution_height"`
}

// SubmitJob creates a job owned by the client's account.
func (c *Client) SubmitJob(ctx context.Context, metadata []byte, dependencies []uint64, deadline uint64) (*Job, error) {
	req := map[string]any{
		"metadata":     metadata,
		"dependencies": dependencies,
		"deadline":     deadline,
	}
	var job Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", req, &job, false); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) GetJob(ctx context.Context, id uint64) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/jobs/%d", id), nil, &job, false); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs filters by owner and status; empty strings mean no filter.
func (c *Client) ListJobs(ctx context.Context, owner, status string, limit, offset int) ([]Job, int, error) {
	params := url.Values{}
	if owner != "" {
		params.Set("owner", owner)
	}
	if status != "" {
		params.Set("status", status)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/jobs"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp struct {
		Jobs  []Job `json:"jobs"`
		Total int   `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, 0, err
	}
	return resp.Jobs, resp.Total, nil
}

// ReadyJobs returns the pending jobs whose dependencies are satisfied.
func (c *Client) ReadyJobs(ctx context.Context) ([]Job, error) {
	var resp struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/jobs/ready", nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

func (c *Client) TransitionJob(ctx context.Context, id uint64, status string) (*Job, error) {
	var job Job
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/jobs/%d/status", id), map[string]string{"status": status}, &job, false)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) RemoveJob(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/jobs/%d", id), nil, nil, false)
}

func (c *Client) SubmitProof(ctx context.Context, id uint64, resultHash, scheme string, proof []byte) (*Result, error) {
	req := map[string]any{
		"result_hash": resultHash,
		"scheme":      scheme,
		"proof":       proof,
	}
	var result Result
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/jobs/%d/proof", id), req, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetResult(ctx context.Context, id uint64) (*Result, error) {
	var result Result
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/jobs/%d/result", id), nil, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) VerifyProof(ctx context.Context, id uint64) (*Result, error) {
	var result Result
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/jobs/%d/verify", id), nil, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkVerified is the administrative bypass; requires WithAdminToken.
func (c *Client) MarkVerified(ctx context.Context, id uint64) (*Result, error) {
	var result Result
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/jobs/%d/verify-admin", id), nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SubmitEvent(ctx context.Context, kind string, payload []byte, originDomain *uint32) (*Event, error) {
	req := map[string]any{
		"kind":    kind,
		"payload": payload,
	}
	if originDomain != nil {
		req["origin_domain"] = *originDomain
	}
	var event Event
	if err := c.do(ctx, http.MethodPost, "/api/events", req, &event, false); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) GetEvent(ctx context.Context, id uint64) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/events/%d", id), nil, &event, false); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) PendingEvents(ctx context.Context) ([]uint64, error) {
	var resp struct {
		EventIDs []uint64 `json:"event_ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/events/pending", nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.EventIDs, nil
}

func (c *Client) ProcessEvent(ctx context.Context, id uint64) ([]TriggerFired, error) {
	var resp struct {
		TriggersFired []TriggerFired `json:"triggers_fired"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/events/%d/process", id), nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.TriggersFired, nil
}

func (c *Client) RegisterTrigger(ctx context.Context, eventID uint64, action TriggerAction, condition []byte) (*Trigger, error) {
	req := map[string]any{
		"event_id":  eventID,
		"action":    action,
		"condition": condition,
	}
	var trigger Trigger
	if err := c.do(ctx, http.MethodPost, "/api/triggers", req, &trigger, false); err != nil {
		return nil, err
	}
	return &trigger, nil
}

func (c *Client) GetTrigger(ctx context.Context, id uint64) (*Trigger, error) {
	var trigger Trigger
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/triggers/%d", id), nil, &trigger, false); err != nil {
		return nil, err
	}
	return &trigger, nil
}

// ListTriggers returns the owner's trigger ids in registration order.
func (c *Client) ListTriggers(ctx context.Context, owner string) ([]uint64, error) {
	var resp struct {
		TriggerIDs []uint64 `json:"trigger_ids"`
	}
	path := "/api/triggers?owner=" + url.QueryEscape(owner)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.TriggerIDs, nil
}

func (c *Client) DeactivateTrigger(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/triggers/%d/deactivate", id), nil, nil, false)
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &stats, false); err != nil {
		return nil, err
	}
	return &stats, nil
}
