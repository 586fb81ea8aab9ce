package core

// Registry owns the job dependency graph and the status and owner indexes.
//
// Every mutation either applies completely (record plus both indexes) or not
// at all: all preconditions are checked before the first write. The struct is
// not safe for concurrent use; the service layer serializes access.
type Registry struct {
	clock  *Clock
	limits Limits

	nextID   JobID
	jobs     map[JobID]*Job
	byOwner  map[AccountID][]JobID
	byStatus map[JobStatus][]JobID
}

func NewRegistry(clock *Clock, limits Limits) *Registry {
	return &Registry{
		clock:    clock,
		limits:   limits,
		jobs:     make(map[JobID]*Job),
		byOwner:  make(map[AccountID][]JobID),
		byStatus: make(map[JobStatus][]JobID),
	}
}

// validTransitions is the one transition table all components agree on.
// Verifying a running job moves it straight to Verified; an accepted proof
// subsumes completion.
var validTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusInProgress, JobStatusFailed},
	JobStatusInProgress: {JobStatusCompleted, JobStatusFailed, JobStatusVerified},
	JobStatusCompleted:  {JobStatusVerified},
}

func transitionAllowed(from, to JobStatus) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Submit validates and stores a new job with status Pending. The id counter
// only advances on success.
func (r *Registry) Submit(owner AccountID, metadata []byte, dependencies []JobID, deadline Height) (JobID, error) {
	if len(metadata) > r.limits.MaxMetadataBytes {
		return 0, opErrorf(CodeMetadataTooLarge, "metadata is %d bytes, limit %d", len(metadata), r.limits.MaxMetadataBytes)
	}
	if len(dependencies) > r.limits.MaxDependencies {
		return 0, opErrorf(CodeTooManyDependencies, "%d dependencies, limit %d", len(dependencies), r.limits.MaxDependencies)
	}
	now := r.clock.Now()
	if deadline <= now {
		return 0, opErrorf(CodeDeadlineInPast, "deadline %d not after current height %d", deadline, now)
	}
	for _, dep := range dependencies {
		if _, ok := r.jobs[dep]; !ok {
			return 0, opErrorf(CodeDependencyNotFound, "dependency job %d does not exist", dep)
		}
		if err := r.checkDependencyDepth(dep); err != nil {
			return 0, err
		}
	}
	if len(r.byOwner[owner]) >= r.limits.MaxJobsPerAccount {
		return 0, opErrorf(CodeMaxJobsReached, "account %s already has %d jobs", owner, len(r.byOwner[owner]))
	}
	if len(r.byStatus[JobStatusPending]) >= r.limits.MaxStatusBucket {
		return 0, opErrorf(CodeStatusBucketFull, "pending bucket at capacity %d", r.limits.MaxStatusBucket)
	}

	id := r.nextID
	r.nextID++

	job := &Job{
		ID:           id,
		Owner:        owner,
		Metadata:     append([]byte(nil), metadata...),
		Dependencies: append([]JobID(nil), dependencies...),
		Deadline:     deadline,
		Status:       JobStatusPending,
		SubmittedAt:  now,
	}
	r.jobs[id] = job
	r.byOwner[owner] = append(r.byOwner[owner], id)
	r.byStatus[JobStatusPending] = append(r.byStatus[JobStatusPending], id)
	return id, nil
}

// checkDependencyDepth bounds the cost of walking a dependency chain.
// Ids pre-exist their dependents, so the graph is acyclic by construction;
// this is a resource bound, not a cycle detector. The walk is iterative to
// keep the call stack flat.
func (r *Registry) checkDependencyDepth(root JobID) error {
	type frame struct {
		id    JobID
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth >= r.limits.MaxDependencyDepth {
			return opErrorf(CodeMaxDependencyDepthExceeded, "dependency chain exceeds depth %d", r.limits.MaxDependencyDepth)
		}
		job, ok := r.jobs[f.id]
		if !ok {
			continue
		}
		for _, dep := range job.Dependencies {
			stack = append(stack, frame{dep, f.depth + 1})
		}
	}
	return nil
}

// Transition moves a job along the transition table. Only the owner may
// request it; the record and both index halves change together.
func (r *Registry) Transition(requester AccountID, id JobID, to JobStatus) error {
	job, ok := r.jobs[id]
	if !ok {
		return opErrorf(CodeJobNotFound, "job %d does not exist", id)
	}
	if job.Owner != requester {
		return opErrorf(CodeNotAuthorized, "account %s does not own job %d", requester, id)
	}
	return r.applyTransition(job, to)
}

func (r *Registry) applyTransition(job *Job, to JobStatus) error {
	if !transitionAllowed(job.Status, to) {
		return opErrorf(CodeInvalidStatusTransition, "cannot move job %d from %s to %s", job.ID, job.Status, to)
	}
	if len(r.byStatus[to]) >= r.limits.MaxStatusBucket {
		return opErrorf(CodeStatusBucketFull, "%s bucket at capacity %d", to, r.limits.MaxStatusBucket)
	}

	from := job.Status
	job.Status = to
	if (to == JobStatusCompleted || to == JobStatusVerified) && job.CompletedAt == nil {
		h := r.clock.Now()
		job.CompletedAt = &h
	}
	r.byStatus[from] = removeID(r.byStatus[from], job.ID)
	r.byStatus[to] = append(r.byStatus[to], job.ID)
	return nil
}

// Remove deletes a terminal job and purges it from both indexes.
func (r *Registry) Remove(owner AccountID, id JobID) error {
	job, ok := r.jobs[id]
	if !ok {
		return opErrorf(CodeJobNotFound, "job %d does not exist", id)
	}
	if job.Owner != owner {
		return opErrorf(CodeNotAuthorized, "account %s does not own job %d", owner, id)
	}
	if !job.Status.Terminal() {
		return opErrorf(CodeInvalidStatusTransition, "job %d is %s, only terminal jobs can be removed", id, job.Status)
	}

	delete(r.jobs, id)
	r.byOwner[owner] = removeID(r.byOwner[owner], id)
	if len(r.byOwner[owner]) == 0 {
		delete(r.byOwner, owner)
	}
	r.byStatus[job.Status] = removeID(r.byStatus[job.Status], id)
	return nil
}

// Job returns a copy of the job record.
func (r *Registry) Job(id JobID) (Job, bool) {
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return cloneJob(job), true
}

// JobsByOwner returns the account's job ids in submission order.
func (r *Registry) JobsByOwner(owner AccountID) []JobID {
	return append([]JobID(nil), r.byOwner[owner]...)
}

// JobsByStatus returns the ids currently in a status bucket.
func (r *Registry) JobsByStatus(status JobStatus) []JobID {
	return append([]JobID(nil), r.byStatus[status]...)
}

// Jobs returns filtered job copies plus the total match count before paging.
func (r *Registry) Jobs(filter JobFilter) ([]Job, int) {
	var candidates []JobID
	switch {
	case filter.Owner != nil:
		candidates = r.byOwner[*filter.Owner]
	case filter.Status != nil:
		candidates = r.byStatus[*filter.Status]
	default:
		candidates = make([]JobID, 0, len(r.jobs))
		for id := JobID(0); id < r.nextID; id++ {
			if _, ok := r.jobs[id]; ok {
				candidates = append(candidates, id)
			}
		}
	}

	matched := make([]Job, 0, len(candidates))
	for _, id := range candidates {
		job := r.jobs[id]
		if job == nil {
			continue
		}
		if filter.Owner != nil && job.Owner != *filter.Owner {
			continue
		}
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneJob(job))
	}

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total
}

// DependenciesMet reports whether every dependency of the job is Completed
// or Verified. A missing job, or a missing dependency, is false.
func (r *Registry) DependenciesMet(id JobID) bool {
	job, ok := r.jobs[id]
	if !ok {
		return false
	}
	for _, dep := range job.Dependencies {
		depJob, ok := r.jobs[dep]
		if !ok {
			return false
		}
		if depJob.Status != JobStatusCompleted && depJob.Status != JobStatusVerified {
			return false
		}
	}
	return true
}

// ReadyJobs returns every Pending job whose dependencies are all satisfied.
// Pure read, recomputed each call.
func (r *Registry) ReadyJobs() []JobID {
	pending := r.byStatus[JobStatusPending]
	ready := make([]JobID, 0, len(pending))
	for _, id := range pending {
		if r.DependenciesMet(id) {
			ready = append(ready, id)
		}
	}
	return ready
}

// NextID returns the id the next submission will receive.
func (r *Registry) NextID() JobID {
	return r.nextID
}

// OwnerTransition transitions a job with the authority of the job's own
// owner. It is the capability handed to trusted internal callers (the
// verification gate) so the authority substitution is explicit rather than
// implicit impersonation.
type OwnerTransition interface {
	TransitionAsOwner(id JobID, to JobStatus) error
}

// OwnerTransitions returns the internal transition capability.
func (r *Registry) OwnerTransitions() OwnerTransition {
	return ownerTransition{r}
}

type ownerTransition struct {
	r *Registry
}

func (t ownerTransition) TransitionAsOwner(id JobID, to JobStatus) error {
	job, ok := t.r.jobs[id]
	if !ok {
		return opErrorf(CodeJobNotFound, "job %d does not exist", id)
	}
	return t.r.applyTransition(job, to)
}

func cloneJob(job *Job) Job {
	out := *job
	out.Metadata = append([]byte(nil), job.Metadata...)
	out.Dependencies = append([]JobID(nil), job.Dependencies...)
	if job.CompletedAt != nil {
		h := *job.CompletedAt
		out.CompletedAt = &h
	}
	return out
}

func removeID(ids []JobID, id JobID) []JobID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
