package registry

import (
	"errors"
	"sync"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
)

// ErrBusy signals that a subject already has an in-flight job. It is a
// normal control-flow outcome ("try again later"), not a failure.
var ErrBusy = errors.New("analysis already in progress for subject")

// TaskRecord tracks one in-flight job.
type TaskRecord struct {
	Subject   dto.SubjectKey
	OwnerID   string
	StartedAt time.Time
}

// TaskRegistry guarantees at most one in-flight job per subject key.
type TaskRegistry struct {
	mu    sync.Mutex
	tasks map[string]TaskRecord
}

// New creates an empty TaskRegistry.
func New() *TaskRegistry {
	return &TaskRegistry{tasks: make(map[string]TaskRecord)}
}

// TryAcquire atomically inserts a task record for the subject iff none
// exists. Returns false when the subject is busy.
func (r *TaskRegistry) TryAcquire(subject dto.SubjectKey, ownerID string) bool {
	key := subject.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[key]; exists {
		return false
	}
	r.tasks[key] = TaskRecord{
		Subject:   subject,
		OwnerID:   ownerID,
		StartedAt: time.Now(),
	}
	return true
}

// Release removes the subject's record unconditionally. Callers must
// invoke it from a deferred path so every job exit, including a panic
// unwound by the pool, clears the slot.
func (r *TaskRegistry) Release(subject dto.SubjectKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, subject.String())
}

// Get returns the record for a subject if one is in flight.
func (r *TaskRegistry) Get(subject dto.SubjectKey) (TaskRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.tasks[subject.String()]
	return rec, ok
}

// Snapshot returns a copy of all in-flight records.
func (r *TaskRegistry) Snapshot() []TaskRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]TaskRecord, 0, len(r.tasks))
	for _, rec := range r.tasks {
		records = append(records, rec)
	}
	return records
}

// Count returns the number of in-flight jobs.
func (r *TaskRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
