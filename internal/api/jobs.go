package api

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wowsunpack/wowsunpack/internal/extract"
)

// JobStatus is where a batch extraction job sits in its lifecycle.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job tracks one POST /extract request through to completion.
type Job struct {
	ID       string         `json:"id"`
	Status   JobStatus      `json:"status"`
	Total    int            `json:"total"`
	Done     int            `json:"done"`
	Failed   int            `json:"failed"`
	Err      string         `json:"error,omitempty"`
	Outcomes []extract.Outcome `json:"-"`
}

// JobManager tracks in-flight and completed extraction jobs in memory.
// There is no persistence across process restarts — this mirrors a
// single-operator local tool, not a durable task queue.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager returns an empty JobManager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

// Start registers a new pending job and returns it.
func (m *JobManager) Start() *Job {
	job := &Job{ID: uuid.NewString(), Status: JobPending}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return job
}

// Snapshot returns a copy of the job's current state, safe to read or
// serialize without racing the background goroutine Run started.
func (m *JobManager) Snapshot(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Run executes fn in the background against job, recording its outcomes.
func (m *JobManager) Run(ctx context.Context, job *Job, fn func(ctx context.Context) ([]extract.Outcome, error)) {
	m.setStatus(job, JobRunning)

	go func() {
		outcomes, err := fn(ctx)

		m.mu.Lock()
		defer m.mu.Unlock()

		job.Outcomes = outcomes
		job.Total = len(outcomes)
		for _, o := range outcomes {
			if o.Err != nil {
				job.Failed++
			} else {
				job.Done++
			}
		}

		if err != nil {
			job.Status = JobFailed
			job.Err = err.Error()
			return
		}
		job.Status = JobDone
	}()
}

func (m *JobManager) setStatus(job *Job, status JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = status
}
