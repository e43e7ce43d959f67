// Package training runs the EPS classifier in the background and caches
// the result per filter selection and dataset version.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corpfin/dashboard/internal/metrics"
	"github.com/corpfin/dashboard/internal/ml"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/robfig/cron"
)

// MaxJobs limits retained jobs; the oldest finished ones are evicted first.
const MaxJobs = 32

// JobMaxAge is how long a finished job is kept by CleanupOld.
const JobMaxAge = 30 * time.Minute

// ErrJobNotFound is returned for unknown job IDs.
var ErrJobNotFound = errors.New("training job not found")

// Runner trains a model on records. ml.Run satisfies it once bound to a config.
type Runner func(ctx context.Context, records []models.FinancialRecord) (*models.ModelReport, error)

// Manager owns the training jobs.
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*jobState
	byKey   map[string]string // fingerprint@version -> job ID
	run     Runner
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
}

type jobState struct {
	job  *models.TrainingJob
	done chan struct{}
}

// NewManager creates a manager that trains with ml.Run and cfg.
func NewManager(cfg ml.Config, m *metrics.Metrics) *Manager {
	return NewManagerWithRunner(func(ctx context.Context, records []models.FinancialRecord) (*models.ModelReport, error) {
		return ml.Run(ctx, records, cfg)
	}, m)
}

// NewManagerWithRunner creates a manager with a custom runner.
func NewManagerWithRunner(run Runner, m *metrics.Metrics) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:    make(map[string]*jobState),
		byKey:   make(map[string]string),
		run:     run,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func cacheKey(fingerprint string, version int64) string {
	return fmt.Sprintf("%s@%d", fingerprint, version)
}

// Start returns the job already trained or training for this fingerprint and
// dataset version, unless it failed. Otherwise it starts a new job.
func (m *Manager) Start(f models.Filter, fingerprint string, version int64, records []models.FinancialRecord) *models.TrainingJob {
	key := cacheKey(fingerprint, version)

	m.mu.Lock()
	if id, ok := m.byKey[key]; ok {
		if state, ok := m.jobs[id]; ok && state.job.Status != models.JobStatusError {
			job := *state.job
			m.mu.Unlock()
			return &job
		}
	}

	m.evictLocked()

	job := &models.TrainingJob{
		ID:             uuid.New().String(),
		Fingerprint:    fingerprint,
		Filter:         f,
		Status:         models.JobStatusPending,
		Rows:           len(records),
		StartedAt:      time.Now(),
		DatasetVersion: version,
	}
	state := &jobState{job: job, done: make(chan struct{})}
	m.jobs[job.ID] = state
	m.byKey[key] = job.ID
	snapshot := *job
	m.mu.Unlock()

	go m.runJob(state, records)

	return &snapshot
}

func (m *Manager) runJob(state *jobState, records []models.FinancialRecord) {
	id := state.job.ID
	start := time.Now()

	defer close(state.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("training panicked", "job", id[:8], "panic", r)
			m.finish(state, nil, fmt.Errorf("training panicked: %v", r), start)
		}
	}()

	m.mu.Lock()
	state.job.Status = models.JobStatusTraining
	m.mu.Unlock()

	slog.Info("training started", "job", id[:8], "rows", len(records))
	report, err := m.run(m.ctx, records)
	m.finish(state, report, err, start)
}

func (m *Manager) finish(state *jobState, report *models.ModelReport, err error, start time.Time) {
	elapsed := time.Since(start)
	if err == nil && report == nil {
		err = errors.New("training produced no report")
	}

	m.mu.Lock()
	state.job.FinishedAt = time.Now()
	state.job.DurationMs = elapsed.Milliseconds()
	if err != nil {
		state.job.Status = models.JobStatusError
		state.job.Error = err.Error()
	} else {
		state.job.Status = models.JobStatusComplete
		state.job.Report = report
	}
	status := state.job.Status
	m.mu.Unlock()

	m.metrics.ObserveTraining(string(status), elapsed)
	if err != nil {
		slog.Warn("training failed", "job", state.job.ID[:8], "error", err)
		return
	}
	slog.Info("training complete", "job", state.job.ID[:8], "accuracy", report.Accuracy, "duration", elapsed.Round(time.Millisecond))
}

// Get returns a snapshot of the job.
func (m *Manager) Get(id string) (*models.TrainingJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	job := *state.job
	return &job, true
}

// Wait blocks until the job finishes or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (*models.TrainingJob, error) {
	m.mu.RLock()
	state, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrJobNotFound
	}

	select {
	case <-state.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	job, _ := m.Get(id)
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Reset drops every cache entry so the next Start retrains. Running jobs
// keep running and stay retrievable by ID.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey = make(map[string]string)
}

// Len returns the number of retained jobs.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

// evictLocked frees room for one more job by dropping the oldest finished ones.
func (m *Manager) evictLocked() {
	for len(m.jobs) >= MaxJobs {
		var oldest string
		var oldestAt time.Time
		for id, state := range m.jobs {
			if !state.job.Done() {
				continue
			}
			if oldest == "" || state.job.FinishedAt.Before(oldestAt) {
				oldest, oldestAt = id, state.job.FinishedAt
			}
		}
		if oldest == "" {
			return
		}
		m.deleteLocked(oldest)
	}
}

func (m *Manager) deleteLocked(id string) {
	state := m.jobs[id]
	delete(m.jobs, id)
	key := cacheKey(state.job.Fingerprint, state.job.DatasetVersion)
	if m.byKey[key] == id {
		delete(m.byKey, key)
	}
}

// CleanupOld removes finished jobs older than maxAge and returns how many
// were removed.
func (m *Manager) CleanupOld(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, state := range m.jobs {
		if !state.job.Done() || state.job.FinishedAt.After(cutoff) {
			continue
		}
		m.deleteLocked(id)
		removed++
	}
	if removed > 0 {
		slog.Info("cleaned up training jobs", "removed", removed, "remaining", len(m.jobs))
	}
	return removed
}

// ScheduleCleanup registers CleanupOld(maxAge) on c with a cron spec such as
// "@every 5m".
func (m *Manager) ScheduleCleanup(c *cron.Cron, spec string, maxAge time.Duration) error {
	if err := c.AddFunc(spec, func() { m.CleanupOld(maxAge) }); err != nil {
		return fmt.Errorf("schedule job cleanup %q: %w", spec, err)
	}
	return nil
}

// Close cancels running jobs.
func (m *Manager) Close() {
	m.cancel()
}
