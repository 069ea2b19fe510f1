// Package scheduler bridges downloads to a background job queue so
// interrupted transfers restart without any in-memory handoff
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"langpack-manager/pkg/models"
)

// Action names the intent a job was scheduled with. Jobs are stateless at
// fire time and derive everything from the resume-record store, so the
// action only matters for logging.
type Action string

const (
	ActionDownload Action = "download"
	ActionResume   Action = "resume"
)

const (
	DefaultInitialDelay = 5 * time.Second
	DefaultScanInterval = 30 * time.Second
	DefaultMaxRetries   = 3
	defaultBaseBackoff  = 2 * time.Second
	maxBackoff          = 5 * time.Minute
)

// Constraints gate job execution. They are evaluated when the job fires,
// never when it is scheduled.
type Constraints struct {
	RequireUnmetered     bool
	RequireBatteryNotLow bool
	MinFreeBytes         int64
}

// ConditionChecker reports the device conditions jobs are gated on.
type ConditionChecker interface {
	NetworkUnmetered() bool
	BatteryNotLow() bool
	FreeBytes() int64
}

// Runner re-enters an interrupted download from its persisted record.
type Runner interface {
	Resume(ctx context.Context, packID string) error
}

// StateReader is the read side of the resume-record store.
type StateReader interface {
	Get(packID string) (*models.ResumeState, error)
	List() ([]*models.ResumeState, error)
}

type job struct {
	id       string
	packID   string
	action   Action
	attempts int
	timer    *time.Timer
}

// Scheduler holds one pending job per pack and fires each against the
// runner once its conditions hold, retrying transient failures with
// exponential backoff. A periodic scan re-schedules any resume record that
// lost its job, which is what makes re-entry survive process restarts.
type Scheduler struct {
	states      StateReader
	checker     ConditionChecker
	constraints Constraints
	logger      *slog.Logger

	initialDelay time.Duration
	scanInterval time.Duration
	maxRetries   int
	baseBackoff  time.Duration

	mu     sync.Mutex
	runner Runner
	jobs   map[string]*job
	closed bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConstraints sets the conditions every job must satisfy before firing.
func WithConstraints(c Constraints) Option {
	return func(s *Scheduler) { s.constraints = c }
}

// WithInitialDelay overrides the delay before a freshly scheduled job first
// fires.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.initialDelay = d }
}

// WithScanInterval overrides the period of the orphaned-record scan.
func WithScanInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.scanInterval = d }
}

// WithMaxRetries overrides how many times a failing job is retried before
// being dropped.
func WithMaxRetries(n int) Option {
	return func(s *Scheduler) { s.maxRetries = n }
}

// New creates a Scheduler. The runner is attached separately because the
// downloader and the scheduler reference each other.
func New(states StateReader, checker ConditionChecker, opts ...Option) *Scheduler {
	s := &Scheduler{
		states:       states,
		checker:      checker,
		logger:       slog.Default(),
		initialDelay: DefaultInitialDelay,
		scanInterval: DefaultScanInterval,
		maxRetries:   DefaultMaxRetries,
		baseBackoff:  defaultBaseBackoff,
		jobs:         make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach wires the runner jobs fire against.
func (s *Scheduler) Attach(r Runner) {
	s.mu.Lock()
	s.runner = r
	s.mu.Unlock()
}

// ScheduleDownload registers a re-entry job for a pack whose download just
// started.
func (s *Scheduler) ScheduleDownload(packID string) error {
	return s.schedule(packID, ActionDownload)
}

// ScheduleResume registers a re-entry job for a paused or interrupted pack.
func (s *Scheduler) ScheduleResume(packID string) error {
	return s.schedule(packID, ActionResume)
}

// CancelJob drops any pending job for the pack.
func (s *Scheduler) CancelJob(packID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[packID]
	if !ok {
		return nil
	}
	if j.timer != nil {
		j.timer.Stop()
	}
	delete(s.jobs, packID)
	s.logger.Debug("Background job cancelled", "job_id", j.id, "pack_id", packID)
	return nil
}

// Jobs returns the pack IDs with a pending job.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.jobs))
	for packID := range s.jobs {
		ids = append(ids, packID)
	}
	return ids
}

// Run scans the resume-record store on a fixed period and schedules a job
// for every record that lost one. Blocks until the context is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		case <-ticker.C:
			if err := s.Scan(); err != nil {
				s.logger.Error("Resume-record scan failed", "error", err)
			}
		}
	}
}

// Scan schedules a resume job for every resume record without one.
func (s *Scheduler) Scan() error {
	records, err := s.states.List()
	if err != nil {
		return fmt.Errorf("failed to list resume records: %w", err)
	}

	for _, record := range records {
		s.mu.Lock()
		_, pending := s.jobs[record.PackID]
		s.mu.Unlock()
		if pending {
			continue
		}
		if err := s.schedule(record.PackID, ActionResume); err != nil {
			s.logger.Warn("Failed to schedule resume", "pack_id", record.PackID, "error", err)
		}
	}
	return nil
}

func (s *Scheduler) schedule(packID string, action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("scheduler is shut down")
	}
	if existing, ok := s.jobs[packID]; ok {
		s.logger.Debug("Job already pending", "job_id", existing.id, "pack_id", packID)
		return nil
	}

	j := &job{
		id:     uuid.New().String(),
		packID: packID,
		action: action,
	}
	j.timer = time.AfterFunc(s.initialDelay, func() { s.fire(j) })
	s.jobs[packID] = j

	s.logger.Info("Background job scheduled", "job_id", j.id, "pack_id", packID, "action", action)
	return nil
}

// fire runs one job attempt. The job re-derives its work from the resume
// record: no record means the pack finished or was cancelled and the job
// simply retires.
func (s *Scheduler) fire(j *job) {
	s.mu.Lock()
	if cur, ok := s.jobs[j.packID]; !ok || cur != j {
		s.mu.Unlock()
		return
	}
	runner := s.runner
	s.mu.Unlock()

	record, err := s.states.Get(j.packID)
	if err != nil {
		s.logger.Error("Failed to read resume record", "job_id", j.id, "pack_id", j.packID, "error", err)
		s.retry(j)
		return
	}
	if record == nil {
		s.retire(j)
		return
	}

	if !s.conditionsMet(record) {
		s.logger.Debug("Job conditions not met, deferring", "job_id", j.id, "pack_id", j.packID)
		s.retry(j)
		return
	}

	if runner == nil {
		s.logger.Warn("No runner attached, deferring job", "job_id", j.id)
		s.retry(j)
		return
	}

	s.retire(j)
	s.logger.Info("Background job firing", "job_id", j.id, "pack_id", j.packID, "action", j.action)
	if err := runner.Resume(context.Background(), j.packID); err != nil {
		s.logger.Warn("Background resume failed", "job_id", j.id, "pack_id", j.packID, "error", err)
		s.retry(j)
	}
}

func (s *Scheduler) conditionsMet(record *models.ResumeState) bool {
	if s.checker == nil {
		return true
	}
	if s.constraints.RequireUnmetered && !s.checker.NetworkUnmetered() {
		return false
	}
	if s.constraints.RequireBatteryNotLow && !s.checker.BatteryNotLow() {
		return false
	}
	if s.constraints.MinFreeBytes > 0 {
		needed := s.constraints.MinFreeBytes + record.TotalBytes - record.DownloadedBytes
		if s.checker.FreeBytes() < needed {
			return false
		}
	}
	return true
}

// retry backs the job off exponentially; past the retry budget the job is
// dropped and left to the periodic scan.
func (s *Scheduler) retry(j *job) {
	j.attempts++
	if j.attempts > s.maxRetries {
		s.logger.Warn("Job retry budget exhausted", "job_id", j.id, "pack_id", j.packID)
		s.retire(j)
		return
	}
	s.reschedule(j)
}

func (s *Scheduler) reschedule(j *job) {
	delay := s.baseBackoff << uint(j.attempts)
	if delay > maxBackoff {
		delay = maxBackoff
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	j.timer = time.AfterFunc(delay, func() { s.fire(j) })
	s.jobs[j.packID] = j
}

func (s *Scheduler) retire(j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.jobs[j.packID]; ok && cur == j {
		delete(s.jobs, j.packID)
	}
}

func (s *Scheduler) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for packID, j := range s.jobs {
		if j.timer != nil {
			j.timer.Stop()
		}
		delete(s.jobs, packID)
	}
}
