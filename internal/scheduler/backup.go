package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Describe returns a human-readable description of a cron schedule.
func Describe(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 3 * * *":
		return "Daily at 03:00"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// Job is the work a scheduler runs on every tick.
type Job func(ctx context.Context) error

// Status is the last outcome of a scheduled job.
type Status struct {
	Schedule  string     `json:"schedule"`
	Running   bool       `json:"running"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// BackupScheduler runs the backup job on a cron schedule.
type BackupScheduler struct {
	schedule string
	job      Job

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc

	lastRun   *time.Time
	lastError string
}

func NewBackupScheduler(schedule string, job Job) *BackupScheduler {
	return &BackupScheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the job. It stops by itself when ctx is cancelled.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.job == nil {
		return errors.New("backup job not configured")
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron.Start()
	s.running = true

	log.Info().
		Str("schedule", s.schedule).
		Str("description", Describe(s.schedule)).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("Backup scheduler started")

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	entryID, cancel := s.entryID, s.cancel
	s.mu.Unlock()

	// Jobs take s.mu when they finish, so wait without holding it.
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.cron.Remove(entryID)
	cancel()

	log.Info().Msg("Backup scheduler stopped")
}

// RunNow runs the job synchronously, outside the schedule.
func (s *BackupScheduler) RunNow(ctx context.Context) error {
	return s.execute(ctx)
}

func (s *BackupScheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Schedule:  s.schedule,
		Running:   s.running,
		LastRun:   s.lastRun,
		LastError: s.lastError,
	}
	if s.running {
		next := s.cron.Entry(s.entryID).Next
		st.NextRun = &next
	}
	return st
}

func (s *BackupScheduler) run() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	_ = s.execute(ctx)
}

func (s *BackupScheduler) execute(ctx context.Context) error {
	start := time.Now()
	err := s.job(ctx)

	s.mu.Lock()
	s.lastRun = &start
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("Scheduled backup failed")
		return err
	}
	log.Info().Dur("duration", time.Since(start).Round(time.Millisecond)).Msg("Scheduled backup finished")
	return nil
}
