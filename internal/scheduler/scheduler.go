package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"lentera.id/elearning/pkg/apperror"
)

// Job is a unit of scheduled background work. Jobs with an empty schedule
// are registered for on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler wires jobs onto a single cron instance. Job failures are logged
// and swallowed here: a failed nightly run degrades tomorrow's rank-change
// display, it must never take the process down or block request traffic.
type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

// RegisterJob adds a job to the scheduler and, when it carries a cron
// expression, schedules it.
func (s *Scheduler) RegisterJob(job Job) {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		log.Printf("📝 [%s] Registered as on-demand job (no schedule)", job.Name())
		return
	}

	_, err := s.cron.AddFunc(schedule, func() {
		log.Printf("⏰ [%s] Starting scheduled run...", job.Name())
		if err := job.Run(context.Background()); err != nil {
			log.Printf("❌ [%s] Run failed: %v", job.Name(), err)
		} else {
			log.Printf("✅ [%s] Run completed", job.Name())
		}
	})

	if err != nil {
		log.Printf("⚠️ Failed to schedule job %s: %v", job.Name(), err)
	} else {
		log.Printf("📅 [%s] Scheduled with cron: %s", job.Name(), schedule)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Scheduler started with %d registered jobs", len(s.jobs))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("🛑 Scheduler stopped")
}

// RunJobByName triggers a registered job outside its schedule. Used by the
// admin recovery endpoint after a missed night. An unknown name is an
// error: the caller must never be told a run succeeded when nothing ran.
func (s *Scheduler) RunJobByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			log.Printf("🎯 [%s] Running on-demand execution...", name)
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("job %q: %w", name, apperror.ErrNotFound)
}
