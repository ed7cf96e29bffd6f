// Package scheduler runs named callbacks on cron schedules with an
// injectable clock, so tests can pin the reference time instead of waiting
// on wall-clock intervals. There is no catch-up for missed fires — a late
// tick just means a brief delay before the next one.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Job is a named callback fired on a cron schedule.
type Job struct {
	Name string
	Expr string
	Run  func()
}

// Scheduler fires a set of jobs on their schedules until cancelled.
type Scheduler struct {
	jobs []Job
	now  func() time.Time
}

// New validates every job's cron expression and returns a Scheduler.
// A nil now defaults to time.Now.
func New(now func() time.Time, jobs ...Job) (*Scheduler, error) {
	if now == nil {
		now = time.Now
	}
	for _, j := range jobs {
		if j.Run == nil {
			return nil, fmt.Errorf("scheduler: job %s: callback is required", j.Name)
		}
		if _, err := cronParser.Parse(j.Expr); err != nil {
			return nil, fmt.Errorf("scheduler: job %s: parse %q: %w", j.Name, j.Expr, err)
		}
	}
	return &Scheduler{jobs: jobs, now: now}, nil
}

// Run fires each job on its schedule until ctx is cancelled. It blocks
// until all job loops have stopped.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			s.runJob(ctx, j)
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, j Job) {
	sched, err := cronParser.Parse(j.Expr)
	if err != nil {
		// Expressions were validated in New; this only trips if a job was
		// mutated after construction.
		log.Printf("scheduler: job %s: %v", j.Name, err)
		return
	}

	timer := time.NewTimer(nextDelay(sched, s.now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			j.Run()
			timer.Reset(nextDelay(sched, s.now()))
		}
	}
}

// nextDelay returns the duration from now until the schedule's next fire
// time, with a one-second floor so a job can never spin.
func nextDelay(sched cron.Schedule, now time.Time) time.Duration {
	d := sched.Next(now).Sub(now)
	if d <= 0 {
		d = time.Second
	}
	return d
}
