package archive

import (
	"context"
	"errors"
	"fmt"

	"bridgefeed/internal/observability"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	jobID cron.EntryID
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as
// "@hourly") and registers job. job receives a background context.
func NewScheduler(spec string, job func(context.Context) error) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("job must not be nil")
	}
	c := cron.New()
	id, err := c.AddFunc(spec, func() {
		if err := job(context.Background()); err != nil {
			observability.Logger.Error("scheduled archive failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add cron: %w", err)
	}
	return &Scheduler{cron: c, jobID: id}, nil
}

// Start begins cron execution.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Next reports when the job fires next. Zero before Start.
func (s *Scheduler) Next() cron.Entry {
	return s.cron.Entry(s.jobID)
}
