package worker

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Worker runs until its context is canceled.
type Worker interface {
	Run(ctx context.Context) error
}

type OnWork func() error

// BaseJob drives OnWork on a cron schedule. Ticks overlapping a running
// round are skipped.
type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

// Run starts the schedule and blocks until ctx is done.
func (job *BaseJob) Run(ctx context.Context) error {
	job.Cron.Start()
	defer job.Cron.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// Tick one scheduled round.
func (job *BaseJob) Tick() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true
	job.OnWork()
	job.IsRunning = false
}
