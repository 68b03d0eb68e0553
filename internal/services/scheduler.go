package services

import (
	"context"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type cycleRunner interface {
	RunCycle(ctx context.Context) CycleResult
}

// fixedInterval fires every interval after the previous activation.
// cron.Every rounds to whole seconds, this does not.
type fixedInterval time.Duration

func (i fixedInterval) Next(t time.Time) time.Time {
	return t.Add(time.Duration(i))
}

// IngestionScheduler drives the background ingestion loop.
type IngestionScheduler struct {
	runner       cycleRunner
	interval     time.Duration
	initialDelay time.Duration
}

func NewIngestionScheduler(runner cycleRunner, interval, initialDelay time.Duration) *IngestionScheduler {
	return &IngestionScheduler{runner: runner, interval: interval, initialDelay: initialDelay}
}

// Run waits for the initial delay, runs a cycle and then one per interval
// until ctx is done. A panicking cycle is logged and the loop goes on. Run
// returns once the running cycle, if any, has finished.
func (s *IngestionScheduler) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.initialDelay):
	}

	cronLogger := cron.PrintfLogger(log.StandardLogger())
	job := cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)).
		Then(cron.FuncJob(func() { s.runner.RunCycle(ctx) }))

	c := cron.New()
	c.Schedule(fixedInterval(s.interval), job)

	log.Infof("ingestion scheduler started, interval: %v", s.interval)
	job.Run()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("ingestion scheduler stopped")
}
