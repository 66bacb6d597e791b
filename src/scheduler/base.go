package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduledTask runs one function on a cron schedule. Runs never overlap: a
// tick that fires while the previous run is still going is skipped.
type ScheduledTask struct {
	Name   string
	cronID cron.EntryID
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduledTask(name, cronSpec string, taskFunc func(ctx context.Context)) (*ScheduledTask, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	ctx, cancel := context.WithCancel(context.Background())
	task := &ScheduledTask{
		Name:   name,
		cron:   c,
		ctx:    ctx,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-ctx.Done():
			return
		default:
			taskFunc(ctx)
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

// Next returns the time of the next scheduled run.
func (s *ScheduledTask) Next() time.Time {
	return s.cron.Entry(s.cronID).Next
}

// Cancel stops the schedule, cancels the context of a running task and waits
// for it to return.
func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	s.cancel()
	<-s.cron.Stop().Done()
}
