package controllers

import (
	"context"
	"sync"

	"cryptotracker/src/scheduler"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
)

type Controller struct {
	MarketSync     services.MarketSyncServiceI
	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask
}

func NewController(marketSync services.MarketSyncServiceI) *Controller {
	return &Controller{MarketSync: marketSync, Schedulers: map[string]*scheduler.ScheduledTask{}}
}

func (c *Controller) ImportAssets(ctx context.Context, count int) (*schemas.ImportAssetsResponse, error) {
	result, err := c.MarketSync.ImportAssets(ctx, count)
	if err != nil {
		return nil, err
	}
	return &schemas.ImportAssetsResponse{Imported: result.Imported, Skipped: result.Skipped}, nil
}

// RefreshPrices reports the partial result alongside the error when some
// batches could not be priced.
func (c *Controller) RefreshPrices(ctx context.Context) (*schemas.RefreshPricesResponse, error) {
	result, err := c.MarketSync.RefreshPrices(ctx)
	if result == nil {
		return nil, err
	}
	return &schemas.RefreshPricesResponse{
		Requested: result.Requested,
		Updated:   result.Updated,
		Failed:    result.Failed,
	}, err
}

// Schedule registers taskFunc under name, replacing any task already
// registered with that name.
func (c *Controller) Schedule(name, cronSpec string, taskFunc func(ctx context.Context)) error {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	task, err := scheduler.NewScheduledTask(name, cronSpec, taskFunc)
	if err != nil {
		return err
	}
	if previous, ok := c.Schedulers[name]; ok {
		previous.Cancel()
	}
	c.Schedulers[name] = task
	return nil
}

func (c *Controller) GetSchedulers() map[string]*scheduler.ScheduledTask {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	schedulers := make(map[string]*scheduler.ScheduledTask, len(c.Schedulers))
	for name, task := range c.Schedulers {
		schedulers[name] = task
	}
	return schedulers
}

// StopSchedulers cancels every scheduled task and waits for running ones.
func (c *Controller) StopSchedulers() {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	for name, task := range c.Schedulers {
		task.Cancel()
		delete(c.Schedulers, name)
	}
}
