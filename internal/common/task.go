package common

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type BackgroundTask struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewBackgroundTask() *BackgroundTask {
	ctx, cancel := context.WithCancel(context.Background())
	return &BackgroundTask{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run executes fn in a tracked goroutine, fn must return once shtdwnCtx is done
func (bt *BackgroundTask) Run(fn func(shtdwnCtx context.Context)) {
	bt.wg.Add(1)
	go func() {
		defer bt.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error(fmt.Errorf("%v", r).Error())
			}
		}()
		fn(bt.ctx)
	}()
}

// Shutdown cancels the shared ctx & waits up to timeout for the running tasks, reports false on timeout
func (bt *BackgroundTask) Shutdown(timeout time.Duration) bool {
	bt.cancel()
	wait := make(chan struct{})
	go func() {
		bt.wg.Wait()
		close(wait)
	}()
	select {
	case <-wait:
		return true
	case <-time.After(timeout):
		slog.Warn("Shutdown timeout, some tasks may not have finished")
		return false
	}
}
