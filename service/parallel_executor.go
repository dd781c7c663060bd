package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/ludo-technologies/lshdedup/domain"
	"golang.org/x/sync/errgroup"
)

// ParallelExecutorImpl runs independent tasks, such as reading one input
// file each, on a bounded pool
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
}

// NewParallelExecutor creates a new parallel executor bounded by GOMAXPROCS
func NewParallelExecutor() domain.ParallelExecutor {
	return &ParallelExecutorImpl{
		maxConcurrency: runtime.GOMAXPROCS(0),
		timeout:        0,
	}
}

// Execute runs the enabled tasks and returns every failure joined together.
// A task that fails does not cancel its siblings: a reader should report all
// of the broken files in one run.
func (pe *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	if len(tasks) == 0 {
		return nil
	}

	if pe.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pe.timeout)
		defer cancel()
	}

	var g errgroup.Group
	if pe.maxConcurrency > 0 {
		g.SetLimit(pe.maxConcurrency)
	}

	errs := make([]error, len(tasks))
	for i, task := range tasks {
		if !task.IsEnabled() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("task %s cancelled: %w", task.Name(), err)
				return nil
			}
			if _, err := task.Execute(ctx); err != nil {
				errs[i] = fmt.Errorf("task %s failed: %w", task.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("parallel execution timed out after %v: %w", pe.timeout, ctx.Err())
	}
	return nil
}

// SetMaxConcurrency sets the maximum number of concurrent tasks; zero or
// negative removes the bound
func (pe *ParallelExecutorImpl) SetMaxConcurrency(max int) {
	pe.maxConcurrency = max
}

// SetTimeout sets the timeout for the whole batch; zero disables it
func (pe *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	pe.timeout = timeout
}

// SimpleTask adapts a closure to domain.ExecutableTask
type SimpleTask struct {
	name    string
	enabled bool
	execute func(context.Context) (interface{}, error)
}

// NewSimpleTask creates a new simple task
func NewSimpleTask(name string, enabled bool, execute func(context.Context) (interface{}, error)) domain.ExecutableTask {
	return &SimpleTask{
		name:    name,
		enabled: enabled,
		execute: execute,
	}
}

// Name returns the name of the task
func (t *SimpleTask) Name() string {
	return t.name
}

// Execute runs the task and returns the result
func (t *SimpleTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execute == nil {
		return nil, fmt.Errorf("task %s has no execute function", t.name)
	}
	return t.execute(ctx)
}

// IsEnabled returns whether the task should be executed
func (t *SimpleTask) IsEnabled() bool {
	return t.enabled
}
