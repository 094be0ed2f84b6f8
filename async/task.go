package async

import (
	"fmt"
	"sync"
	"time"
)

// Task is a handle to a function running on its own goroutine.
//
// The owner observes completion without blocking through Finished or by
// selecting on Done, which is how a frame loop polls a background fit.
type Task struct {
	done chan struct{}

	mutex    sync.Mutex
	err      error
	started  time.Time
	finished time.Time
}

// TaskStats describes a task's lifetime.
type TaskStats struct {
	Running  bool
	Started  time.Time
	Duration time.Duration
	Err      error
}

// Go starts fn on a new goroutine and returns its handle. A panic in fn is
// recovered and reported as the task's error.
func Go(fn func() error) *Task {
	t := &Task{
		done:    make(chan struct{}),
		started: time.Now(),
	}

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
			t.mutex.Lock()
			t.err = err
			t.finished = time.Now()
			t.mutex.Unlock()
			close(t.done)
		}()

		err = fn()
	}()

	return t
}

// Done returns a channel that is closed when the task returns.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Finished reports, without blocking, whether the task has returned.
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the task returns and yields its error.
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Err returns the task's error, or nil while it is still running.
func (t *Task) Err() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.err
}

// Stats returns a snapshot of the task's lifetime.
func (t *Task) Stats() TaskStats {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	running := t.finished.IsZero()
	end := t.finished
	if running {
		end = time.Now()
	}
	return TaskStats{
		Running:  running,
		Started:  t.started,
		Duration: end.Sub(t.started),
		Err:      t.err,
	}
}
