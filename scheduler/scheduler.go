// This file is part of wipiemu.
//
// wipiemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// wipiemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with wipiemu.  If not, see <https://www.gnu.org/licenses/>.

// Package scheduler implements the cooperative task model that drives the
// emulator. Every unit of guest work (the application's start task, timer
// callbacks, spawned Java methods) is a Task. Exactly one task executes at
// any one time and a task only loses control at an explicit suspension
// point: Sleep(), Yield(), or the end of the task function.
//
// Each task runs in its own goroutine but the goroutines are gated such
// that only the task currently resumed by the Run() loop is ever active.
// This gives the convenience of ordinary sequential Go code inside a task
// without any real concurrency between tasks.
//
// The scheduler owns the emulation clock. Ticks are milliseconds. When no
// task is ready and at least one task is sleeping the clock jumps forward
// to the earliest wake time; or, if the Realtime field is set, the
// process blocks for the equivalent wall-clock duration.
package scheduler

import (
	"time"

	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/logger"
)

// sentinel error patterns for the scheduler package.
const (
	TaskCancelled = "scheduler: task cancelled: %s"
	TaskFatal     = "scheduler: task failed: %s: %v"
)

// Scheduler is the cooperative task queue.
type Scheduler struct {
	// Realtime blocks the process for the actual duration when the clock
	// needs to move forward. the default is to jump the clock instantly,
	// which is the correct behaviour for tests and headless runs
	Realtime bool

	now   uint64
	ready []*Task

	// tasks waiting on a wake time. kept sorted by wake time, earliest
	// last (so that the next candidate is a cheap slice truncation)
	sleeping []*Task

	// the first fatal task error encountered during Run()
	fault error
}

// NewScheduler is the preferred method of initialisation for the
// Scheduler type.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current value of the emulation clock.
func (sch *Scheduler) Now() uint64 {
	return sch.now
}

// TaskFn is the function a Task executes. The supplied Task is the handle
// through which the function reaches its suspension points.
type TaskFn func(t *Task) error

// Task is a single cooperative unit of work.
type Task struct {
	sch  *Scheduler
	name string
	fn   TaskFn

	// handshake channels. resume is signalled by the scheduler, yielded
	// is signalled by the task when it suspends or ends
	resume  chan struct{}
	yielded chan struct{}

	started   bool
	finished  bool
	cancelled bool
	wake      uint64
	err       error
}

// Spawn creates a new task and adds it to the ready queue. The task will
// not run before the spawning task reaches its next suspension point.
func (sch *Scheduler) Spawn(name string, fn TaskFn) *Task {
	t := &Task{
		sch:     sch,
		name:    name,
		fn:      fn,
		resume:  make(chan struct{}),
		yielded: make(chan struct{}),
	}
	sch.ready = append(sch.ready, t)
	return t
}

// Cancel marks the task for cancellation. The task is discarded at its
// next scheduling attempt. Side effects of work already done are not
// rolled back.
func (t *Task) Cancel() {
	t.cancelled = true
}

// Name returns the name the task was spawned with.
func (t *Task) Name() string {
	return t.name
}

// Scheduler returns the scheduler the task belongs to.
func (t *Task) Scheduler() *Scheduler {
	return t.sch
}

// Sleep suspends the task until the emulation clock reaches the wake
// argument. Returns an error if the task has been cancelled.
func (t *Task) Sleep(wake uint64) error {
	t.wake = wake
	t.yielded <- struct{}{}
	<-t.resume
	if t.cancelled {
		return curated.Errorf(TaskCancelled, t.name)
	}
	return nil
}

// SleepFor suspends the task for the specified number of ticks.
func (t *Task) SleepFor(ticks uint64) error {
	return t.Sleep(t.sch.now + ticks)
}

// Yield suspends the task and requeues it at the back of the ready queue.
// Long running guest execution should Yield() periodically so that other
// ready tasks are not starved.
func (t *Task) Yield() error {
	t.wake = t.sch.now
	t.yielded <- struct{}{}
	<-t.resume
	if t.cancelled {
		return curated.Errorf(TaskCancelled, t.name)
	}
	return nil
}

// start the task goroutine. the goroutine immediately parks waiting for
// the first resume signal.
func (t *Task) start() {
	t.started = true
	go func() {
		<-t.resume
		t.err = t.fn(t)
		t.finished = true
		t.yielded <- struct{}{}
	}()
}

// resumeAndWait hands control to the task and blocks until it suspends or
// finishes.
func (t *Task) resumeAndWait() {
	t.resume <- struct{}{}
	<-t.yielded
}

// Run drives the task queues until no task is runnable. Returns the first
// fatal task error encountered, after all other tasks have drained.
func (sch *Scheduler) Run() error {
	for {
		// move all sleeping tasks whose wake time has passed onto the
		// ready queue
		i := len(sch.sleeping) - 1
		for i >= 0 && sch.sleeping[i].wake <= sch.now {
			sch.ready = append(sch.ready, sch.sleeping[i])
			i--
		}
		sch.sleeping = sch.sleeping[:i+1]

		if len(sch.ready) == 0 {
			if len(sch.sleeping) == 0 {
				break
			}

			// only sleeping tasks remain. move the clock to the earliest
			// wake time
			wake := sch.sleeping[len(sch.sleeping)-1].wake
			if sch.Realtime {
				time.Sleep(time.Duration(wake-sch.now) * time.Millisecond)
			}
			sch.now = wake
			continue
		}

		// pop one ready task
		t := sch.ready[0]
		sch.ready = sch.ready[1:]

		// a cancelled task is discarded at its scheduling attempt. if the
		// task has already started it must be resumed one last time so
		// that the goroutine can unwind (Sleep/Yield return an error)
		if t.cancelled && !t.started {
			continue
		}

		if !t.started {
			t.start()
		}
		t.resumeAndWait()

		if t.finished {
			if t.err != nil && !curated.Has(t.err, TaskCancelled) {
				logger.Logf("scheduler", "task %s: %v", t.name, t.err)
				if sch.fault == nil {
					sch.fault = curated.Errorf(TaskFatal, t.name, t.err)
				}
			}
			continue
		}

		// requeue at the appropriate queue
		if t.wake > sch.now {
			sch.addSleeper(t)
		} else {
			sch.ready = append(sch.ready, t)
		}
	}

	return sch.fault
}

// insert the task into the sleeping queue, keeping the queue sorted by
// wake time with the earliest entry last.
func (sch *Scheduler) addSleeper(t *Task) {
	i := 0
	for i < len(sch.sleeping) && sch.sleeping[i].wake > t.wake {
		i++
	}
	sch.sleeping = append(sch.sleeping, nil)
	copy(sch.sleeping[i+1:], sch.sleeping[i:])
	sch.sleeping[i] = t
}
