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

package scheduler_test

import (
	"testing"

	"github.com/wipi-emu/wipiemu/scheduler"
	"github.com/wipi-emu/wipiemu/test"
)

func TestSpawnOrder(t *testing.T) {
	sch := scheduler.NewScheduler()

	var trace []string

	sch.Spawn("a", func(tsk *scheduler.Task) error {
		trace = append(trace, "a1")
		if err := tsk.Yield(); err != nil {
			return err
		}
		trace = append(trace, "a2")
		return nil
	})
	sch.Spawn("b", func(tsk *scheduler.Task) error {
		trace = append(trace, "b1")
		return nil
	})

	test.ExpectSuccess(t, sch.Run())
	test.ExpectEquality(t, len(trace), 3)
	test.ExpectEquality(t, trace[0], "a1")
	test.ExpectEquality(t, trace[1], "b1")
	test.ExpectEquality(t, trace[2], "a2")
}

func TestSleepAdvancesClock(t *testing.T) {
	sch := scheduler.NewScheduler()

	var woke uint64

	sch.Spawn("sleeper", func(tsk *scheduler.Task) error {
		if err := tsk.SleepFor(100); err != nil {
			return err
		}
		woke = sch.Now()
		return nil
	})

	test.ExpectSuccess(t, sch.Run())

	// the clock jumps to the earliest wake time in one step
	test.ExpectEquality(t, woke, uint64(100))
}

func TestTimerMonotonicity(t *testing.T) {
	sch := scheduler.NewScheduler()

	// a task sleeping until w is not eligible before the clock reaches w
	var order []uint64

	for _, d := range []uint64{300, 100, 200} {
		d := d
		sch.Spawn("timer", func(tsk *scheduler.Task) error {
			if err := tsk.SleepFor(d); err != nil {
				return err
			}
			order = append(order, sch.Now())
			return nil
		})
	}

	test.ExpectSuccess(t, sch.Run())
	test.ExpectEquality(t, len(order), 3)
	test.ExpectEquality(t, order[0], uint64(100))
	test.ExpectEquality(t, order[1], uint64(200))
	test.ExpectEquality(t, order[2], uint64(300))
}

func TestCancellation(t *testing.T) {
	sch := scheduler.NewScheduler()

	ran := false

	tsk := sch.Spawn("cancelled", func(tsk *scheduler.Task) error {
		if err := tsk.SleepFor(1000); err != nil {
			return err
		}
		ran = true
		return nil
	})

	sch.Spawn("canceller", func(_ *scheduler.Task) error {
		tsk.Cancel()
		return nil
	})

	// cancellation is silent. the cancelled task never runs its body past
	// the suspension point
	test.ExpectSuccess(t, sch.Run())
	test.ExpectEquality(t, ran, false)
}

func TestSpawnDuringRun(t *testing.T) {
	sch := scheduler.NewScheduler()

	var trace []string

	sch.Spawn("parent", func(tsk *scheduler.Task) error {
		sch.Spawn("child", func(_ *scheduler.Task) error {
			trace = append(trace, "child")
			return nil
		})

		// the child cannot run before the parent's next suspension point
		trace = append(trace, "parent")
		return nil
	})

	test.ExpectSuccess(t, sch.Run())
	test.ExpectEquality(t, len(trace), 2)
	test.ExpectEquality(t, trace[0], "parent")
	test.ExpectEquality(t, trace[1], "child")
}
