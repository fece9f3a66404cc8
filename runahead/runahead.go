// This file is part of NesCaster.
//
// NesCaster is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// NesCaster is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with NesCaster.  If not, see <https://www.gnu.org/licenses/>.

// Package runahead hides input latency by displaying a frame of emulation
// one step ahead of the authoritative timeline. Each tick the scheduler
// runs, cooperatively and on the session's single emulation goroutine:
//
//	1. capture machine state at frame N
//	2. advance - frame N with current input. not displayed
//	3. advance - predicted frame N+1. this is the frame displayed this tick
//	4. restore machine state to frame N
//	5. advance - frame N again, this time as the authoritative frame
//
// Steps 4 and 5 are exact because capture/restore are exact: authoritative
// time moves by one frame per tick, while the player sees input applied one
// frame sooner. The prediction in step 3 is only wrong when input changes
// between ticks, and then only for a single frame.
//
// The whole sequence must fit inside the frame period. If it does not, the
// scheduler flags a timing overrun, drops to plain single-advance submission
// and re-arms only after a sustained run of in-budget ticks.
package runahead

import (
	"time"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/hardware"
	"github.com/virtual-viking/nescaster/logger"
	"github.com/virtual-viking/nescaster/notifications"
	"github.com/virtual-viking/nescaster/snapshot"
)

// error patterns returned by the runahead package.
const (
	TimingOverrun = "runahead: timing overrun: tick took %v (budget %v)"
)

// number of consecutive in-budget plain ticks before run-ahead re-arms
// after an overrun. two seconds or thereabouts at 60Hz.
const rearmTicks = 120

// Scheduler orchestrates speculative frame execution. It must only be used
// from the session's emulation goroutine: the core is not reentrant.
type Scheduler struct {
	console *hardware.Console
	engine  *snapshot.Engine
	notify  notifications.Notify

	// the per-tick time budget. defaults to the frame period
	budget time.Duration

	// user preference. when false the scheduler always submits plainly
	enabled bool

	// set after a timing overrun. cleared after rearmTicks clean ticks
	degraded   bool
	cleanTicks int

	// displayed output is copied here so that the final authoritative
	// advance cannot invalidate it. allocated once
	video []byte
	audio []int16
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. The snapshot engine must be backed by the same core as the console.
func NewScheduler(console *hardware.Console, engine *snapshot.Engine, notify notifications.Notify) *Scheduler {
	return &Scheduler{
		console: console,
		engine:  engine,
		notify:  notify,
		budget:  hardware.FramePeriod,
		enabled: true,
		video:   make([]byte, hardware.FrameSize),
	}
}

// SetEnabled turns run-ahead on or off. Turning it on also clears any
// degraded state.
func (sch *Scheduler) SetEnabled(enabled bool) {
	sch.enabled = enabled
	sch.degraded = false
	sch.cleanTicks = 0
}

// SetBudget overrides the per-tick time budget. Useful for 120Hz output and
// for tests.
func (sch *Scheduler) SetBudget(budget time.Duration) {
	sch.budget = budget
}

// Active returns true if the next tick will run speculatively.
func (sch *Scheduler) Active() bool {
	return sch.enabled && !sch.degraded
}

// Tick runs one displayed frame's worth of emulation. The returned buffers
// are valid until the next call to Tick().
//
// If the core has no content loaded the error tests true against
// curated.Is() with the snapshot.NotReady pattern and no frame has been
// advanced.
func (sch *Scheduler) Tick(inp hardware.Input) (video []byte, audio []int16, err error) {
	if !sch.Active() {
		return sch.plainTick(inp)
	}

	start := time.Now()

	h, err := sch.engine.Capture()
	if err != nil {
		if curated.Is(err, snapshot.NotReady) {
			return nil, nil, err
		}
		return nil, nil, curated.Errorf("runahead: %v", err)
	}
	defer sch.engine.Release(h)

	// frame N. output discarded
	if _, _, err := sch.console.Core.AdvanceFrame(inp); err != nil {
		return nil, nil, curated.Errorf("runahead: %v", err)
	}

	// predicted frame N+1. this is what the player sees this tick
	v, a, err := sch.console.Core.AdvanceFrame(inp)
	if err != nil {
		return nil, nil, curated.Errorf("runahead: %v", err)
	}

	// the authoritative advance below will overwrite the core's buffers
	copy(sch.video, v)
	if cap(sch.audio) < len(a) {
		sch.audio = make([]int16, len(a))
	}
	sch.audio = sch.audio[:len(a)]
	copy(sch.audio, a)

	// roll back to frame N and advance it for real
	if err := sch.engine.Restore(h); err != nil {
		return nil, nil, curated.Errorf("runahead: %v", err)
	}
	if _, _, err := sch.console.Core.AdvanceFrame(inp); err != nil {
		return nil, nil, curated.Errorf("runahead: %v", err)
	}

	sch.console.CountFrame()

	if elapsed := time.Since(start); elapsed > sch.budget {
		sch.overrun(elapsed)
	}

	return sch.video, sch.audio, nil
}

// plain single-advance submission. used when run-ahead is off or degraded.
func (sch *Scheduler) plainTick(inp hardware.Input) (video []byte, audio []int16, err error) {
	start := time.Now()

	v, a, err := sch.console.Core.AdvanceFrame(inp)
	if err != nil {
		if !sch.console.Core.ContentLoaded() {
			return nil, nil, curated.Errorf(snapshot.NotReady)
		}
		return nil, nil, curated.Errorf("runahead: %v", err)
	}

	sch.console.CountFrame()

	// a degraded scheduler watches for a sustained run of in-budget ticks
	// before re-arming
	if sch.degraded {
		if time.Since(start) <= sch.budget {
			sch.cleanTicks++
			if sch.cleanTicks >= rearmTicks {
				sch.degraded = false
				sch.cleanTicks = 0
				logger.Log("runahead", "re-enabled after sustained good timing")
				if sch.notify != nil {
					sch.notify.Notify(notifications.NotifyRunAheadEnabled, "")
				}
			}
		} else {
			sch.cleanTicks = 0
		}
	}

	return v, a, nil
}

// overrun flags a timing overrun and degrades the scheduler. emulation
// continues via plain submission; the display pipeline is never stalled.
func (sch *Scheduler) overrun(elapsed time.Duration) {
	sch.degraded = true
	sch.cleanTicks = 0

	err := curated.Errorf(TimingOverrun, elapsed, sch.budget)
	logger.Log("runahead", err.Error())

	if sch.notify != nil {
		sch.notify.Notify(notifications.NotifyRunAheadDisabled, "")
	}
}
