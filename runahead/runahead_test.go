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

package runahead_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/hardware"
	"github.com/virtual-viking/nescaster/hardware/refcore"
	"github.com/virtual-viking/nescaster/notifications"
	"github.com/virtual-viking/nescaster/runahead"
	"github.com/virtual-viking/nescaster/snapshot"
	"github.com/virtual-viking/nescaster/test"
)

var testContent = []byte("test content")

type notifyRecorder struct {
	crit    sync.Mutex
	notices []notifications.Notice
}

func (n *notifyRecorder) Notify(notice notifications.Notice, detail string) error {
	n.crit.Lock()
	defer n.crit.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *notifyRecorder) count(notice notifications.Notice) int {
	n.crit.Lock()
	defer n.crit.Unlock()
	ct := 0
	for _, o := range n.notices {
		if o == notice {
			ct++
		}
	}
	return ct
}

func newScheduler(t *testing.T) (*runahead.Scheduler, *hardware.Console, *notifyRecorder) {
	t.Helper()

	cor := refcore.NewCore()
	test.ExpectedSuccess(t, cor.LoadContent(testContent))

	con := hardware.NewConsole(cor, hardware.Session{ProfileID: "prof", GameID: "game"})

	eng, err := snapshot.NewEngine(cor, snapshot.DefaultPoolSize)
	test.ExpectedSuccess(t, err)

	rec := &notifyRecorder{}
	sch := runahead.NewScheduler(con, eng, rec)

	// tests must never degrade because of machine load
	sch.SetBudget(time.Hour)

	return sch, con, rec
}

func TestNotReady(t *testing.T) {
	cor := refcore.NewCore()
	con := hardware.NewConsole(cor, hardware.Session{})
	eng, err := snapshot.NewEngine(cor, snapshot.DefaultPoolSize)
	test.ExpectedSuccess(t, err)

	sch := runahead.NewScheduler(con, eng, nil)

	_, _, err = sch.Tick(hardware.Input{})
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, snapshot.NotReady))

	// no frame of authoritative time passed
	test.Equate(t, con.FrameCount(), 0)
}

// the displayed frame at tick k must equal frame k+1 of a plain reference
// machine fed the same input: display leads authoritative time by exactly
// one frame.
func TestDisplayLeadsByOneFrame(t *testing.T) {
	sch, con, _ := newScheduler(t)

	ref := refcore.NewCore()
	test.ExpectedSuccess(t, ref.LoadContent(testContent))

	inp := hardware.Input{}
	inp.Controller[0] = hardware.ButtonStart

	const ticks = 5

	var refFrames [][]byte
	for i := 0; i < ticks+1; i++ {
		v, _, err := ref.AdvanceFrame(inp)
		test.ExpectedSuccess(t, err)
		c := make([]byte, len(v))
		copy(c, v)
		refFrames = append(refFrames, c)
	}

	for k := 0; k < ticks; k++ {
		v, _, err := sch.Tick(inp)
		test.ExpectedSuccess(t, err)

		if !bytes.Equal(v, refFrames[k+1]) {
			t.Fatalf("displayed frame at tick %d does not lead by one frame", k)
		}
	}

	// authoritative time advanced one frame per tick
	test.Equate(t, con.FrameCount(), ticks)

	// the authoritative machine state equals a plain machine after the same
	// number of frames
	ref2 := refcore.NewCore()
	test.ExpectedSuccess(t, ref2.LoadContent(testContent))
	for i := 0; i < ticks; i++ {
		_, _, err := ref2.AdvanceFrame(inp)
		test.ExpectedSuccess(t, err)
	}

	expected, err := ref2.CaptureState()
	test.ExpectedSuccess(t, err)
	got, err := con.Core.CaptureState()
	test.ExpectedSuccess(t, err)
	if !bytes.Equal(got, expected) {
		t.Errorf("authoritative state diverged from plain execution")
	}
}

// changed input between ticks must land in authoritative time immediately:
// the speculation never rewrites history.
func TestInputChange(t *testing.T) {
	sch, con, _ := newScheduler(t)

	inpA := hardware.Input{}
	inpB := hardware.Input{}
	inpB.Controller[0] = hardware.ButtonA

	_, _, err := sch.Tick(inpA)
	test.ExpectedSuccess(t, err)
	_, _, err = sch.Tick(inpB)
	test.ExpectedSuccess(t, err)

	ref := refcore.NewCore()
	test.ExpectedSuccess(t, ref.LoadContent(testContent))
	_, _, err = ref.AdvanceFrame(inpA)
	test.ExpectedSuccess(t, err)
	_, _, err = ref.AdvanceFrame(inpB)
	test.ExpectedSuccess(t, err)

	expected, err := ref.CaptureState()
	test.ExpectedSuccess(t, err)
	got, err := con.Core.CaptureState()
	test.ExpectedSuccess(t, err)
	if !bytes.Equal(got, expected) {
		t.Errorf("authoritative state diverged after input change")
	}
}

func TestDisabledScheduler(t *testing.T) {
	sch, con, _ := newScheduler(t)
	sch.SetEnabled(false)
	test.Equate(t, sch.Active(), false)

	inp := hardware.Input{}

	v, _, err := sch.Tick(inp)
	test.ExpectedSuccess(t, err)
	test.Equate(t, con.FrameCount(), 1)

	// plain submission displays the authoritative frame, not a speculative
	// one
	ref := refcore.NewCore()
	test.ExpectedSuccess(t, ref.LoadContent(testContent))
	rv, _, err := ref.AdvanceFrame(inp)
	test.ExpectedSuccess(t, err)
	if !bytes.Equal(v, rv) {
		t.Errorf("plain tick video does not match plain execution")
	}
}

func TestOverrunDegradesAndRearms(t *testing.T) {
	sch, con, rec := newScheduler(t)

	inp := hardware.Input{}

	// an impossible budget forces an overrun on the first speculative tick.
	// the tick itself still completes and counts
	sch.SetBudget(0)

	_, _, err := sch.Tick(inp)
	test.ExpectedSuccess(t, err)
	test.Equate(t, con.FrameCount(), 1)
	test.Equate(t, sch.Active(), false)
	test.Equate(t, rec.count(notifications.NotifyRunAheadDisabled), 1)

	// with a generous budget again, a sustained run of clean plain ticks
	// re-arms the scheduler
	sch.SetBudget(time.Hour)

	for i := 0; i < 119; i++ {
		_, _, err := sch.Tick(inp)
		test.ExpectedSuccess(t, err)
		test.Equate(t, sch.Active(), false)
	}

	_, _, err = sch.Tick(inp)
	test.ExpectedSuccess(t, err)
	test.Equate(t, sch.Active(), true)
	test.Equate(t, rec.count(notifications.NotifyRunAheadEnabled), 1)

	// every tick, degraded or not, advanced authoritative time
	test.Equate(t, con.FrameCount(), 121)
}
