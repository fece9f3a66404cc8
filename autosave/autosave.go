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

// Package autosave routes trigger events into the auto-save stack. Trigger
// sources are independent and interchangeable: the coordinator knows only
// that a source may emit a trigger event when polled, never how the source
// decides to fire. Triggers for the same (profileID, gameID) key within the
// debounce window collapse into a single capture.
//
// Auto-saves are captured with a fresh buffer from the core, never from the
// snapshot engine's pool: the pool belongs to run-ahead and the coordinator
// runs off the hot path.
package autosave

import (
	"time"

	"github.com/virtual-viking/nescaster/hardware"
	"github.com/virtual-viking/nescaster/logger"
	"github.com/virtual-viking/nescaster/savestack"
	"github.com/virtual-viking/nescaster/thumbnailer"
)

// Reason tags a trigger event with the kind of source that emitted it. The
// reason ends up in the entry's level hint.
type Reason string

// List of Reason values.
const (
	ReasonInterval Reason = "interval"
	ReasonPause    Reason = "pause"
	ReasonLevel    Reason = "level complete"
)

// Source is the one capability a trigger source must provide. Check is
// polled once per displayed tick, on the session's emulation goroutine.
type Source interface {
	Check(now time.Time) (Reason, bool)
}

// DefaultDebounce is the window within which repeated triggers for the same
// key collapse into one capture.
const DefaultDebounce = 10 * time.Second

// Coordinator polls trigger sources and pushes accepted captures onto the
// auto stack. It never touches the manual stack.
type Coordinator struct {
	console *hardware.Console
	mgr     *savestack.Manager
	prf     *Preferences

	sources []Source

	debounce time.Duration

	// time of last accepted trigger, per (profileID, gameID) key
	last map[string]time.Time
}

// NewCoordinator is the preferred method of initialisation for the
// Coordinator type.
func NewCoordinator(console *hardware.Console, mgr *savestack.Manager, prf *Preferences) *Coordinator {
	return &Coordinator{
		console:  console,
		mgr:      mgr,
		prf:      prf,
		debounce: DefaultDebounce,
		last:     make(map[string]time.Time),
	}
}

// SetDebounce overrides the debounce window. A zero duration disables
// debouncing entirely.
func (co *Coordinator) SetDebounce(d time.Duration) {
	co.debounce = d
}

// AddSource registers a trigger source with the coordinator.
func (co *Coordinator) AddSource(s Source) {
	co.sources = append(co.sources, s)
}

// Tick polls every source. Called once per displayed frame, after the
// scheduler has produced the frame, with the displayed video buffer (used
// for the thumbnail of an accepted capture).
func (co *Coordinator) Tick(now time.Time, video []byte) {
	if !co.prf.Enabled.Get().(bool) {
		return
	}

	for _, s := range co.sources {
		reason, fired := s.Check(now)
		if !fired {
			continue
		}
		if !co.prf.allows(reason) {
			continue
		}
		co.accept(now, reason, video)
	}
}

func (co *Coordinator) accept(now time.Time, reason Reason, video []byte) {
	session := co.console.Session
	key := session.ProfileID + "/" + session.GameID

	if last, ok := co.last[key]; ok && co.debounce > 0 && now.Sub(last) < co.debounce {
		return
	}
	co.last[key] = now

	// a full persisted capture, not the ephemeral pool
	state, err := co.console.Core.CaptureState()
	if err != nil {
		// an auto-save is skipped, never fatal
		logger.Logf("autosave", "capture skipped: %v", err)
		return
	}

	var thumb []byte
	if video != nil {
		thumb, err = thumbnailer.Create(video)
		if err != nil {
			logger.Logf("autosave", "thumbnail: %v", err)
		}
	}

	meta := savestack.Metadata{
		Name:      session.Name,
		PlayTime:  co.console.PlayTime(),
		LevelHint: string(reason),
	}

	if _, err := co.mgr.Push(session.ProfileID, session.GameID, state, thumb, meta, true); err != nil {
		logger.Logf("autosave", "push: %v", err)
	}
}
