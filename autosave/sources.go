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

package autosave

import (
	"hash/fnv"
	"time"

	"github.com/virtual-viking/nescaster/hardware"
)

// IntervalSource fires on elapsed play time. An interval of zero disables
// the source entirely.
type IntervalSource struct {
	interval time.Duration
	last     time.Time
}

// NewIntervalSource is the preferred method of initialisation for the
// IntervalSource type.
func NewIntervalSource(interval time.Duration) *IntervalSource {
	return &IntervalSource{interval: interval}
}

// Check implements the Source interface.
func (s *IntervalSource) Check(now time.Time) (Reason, bool) {
	if s.interval == 0 {
		return ReasonInterval, false
	}
	if s.last.IsZero() {
		s.last = now
		return ReasonInterval, false
	}
	if now.Sub(s.last) >= s.interval {
		s.last = now
		return ReasonInterval, true
	}
	return ReasonInterval, false
}

// PauseSource fires when the session is paused. The session signals the
// pause with the Pause() function; the trigger is consumed by the next
// Check().
type PauseSource struct {
	pending bool
}

// NewPauseSource is the preferred method of initialisation for the
// PauseSource type.
func NewPauseSource() *PauseSource {
	return &PauseSource{}
}

// Pause records that the session has been paused.
func (s *PauseSource) Pause() {
	s.pending = true
}

// Check implements the Source interface.
func (s *PauseSource) Check(_ time.Time) (Reason, bool) {
	if s.pending {
		s.pending = false
		return ReasonPause, true
	}
	return ReasonPause, false
}

// LevelSource is a heuristic detector for level transitions. It watches a
// cheap hash of the displayed frame: a change after a long stable run of
// identical hashes, followed by a fresh stable run, reads as a transition
// screen settling - which is where games tend to sit after a level ends.
type LevelSource struct {
	lastHash uint64
	stable   int
	pending  bool
	fire     bool
}

// number of identical consecutive frame hashes before the picture is
// considered stable.
const stableFrames = 30

// NewLevelSource is the preferred method of initialisation for the
// LevelSource type.
func NewLevelSource() *LevelSource {
	return &LevelSource{}
}

// NewFrame feeds one displayed video frame to the heuristic. Called by the
// session once per tick.
func (s *LevelSource) NewFrame(video []byte) {
	h := frameHash(video)

	if h == s.lastHash {
		s.stable++
		if s.pending && s.stable >= stableFrames {
			s.pending = false
			s.fire = true
		}
		return
	}

	if s.stable >= stableFrames {
		s.pending = true
	}
	s.stable = 0
	s.lastHash = h
}

// Check implements the Source interface.
func (s *LevelSource) Check(_ time.Time) (Reason, bool) {
	if s.fire {
		s.fire = false
		return ReasonLevel, true
	}
	return ReasonLevel, false
}

// frameHash samples the frame rather than hashing every pixel. good enough
// to distinguish screens; cheap enough to run every tick.
func frameHash(video []byte) uint64 {
	h := fnv.New64a()
	for i := 0; i+hardware.PixelDepth <= len(video); i += hardware.PixelDepth * 64 {
		h.Write(video[i : i+hardware.PixelDepth])
	}
	return h.Sum64()
}
