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

package hardware

import (
	"time"
)

// Session identifies who is playing what. The pair of ProfileID and GameID
// keys every save stack; both are passed around explicitly rather than being
// held as process-wide state, so independent sessions (tests in particular)
// do not interfere with one another.
type Session struct {
	// ProfileID is the owning user profile
	ProfileID string

	// GameID is the stable hash of the loaded content
	GameID string

	// Name is the display name of the loaded content
	Name string
}

// Console wraps a Core with session-level bookkeeping. The Console is
// exclusively owned by one play session.
type Console struct {
	Core    Core
	Session Session

	frameCount int
	playTime   time.Duration

	// rolling FPS measurement
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewConsole is the preferred method of initialisation for the Console type.
func NewConsole(core Core, session Session) *Console {
	return &Console{
		Core:    core,
		Session: session,
		fpsTime: time.Now(),
	}
}

// CountFrame records the passing of one frame of authoritative time. It is
// called once per tick by the scheduler; speculative run-ahead frames are
// never counted.
func (con *Console) CountFrame() {
	con.frameCount++
	con.playTime += FramePeriod

	con.fpsFrames++
	if d := time.Since(con.fpsTime); d >= time.Second {
		con.fps = float64(con.fpsFrames) / d.Seconds()
		con.fpsFrames = 0
		con.fpsTime = time.Now()
	}
}

// FrameCount returns the number of authoritative frames since content was
// attached (or since the count was last restored).
func (con *Console) FrameCount() int {
	return con.frameCount
}

// FPS returns the most recent frames-per-second measurement.
func (con *Console) FPS() float64 {
	return con.fps
}

// PlayTime returns the accumulated authoritative play time.
func (con *Console) PlayTime() time.Duration {
	return con.playTime
}

// SetPlayTime replaces the accumulated play time. Used when restoring a
// save state that carries play time in its metadata.
func (con *Console) SetPlayTime(d time.Duration) {
	con.playTime = d
}
