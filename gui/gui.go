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

// Package gui defines the interface between a play session and whatever is
// presenting the session to the user. The only implementation in this
// repository is the sdlplay sub-package but the playmode package works
// against the Screen interface so a headless screen is possible (and is what
// the playmode tests use).
package gui

import (
	"github.com/virtual-viking/nescaster/hardware"
)

// Event is a user request that the play loop must service. Events are
// distinct from controller input, which is sampled every frame.
type Event int

// List of Event values.
const (
	EventNone Event = iota

	// user has requested the session to end
	EventQuit

	// push a manual save onto the stack
	EventSave

	// load the most recent save (manual or auto, whichever is newer)
	EventLoad

	// toggle the pause state of the session
	EventPause

	// toggle run-ahead on and off
	EventRunAhead
)

// Screen presents video and audio to the user and collects input. All
// functions are called from the play loop goroutine.
type Screen interface {
	// SetPixels presents one frame of video. The slice is in the packed
	// RGBA format described by the hardware package.
	SetPixels(video []byte) error

	// SetAudio queues one frame of interleaved stereo samples.
	SetAudio(samples []int16) error

	// Service pumps the event queue. It returns the current controller
	// state and any pending user events.
	Service() (hardware.Input, []Event, error)

	// End releases the screen's resources.
	End() error
}
