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

import "time"

// Frame geometry of the NES picture.
const (
	FrameWidth  = 256
	FrameHeight = 240

	// video buffers are RGBA
	PixelDepth = 4

	// size in bytes of one video frame
	FrameSize = FrameWidth * FrameHeight * PixelDepth
)

// FramePeriod is the length of one frame of NTSC NES emulation. The core is
// advanced once per FramePeriod of authoritative time.
const FramePeriod = time.Second / 60

// Button is a bitmask of NES controller buttons.
type Button uint8

// List of Button values. The bit assignments follow the standard NES
// controller shift-register order.
const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// NumControllers is the number of controller ports on the console.
const NumControllers = 2

// Input is the decoded input vector for one frame of emulation.
type Input struct {
	Controller [NumControllers]Button
}

// Core is the interface to an emulation core. Cores are not reentrant: no
// two calls on the same core may overlap. All calls for a session are made
// from a single goroutine.
type Core interface {
	// LoadContent attaches a ROM to the core. The core retains its own copy
	// of the data
	LoadContent(data []byte) error

	// ContentLoaded reports whether content has been attached
	ContentLoaded() bool

	// Reset the core to its power-on state. Content remains attached
	Reset()

	// AdvanceFrame emulates one frame with the supplied input. The returned
	// buffers are owned by the core and are valid only until the next call
	// to AdvanceFrame() or RestoreState(). Video is RGBA of length
	// FrameSize; audio is interleaved stereo samples
	AdvanceFrame(inp Input) (video []byte, audio []int16, err error)

	// SampleRate of the audio returned by AdvanceFrame(), in Hz
	SampleRate() int

	// StateSize is the maximum size in bytes of a serialised state blob.
	// The value is constant for the lifetime of the loaded content
	StateSize() int

	// CaptureStateInto serialises the complete core state into the supplied
	// buffer, which must be at least StateSize() bytes. Returns the number
	// of bytes written. The function must not allocate
	CaptureStateInto(buf []byte) (int, error)

	// CaptureState serialises the complete core state into a fresh buffer
	CaptureState() ([]byte, error)

	// RestoreState fully replaces the core state from a blob previously
	// produced by CaptureState() or CaptureStateInto()
	RestoreState(data []byte) error
}
