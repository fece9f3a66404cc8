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

// Package refcore is a reference implementation of the hardware.Core
// interface. It is not an emulator of anything in particular: the "machine"
// is a pseudo-random state generator whose output is a pure function of its
// serialisable state and the input vector. That property is exactly what the
// snapshot and run-ahead machinery depend on, which makes this core the
// fixture for every determinism test in the repository. It also backs
// headless operation where no production core is attached.
package refcore

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/hardware"
)

// error patterns returned by the reference core.
const (
	NoContent    = "refcore: no content loaded"
	BadStateBlob = "refcore: bad state blob: %v"
)

const (
	stateMagic   = "NCRF"
	stateVersion = 1

	ramSize = 2048

	// magic + version + rng + frame + input + ram
	stateSize = 4 + 1 + 8 + 8 + 2 + ramSize

	sampleRate = 48000

	// stereo sample pairs produced per frame
	samplesPerFrame = sampleRate / 60
)

// Core implements the hardware.Core interface.
type Core struct {
	loaded bool

	// power-on seed, derived from the loaded content
	seed uint64

	// serialisable machine state
	rng   uint64
	frame uint64
	last  hardware.Input
	ram   [ramSize]byte

	// output buffers, reused between frames
	video []byte
	audio []int16
}

// NewCore is the preferred method of initialisation for the Core type.
func NewCore() *Core {
	return &Core{
		video: make([]byte, hardware.FrameSize),
		audio: make([]int16, samplesPerFrame*2),
	}
}

// LoadContent implements the hardware.Core interface.
func (cor *Core) LoadContent(data []byte) error {
	if len(data) == 0 {
		return curated.Errorf("refcore: no content data")
	}

	h := fnv.New64a()
	h.Write(data)

	// seed must never be zero or the xorshift generator degenerates
	cor.seed = h.Sum64() | 1

	cor.loaded = true
	cor.Reset()

	return nil
}

// ContentLoaded implements the hardware.Core interface.
func (cor *Core) ContentLoaded() bool {
	return cor.loaded
}

// Reset implements the hardware.Core interface.
func (cor *Core) Reset() {
	cor.rng = cor.seed
	cor.frame = 0
	cor.last = hardware.Input{}
	cor.ram = [ramSize]byte{}
}

// step the xorshift64 generator.
func (cor *Core) step() uint64 {
	x := cor.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	cor.rng = x
	return x
}

// AdvanceFrame implements the hardware.Core interface.
func (cor *Core) AdvanceFrame(inp hardware.Input) (video []byte, audio []int16, err error) {
	if !cor.loaded {
		return nil, nil, curated.Errorf(NoContent)
	}

	// input perturbs the machine state, as button presses would a real
	// machine
	cor.rng ^= (uint64(inp.Controller[0]) | uint64(inp.Controller[1])<<8) * 0x9e3779b97f4a7c15
	cor.last = inp

	// scribble over a handful of RAM cells
	for i := 0; i < 8; i++ {
		x := cor.step()
		cor.ram[x%ramSize] = byte(x >> 8)
	}

	cor.frame++

	// render. every pixel is a function of the post-advance state
	h := cor.rng ^ cor.frame
	for i := 0; i < hardware.FrameSize; i += hardware.PixelDepth {
		h = h*6364136223846793005 + uint64(cor.ram[(i>>2)%ramSize]) + 1442695040888963407
		cor.video[i] = byte(h >> 32)
		cor.video[i+1] = byte(h >> 40)
		cor.video[i+2] = byte(h >> 48)
		cor.video[i+3] = 0xff
	}

	// audio is a square wave whose period is drawn from the machine state
	period := int(cor.rng%200) + 40
	for i := 0; i < samplesPerFrame; i++ {
		var v int16
		if (int(cor.frame)*samplesPerFrame+i)/period%2 == 0 {
			v = 6000
		} else {
			v = -6000
		}
		cor.audio[i*2] = v
		cor.audio[i*2+1] = v
	}

	return cor.video, cor.audio, nil
}

// SampleRate implements the hardware.Core interface.
func (cor *Core) SampleRate() int {
	return sampleRate
}

// StateSize implements the hardware.Core interface.
func (cor *Core) StateSize() int {
	return stateSize
}

// CaptureStateInto implements the hardware.Core interface.
func (cor *Core) CaptureStateInto(buf []byte) (int, error) {
	if !cor.loaded {
		return 0, curated.Errorf(NoContent)
	}
	if len(buf) < stateSize {
		return 0, curated.Errorf("refcore: state buffer too small (%d < %d)", len(buf), stateSize)
	}

	copy(buf[0:4], stateMagic)
	buf[4] = stateVersion
	binary.LittleEndian.PutUint64(buf[5:13], cor.rng)
	binary.LittleEndian.PutUint64(buf[13:21], cor.frame)
	buf[21] = byte(cor.last.Controller[0])
	buf[22] = byte(cor.last.Controller[1])
	copy(buf[23:23+ramSize], cor.ram[:])

	return stateSize, nil
}

// CaptureState implements the hardware.Core interface.
func (cor *Core) CaptureState() ([]byte, error) {
	buf := make([]byte, stateSize)
	if _, err := cor.CaptureStateInto(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RestoreState implements the hardware.Core interface.
func (cor *Core) RestoreState(data []byte) error {
	if !cor.loaded {
		return curated.Errorf(NoContent)
	}
	if len(data) != stateSize {
		return curated.Errorf(BadStateBlob, "wrong length")
	}
	if string(data[0:4]) != stateMagic {
		return curated.Errorf(BadStateBlob, "bad magic")
	}
	if data[4] != stateVersion {
		return curated.Errorf(BadStateBlob, "unknown version")
	}

	cor.rng = binary.LittleEndian.Uint64(data[5:13])
	cor.frame = binary.LittleEndian.Uint64(data[13:21])
	cor.last.Controller[0] = hardware.Button(data[21])
	cor.last.Controller[1] = hardware.Button(data[22])
	copy(cor.ram[:], data[23:23+ramSize])

	return nil
}
