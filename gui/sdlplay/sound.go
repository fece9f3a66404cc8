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

package sdlplay

import (
	"github.com/veandco/go-sdl2/sdl"
)

// if the queue grows beyond this many bytes we drop the incoming frame
// rather than let latency accumulate. the value is roughly a quarter of a
// second of stereo 16bit audio at 48kHz.
const maxQueuedBytes = 48000

type sound struct {
	id   sdl.AudioDeviceID
	spec sdl.AudioSpec

	// scratch buffer for the int16 to byte conversion, reused every frame
	scratch []byte
}

func newSound(sampleRate int) (*sound, error) {
	snd := &sound{}

	spec := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  1024,
	}

	var err error
	var actualSpec sdl.AudioSpec

	snd.id, err = sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return nil, err
	}
	snd.spec = actualSpec

	sdl.PauseAudioDevice(snd.id, false)

	return snd, nil
}

func (snd *sound) queue(samples []int16) error {
	if sdl.GetQueuedAudioSize(snd.id) > maxQueuedBytes {
		return nil
	}

	if cap(snd.scratch) < len(samples)*2 {
		snd.scratch = make([]byte, len(samples)*2)
	}
	snd.scratch = snd.scratch[:len(samples)*2]

	for i, s := range samples {
		snd.scratch[i*2] = byte(s)
		snd.scratch[i*2+1] = byte(s >> 8)
	}

	return sdl.QueueAudio(snd.id, snd.scratch)
}

func (snd *sound) end() {
	sdl.CloseAudioDevice(snd.id)
}
