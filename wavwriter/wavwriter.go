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

// Package wavwriter allows writing of session audio to disk as a WAV file.
// Note that audio data is buffered in memory in its entirety and written to
// disk on session end. It is therefore probably only suitable for testing
// purposes.
package wavwriter

import (
	"os"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/logger"
	"github.com/youpy/go-wav"
)

// WavWriter accumulates the audio frames produced by the session.
type WavWriter struct {
	filename   string
	sampleRate int
	buffer     []wav.Sample
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, sampleRate int) (*WavWriter, error) {
	aw := &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]wav.Sample, 0),
	}

	return aw, nil
}

// SetAudio appends one frame of interleaved stereo samples, as returned by
// the core's AdvanceFrame().
func (aw *WavWriter) SetAudio(samples []int16) error {
	for i := 0; i+1 < len(samples); i += 2 {
		w := wav.Sample{}
		w.Values[0] = int(samples[i])
		w.Values[1] = int(samples[i+1])
		aw.buffer = append(aw.buffer, w)
	}

	return nil
}

// End writes the buffered audio to disk.
func (aw *WavWriter) End() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), 2, uint32(aw.sampleRate), 16)
	if enc == nil {
		return curated.Errorf("wavwriter: %v", "bad parameters for wav encoding")
	}

	logger.Logf("wavwriter", "writing audio to %s", aw.filename)
	enc.WriteSamples(aw.buffer)

	return nil
}
