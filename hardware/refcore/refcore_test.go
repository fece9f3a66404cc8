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

package refcore_test

import (
	"bytes"
	"testing"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/hardware"
	"github.com/virtual-viking/nescaster/hardware/refcore"
	"github.com/virtual-viking/nescaster/test"
)

var testContent = []byte("test content")

func TestNoContent(t *testing.T) {
	cor := refcore.NewCore()
	test.Equate(t, cor.ContentLoaded(), false)

	_, _, err := cor.AdvanceFrame(hardware.Input{})
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, refcore.NoContent))

	_, err = cor.CaptureState()
	test.ExpectedSuccess(t, curated.Is(err, refcore.NoContent))

	err = cor.RestoreState(make([]byte, cor.StateSize()))
	test.ExpectedSuccess(t, curated.Is(err, refcore.NoContent))

	test.ExpectedFailure(t, cor.LoadContent(nil))
}

func TestDeterminism(t *testing.T) {
	a := refcore.NewCore()
	b := refcore.NewCore()
	test.ExpectedSuccess(t, a.LoadContent(testContent))
	test.ExpectedSuccess(t, b.LoadContent(testContent))

	inp := hardware.Input{}
	inp.Controller[0] = hardware.ButtonA | hardware.ButtonRight

	for i := 0; i < 10; i++ {
		va, aa, err := a.AdvanceFrame(inp)
		test.ExpectedSuccess(t, err)
		vb, ab, err := b.AdvanceFrame(inp)
		test.ExpectedSuccess(t, err)

		if !bytes.Equal(va, vb) {
			t.Fatalf("video diverged at frame %d", i)
		}
		for j := range aa {
			if aa[j] != ab[j] {
				t.Fatalf("audio diverged at frame %d", i)
			}
		}
	}

	// diverging input diverges output
	inp2 := hardware.Input{}
	va, _, err := a.AdvanceFrame(inp)
	test.ExpectedSuccess(t, err)
	vb, _, err := b.AdvanceFrame(inp2)
	test.ExpectedSuccess(t, err)
	if bytes.Equal(va, vb) {
		t.Errorf("different input produced identical video")
	}
}

func TestStateRoundTrip(t *testing.T) {
	cor := refcore.NewCore()
	test.ExpectedSuccess(t, cor.LoadContent(testContent))

	inp := hardware.Input{}
	for i := 0; i < 5; i++ {
		_, _, err := cor.AdvanceFrame(inp)
		test.ExpectedSuccess(t, err)
	}

	state, err := cor.CaptureState()
	test.ExpectedSuccess(t, err)
	test.Equate(t, len(state), cor.StateSize())

	// the frame after the capture point
	v, _, err := cor.AdvanceFrame(inp)
	test.ExpectedSuccess(t, err)
	expected := make([]byte, len(v))
	copy(expected, v)

	// run the machine on for a while
	for i := 0; i < 5; i++ {
		_, _, err := cor.AdvanceFrame(inp)
		test.ExpectedSuccess(t, err)
	}

	// restoring rewinds the machine exactly
	test.ExpectedSuccess(t, cor.RestoreState(state))
	v, _, err = cor.AdvanceFrame(inp)
	test.ExpectedSuccess(t, err)
	if !bytes.Equal(v, expected) {
		t.Errorf("video after restore does not match video after capture")
	}
}

func TestBadStateBlob(t *testing.T) {
	cor := refcore.NewCore()
	test.ExpectedSuccess(t, cor.LoadContent(testContent))

	err := cor.RestoreState([]byte("too short"))
	test.ExpectedSuccess(t, curated.Is(err, refcore.BadStateBlob))

	state, err := cor.CaptureState()
	test.ExpectedSuccess(t, err)

	state[0] ^= 0xff
	err = cor.RestoreState(state)
	test.ExpectedSuccess(t, curated.Is(err, refcore.BadStateBlob))
}

func TestCaptureStateInto(t *testing.T) {
	cor := refcore.NewCore()
	test.ExpectedSuccess(t, cor.LoadContent(testContent))

	buf := make([]byte, cor.StateSize())
	n, err := cor.CaptureStateInto(buf)
	test.ExpectedSuccess(t, err)
	test.Equate(t, n, cor.StateSize())

	_, err = cor.CaptureStateInto(make([]byte, 10))
	test.ExpectedFailure(t, err)
}
