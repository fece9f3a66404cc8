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

package snapshot_test

import (
	"bytes"
	"testing"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/hardware"
	"github.com/virtual-viking/nescaster/hardware/refcore"
	"github.com/virtual-viking/nescaster/snapshot"
	"github.com/virtual-viking/nescaster/test"
)

func loadedCore(t *testing.T) *refcore.Core {
	t.Helper()
	cor := refcore.NewCore()
	test.ExpectedSuccess(t, cor.LoadContent([]byte("test content")))
	return cor
}

func TestNotReady(t *testing.T) {
	cor := refcore.NewCore()

	eng, err := snapshot.NewEngine(cor, snapshot.DefaultPoolSize)
	test.ExpectedSuccess(t, err)

	_, err = eng.Capture()
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, snapshot.NotReady))
}

func TestCaptureRestore(t *testing.T) {
	cor := loadedCore(t)

	eng, err := snapshot.NewEngine(cor, snapshot.DefaultPoolSize)
	test.ExpectedSuccess(t, err)

	inp := hardware.Input{}
	for i := 0; i < 3; i++ {
		_, _, err := cor.AdvanceFrame(inp)
		test.ExpectedSuccess(t, err)
	}

	h, err := eng.Capture()
	test.ExpectedSuccess(t, err)

	v, _, err := cor.AdvanceFrame(inp)
	test.ExpectedSuccess(t, err)
	expected := make([]byte, len(v))
	copy(expected, v)

	// restore and advance must reproduce the same frame, bit for bit
	test.ExpectedSuccess(t, eng.Restore(h))
	v, _, err = cor.AdvanceFrame(inp)
	test.ExpectedSuccess(t, err)
	if !bytes.Equal(v, expected) {
		t.Errorf("frame after restore does not match frame after capture")
	}

	// a handle survives a restore and can be restored again
	test.ExpectedSuccess(t, eng.Restore(h))

	eng.Release(h)
}

func TestPoolExhausted(t *testing.T) {
	cor := loadedCore(t)

	eng, err := snapshot.NewEngine(cor, 1)
	test.ExpectedSuccess(t, err)

	h1, err := eng.Capture()
	test.ExpectedSuccess(t, err)

	_, err = eng.Capture()
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, snapshot.PoolExhausted))

	// releasing frees the slot for the next capture
	eng.Release(h1)
	h2, err := eng.Capture()
	test.ExpectedSuccess(t, err)
	eng.Release(h2)
}

func TestStaleHandle(t *testing.T) {
	cor := loadedCore(t)

	eng, err := snapshot.NewEngine(cor, 2)
	test.ExpectedSuccess(t, err)

	// the zero handle is always stale
	err = eng.Restore(snapshot.Handle{})
	test.ExpectedSuccess(t, curated.Is(err, snapshot.StaleHandle))

	h, err := eng.Capture()
	test.ExpectedSuccess(t, err)
	eng.Release(h)

	// released handles are stale
	err = eng.Restore(h)
	test.ExpectedSuccess(t, curated.Is(err, snapshot.StaleHandle))

	// a handle is also invalidated by a later capture into its slot
	h1, err := eng.Capture()
	test.ExpectedSuccess(t, err)
	eng.Release(h1)
	h2, err := eng.Capture()
	test.ExpectedSuccess(t, err)

	err = eng.Restore(h1)
	test.ExpectedSuccess(t, curated.Is(err, snapshot.StaleHandle))
	test.ExpectedSuccess(t, eng.Restore(h2))
	eng.Release(h2)
}

func TestSequenceNumbers(t *testing.T) {
	cor := loadedCore(t)

	eng, err := snapshot.NewEngine(cor, 2)
	test.ExpectedSuccess(t, err)

	h1, err := eng.Capture()
	test.ExpectedSuccess(t, err)
	h2, err := eng.Capture()
	test.ExpectedSuccess(t, err)

	if h2.Seq <= h1.Seq {
		t.Errorf("capture sequence numbers are not monotonic")
	}

	eng.Release(h1)
	eng.Release(h2)
}
