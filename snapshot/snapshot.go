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

// Package snapshot manages ephemeral captures of complete machine state.
// The engine owns a small pool of buffers, allocated once when the engine is
// created and sized to the core's reported maximum state size. Capture() and
// Restore() never allocate, which is what makes them usable inside the
// run-ahead frame budget.
//
// Snapshots taken through this package are never persisted. The savestack
// package deals in durable state blobs; the two forms are bit-compatible.
package snapshot

import (
	"hash/crc32"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/hardware"
)

// error patterns returned by the snapshot package.
const (
	// capture was attempted with no content loaded in the core
	NotReady = "snapshot: not ready: no content loaded"

	// a buffer failed its integrity check on restore
	Corrupt = "snapshot: corrupt: %v"

	// all pooled buffers are in use
	PoolExhausted = "snapshot: buffer pool exhausted"

	// the handle does not refer to a live capture
	StaleHandle = "snapshot: stale handle"
)

// DefaultPoolSize is sufficient for single-frame run-ahead plus one buffer
// spare.
const DefaultPoolSize = 2

// Handle refers to one captured state in the engine's buffer pool. Handles
// are invalidated by Release() and by a later Capture() into the same slot.
type Handle struct {
	slot int

	// Seq is the monotonically increasing sequence number of the capture
	Seq uint64

	size int
	crc  uint32
}

// Engine manages the pool of state buffers for one session. It is owned
// exclusively by that session and must only be used from the session's
// emulation goroutine.
type Engine struct {
	core hardware.Core

	buffers [][]byte
	live    []uint64 // sequence number occupying each slot. zero means free

	seq uint64
}

// NewEngine is the preferred method of initialisation for the Engine type.
// The buffer pool is allocated here, once, and never grows.
func NewEngine(core hardware.Core, poolSize int) (*Engine, error) {
	if poolSize < 1 {
		poolSize = DefaultPoolSize
	}

	sz := core.StateSize()
	if sz <= 0 {
		return nil, curated.Errorf("snapshot: core reports state size of %d", sz)
	}

	eng := &Engine{
		core:    core,
		buffers: make([][]byte, poolSize),
		live:    make([]uint64, poolSize),
	}
	for i := range eng.buffers {
		eng.buffers[i] = make([]byte, sz)
	}

	return eng, nil
}

// Capture the current core state into a pooled buffer. The returned handle
// must be released with Release() once it is no longer needed.
func (eng *Engine) Capture() (Handle, error) {
	if !eng.core.ContentLoaded() {
		return Handle{}, curated.Errorf(NotReady)
	}

	// find a free slot
	slot := -1
	for i := range eng.live {
		if eng.live[i] == 0 {
			slot = i
			break // for loop
		}
	}
	if slot == -1 {
		return Handle{}, curated.Errorf(PoolExhausted)
	}

	n, err := eng.core.CaptureStateInto(eng.buffers[slot])
	if err != nil {
		return Handle{}, curated.Errorf("snapshot: %v", err)
	}

	eng.seq++
	eng.live[slot] = eng.seq

	return Handle{
		slot: slot,
		Seq:  eng.seq,
		size: n,
		crc:  crc32.ChecksumIEEE(eng.buffers[slot][:n]),
	}, nil
}

// Restore the core state from a previously captured handle. The handle
// remains valid after the restore and can be restored again.
func (eng *Engine) Restore(h Handle) error {
	if h.slot < 0 || h.slot >= len(eng.buffers) || eng.live[h.slot] != h.Seq || h.Seq == 0 {
		return curated.Errorf(StaleHandle)
	}

	buf := eng.buffers[h.slot][:h.size]

	if crc32.ChecksumIEEE(buf) != h.crc {
		return curated.Errorf(Corrupt, "checksum mismatch")
	}

	if err := eng.core.RestoreState(buf); err != nil {
		return curated.Errorf(Corrupt, err)
	}

	return nil
}

// Release the handle's buffer back to the pool. Releasing an already
// released or stale handle is a no-op.
func (eng *Engine) Release(h Handle) {
	if h.slot < 0 || h.slot >= len(eng.buffers) {
		return
	}
	if eng.live[h.slot] == h.Seq {
		eng.live[h.slot] = 0
	}
}
