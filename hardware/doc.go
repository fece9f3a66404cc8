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

// Package hardware is the boundary to the emulation core. The core itself is
// opaque to the rest of the application: it advances one frame at a time,
// produces video and audio buffers, and can serialise its complete internal
// state to an opaque byte blob (and back again).
//
// The Console type wraps a Core with the session-level bookkeeping that the
// rest of the application cares about: who is playing (the Session), how many
// authoritative frames have passed, and for how long.
//
// The refcore sub-package provides a small, fully deterministic reference
// core. Production cores (a Mesen bridge, for instance) attach behind the
// same Core interface.
package hardware
