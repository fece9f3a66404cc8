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
	"github.com/virtual-viking/nescaster/hardware"

	"github.com/veandco/go-sdl2/sdl"
)

// keymap for the first controller. the second controller is not mapped to
// the keyboard.
var keymap = []struct {
	scancode sdl.Scancode
	button   hardware.Button
}{
	{sdl.SCANCODE_X, hardware.ButtonA},
	{sdl.SCANCODE_Z, hardware.ButtonB},
	{sdl.SCANCODE_RSHIFT, hardware.ButtonSelect},
	{sdl.SCANCODE_RETURN, hardware.ButtonStart},
	{sdl.SCANCODE_UP, hardware.ButtonUp},
	{sdl.SCANCODE_DOWN, hardware.ButtonDown},
	{sdl.SCANCODE_LEFT, hardware.ButtonLeft},
	{sdl.SCANCODE_RIGHT, hardware.ButtonRight},
}

// readKeyboard samples the held state of every mapped key. sampling rather
// than event accumulation means a key held across frames is seen by every
// frame, which is what the controller model expects.
func readKeyboard() hardware.Input {
	var inp hardware.Input

	state := sdl.GetKeyboardState()
	for _, m := range keymap {
		if state[m.scancode] != 0 {
			inp.Controller[0] |= m.button
		}
	}

	return inp
}
