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

package modalflag_test

import (
	"testing"

	"github.com/virtual-viking/nescaster/modalflag"
	"github.com/virtual-viking/nescaster/test"
)

func TestNoModes(t *testing.T) {
	md := &modalflag.Modes{Output: &test.CompareWriter{}}
	md.NewArgs([]string{"file.nes"})

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "")
	test.Equate(t, len(md.RemainingArgs()), 1)
	test.Equate(t, md.GetArg(0), "file.nes")
}

func TestDefaultSubMode(t *testing.T) {
	md := &modalflag.Modes{Output: &test.CompareWriter{}}
	md.NewArgs([]string{"file.nes"})
	md.AddSubModes("PLAY", "SAVES", "VERSION")

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))

	// "file.nes" is not a sub-mode so the default (first listed) is chosen
	// and the argument is left for the mode to consume
	test.Equate(t, md.Mode(), "PLAY")

	md.NewMode()
	p, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, md.GetArg(0), "file.nes")
}

func TestSubModeSelection(t *testing.T) {
	md := &modalflag.Modes{Output: &test.CompareWriter{}}
	md.NewArgs([]string{"saves", "list", "file.nes"})
	md.AddSubModes("PLAY", "SAVES", "VERSION")

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "SAVES")

	md.NewMode()
	md.AddSubModes("LIST", "DELETE")

	p, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "LIST")
	test.Equate(t, md.Path(), "SAVES/LIST")

	md.NewMode()
	p, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, md.GetArg(0), "file.nes")
}

func TestFlags(t *testing.T) {
	md := &modalflag.Modes{Output: &test.CompareWriter{}}
	md.NewArgs([]string{"-log", "play", "-scale", "3", "file.nes"})
	md.AddSubModes("PLAY", "SAVES")

	logFlag := md.AddBool("log", false, "echo log")

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, *logFlag, true)
	test.Equate(t, md.Mode(), "PLAY")

	md.NewMode()
	scale := md.AddInt("scale", 0, "window scale")

	p, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, *scale, 3)
	test.Equate(t, len(md.RemainingArgs()), 1)
	test.Equate(t, md.GetArg(0), "file.nes")
}

func TestParseError(t *testing.T) {
	md := &modalflag.Modes{Output: &test.CompareWriter{}}
	md.NewArgs([]string{"-unrecognised"})

	p, err := md.Parse()
	test.ExpectedFailure(t, err)
	test.Equate(t, int(p), int(modalflag.ParseError))
}
