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

package playmode

import (
	"github.com/virtual-viking/nescaster/prefs"
	"github.com/virtual-viking/nescaster/resources"
)

// Preferences for the playmode package.
type Preferences struct {
	dsk *prefs.Disk

	// whether run-ahead is active at session start
	RunAhead prefs.Bool

	// window scaling factor
	Scale prefs.Int
}

func (p *Preferences) String() string {
	return "playmode preferences"
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}

	p.RunAhead.Set(true)
	p.Scale.Set(2)

	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	if err := p.dsk.Add("playmode.runahead", &p.RunAhead); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("playmode.scale", &p.Scale); err != nil {
		return nil, err
	}

	if err := p.dsk.Load(); err != nil {
		return nil, err
	}

	return p, nil
}

// Save current playmode preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
