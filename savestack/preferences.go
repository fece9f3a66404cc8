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

package savestack

import (
	"github.com/virtual-viking/nescaster/prefs"
	"github.com/virtual-viking/nescaster/resources"
)

// DefaultBound is the stack bound used when the preference holds a value
// outside the supported set.
const DefaultBound = 10

// the supported stack bounds.
func validBound(n int) bool {
	return n == 5 || n == 10 || n == 15
}

// Preferences for the savestack package.
type Preferences struct {
	dsk *prefs.Disk

	// bounds for the manual and auto stacks. supported values are 5, 10
	// and 15; anything else reads as DefaultBound
	Manual prefs.Int
	Auto   prefs.Int
}

func (p *Preferences) String() string {
	return "savestack preferences"
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}

	p.Manual.Set(DefaultBound)
	p.Auto.Set(DefaultBound)

	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	if err := p.dsk.Add("savestack.manualBound", &p.Manual); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("savestack.autoBound", &p.Auto); err != nil {
		return nil, err
	}

	if err := p.dsk.Load(); err != nil {
		return nil, err
	}

	return p, nil
}

// ManualBound returns the sanitised bound for manual stacks.
func (p *Preferences) ManualBound() int {
	n := p.Manual.Get().(int)
	if !validBound(n) {
		return DefaultBound
	}
	return n
}

// AutoBound returns the sanitised bound for auto stacks.
func (p *Preferences) AutoBound() int {
	n := p.Auto.Get().(int)
	if !validBound(n) {
		return DefaultBound
	}
	return n
}

// Save current savestack preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
