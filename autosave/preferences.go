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

package autosave

import (
	"github.com/virtual-viking/nescaster/prefs"
	"github.com/virtual-viking/nescaster/resources"
)

// Preferences for the autosave package.
type Preferences struct {
	dsk *prefs.Disk

	// master switch for the coordinator
	Enabled prefs.Bool

	// per-source switches. the interval source is controlled by its
	// interval: zero minutes disables it
	OnLevelComplete prefs.Bool
	OnPause         prefs.Bool
	IntervalMinutes prefs.Int
}

func (p *Preferences) String() string {
	return "autosave preferences"
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}

	p.Enabled.Set(true)
	p.OnLevelComplete.Set(true)
	p.OnPause.Set(true)
	p.IntervalMinutes.Set(5)

	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	if err := p.dsk.Add("autosave.enabled", &p.Enabled); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("autosave.onLevelComplete", &p.OnLevelComplete); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("autosave.onPause", &p.OnPause); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("autosave.intervalMinutes", &p.IntervalMinutes); err != nil {
		return nil, err
	}

	if err := p.dsk.Load(); err != nil {
		return nil, err
	}

	return p, nil
}

// allows reports whether triggers with the reason are currently accepted.
func (p *Preferences) allows(reason Reason) bool {
	switch reason {
	case ReasonLevel:
		return p.OnLevelComplete.Get().(bool)
	case ReasonPause:
		return p.OnPause.Get().(bool)
	case ReasonInterval:
		return p.IntervalMinutes.Get().(int) > 0
	}
	return false
}

// Save current autosave preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
