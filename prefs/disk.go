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

// Package prefs stores preference values to disk. Preferences are registered
// against a Disk instance with a unique key. The on-disk format is one
// preference per line:
//
//	key :: value
//
// The file is committed by writing to a temporary file and renaming it over
// the old copy, so a half-written prefs file is never observed.
package prefs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/virtual-viking/nescaster/curated"
)

// the string that separates the key from the value in the prefs file.
const keySep = " :: "

// DefaultPrefsFile is the name of the preferences file shared by every
// package. Keys are namespaced by the owning package ("savestack.manual"
// etc.) so several Disk instances can point at the same file.
const DefaultPrefsFile = "nescaster.prefs"

// Disk represents preference values as stored on disk. Add() preferences
// and then Load() or Save() as required.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type. The
// path is the full path to the preferences file.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add a preference to the Disk instance with the specified key.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, keySep) {
		return curated.Errorf("prefs: invalid key (%s)", key)
	}
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf("prefs: duplicate key (%s)", key)
	}
	dsk.entries[key] = p
	return nil
}

// Reset all preferences on the Disk instance to their zero values.
func (dsk *Disk) Reset() error {
	for _, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	}
	return nil
}

// Load preference values from disk. Keys in the file that have not been
// added to the Disk instance are ignored; registered keys missing from the
// file keep their current value. A missing file is not an error.
func (dsk *Disk) Load() error {
	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s := strings.SplitN(scanner.Text(), keySep, 2)
		if len(s) != 2 {
			continue
		}
		if p, ok := dsk.entries[s[0]]; ok {
			if err := p.Set(s[1]); err != nil {
				return curated.Errorf("prefs: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// Save current preference values to disk. Keys in the file that belong to
// other Disk instances are preserved.
func (dsk *Disk) Save() error {
	// gather values from the existing file first so that keys owned by
	// other Disk instances survive the rewrite
	values := make(map[string]string)

	if f, err := os.Open(dsk.path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			s := strings.SplitN(scanner.Text(), keySep, 2)
			if len(s) == 2 {
				values[s[0]] = s[1]
			}
		}
		f.Close()
	}

	for key, p := range dsk.entries {
		values[key] = p.String()
	}

	// write keys in a stable order
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tmp := dsk.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s%s%s\n", key, keySep, values[key]); err != nil {
			f.Close()
			os.Remove(tmp)
			return curated.Errorf("prefs: %v", err)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return curated.Errorf("prefs: %v", err)
	}

	if err := os.Rename(tmp, dsk.path); err != nil {
		os.Remove(tmp)
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}
