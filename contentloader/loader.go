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

// Package contentloader loads game content from disk and derives the stable
// identity used to key save stacks. The identity is the SHA-1 hash of the
// content data: renaming or moving a ROM file never detaches it from its
// save history.
package contentloader

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/virtual-viking/nescaster/curated"
)

// error patterns returned by the contentloader package.
const (
	LoadError = "contentloader: %v"
)

// Loader is used to specify the content to attach to the emulation core.
type Loader struct {
	// Filename of content to load
	Filename string

	// Hash of the loaded data. empty until Load() has been called. used as
	// the gameID for save stacks
	Hash string

	// copy of the loaded data
	Data []byte
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{
		Filename: filename,
	}
}

// ShortName returns a shortened version of the content file name, suitable
// for display.
func (ld Loader) ShortName() string {
	sn := filepath.Base(ld.Filename)
	return strings.TrimSuffix(sn, filepath.Ext(sn))
}

// Load the content file from disk. The data and its hash are retained in the
// Loader instance.
func (ld *Loader) Load() error {
	data, err := os.ReadFile(ld.Filename)
	if err != nil {
		return curated.Errorf(LoadError, err)
	}
	if len(data) == 0 {
		return curated.Errorf(LoadError, fmt.Sprintf("%s: file is empty", ld.Filename))
	}

	ld.Data = data
	ld.Hash = fmt.Sprintf("%x", sha1.Sum(data))

	return nil
}
