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

// Package resources locates files stored by the application. All resources
// live under a single base path: the directory ".nescaster" in the working
// directory if it exists (the "portable" arrangement) or the equivalent
// directory under the user's config directory otherwise.
package resources

import (
	"os"
	"path/filepath"
	"strings"
)

const baseResourceDir = ".nescaster"

// BasePath returns the path under which all resources are stored. The
// directory is not created by this function.
func BasePath() string {
	if _, err := os.Stat(baseResourceDir); err == nil {
		return baseResourceDir
	}

	home, err := os.UserConfigDir()
	if err != nil {
		return baseResourceDir
	}

	return filepath.Join(home, strings.TrimPrefix(baseResourceDir, "."))
}

// JoinPath prepends the supplied path with the resource base path, creating
// intermediate directories as required.
func JoinPath(path ...string) (string, error) {
	b := BasePath()

	p := filepath.Join(path...)

	// do not prepend base path if it is already present
	if !strings.HasPrefix(p, b) {
		p = filepath.Join(b, p)
	}

	// check if path already exists
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}

	// create path if necessary
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", err
	}

	return p, nil
}
