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

// Package curated is a helper package for the plain Go language error type.
// Curated errors are created with the Errorf() function and carry their
// formatting pattern with them, which allows callers to identify an error
// without string comparison of the formatted message.
//
//	err := curated.Errorf(snapshot.NotReady)
//
//	if curated.Is(err, snapshot.NotReady) {
//		// decline the capture, no content is loaded
//	}
//
// The Has() function is similar to Is() but checks the entire error chain
// rather than just the outermost error. This is useful where a package has
// wrapped a deeper error in its own pattern:
//
//	err := curated.Errorf("savestack: %v", curated.Errorf(storage.BlobError, id))
//
//	curated.Is(err, storage.BlobError)  // false
//	curated.Has(err, storage.BlobError) // true
//
// The IsAny() function answers whether the error was created by Errorf() at
// all. An uncurated error is one the program did not expect; callers may
// choose to treat those more severely.
//
// The Error() function normalises the error chain such that adjacent
// duplicate parts are removed. This alleviates the problem of when and how
// to wrap errors as they are passed up the call stack.
package curated
