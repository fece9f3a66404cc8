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

// Package storage is the durable key/blob store underneath the save stacks.
// Entries are addressed by (profileID, gameID, entryID) rather than by
// caller-constructed paths; the directory layout is this package's business
// alone.
//
// The index for a (profileID, gameID) pair is committed by writing a new
// file and renaming it over the old one. A half-written index is therefore
// never observed, which is the property the savestack package builds its
// crash safety on.
package storage

import (
	"os"
	"path/filepath"

	"github.com/virtual-viking/nescaster/curated"
)

// error patterns returned by the storage package.
const (
	BlobError    = "storage: blob: %v"
	BlobNotFound = "storage: blob not found: %v"
	IndexError   = "storage: index: %v"
)

// Kind distinguishes the files stored per entry.
type Kind string

// List of Kind values. The value doubles as the file extension.
const (
	KindState Kind = "state"
	KindThumb Kind = "png"
)

// Key addresses the files of one save entry.
type Key struct {
	ProfileID string
	GameID    string
	EntryID   string
}

// Store is the interface to durable storage as required by the savestack
// package. The only implementation outside of tests is the Dir type.
type Store interface {
	WriteBlob(key Key, kind Kind, data []byte) error
	ReadBlob(key Key, kind Kind) ([]byte, error)

	// DeleteEntry removes every file belonging to the entry. Removing an
	// absent entry is not an error
	DeleteEntry(key Key) error

	// ReadIndex returns nil data and no error if no index has been
	// committed for the pair
	ReadIndex(profileID string, gameID string) ([]byte, error)

	// CommitIndex atomically replaces the index for the pair
	CommitIndex(profileID string, gameID string, data []byte) error
}

// Dir is a Store backed by a directory tree.
type Dir struct {
	root string
}

// NewDir is the preferred method of initialisation for the Dir type. The
// root directory is created if necessary.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, curated.Errorf("storage: %v", err)
	}
	return &Dir{root: root}, nil
}

func (sto *Dir) gamePath(profileID string, gameID string) string {
	return filepath.Join(sto.root, "profiles", profileID, gameID)
}

func (sto *Dir) entryPath(key Key, kind Kind) string {
	return filepath.Join(sto.gamePath(key.ProfileID, key.GameID), key.EntryID+"."+string(kind))
}

// WriteBlob implements the Store interface.
func (sto *Dir) WriteBlob(key Key, kind Kind, data []byte) error {
	p := sto.entryPath(key, kind)

	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return curated.Errorf(BlobError, err)
	}

	// blobs also commit by rename. the entry is not reachable until the
	// index commits but there's no reason to ever leave a torn file behind
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return curated.Errorf(BlobError, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return curated.Errorf(BlobError, err)
	}

	return nil
}

// ReadBlob implements the Store interface.
func (sto *Dir) ReadBlob(key Key, kind Kind) ([]byte, error) {
	data, err := os.ReadFile(sto.entryPath(key, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, curated.Errorf(BlobNotFound, key.EntryID)
		}
		return nil, curated.Errorf(BlobError, err)
	}
	return data, nil
}

// DeleteEntry implements the Store interface.
func (sto *Dir) DeleteEntry(key Key) error {
	for _, kind := range []Kind{KindState, KindThumb} {
		err := os.Remove(sto.entryPath(key, kind))
		if err != nil && !os.IsNotExist(err) {
			return curated.Errorf(BlobError, err)
		}
	}
	return nil
}

// ReadIndex implements the Store interface.
func (sto *Dir) ReadIndex(profileID string, gameID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(sto.gamePath(profileID, gameID), "index"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, curated.Errorf(IndexError, err)
	}
	return data, nil
}

// CommitIndex implements the Store interface.
func (sto *Dir) CommitIndex(profileID string, gameID string, data []byte) error {
	dir := sto.gamePath(profileID, gameID)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return curated.Errorf(IndexError, err)
	}

	p := filepath.Join(dir, "index")
	tmp := p + ".tmp"

	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return curated.Errorf(IndexError, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return curated.Errorf(IndexError, err)
	}

	return nil
}
