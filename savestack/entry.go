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
	"time"
)

// Metadata carried by every save entry. Everything here is for display; none
// of it affects how the entry is restored.
type Metadata struct {
	// display name of the game at the time of saving
	Name string

	// accumulated play time at the moment of capture
	PlayTime time.Duration

	// optional hint describing where in the game the save was taken
	LevelHint string

	// true if the entry was created by the auto-save coordinator
	AutoSave bool
}

// Entry is one save state in a stack. Entries are immutable once created;
// an update is expressed as a new entry.
type Entry struct {
	// unique id. doubles as the entry's file stem in storage
	ID string

	ProfileID string
	GameID    string

	// Seq is the entry's position on the profile-local monotonic clock.
	// stacks are ordered by Seq, never by wall-clock time
	Seq uint64

	// wall-clock creation time. metadata only
	Created time.Time

	Meta Metadata

	// CRC-32 of the state blob, checked on load
	crc uint32
}

// Summary is the UI-facing view of an entry. It never carries the state
// blob.
type Summary struct {
	ID      string
	Seq     uint64
	Created time.Time
	Meta    Metadata

	// Latest is true for the newest entry in the listed sequence
	Latest bool
}

func (e Entry) summary() Summary {
	return Summary{
		ID:      e.ID,
		Seq:     e.Seq,
		Created: e.Created,
		Meta:    e.Meta,
	}
}
