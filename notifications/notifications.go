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

// Package notifications defines the events that are communicated from a play
// session to whatever user interface is attached. Notices carry enough
// information for the UI to present a short on-screen message.
package notifications

import "fmt"

// Notice describes events that change the presentation of the session. These
// notifications can be used to present additional information to the user.
type Notice string

// List of defined notifications.
const (
	// a save state has been committed to the in-memory stack. the
	// accompanying detail records the slot position, eg. "slot 1 of 10"
	NotifySaved Notice = "NotifySaved"

	// an auto-save has been captured by the trigger coordinator
	NotifyAutoSaved Notice = "NotifyAutoSaved"

	// a save state has been restored
	NotifyLoaded Notice = "NotifyLoaded"

	// a persisted save state failed its integrity check and has not been
	// restored
	NotifyStateCorrupt Notice = "NotifyStateCorrupt"

	// a save state could not be written durably and has been dropped from
	// the history
	NotifySaveDropped Notice = "NotifySaveDropped"

	// run-ahead has exceeded the frame budget and has been disabled
	NotifyRunAheadDisabled Notice = "NotifyRunAheadDisabled"

	// run-ahead has been re-enabled after a period of good behaviour
	NotifyRunAheadEnabled Notice = "NotifyRunAheadEnabled"

	// the session has been paused/unpaused
	NotifyPause   Notice = "NotifyPause"
	NotifyUnpause Notice = "NotifyUnpause"
)

// Notify is used for communication from the session internals to the UI
// layer. Implementations must tolerate being called from outside the main
// emulation goroutine.
type Notify interface {
	Notify(notice Notice, detail string) error
}

// SlotDetail formats the detail string that accompanies NotifySaved.
func SlotDetail(position int, bound int) string {
	return fmt.Sprintf("slot %d of %d", position, bound)
}
