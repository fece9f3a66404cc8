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

// stackPair is the published, immutable representation of the two stacks
// for one (profileID, gameID) key. Mutations build a fresh stackPair and
// publish it with a single atomic swap; readers never see an intermediate
// state.
//
// Both slices are ordered strictly descending by Entry.Seq.
type stackPair struct {
	manual []Entry
	auto   []Entry
}

// pushed returns a new stackPair with the entry at the head of the selected
// stack, together with any entries evicted to honour the bound. Eviction
// removes from the tail, which holds the minimum sequence number.
func (p stackPair) pushed(e Entry, isAuto bool, bound int) (stackPair, []Entry) {
	src := p.manual
	if isAuto {
		src = p.auto
	}

	stack := make([]Entry, 0, len(src)+1)
	stack = append(stack, e)
	stack = append(stack, src...)

	var evicted []Entry
	for len(stack) > bound {
		evicted = append(evicted, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}

	if isAuto {
		return stackPair{manual: p.manual, auto: stack}, evicted
	}
	return stackPair{manual: stack, auto: p.auto}, evicted
}

// removed returns a new stackPair without the identified entry. The second
// return value is false if the entry is in neither stack.
func (p stackPair) removed(entryID string) (stackPair, bool) {
	if stack, ok := removeEntry(p.manual, entryID); ok {
		return stackPair{manual: stack, auto: p.auto}, true
	}
	if stack, ok := removeEntry(p.auto, entryID); ok {
		return stackPair{manual: p.manual, auto: stack}, true
	}
	return p, false
}

// find the identified entry in either stack.
func (p stackPair) find(entryID string) (Entry, bool) {
	for _, e := range p.manual {
		if e.ID == entryID {
			return e, true
		}
	}
	for _, e := range p.auto {
		if e.ID == entryID {
			return e, true
		}
	}
	return Entry{}, false
}

func removeEntry(stack []Entry, entryID string) ([]Entry, bool) {
	for i := range stack {
		if stack[i].ID == entryID {
			n := make([]Entry, 0, len(stack)-1)
			n = append(n, stack[:i]...)
			n = append(n, stack[i+1:]...)
			return n, true
		}
	}
	return stack, false
}
