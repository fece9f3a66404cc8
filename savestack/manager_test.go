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

package savestack_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/notifications"
	"github.com/virtual-viking/nescaster/savestack"
	"github.com/virtual-viking/nescaster/storage"
	"github.com/virtual-viking/nescaster/test"
)

// fakeStore is an in-memory storage.Store with write failure injection. it
// must tolerate concurrent access: writes arrive from the manager's writer
// goroutines.
type fakeStore struct {
	crit    sync.Mutex
	blobs   map[string][]byte
	indexes map[string][]byte

	// number of upcoming write operations (blob or index) to fail
	failWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blobs:   make(map[string][]byte),
		indexes: make(map[string][]byte),
	}
}

func blobKey(key storage.Key, kind storage.Kind) string {
	return fmt.Sprintf("%s/%s/%s.%s", key.ProfileID, key.GameID, key.EntryID, kind)
}

func (sto *fakeStore) failNext(n int) {
	sto.crit.Lock()
	defer sto.crit.Unlock()
	sto.failWrites = n
}

func (sto *fakeStore) failing() bool {
	if sto.failWrites > 0 {
		sto.failWrites--
		return true
	}
	return false
}

func (sto *fakeStore) WriteBlob(key storage.Key, kind storage.Kind, data []byte) error {
	sto.crit.Lock()
	defer sto.crit.Unlock()
	if sto.failing() {
		return curated.Errorf(storage.BlobError, "injected failure")
	}
	c := make([]byte, len(data))
	copy(c, data)
	sto.blobs[blobKey(key, kind)] = c
	return nil
}

func (sto *fakeStore) ReadBlob(key storage.Key, kind storage.Kind) ([]byte, error) {
	sto.crit.Lock()
	defer sto.crit.Unlock()
	data, ok := sto.blobs[blobKey(key, kind)]
	if !ok {
		return nil, curated.Errorf(storage.BlobNotFound, key.EntryID)
	}
	return data, nil
}

func (sto *fakeStore) DeleteEntry(key storage.Key) error {
	sto.crit.Lock()
	defer sto.crit.Unlock()
	delete(sto.blobs, blobKey(key, storage.KindState))
	delete(sto.blobs, blobKey(key, storage.KindThumb))
	return nil
}

func (sto *fakeStore) ReadIndex(profileID string, gameID string) ([]byte, error) {
	sto.crit.Lock()
	defer sto.crit.Unlock()
	return sto.indexes[profileID+"/"+gameID], nil
}

func (sto *fakeStore) CommitIndex(profileID string, gameID string, data []byte) error {
	sto.crit.Lock()
	defer sto.crit.Unlock()
	if sto.failing() {
		return curated.Errorf(storage.IndexError, "injected failure")
	}
	c := make([]byte, len(data))
	copy(c, data)
	sto.indexes[profileID+"/"+gameID] = c
	return nil
}

func (sto *fakeStore) hasState(key storage.Key) bool {
	sto.crit.Lock()
	defer sto.crit.Unlock()
	_, ok := sto.blobs[blobKey(key, storage.KindState)]
	return ok
}

type notifyRecorder struct {
	crit    sync.Mutex
	notices []notifications.Notice
}

func (n *notifyRecorder) Notify(notice notifications.Notice, detail string) error {
	n.crit.Lock()
	defer n.crit.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *notifyRecorder) count(notice notifications.Notice) int {
	n.crit.Lock()
	defer n.crit.Unlock()
	ct := 0
	for _, o := range n.notices {
		if o == notice {
			ct++
		}
	}
	return ct
}

func newManager(sto storage.Store) (*savestack.Manager, *savestack.Preferences, *notifyRecorder) {
	prf := &savestack.Preferences{}
	rec := &notifyRecorder{}
	return savestack.NewManager(sto, prf, rec), prf, rec
}

func state(n int) []byte {
	return []byte(fmt.Sprintf("state blob %d", n))
}

func TestPushAndList(t *testing.T) {
	sto := newFakeStore()
	mgr, _, rec := newManager(sto)

	id1, err := mgr.Push("prof", "game", state(1), nil, savestack.Metadata{Name: "first"}, false)
	test.ExpectedSuccess(t, err)
	id2, err := mgr.Push("prof", "game", state(2), []byte("thumb"), savestack.Metadata{Name: "second"}, false)
	test.ExpectedSuccess(t, err)

	if id1 == id2 {
		t.Fatalf("push produced duplicate entry ids")
	}

	// newest first, Latest on the head
	summaries := mgr.List("prof", "game", true)
	test.Equate(t, len(summaries), 2)
	test.Equate(t, summaries[0].ID, id2)
	test.Equate(t, summaries[0].Latest, true)
	test.Equate(t, summaries[1].ID, id1)
	test.Equate(t, summaries[1].Latest, false)
	if summaries[0].Seq <= summaries[1].Seq {
		t.Errorf("sequence numbers are not strictly descending")
	}

	test.Equate(t, rec.count(notifications.NotifySaved), 2)

	// the acknowledgment is optimistic but the write must land
	mgr.Sync()

	data, summary, err := mgr.Load(id1)
	test.ExpectedSuccess(t, err)
	test.Equate(t, string(data), string(state(1)))
	test.Equate(t, summary.Meta.Name, "first")

	// pushing an empty blob is refused
	_, err = mgr.Push("prof", "game", nil, nil, savestack.Metadata{}, false)
	test.ExpectedFailure(t, err)
}

func TestStacksAreIndependent(t *testing.T) {
	sto := newFakeStore()
	mgr, prf, rec := newManager(sto)

	prf.Manual.Set(5)
	prf.Auto.Set(5)

	// fill the auto stack to its bound and beyond; the manual stack must be
	// unaffected
	for i := 0; i < 7; i++ {
		_, err := mgr.Push("prof", "game", state(i), nil, savestack.Metadata{}, true)
		test.ExpectedSuccess(t, err)
	}
	_, err := mgr.Push("prof", "game", state(100), nil, savestack.Metadata{}, false)
	test.ExpectedSuccess(t, err)

	all := mgr.List("prof", "game", true)
	test.Equate(t, len(all), 6)

	manualOnly := mgr.List("prof", "game", false)
	test.Equate(t, len(manualOnly), 1)

	auto := 0
	for _, s := range all {
		if s.Meta.AutoSave {
			auto++
		}
	}
	test.Equate(t, auto, 5)

	test.Equate(t, rec.count(notifications.NotifyAutoSaved), 7)
	test.Equate(t, rec.count(notifications.NotifySaved), 1)
}

func TestEvictionDeletesFiles(t *testing.T) {
	sto := newFakeStore()
	mgr, prf, _ := newManager(sto)

	prf.Manual.Set(5)

	var ids []string
	for i := 0; i < 6; i++ {
		id, err := mgr.Push("prof", "game", state(i), nil, savestack.Metadata{}, false)
		test.ExpectedSuccess(t, err)
		ids = append(ids, id)
	}
	mgr.Sync()

	// the oldest entry has been evicted and its files removed
	summaries := mgr.List("prof", "game", true)
	test.Equate(t, len(summaries), 5)
	for _, s := range summaries {
		if s.ID == ids[0] {
			t.Errorf("evicted entry still listed")
		}
	}

	key := storage.Key{ProfileID: "prof", GameID: "game", EntryID: ids[0]}
	if sto.hasState(key) {
		t.Errorf("evicted entry's state blob still in store")
	}

	// the survivors are intact
	key.EntryID = ids[1]
	if !sto.hasState(key) {
		t.Errorf("surviving entry's state blob missing from store")
	}

	_, _, err := mgr.Load(ids[0])
	test.ExpectedSuccess(t, curated.Is(err, savestack.NotFound))
}

func TestGamesAreIndependent(t *testing.T) {
	sto := newFakeStore()
	mgr, _, _ := newManager(sto)

	idA, err := mgr.Push("prof", "gameA", state(1), nil, savestack.Metadata{Name: "a"}, false)
	test.ExpectedSuccess(t, err)
	idB, err := mgr.Push("prof", "gameB", state(2), nil, savestack.Metadata{Name: "b"}, false)
	test.ExpectedSuccess(t, err)

	test.Equate(t, len(mgr.List("prof", "gameA", true)), 1)
	test.Equate(t, len(mgr.List("prof", "gameB", true)), 1)

	// ids are unique across games, so a load by id alone finds the right
	// entry
	_, summary, err := mgr.Load(idA)
	test.ExpectedSuccess(t, err)
	test.Equate(t, summary.Meta.Name, "a")
	_, summary, err = mgr.Load(idB)
	test.ExpectedSuccess(t, err)
	test.Equate(t, summary.Meta.Name, "b")
}

func TestDelete(t *testing.T) {
	sto := newFakeStore()
	mgr, _, _ := newManager(sto)

	id, err := mgr.Push("prof", "game", state(1), nil, savestack.Metadata{}, false)
	test.ExpectedSuccess(t, err)

	test.ExpectedSuccess(t, mgr.Delete(id))
	mgr.Sync()

	test.Equate(t, len(mgr.List("prof", "game", true)), 0)
	_, _, err = mgr.Load(id)
	test.ExpectedSuccess(t, curated.Is(err, savestack.NotFound))

	// deleting again is NotFound
	err = mgr.Delete(id)
	test.ExpectedSuccess(t, curated.Is(err, savestack.NotFound))

	key := storage.Key{ProfileID: "prof", GameID: "game", EntryID: id}
	if sto.hasState(key) {
		t.Errorf("deleted entry's state blob still in store")
	}
}

func TestCorruptBlob(t *testing.T) {
	sto := newFakeStore()
	mgr, _, _ := newManager(sto)

	id, err := mgr.Push("prof", "game", state(1), nil, savestack.Metadata{}, false)
	test.ExpectedSuccess(t, err)
	mgr.Sync()

	// tamper with the persisted blob
	key := storage.Key{ProfileID: "prof", GameID: "game", EntryID: id}
	sto.crit.Lock()
	sto.blobs[blobKey(key, storage.KindState)] = []byte("tampered")
	sto.crit.Unlock()

	_, _, err = mgr.Load(id)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, savestack.Corrupt))

	// a missing blob also reads as corruption, not as an io failure
	sto.crit.Lock()
	delete(sto.blobs, blobKey(key, storage.KindState))
	sto.crit.Unlock()

	_, _, err = mgr.Load(id)
	test.ExpectedSuccess(t, curated.Is(err, savestack.Corrupt))
}

// a write that fails twice drops the entry from the index with a warning:
// the optimistic "saved" acknowledgment is taken back rather than letting
// the index reference files that were never written.
func TestFailedWriteDropsEntry(t *testing.T) {
	sto := newFakeStore()
	mgr, _, rec := newManager(sto)

	// a successful push first, so the drop provably leaves earlier entries
	// alone
	keep, err := mgr.Push("prof", "game", state(1), nil, savestack.Metadata{Name: "keeper"}, false)
	test.ExpectedSuccess(t, err)
	mgr.Sync()

	// fail the write and its retry
	sto.failNext(2)

	_, err = mgr.Push("prof", "game", state(2), nil, savestack.Metadata{Name: "doomed"}, false)
	test.ExpectedSuccess(t, err) // optimistic ack
	mgr.Sync()

	test.Equate(t, rec.count(notifications.NotifySaveDropped), 1)

	summaries := mgr.List("prof", "game", true)
	test.Equate(t, len(summaries), 1)
	test.Equate(t, summaries[0].ID, keep)

	_, _, err = mgr.Load(keep)
	test.ExpectedSuccess(t, err)
}

// a write that fails once and then succeeds on retry keeps the entry.
func TestRetriedWriteSucceeds(t *testing.T) {
	sto := newFakeStore()
	mgr, _, rec := newManager(sto)

	sto.failNext(1)

	id, err := mgr.Push("prof", "game", state(1), nil, savestack.Metadata{}, false)
	test.ExpectedSuccess(t, err)
	mgr.Sync()

	test.Equate(t, rec.count(notifications.NotifySaveDropped), 0)

	data, _, err := mgr.Load(id)
	test.ExpectedSuccess(t, err)
	test.Equate(t, string(data), string(state(1)))
}

// a manager created over an existing store recovers the committed index and
// continues the sequence counter rather than restarting it.
func TestRecovery(t *testing.T) {
	sto := newFakeStore()

	mgr, _, _ := newManager(sto)
	id1, err := mgr.Push("prof", "game", state(1), nil, savestack.Metadata{Name: "persisted"}, false)
	test.ExpectedSuccess(t, err)
	seq1 := mgr.List("prof", "game", true)[0].Seq
	mgr.Sync()

	// a fresh manager over the same store: same entries, continued sequence
	mgr2, _, _ := newManager(sto)

	summaries := mgr2.List("prof", "game", true)
	test.Equate(t, len(summaries), 1)
	test.Equate(t, summaries[0].ID, id1)
	test.Equate(t, summaries[0].Meta.Name, "persisted")

	data, _, err := mgr2.Load(id1)
	test.ExpectedSuccess(t, err)
	test.Equate(t, string(data), string(state(1)))

	_, err = mgr2.Push("prof", "game", state(2), nil, savestack.Metadata{}, false)
	test.ExpectedSuccess(t, err)

	seq2 := mgr2.List("prof", "game", true)[0].Seq
	if seq2 <= seq1 {
		t.Errorf("sequence counter restarted after recovery (%d <= %d)", seq2, seq1)
	}
}
