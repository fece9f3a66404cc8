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

// Package savestack maintains the persistent history of save states. Every
// (profileID, gameID) key owns two independently bounded stacks: the manual
// stack for user-triggered saves and the auto stack for trigger-driven
// saves. The stacks never share capacity.
//
// Push() commits an entry to the in-memory index immediately - the "saved"
// acknowledgment is optimistic - while the durable write of blob, thumbnail
// and index happens on a per-key writer goroutine, strictly FIFO, so frame
// pacing is never blocked by disk I/O. A write that fails after one retry
// causes the entry to be dropped from the index with a visible warning: the
// index and the files it references are never allowed to diverge.
package savestack

import (
	"fmt"
	"hash/crc32"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/logger"
	"github.com/virtual-viking/nescaster/notifications"
	"github.com/virtual-viking/nescaster/storage"
)

// error patterns returned by the savestack package.
const (
	NotFound  = "savestack: not found: %v"
	Corrupt   = "savestack: corrupt: %v"
	IOFailure = "savestack: io failure: %v"
)

// capacity of a per-key write queue. the emulation tick blocks only if this
// many writes are already in flight for the key.
const writeQueueLen = 16

// Manager owns every save stack touched by the process. Stacks for
// different (profileID, gameID) keys are fully independent and may be
// mutated concurrently.
type Manager struct {
	store  storage.Store
	prf    *Preferences
	notify notifications.Notify

	crit  sync.Mutex
	games map[string]*gameStacks

	// counts queued but not yet completed writer jobs
	pending sync.WaitGroup
}

// gameStacks is the in-memory state for one (profileID, gameID) key.
type gameStacks struct {
	profileID string
	gameID    string

	// entry ids are prefixed with a hash of the key so that ids are unique
	// across games, not just within one
	idPrefix string

	// crit serialises mutations for this key. readers do not take it; they
	// read the published stackPair
	crit sync.Mutex

	// profile-local monotonic clock. persisted in the index header
	seq uint64

	published atomic.Value // stackPair

	jobs chan job
}

func (g *gameStacks) pair() stackPair {
	return g.published.Load().(stackPair)
}

// job is one unit of work for a key's writer goroutine.
type job struct {
	// set for a push. state and thumb are private copies
	entry *Entry
	state []byte
	thumb []byte

	// encoded index to commit
	index []byte

	// files to remove once the index is committed. removing first would
	// risk a committed index referencing missing files
	remove []storage.Key
}

// NewManager is the preferred method of initialisation for the Manager
// type. The notify argument may be nil.
func NewManager(store storage.Store, prf *Preferences, notify notifications.Notify) *Manager {
	return &Manager{
		store:  store,
		prf:    prf,
		notify: notify,
		games:  make(map[string]*gameStacks),
	}
}

// Sync blocks until every queued write has completed. Called before reading
// blobs back and by tests; never called on the emulation tick.
func (mgr *Manager) Sync() {
	mgr.pending.Wait()
}

func (mgr *Manager) stacks(profileID string, gameID string) *gameStacks {
	mgr.crit.Lock()
	defer mgr.crit.Unlock()

	k := profileID + "/" + gameID
	if g, ok := mgr.games[k]; ok {
		return g
	}

	h := fnv.New32a()
	h.Write([]byte(k))

	g := &gameStacks{
		profileID: profileID,
		gameID:    gameID,
		idPrefix:  fmt.Sprintf("%08x", h.Sum32()),
		jobs:      make(chan job, writeQueueLen),
	}
	g.published.Store(stackPair{})

	// recover any previously committed index
	if data, err := mgr.store.ReadIndex(profileID, gameID); err != nil {
		logger.Logf("savestack", "index for %s unreadable: %v", k, err)
	} else if data != nil {
		if seq, manual, auto, err := decodeIndex(data); err != nil {
			logger.Logf("savestack", "index for %s undecodable: %v", k, err)
		} else {
			g.seq = seq
			g.published.Store(stackPair{manual: manual, auto: auto})
		}
	}

	go func() {
		for j := range g.jobs {
			mgr.process(g, j)
			mgr.pending.Done()
		}
	}()

	mgr.games[k] = g
	return g
}

func (mgr *Manager) enqueue(g *gameStacks, j job) {
	mgr.pending.Add(1)
	g.jobs <- j
}

// Push creates a new save entry at the head of the manual or auto stack for
// the key, evicting the oldest entry (and its files) if the stack is over
// its bound. The returned id is usable immediately; the durable write
// completes asynchronously.
func (mgr *Manager) Push(profileID string, gameID string, state []byte, thumb []byte, meta Metadata, isAuto bool) (string, error) {
	if len(state) == 0 {
		return "", curated.Errorf("savestack: empty state blob")
	}

	g := mgr.stacks(profileID, gameID)

	bound := mgr.prf.ManualBound()
	if isAuto {
		bound = mgr.prf.AutoBound()
	}

	// private copies. the caller's buffers may belong to the core
	stateCopy := make([]byte, len(state))
	copy(stateCopy, state)
	var thumbCopy []byte
	if thumb != nil {
		thumbCopy = make([]byte, len(thumb))
		copy(thumbCopy, thumb)
	}

	meta.AutoSave = isAuto

	g.crit.Lock()

	g.seq++
	e := Entry{
		ID:        fmt.Sprintf("%s-%06d", g.idPrefix, g.seq),
		ProfileID: profileID,
		GameID:    gameID,
		Seq:       g.seq,
		Created:   time.Now(),
		Meta:      meta,
		crc:       crc32.ChecksumIEEE(stateCopy),
	}

	pair, evicted := g.pair().pushed(e, isAuto, bound)
	g.published.Store(pair)
	index := encodeIndex(g.seq, pair.manual, pair.auto)

	g.crit.Unlock()

	remove := make([]storage.Key, 0, len(evicted))
	for _, ev := range evicted {
		remove = append(remove, storage.Key{ProfileID: profileID, GameID: gameID, EntryID: ev.ID})
	}

	mgr.enqueue(g, job{
		entry:  &e,
		state:  stateCopy,
		thumb:  thumbCopy,
		index:  index,
		remove: remove,
	})

	if mgr.notify != nil {
		if isAuto {
			mgr.notify.Notify(notifications.NotifyAutoSaved, notifications.SlotDetail(1, bound))
		} else {
			mgr.notify.Notify(notifications.NotifySaved, notifications.SlotDetail(1, bound))
		}
	}

	return e.ID, nil
}

// Load returns the persisted state blob for the entry, ready for handoff to
// the core. The returned summary carries the metadata needed to restore
// session bookkeeping (play time in particular).
func (mgr *Manager) Load(entryID string) ([]byte, Summary, error) {
	// queued writes may include the blob being asked for
	mgr.Sync()

	g, e, ok := mgr.find(entryID)
	if !ok {
		return nil, Summary{}, curated.Errorf(NotFound, entryID)
	}

	key := storage.Key{ProfileID: g.profileID, GameID: g.gameID, EntryID: e.ID}

	data, err := mgr.store.ReadBlob(key, storage.KindState)
	if err != nil {
		if curated.Is(err, storage.BlobNotFound) {
			return nil, Summary{}, curated.Errorf(Corrupt, "state blob missing")
		}
		return nil, Summary{}, curated.Errorf(IOFailure, err)
	}

	if crc32.ChecksumIEEE(data) != e.crc {
		return nil, Summary{}, curated.Errorf(Corrupt, "state blob checksum mismatch")
	}

	return data, e.summary(), nil
}

// Delete removes the entry and its files. Unlike eviction this is always
// user-initiated.
func (mgr *Manager) Delete(entryID string) error {
	g, e, ok := mgr.find(entryID)
	if !ok {
		return curated.Errorf(NotFound, entryID)
	}

	g.crit.Lock()
	pair, ok := g.pair().removed(e.ID)
	if !ok {
		// lost a race with an eviction
		g.crit.Unlock()
		return curated.Errorf(NotFound, entryID)
	}
	g.published.Store(pair)
	index := encodeIndex(g.seq, pair.manual, pair.auto)
	g.crit.Unlock()

	mgr.enqueue(g, job{
		index:  index,
		remove: []storage.Key{{ProfileID: g.profileID, GameID: g.gameID, EntryID: e.ID}},
	})

	return nil
}

// List returns summaries for UI consumption, ordered descending by
// sequence number, newest first. The Latest flag is set on the head entry.
// List never observes a partially updated index.
func (mgr *Manager) List(profileID string, gameID string, includeAuto bool) []Summary {
	g := mgr.stacks(profileID, gameID)
	pair := g.pair()

	summaries := make([]Summary, 0, len(pair.manual)+len(pair.auto))
	for _, e := range pair.manual {
		summaries = append(summaries, e.summary())
	}
	if includeAuto {
		for _, e := range pair.auto {
			summaries = append(summaries, e.summary())
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Seq > summaries[j].Seq
	})

	if len(summaries) > 0 {
		summaries[0].Latest = true
	}

	return summaries
}

// find the entry across every key touched by the manager.
func (mgr *Manager) find(entryID string) (*gameStacks, Entry, bool) {
	mgr.crit.Lock()
	defer mgr.crit.Unlock()

	for _, g := range mgr.games {
		if e, ok := g.pair().find(entryID); ok {
			return g, e, true
		}
	}
	return nil, Entry{}, false
}

// process runs on the key's writer goroutine. jobs for a key are strictly
// FIFO: a newer save can never overtake an older one.
func (mgr *Manager) process(g *gameStacks, j job) {
	persist := func() error {
		if j.entry != nil {
			key := storage.Key{ProfileID: g.profileID, GameID: g.gameID, EntryID: j.entry.ID}
			if err := mgr.store.WriteBlob(key, storage.KindState, j.state); err != nil {
				return err
			}
			if j.thumb != nil {
				if err := mgr.store.WriteBlob(key, storage.KindThumb, j.thumb); err != nil {
					return err
				}
			}
		}
		return mgr.store.CommitIndex(g.profileID, g.gameID, j.index)
	}

	err := persist()
	if err != nil {
		logger.Logf("savestack", "write failed, retrying: %v", err)
		err = persist()
	}

	if err != nil {
		mgr.dropEntry(g, j, err)
		return
	}

	// the index no longer references these entries; their files can go
	for _, key := range j.remove {
		if err := mgr.store.DeleteEntry(key); err != nil {
			logger.Logf("savestack", "removing evicted entry: %v", err)
		}
	}
}

// dropEntry removes an entry whose durable write failed twice. Leaving it in
// the index would leave the index pointing at files that do not exist.
func (mgr *Manager) dropEntry(g *gameStacks, j job, cause error) {
	if j.entry == nil {
		// a delete/evict-only job failed. nothing to roll back in memory;
		// the next successful commit for this key supersedes it
		logger.Logf("savestack", "index commit failed: %v", cause)
		return
	}

	g.crit.Lock()
	pair, ok := g.pair().removed(j.entry.ID)
	if ok {
		g.published.Store(pair)
	}
	index := encodeIndex(g.seq, pair.manual, pair.auto)
	g.crit.Unlock()

	if err := mgr.store.CommitIndex(g.profileID, g.gameID, index); err != nil {
		logger.Logf("savestack", "index commit failed while dropping entry: %v", err)
	}

	key := storage.Key{ProfileID: g.profileID, GameID: g.gameID, EntryID: j.entry.ID}
	if err := mgr.store.DeleteEntry(key); err != nil {
		logger.Logf("savestack", "removing dropped entry: %v", err)
	}

	err := curated.Errorf(IOFailure, cause)
	logger.Logf("savestack", "save dropped after retry: %v", err)

	if mgr.notify != nil {
		mgr.notify.Notify(notifications.NotifySaveDropped, j.entry.Meta.Name)
	}
}
