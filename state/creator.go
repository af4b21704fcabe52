// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/vechain/stakevault/kv"
)

// ErrConflict is returned by Commit when a value read by the state was
// overwritten by another commit in the meantime.
var ErrConflict = errors.New("state conflict")

const bucket = kv.Bucket("s")

// Creator creates states over a store and commits them back.
type Creator struct {
	store kv.Store
	mu    sync.Mutex
}

// NewCreator create a new state creator.
func NewCreator(store kv.Store) *Creator {
	return &Creator{store: bucket.NewStore(store)}
}

// NewState create a new state object.
func (c *Creator) NewState() *State {
	return New(c.store)
}

// Commit writes all changes of s in one batch.
// It fails with ErrConflict if anything s has read changed since.
// A state must not be used after it is committed.
func (c *Creator) Commit(s *State) error {
	if !s.Dirty() {
		return nil
	}
	changes := s.changes()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, seen := range s.reads {
		current, err := c.store.Get(key.bytes())
		if err != nil {
			if !c.store.IsNotFound(err) {
				return pkgerrors.Wrap(err, "validate read set")
			}
			current = nil
		}
		if !bytes.Equal(current, seen) {
			metricCommitCounter().AddWithLabel(1, map[string]string{"result": "conflict"})
			return ErrConflict
		}
	}

	batch := c.store.NewBatch()
	for key, val := range changes {
		var err error
		if len(val) == 0 {
			err = batch.Delete([]byte(key))
		} else {
			err = batch.Put([]byte(key), val)
		}
		if err != nil {
			return pkgerrors.Wrap(err, "stage change")
		}
	}
	if err := batch.Write(); err != nil {
		metricCommitCounter().AddWithLabel(1, map[string]string{"result": "error"})
		return pkgerrors.Wrap(err, "write batch")
	}
	metricCommitCounter().AddWithLabel(1, map[string]string{"result": "ok"})
	return nil
}
