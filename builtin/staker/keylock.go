// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/vechain/stakevault/builtin/staker/stakes"
	"github.com/vechain/stakevault/thor"
)

type keyLock struct {
	mu   sync.Mutex
	refs int // holders plus waiters, guarded by the map shard
}

// keyLocks serializes operations on the same (staker, asset).
// An entry lives only while someone holds or waits for it.
type keyLocks struct {
	m cmap.ConcurrentMap[string, *keyLock]
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: cmap.New[*keyLock]()}
}

// lock acquires the lock of (staker, asset) and returns its release func.
func (l *keyLocks) lock(staker, asset thor.Address) func() {
	key := stakes.Key(staker, asset).String()
	kl := l.m.Upsert(key, nil, func(exist bool, inMap, _ *keyLock) *keyLock {
		if !exist {
			inMap = &keyLock{}
		}
		inMap.refs++
		return inMap
	})
	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.m.RemoveCb(key, func(_ string, v *keyLock, exists bool) bool {
			if !exists {
				return false
			}
			v.refs--
			return v.refs == 0
		})
	}
}
