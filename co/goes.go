// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Goes runs routines and keeps the first error any of them returned.
type Goes struct {
	wg   sync.WaitGroup
	once sync.Once
	err  error
}

// Go runs f in a new routine.
func (g *Goes) Go(f func() error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := f(); err != nil {
			g.once.Do(func() { g.err = err })
		}
	}()
}

// Wait blocks until all routines started by Go return, and reports the first error.
func (g *Goes) Wait() error {
	g.wg.Wait()
	return g.err
}
