// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides logical clocks measured in slots.
package clock

import (
	"time"

	"go.uber.org/atomic"
)

// Slot derives slots from wall-clock time: slot n starts at genesis + n*interval.
// Readings never decrease even if the wall clock is stepped back.
type Slot struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
	last     atomic.Uint64
}

// NewSlot creates a slot clock. interval must be positive.
func NewSlot(genesis time.Time, interval time.Duration) *Slot {
	if interval <= 0 {
		panic("clock: non-positive slot interval")
	}
	return &Slot{
		genesis:  genesis,
		interval: interval,
		now:      time.Now,
	}
}

// Now returns the current slot.
func (s *Slot) Now() uint64 {
	var slot uint64
	if elapsed := s.now().Sub(s.genesis); elapsed > 0 {
		slot = uint64(elapsed / s.interval)
	}
	for {
		last := s.last.Load()
		if slot <= last {
			return last
		}
		if s.last.CAS(last, slot) {
			return slot
		}
	}
}

// Time returns the wall-clock start of slot.
func (s *Slot) Time(slot uint64) time.Time {
	return s.genesis.Add(time.Duration(slot) * s.interval)
}

// Manual is a clock advanced by hand.
type Manual struct {
	now atomic.Uint64
}

// NewManual creates a manual clock reading start.
func NewManual(start uint64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

func (m *Manual) Now() uint64 {
	return m.now.Load()
}

// Set moves the clock to t. Moving backwards is allowed so callers can
// exercise clock regression handling.
func (m *Manual) Set(t uint64) {
	m.now.Store(t)
}

// Advance moves the clock forward by d slots and returns the new reading.
func (m *Manual) Advance(d uint64) uint64 {
	return m.now.Add(d)
}
