// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "errors"

// sequence orders stored events. It packs the event time and the position
// of the event among those written at that time.
type sequence int64

// 64th bit is the sign bit so we have 63 bits to use
const (
	timeBits  = 40
	indexBits = 23
	// Max = 2^40 - 1
	timeMask = (1 << timeBits) - 1
	// Max = 2^23 - 1 = 8,388,607
	indexMask = (1 << indexBits) - 1
)

func newSequence(time uint64, index uint32) (sequence, error) {
	if time > timeMask {
		return 0, errors.New("time out of range: uint40")
	}
	if index > indexMask {
		return 0, errors.New("index out of range: uint23")
	}
	return (sequence(time) << indexBits) | sequence(index), nil
}

func (s sequence) Time() uint64 {
	return uint64(s>>indexBits) & timeMask
}

func (s sequence) Index() uint32 {
	return uint32(s & indexMask)
}

// next returns the sequence following s for an event at time. Events may be
// delivered out of time order, so time never moves the sequence backwards.
func (s sequence) next(time uint64) (sequence, error) {
	if time > s.Time() {
		return newSequence(time, 0)
	}
	return newSequence(s.Time(), s.Index()+1)
}
