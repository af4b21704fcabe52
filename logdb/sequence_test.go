// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	tests := []struct {
		time  uint64
		index uint32
	}{
		{0, 0},
		{1, 1},
		{timeMask, indexMask},
		{123456, 654321},
	}
	for _, tt := range tests {
		seq, err := newSequence(tt.time, tt.index)
		require.NoError(t, err)
		assert.True(t, seq >= 0)
		assert.Equal(t, tt.time, seq.Time())
		assert.Equal(t, tt.index, seq.Index())
	}

	_, err := newSequence(timeMask+1, 0)
	assert.Error(t, err)
	_, err = newSequence(0, indexMask+1)
	assert.Error(t, err)
}

func TestSequenceNext(t *testing.T) {
	seq, _ := newSequence(10, 3)

	next, err := seq.next(10)
	require.NoError(t, err)
	assert.Equal(t, M(uint64(10), uint32(4)), M(next.Time(), next.Index()))

	next, err = seq.next(12)
	require.NoError(t, err)
	assert.Equal(t, M(uint64(12), uint32(0)), M(next.Time(), next.Index()))

	// late events stay after the ones already written
	next, err = seq.next(9)
	require.NoError(t, err)
	assert.Equal(t, M(uint64(10), uint32(4)), M(next.Time(), next.Index()))
	assert.True(t, next > seq)

	full, _ := newSequence(10, indexMask)
	_, err = full.next(10)
	assert.Error(t, err)
}

func M(a ...any) []any {
	return a
}
