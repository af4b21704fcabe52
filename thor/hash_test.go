// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func BenchmarkBlake2b(b *testing.B) {
	data := make([]byte, 10)

	rng := rand.New(rand.NewPCG(1, 0)) //#nosec G404
	for i := range data {
		data[i] = byte(rng.Uint64())
	}

	b.Run("single", func(b *testing.B) {
		for b.Loop() {
			Blake2b(data)
		}
	})
	b.Run("multi", func(b *testing.B) {
		for b.Loop() {
			Blake2b(data, data)
		}
	})
}

func TestBlake2b(t *testing.T) {
	data := []byte("stake_info")

	h1 := Blake2b(data)
	h2 := Blake2bFn(func(w io.Writer) {
		w.Write(data)
	})
	assert.Equal(t, h1, h2)

	// multi-part input is the hash of the concatenation
	assert.Equal(t, Blake2b([]byte("stake_info")), Blake2b([]byte("stake"), []byte("_info")))
	assert.NotEqual(t, h1, Blake2b([]byte("reward")))
}
