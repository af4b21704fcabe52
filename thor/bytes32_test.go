// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes32MarshalUnmarshal(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var value Bytes32
	assert.NoError(t, value.UnmarshalJSON([]byte(originalHex)))
	assert.NoError(t, json.Unmarshal([]byte(originalHex), &value))

	direct, err := value.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(direct))

	byVal, err := json.Marshal(value)
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(byVal))

	byPtr, err := json.Marshal(&value)
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(byPtr))
}

func TestParseBytes32(t *testing.T) {
	_, err := ParseBytes32("0x01")
	assert.Error(t, err)

	_, err = ParseBytes32("xx00000000000000000000000000000000000000000000000000006d6173746572")
	assert.Error(t, err)

	b, err := ParseBytes32("00000000000000000000000000000000000000000000000000006d6173746572")
	assert.NoError(t, err)
	assert.Equal(t, BytesToBytes32([]byte("master")), b)
	assert.False(t, b.IsZero())
	assert.True(t, Bytes32{}.IsZero())
}
