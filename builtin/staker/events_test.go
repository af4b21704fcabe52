// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/builtin/vault"
)

func TestEvents(t *testing.T) {
	ts := newTest(t)

	ch := make(chan *Event, 16)
	sub := ts.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	staker := ts.NewStaker(1000)
	ts.WithRewardPool(500)
	ts.At(0).DoStake(staker, 1000)
	ts.At(10).DoUnstake(staker, 1000)

	// failed operations emit nothing
	assert.Error(t, ts.Unstake(staker, ts.asset, 1))

	want := []*Event{
		{Kind: EventMinted, Asset: ts.asset, Account: staker, Amount: 1000},
		{Kind: EventRewardVaultOpened, Asset: ts.asset, Account: vault.RewardVaultAddress(ts.asset)},
		{Kind: EventMinted, Asset: ts.asset, Amount: 500},
		{Kind: EventRewardVaultFunded, Asset: ts.asset, Amount: 500},
		{Kind: EventStaked, Asset: ts.asset, Account: staker, Amount: 1000, StakedAmount: 1000},
		{Kind: EventUnstaked, Asset: ts.asset, Account: staker, Amount: 1000, Principal: 1000, Reward: 100, VaultClosed: true, Time: 10},
	}
	require.Len(t, ch, len(want))
	for i, w := range want {
		got := <-ch
		if i == 2 || i == 3 {
			// the funder is random
			w.Account = got.Account
		}
		assert.Equal(t, w, got, "event %d", i)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	ts := newTest(t)

	ch := make(chan *Event, 1)
	sub := ts.SubscribeEvents(ch)
	ts.Close()

	select {
	case _, ok := <-sub.Err():
		assert.False(t, ok)
	default:
		t.Fatal("subscription still open")
	}
	// sends after close have no receivers
	ts.NewStaker(1)
	assert.Len(t, ch, 0)
}
