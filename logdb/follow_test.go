// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/clock"
	"github.com/vechain/stakevault/lvldb"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/test/datagen"
)

type notifySource struct {
	EventSource
	subscribed chan struct{}
}

func (s *notifySource) SubscribeEvents(ch chan<- *staker.Event) event.Subscription {
	sub := s.EventSource.SubscribeEvents(ch)
	close(s.subscribed)
	return sub
}

func follow(ctx context.Context, db *LogDB, src EventSource) chan error {
	ns := &notifySource{src, make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- db.Follow(ctx, ns) }()
	<-ns.subscribed
	return done
}

func TestFollow(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	clk := clock.NewManual(0)
	engine := staker.New(state.NewCreator(store), clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := follow(ctx, db, engine)

	asset, alice := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, engine.Mint(asset, alice, 1000))
	_, err = engine.OpenRewardVault(asset)
	require.NoError(t, err)
	require.NoError(t, engine.FundRewardVault(asset, alice, 500))
	require.NoError(t, engine.Stake(alice, asset, 500))
	clk.Set(10)
	require.NoError(t, engine.Unstake(alice, asset, 500))

	kind := staker.EventUnstaked
	filter := &EventFilter{CriteriaSet: []*EventCriteria{{Asset: &asset, Account: &alice, Kind: &kind}}}
	assert.Eventually(t, func() bool {
		got, err := db.FilterEvents(context.Background(), filter)
		return err == nil && len(got) == 1
	}, time.Second, 10*time.Millisecond)

	got, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, staker.EventMinted, got[0].Kind)
	assert.Equal(t, &staker.Event{
		Kind:        staker.EventUnstaked,
		Asset:       asset,
		Account:     alice,
		Amount:      500,
		Principal:   500,
		Reward:      50,
		VaultClosed: true,
		Time:        10,
	}, got[4].Event)

	cancel()
	assert.NoError(t, <-done)
}

func TestFollowEndsWithEngine(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	engine := staker.New(state.NewCreator(store), clock.NewManual(0))

	done := follow(context.Background(), db, engine)
	engine.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("follow did not stop")
	}
}
