// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/builtin/staker/stakes"
	"github.com/vechain/stakevault/builtin/vault"
	"github.com/vechain/stakevault/clock"
	"github.com/vechain/stakevault/lvldb"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/test/datagen"
	"github.com/vechain/stakevault/thor"
)

func M(a ...any) []any {
	return a
}

type StakerTest struct {
	*Staker
	t     *testing.T
	clock *clock.Manual
	asset thor.Address
}

func newTest(t *testing.T, opts ...Option) *StakerTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewManual(0)
	s := New(state.NewCreator(db), clk, opts...)
	t.Cleanup(s.Close)

	return &StakerTest{
		Staker: s,
		t:      t,
		clock:  clk,
		asset:  datagen.RandAddress(),
	}
}

// WithRewardPool opens the reward vault of the test asset and funds it with amount.
func (ts *StakerTest) WithRewardPool(amount uint64) *StakerTest {
	_, err := ts.OpenRewardVault(ts.asset)
	require.NoError(ts.t, err, "failed to open reward vault")
	if amount > 0 {
		funder := datagen.RandAddress()
		require.NoError(ts.t, ts.Mint(ts.asset, funder, amount))
		require.NoError(ts.t, ts.FundRewardVault(ts.asset, funder, amount))
	}
	return ts
}

// NewStaker returns a random staker holding balance of the test asset.
func (ts *StakerTest) NewStaker(balance uint64) thor.Address {
	addr := datagen.RandAddress()
	if balance > 0 {
		require.NoError(ts.t, ts.Mint(ts.asset, addr, balance))
	}
	return addr
}

func (ts *StakerTest) At(now uint64) *StakerTest {
	ts.clock.Set(now)
	return ts
}

func (ts *StakerTest) DoStake(staker thor.Address, amount uint64) *StakerTest {
	require.NoError(ts.t, ts.Stake(staker, ts.asset, amount), "stake failed")
	return ts
}

func (ts *StakerTest) DoUnstake(staker thor.Address, amount uint64) *StakerTest {
	require.NoError(ts.t, ts.Unstake(staker, ts.asset, amount), "unstake failed")
	return ts
}

func (ts *StakerTest) AssertRecord(staker thor.Address, staked uint64, isStaked bool, last uint64) *StakerTest {
	rec, err := ts.GetStake(staker, ts.asset)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, &stakes.Record{
		Staker:        staker,
		Asset:         ts.asset,
		StakedAmount:  staked,
		IsStaked:      isStaked,
		LastEventTime: last,
	}, rec, "stake record mismatch")
	return ts
}

func (ts *StakerTest) AssertBalance(owner thor.Address, expected uint64) *StakerTest {
	balance, err := ts.Balance(ts.asset, owner)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, expected, balance, "balance mismatch, got %d, expected %d", balance, expected)
	return ts
}

func (ts *StakerTest) AssertVault(staker thor.Address, status vault.Status, balance uint64) *StakerTest {
	info, err := ts.Info(staker, ts.asset)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, status, info.VaultStatus, "vault status mismatch")
	assert.Equal(ts.t, balance, info.VaultBalance, "vault balance mismatch, got %d, expected %d", info.VaultBalance, balance)
	return ts
}

func (ts *StakerTest) AssertRewardPool(expected uint64) *StakerTest {
	_, _, balance, err := ts.RewardVault(ts.asset)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, expected, balance, "reward pool mismatch, got %d, expected %d", balance, expected)
	return ts
}

// AssertConserved checks no value was created or destroyed: every minted unit
// sits in a staker account, a stake vault or the reward vault.
func (ts *StakerTest) AssertConserved(stakers ...thor.Address) *StakerTest {
	supply, err := ts.Supply(ts.asset)
	require.NoError(ts.t, err)

	_, _, total, err := ts.RewardVault(ts.asset)
	require.NoError(ts.t, err)
	for _, s := range stakers {
		balance, err := ts.Balance(ts.asset, s)
		require.NoError(ts.t, err)
		info, err := ts.Info(s, ts.asset)
		require.NoError(ts.t, err)
		total += balance + info.VaultBalance
	}
	assert.Equal(ts.t, supply, total, "supply not conserved")
	return ts
}
