// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/builtin/reverts"
	"github.com/vechain/stakevault/builtin/vault"
	"github.com/vechain/stakevault/test/datagen"
	"github.com/vechain/stakevault/thor"
)

// maxStake is the largest amount whose per-slot reward is computable.
const maxStake = math.MaxUint64 / thor.RewardRateNumerator

func TestStake(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	ts.At(5).DoStake(staker, 600).
		AssertRecord(staker, 600, true, 5).
		AssertBalance(staker, 400).
		AssertVault(staker, vault.StatusActive, 600).
		AssertConserved(staker)

	info, err := ts.Info(staker, ts.asset)
	require.NoError(t, err)
	assert.Equal(t, vault.StakeVaultAddress(info.Authority()), info.Vault)
}

func TestStakeReverts(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	tests := []struct {
		name   string
		amount uint64
		setup  func()
		want   reverts.Kind
	}{
		{"zero amount", 0, func() {}, reverts.KindNoToken},
		{"over balance", 1001, func() {}, reverts.KindInsufficientFunds},
		{"already staked", 100, func() { ts.DoStake(staker, 100) }, reverts.KindIsStaked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			err := ts.Stake(staker, ts.asset, tt.amount)
			kind, ok := reverts.KindOf(err)
			require.True(t, ok, "expected revert, got %v", err)
			assert.Equal(t, tt.want, kind)
		})
	}

	// rejected stakes leave the first position untouched
	ts.AssertRecord(staker, 100, true, 0).
		AssertBalance(staker, 900).
		AssertVault(staker, vault.StatusActive, 100)
}

func TestStakeRejectsUnrewardableAmount(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(maxStake + 1)

	err := ts.Stake(staker, ts.asset, maxStake+1)
	assert.True(t, errors.Is(err, reverts.ErrRewardOverflow), "got %v", err)
	ts.AssertRecord(staker, 0, false, 0).
		AssertBalance(staker, maxStake+1).
		AssertVault(staker, vault.StatusUninitialized, 0)

	// the largest accepted stake can be queried and withdrawn
	ts.DoStake(staker, maxStake)
	ts.At(3)
	const rate = uint64(184467440737095)
	assert.Equal(t, M(3*rate, nil), M(ts.PendingReward(staker, ts.asset)))

	ts.At(0).DoUnstake(staker, maxStake).
		AssertRecord(staker, 0, false, 0).
		AssertBalance(staker, maxStake+1).
		AssertVault(staker, vault.StatusClosed, 0).
		AssertConserved(staker)
}

func TestUnstakeRewardOverflowIsAtomic(t *testing.T) {
	ts := newTest(t, WithPolicy(PolicyLegacy)).WithRewardPool(10_000)
	staker := ts.NewStaker(maxStake)

	ts.At(0).DoStake(staker, maxStake)
	// rate * elapsed no longer fits in 64 bits
	ts.At(100_001)

	err := ts.Unstake(staker, ts.asset, 1)
	assert.True(t, errors.Is(err, reverts.ErrRewardOverflow), "got %v", err)

	// the whole principal left escrow before the reward failed, and came back
	ts.At(0).
		AssertRecord(staker, maxStake, true, 0).
		AssertBalance(staker, 0).
		AssertVault(staker, vault.StatusActive, maxStake).
		AssertRewardPool(10_000).
		AssertConserved(staker)
}

func TestUnstakeFailureRevertsSettlement(t *testing.T) {
	ts := newTest(t, WithPolicy(PolicyLegacy)).WithRewardPool(10_000)
	staker := ts.NewStaker(maxStake)
	ts.At(0).DoStake(staker, maxStake)

	st := ts.creator.NewState()
	tx := newTxn(st, ts.policy, 100_001)
	err := tx.unstake(staker, ts.asset, 1)
	assert.True(t, errors.Is(err, reverts.ErrRewardOverflow), "got %v", err)
	assert.False(t, st.Dirty(), "failed unstake left writes in the state")
	assert.Empty(t, tx.events)
}

func TestUnstakeReverts(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	err := ts.Unstake(staker, ts.asset, 1)
	assert.ErrorIs(t, err, reverts.ErrNotStaked)

	ts.At(10).DoStake(staker, 500)

	err = ts.Unstake(staker, ts.asset, 501)
	assert.ErrorIs(t, err, reverts.ErrOverStakeBalance)

	ts.At(9)
	err = ts.Unstake(staker, ts.asset, 100)
	assert.ErrorIs(t, err, reverts.ErrClockRegression)

	ts.AssertRecord(staker, 500, true, 10).
		AssertBalance(staker, 500).
		AssertVault(staker, vault.StatusActive, 500)
}

func TestRewardVault(t *testing.T) {
	ts := newTest(t)
	funder := ts.NewStaker(100)

	err := ts.FundRewardVault(ts.asset, funder, 50)
	assert.ErrorIs(t, err, reverts.ErrRewardVaultNotFound)

	addr, err := ts.OpenRewardVault(ts.asset)
	require.NoError(t, err)
	assert.Equal(t, vault.RewardVaultAddress(ts.asset), addr)

	_, err = ts.OpenRewardVault(ts.asset)
	assert.ErrorIs(t, err, reverts.ErrAlreadyInitialized)

	assert.ErrorIs(t, ts.FundRewardVault(ts.asset, funder, 0), reverts.ErrNoToken)
	assert.ErrorIs(t, ts.FundRewardVault(ts.asset, funder, 101), reverts.ErrInsufficientFunds)
	require.NoError(t, ts.FundRewardVault(ts.asset, funder, 60))

	_, status, balance, err := ts.RewardVault(ts.asset)
	require.NoError(t, err)
	assert.Equal(t, vault.StatusActive, status)
	assert.Equal(t, uint64(60), balance)
	ts.AssertBalance(funder, 40)
}

func TestUnstakeWithoutRewardVault(t *testing.T) {
	ts := newTest(t)
	staker := ts.NewStaker(1000)

	ts.At(0).DoStake(staker, 1000)

	// no reward accrued, the reward vault is never touched
	ts.DoUnstake(staker, 1000).
		AssertRecord(staker, 0, false, 0).
		AssertBalance(staker, 1000)

	ts.At(1).DoStake(staker, 1000)
	ts.At(11)
	err := ts.Unstake(staker, ts.asset, 1000)
	assert.ErrorIs(t, err, reverts.ErrRewardVaultNotFound)
	ts.AssertRecord(staker, 1000, true, 1)
}

func TestSettlePartialUnstake(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	ts.At(0).DoStake(staker, 1000)

	// reward accrues on the full 1000 for 10 slots
	ts.At(10).DoUnstake(staker, 500).
		AssertRecord(staker, 500, true, 10).
		AssertBalance(staker, 500+100).
		AssertVault(staker, vault.StatusActive, 500).
		AssertRewardPool(10_000 - 100).
		AssertConserved(staker)

	// then on the remaining 500
	ts.At(20).DoUnstake(staker, 500).
		AssertRecord(staker, 0, false, 20).
		AssertBalance(staker, 1000+150).
		AssertVault(staker, vault.StatusClosed, 0).
		AssertRewardPool(10_000 - 150).
		AssertConserved(staker)
}

func TestSettleSameSlotUnstake(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	ts.At(7).DoStake(staker, 1000).
		DoUnstake(staker, 400).
		AssertRecord(staker, 600, true, 7).
		AssertBalance(staker, 400).
		AssertVault(staker, vault.StatusActive, 600).
		AssertRewardPool(10_000)
}

func TestSettleZeroUnstake(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	// a zero unstake only collects the reward and restarts accrual
	ts.At(0).DoStake(staker, 1000).
		At(5).DoUnstake(staker, 0).
		AssertRecord(staker, 1000, true, 5).
		AssertBalance(staker, 50).
		AssertVault(staker, vault.StatusActive, 1000)
}

func TestLegacyPartialUnstake(t *testing.T) {
	ts := newTest(t, WithPolicy(PolicyLegacy)).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	ts.At(0).DoStake(staker, 1000)

	// the whole principal leaves escrow although only 500 was asked for
	ts.At(10).DoUnstake(staker, 500).
		AssertRecord(staker, 500, true, 10).
		AssertBalance(staker, 1000+100).
		AssertVault(staker, vault.StatusActive, 0).
		AssertRewardPool(10_000 - 100)

	// the record still claims 500 escrowed, which the vault cannot cover
	ts.At(20)
	err := ts.Unstake(staker, ts.asset, 500)
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunds)
	ts.AssertRecord(staker, 500, true, 10).
		AssertBalance(staker, 1100)
}

func TestLegacySameSlotUnstake(t *testing.T) {
	ts := newTest(t, WithPolicy(PolicyLegacy)).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	// no reward, so the record is left as is and the vault stays open
	ts.At(0).DoStake(staker, 1000).
		DoUnstake(staker, 1000).
		AssertRecord(staker, 1000, true, 0).
		AssertBalance(staker, 1000).
		AssertVault(staker, vault.StatusActive, 0).
		AssertRewardPool(10_000)

	err := ts.Stake(staker, ts.asset, 100)
	assert.ErrorIs(t, err, reverts.ErrIsStaked)
}

func TestLegacyFullUnstake(t *testing.T) {
	ts := newTest(t, WithPolicy(PolicyLegacy)).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	ts.At(0).DoStake(staker, 1000).
		At(10).DoUnstake(staker, 1000).
		AssertRecord(staker, 0, false, 10).
		AssertBalance(staker, 1100).
		AssertVault(staker, vault.StatusClosed, 0).
		AssertConserved(staker)
}

func TestRestakeAfterClose(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)

	ts.At(0).DoStake(staker, 1000).
		At(10).DoUnstake(staker, 1000).
		AssertVault(staker, vault.StatusClosed, 0)

	// the vault is reopened at the same address
	ts.At(15).DoStake(staker, 700).
		AssertRecord(staker, 700, true, 15).
		AssertVault(staker, vault.StatusActive, 700).
		AssertBalance(staker, 1100-700)

	// stake before the last event is a regression
	ts.At(30).DoUnstake(staker, 700)
	ts.At(29)
	err := ts.Stake(staker, ts.asset, 1)
	assert.ErrorIs(t, err, reverts.ErrClockRegression)
}

func TestInsufficientRewardIsAtomic(t *testing.T) {
	ts := newTest(t).WithRewardPool(50)
	staker := ts.NewStaker(1000)

	ts.At(0).DoStake(staker, 1000)
	ts.At(10)

	err := ts.Unstake(staker, ts.asset, 1000)
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunds)

	// the principal debit made before the reward failed is rolled back
	ts.AssertRecord(staker, 1000, true, 0).
		AssertBalance(staker, 0).
		AssertVault(staker, vault.StatusActive, 1000).
		AssertRewardPool(50).
		AssertConserved(staker)
}

func TestPendingReward(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(5000)

	pending, err := ts.PendingReward(staker, ts.asset)
	require.NoError(t, err)
	assert.Zero(t, pending)

	ts.At(3).DoStake(staker, 5000)
	ts.At(13)
	pending, err = ts.PendingReward(staker, ts.asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), pending)

	ts.DoUnstake(staker, 5000).AssertBalance(staker, 5500)
	pending, err = ts.PendingReward(staker, ts.asset)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestMint(t *testing.T) {
	ts := newTest(t)
	to := datagen.RandAddress()

	assert.ErrorIs(t, ts.Mint(ts.asset, to, 0), reverts.ErrNoToken)
	require.NoError(t, ts.Mint(ts.asset, to, 10))
	require.NoError(t, ts.Mint(ts.asset, to, 5))
	ts.AssertBalance(to, 15)

	supply, err := ts.Supply(ts.asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), supply)

	assert.ErrorIs(t, ts.Mint(ts.asset, to, ^uint64(0)), reverts.ErrBalanceOverflow)
}

func TestAssetsAreIsolated(t *testing.T) {
	ts := newTest(t).WithRewardPool(10_000)
	staker := ts.NewStaker(1000)
	other := datagen.RandAddress()

	ts.At(0).DoStake(staker, 1000)

	// the staker holds nothing of the other asset
	err := ts.Stake(staker, other, 1)
	assert.ErrorIs(t, err, reverts.ErrAccountNotFound)

	staked, err := ts.Info(staker, ts.asset)
	require.NoError(t, err)
	unstaked, err := ts.Info(staker, other)
	require.NoError(t, err)
	assert.True(t, staked.IsStaked)
	assert.False(t, unstaked.IsStaked)
	assert.NotEqual(t, staked.Vault, unstaked.Vault)
	assert.Equal(t, vault.StatusUninitialized, unstaked.VaultStatus)
}

func TestPolicyDefault(t *testing.T) {
	assert.Equal(t, PolicySettle, newTest(t).Policy())
	assert.Equal(t, PolicyLegacy, newTest(t, WithPolicy(PolicyLegacy)).Policy())
}

func TestParseUnstakePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    UnstakePolicy
		wantErr bool
	}{
		{"", PolicySettle, false},
		{"settle", PolicySettle, false},
		{" Legacy ", PolicyLegacy, false},
		{"burn", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseUnstakePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, M(got, nil), M(ParseUnstakePolicy(got.String())))
	}
	assert.Equal(t, "policy(9)", UnstakePolicy(9).String())
}
