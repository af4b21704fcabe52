// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakevault/builtin/ledger"
	"github.com/vechain/stakevault/builtin/reverts"
	"github.com/vechain/stakevault/builtin/slots"
	"github.com/vechain/stakevault/builtin/staker/stakes"
	"github.com/vechain/stakevault/builtin/vault"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/thor"
)

// Address is the storage namespace of stake records.
var Address = thor.BytesToAddress([]byte("Staker"))

// txn applies engine operations to a single state at a fixed clock reading.
type txn struct {
	state   *state.State
	policy  UnstakePolicy
	now     uint64
	ledger  *ledger.Ledger
	vaults  *vault.Vaults
	records *stakes.Service
	events  []*Event
}

func newTxn(st *state.State, policy UnstakePolicy, now uint64) *txn {
	l := ledger.New(st)
	return &txn{
		state:   st,
		policy:  policy,
		now:     now,
		ledger:  l,
		vaults:  vault.New(st, l),
		records: stakes.New(slots.NewContext(Address, st)),
	}
}

func (tx *txn) emit(ev *Event) {
	ev.Time = tx.now
	tx.events = append(tx.events, ev)
}

func (tx *txn) openRewardVault(asset thor.Address) (thor.Address, error) {
	addr, err := tx.vaults.OpenReward(asset)
	if err != nil {
		return thor.Address{}, err
	}
	tx.emit(&Event{Kind: EventRewardVaultOpened, Asset: asset, Account: addr})
	return addr, nil
}

func (tx *txn) rewardVault(asset thor.Address) (thor.Address, error) {
	addr := vault.RewardVaultAddress(asset)
	v, err := tx.vaults.Get(addr)
	if err != nil {
		return thor.Address{}, err
	}
	if !v.IsActive() {
		return thor.Address{}, reverts.Newf(reverts.KindRewardVaultMissing, "reward vault of %v not found", asset)
	}
	return addr, nil
}

func (tx *txn) fundRewardVault(asset, funder thor.Address, amount uint64) error {
	if amount == 0 {
		return reverts.ErrNoToken
	}
	addr, err := tx.rewardVault(asset)
	if err != nil {
		return err
	}
	if err := tx.vaults.Credit(addr, funder, funder, amount); err != nil {
		return err
	}
	tx.emit(&Event{Kind: EventRewardVaultFunded, Asset: asset, Account: funder, Amount: amount})
	return nil
}

func (tx *txn) mint(asset, to thor.Address, amount uint64) error {
	if amount == 0 {
		return reverts.ErrNoToken
	}
	if err := tx.ledger.Mint(asset, to, amount); err != nil {
		return err
	}
	tx.emit(&Event{Kind: EventMinted, Asset: asset, Account: to, Amount: amount})
	return nil
}

func (tx *txn) stake(staker, asset thor.Address, amount uint64) error {
	if amount == 0 {
		return reverts.ErrNoToken
	}
	rec, err := tx.records.Get(staker, asset)
	if err != nil {
		return err
	}
	if rec.IsStaked {
		return reverts.ErrIsStaked
	}
	if _, err := stakes.Elapsed(rec.LastEventTime, tx.now); err != nil {
		return err
	}
	// a position whose per-slot reward cannot be computed could never be unstaked
	if _, err := stakes.RatePerSlot(amount); err != nil {
		return err
	}

	addr, err := tx.vaults.OpenStake(staker, asset, rec.Authority())
	if err != nil {
		return err
	}
	if err := tx.vaults.Credit(addr, staker, staker, amount); err != nil {
		return err
	}

	rec.StakedAmount = amount
	rec.IsStaked = true
	rec.LastEventTime = tx.now
	if err := tx.records.Set(rec); err != nil {
		return err
	}

	tx.emit(&Event{Kind: EventStaked, Asset: asset, Account: staker, Amount: amount, StakedAmount: amount})
	return nil
}

func (tx *txn) unstake(staker, asset thor.Address, amount uint64) error {
	rec, err := tx.records.Get(staker, asset)
	if err != nil {
		return err
	}
	if !rec.IsStaked {
		return reverts.ErrNotStaked
	}
	if amount > rec.StakedAmount {
		return reverts.Newf(reverts.KindOverStakeBalance, "unstake %d over stake balance %d", amount, rec.StakedAmount)
	}
	elapsed, err := stakes.Elapsed(rec.LastEventTime, tx.now)
	if err != nil {
		return err
	}

	var principal uint64
	switch tx.policy {
	case PolicyLegacy:
		principal = rec.StakedAmount
	default:
		principal = amount
	}

	// principal leaves escrow before the reward is known; a later failure reverts it
	chk := tx.state.NewCheckpoint()
	reward, closed, err := tx.settle(rec, amount, principal, elapsed)
	if err != nil {
		tx.state.RevertTo(chk)
		return err
	}

	tx.emit(&Event{
		Kind:         EventUnstaked,
		Asset:        asset,
		Account:      staker,
		Amount:       amount,
		Principal:    principal,
		Reward:       reward,
		StakedAmount: rec.StakedAmount,
		VaultClosed:  closed,
	})
	return nil
}

// settle moves principal and reward out and updates the record.
func (tx *txn) settle(rec *stakes.Record, amount, principal, elapsed uint64) (reward uint64, closed bool, err error) {
	authority := rec.Authority()
	stakeVault := vault.StakeVaultAddress(authority)

	if err := tx.vaults.Debit(stakeVault, rec.Staker, authority, principal); err != nil {
		return 0, false, err
	}

	reward, err = stakes.CalcReward(rec.StakedAmount, elapsed)
	if err != nil {
		return 0, false, err
	}
	if reward > 0 {
		rewardVault, err := tx.rewardVault(rec.Asset)
		if err != nil {
			return 0, false, err
		}
		if err := tx.vaults.Debit(rewardVault, rec.Staker, rewardVault, reward); err != nil {
			return 0, false, err
		}
	}

	updated := reward > 0 || tx.policy != PolicyLegacy
	if updated {
		rec.StakedAmount -= amount
		rec.LastEventTime = tx.now
	}

	if rec.StakedAmount == 0 {
		rec.IsStaked = false
		if err := tx.vaults.Close(stakeVault, rec.Staker, authority); err != nil {
			return 0, false, err
		}
		closed = true
	}
	if updated || closed {
		if err := tx.records.Set(rec); err != nil {
			return 0, false, err
		}
	}
	return reward, closed, nil
}
