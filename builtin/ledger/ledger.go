// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger is the asset transfer primitive. It keeps one account per
// (asset, owner); every debit is gated by the account's authority.
package ledger

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/stakevault/builtin/reverts"
	"github.com/vechain/stakevault/builtin/slots"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/thor"
)

var (
	logger = log.WithContext("pkg", "ledger")

	// Address is the storage namespace of the ledger.
	Address = thor.BytesToAddress([]byte("Ledger"))

	slotAccounts = thor.BytesToBytes32([]byte("accounts"))
	slotSupply   = thor.BytesToBytes32([]byte("supply"))
)

// Account is a balance held for an owner under an authority.
type Account struct {
	Balance   uint64
	Authority thor.Address
}

// Ledger reads and moves balances within one state.
type Ledger struct {
	accounts *slots.Mapping[thor.Bytes32, *Account]
	supply   *slots.Mapping[thor.Address, uint64]
}

func New(st *state.State) *Ledger {
	ctx := slots.NewContext(Address, st)
	return &Ledger{
		accounts: slots.NewMapping[thor.Bytes32, *Account](ctx, slotAccounts),
		supply:   slots.NewMapping[thor.Address, uint64](ctx, slotSupply),
	}
}

func accountKey(asset, owner thor.Address) thor.Bytes32 {
	return thor.Blake2b(asset.Bytes(), owner.Bytes())
}

// Get returns the account of owner, or nil if it's not open.
func (l *Ledger) Get(asset, owner thor.Address) (*Account, error) {
	key := accountKey(asset, owner)
	exists, err := l.accounts.Exists(key)
	if err != nil {
		return nil, errors.WithMessage(err, "ledger")
	}
	if !exists {
		return nil, nil
	}
	acc, err := l.accounts.Get(key)
	if err != nil {
		return nil, errors.WithMessage(err, "ledger")
	}
	return acc, nil
}

// Balance returns the balance of owner, zero for accounts that are not open.
func (l *Ledger) Balance(asset, owner thor.Address) (uint64, error) {
	acc, err := l.Get(asset, owner)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Supply returns the total amount of asset ever minted.
func (l *Ledger) Supply(asset thor.Address) (uint64, error) {
	return l.supply.Get(asset)
}

// Open creates an empty account for owner controlled by authority.
func (l *Ledger) Open(asset, owner, authority thor.Address) error {
	acc, err := l.Get(asset, owner)
	if err != nil {
		return err
	}
	if acc != nil {
		return reverts.Newf(reverts.KindAlreadyInitialized, "account %v already open", owner)
	}
	logger.Debug("opening account", "asset", asset, "owner", owner, "authority", authority)
	return l.accounts.Set(accountKey(asset, owner), &Account{Authority: authority})
}

// Mint credits amount to owner, opening a self controlled account if needed.
func (l *Ledger) Mint(asset, owner thor.Address, amount uint64) error {
	supply, err := l.supply.Get(asset)
	if err != nil {
		return err
	}
	if supply > math.MaxUint64-amount {
		return reverts.ErrBalanceOverflow
	}
	if err := l.credit(asset, owner, amount); err != nil {
		return err
	}
	return l.supply.Set(asset, supply+amount)
}

// Transfer moves amount from one account to another. The source account
// must be controlled by authority. Missing destination accounts are opened
// under their owner.
func (l *Ledger) Transfer(asset, from, to, authority thor.Address, amount uint64) error {
	src, err := l.Get(asset, from)
	if err != nil {
		return err
	}
	if src == nil {
		return reverts.Newf(reverts.KindAccountNotFound, "account %v not found", from)
	}
	if src.Authority != authority {
		return reverts.Newf(reverts.KindUnauthorized, "%v is not the authority of %v", authority, from)
	}
	if src.Balance < amount {
		return reverts.Newf(reverts.KindInsufficientFunds, "balance of %v is %d, need %d", from, src.Balance, amount)
	}
	if amount == 0 || from == to {
		return nil
	}

	src.Balance -= amount
	if err := l.accounts.Set(accountKey(asset, from), src); err != nil {
		return err
	}
	return l.credit(asset, to, amount)
}

func (l *Ledger) credit(asset, owner thor.Address, amount uint64) error {
	acc, err := l.Get(asset, owner)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &Account{Authority: owner}
	}
	if acc.Balance > math.MaxUint64-amount {
		return reverts.ErrBalanceOverflow
	}
	acc.Balance += amount
	return l.accounts.Set(accountKey(asset, owner), acc)
}

// Close removes the account of owner. Only empty accounts can be closed.
func (l *Ledger) Close(asset, owner, authority thor.Address) error {
	acc, err := l.Get(asset, owner)
	if err != nil {
		return err
	}
	if acc == nil {
		return reverts.Newf(reverts.KindAccountNotFound, "account %v not found", owner)
	}
	if acc.Authority != authority {
		return reverts.Newf(reverts.KindUnauthorized, "%v is not the authority of %v", authority, owner)
	}
	if acc.Balance != 0 {
		return reverts.Newf(reverts.KindAccountNotEmpty, "account %v holds %d", owner, acc.Balance)
	}
	logger.Debug("closing account", "asset", asset, "owner", owner)
	l.accounts.Delete(accountKey(asset, owner))
	return nil
}
