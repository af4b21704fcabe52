// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault implements escrow vaults. A vault is a ledger account at a
// derived address whose funds only move under the vault's stored authority.
package vault

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/builtin/ledger"
	"github.com/vechain/stakevault/builtin/reverts"
	"github.com/vechain/stakevault/builtin/slots"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/thor"
)

var (
	logger = log.WithContext("pkg", "vault")

	// Address is the storage namespace of vault metadata.
	Address = thor.BytesToAddress([]byte("Vault"))

	slotVaults = thor.BytesToBytes32([]byte("vaults"))
)

// Status is the lifecycle state of a vault.
type Status uint8

const (
	StatusUninitialized Status = iota
	StatusActive
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Vault is the metadata of an escrow vault. Its balance is the ledger
// balance of the vault address.
type Vault struct {
	Asset     thor.Address
	Owner     *thor.Address `rlp:"nil"` // nil for reward vaults
	Authority thor.Address
	Status    Status
}

func (v *Vault) IsActive() bool {
	return v.Status == StatusActive
}

// Vaults manages vaults within one state.
type Vaults struct {
	vaults *slots.Mapping[thor.Address, *Vault]
	ledger *ledger.Ledger
}

func New(st *state.State, ledger *ledger.Ledger) *Vaults {
	return &Vaults{
		vaults: slots.NewMapping[thor.Address, *Vault](slots.NewContext(Address, st), slotVaults),
		ledger: ledger,
	}
}

// Get returns the vault at addr. Unknown addresses yield an uninitialized vault.
func (v *Vaults) Get(addr thor.Address) (*Vault, error) {
	vault, err := v.vaults.Get(addr)
	if err != nil {
		return nil, errors.WithMessage(err, "vault")
	}
	return vault, nil
}

// Balance returns the escrowed balance of the vault at addr.
func (v *Vaults) Balance(addr thor.Address) (uint64, error) {
	vault, err := v.Get(addr)
	if err != nil {
		return 0, err
	}
	if !vault.IsActive() {
		return 0, nil
	}
	return v.ledger.Balance(vault.Asset, addr)
}

// OpenReward opens the reward vault of asset. It can only be opened once.
func (v *Vaults) OpenReward(asset thor.Address) (thor.Address, error) {
	addr := RewardVaultAddress(asset)
	vault, err := v.Get(addr)
	if err != nil {
		return thor.Address{}, err
	}
	if vault.Status != StatusUninitialized {
		return thor.Address{}, reverts.Newf(reverts.KindAlreadyInitialized, "reward vault of %v already initialized", asset)
	}
	if err := v.open(addr, &Vault{Asset: asset, Authority: addr}); err != nil {
		return thor.Address{}, err
	}
	logger.Debug("reward vault opened", "asset", asset, "vault", addr)
	return addr, nil
}

// OpenStake opens, or reopens, the vault escrowing owner's stake of asset.
// It's a no-op for an already active vault.
func (v *Vaults) OpenStake(owner, asset, authority thor.Address) (thor.Address, error) {
	addr := StakeVaultAddress(authority)
	vault, err := v.Get(addr)
	if err != nil {
		return thor.Address{}, err
	}
	if vault.IsActive() {
		return addr, nil
	}
	if err := v.open(addr, &Vault{Asset: asset, Owner: &owner, Authority: authority}); err != nil {
		return thor.Address{}, err
	}
	logger.Debug("stake vault opened", "owner", owner, "asset", asset, "vault", addr)
	return addr, nil
}

func (v *Vaults) open(addr thor.Address, vault *Vault) error {
	vault.Status = StatusActive
	if err := v.ledger.Open(vault.Asset, addr, vault.Authority); err != nil {
		return err
	}
	return v.vaults.Set(addr, vault)
}

func (v *Vaults) active(addr thor.Address) (*Vault, error) {
	vault, err := v.Get(addr)
	if err != nil {
		return nil, err
	}
	if !vault.IsActive() {
		return nil, reverts.Newf(reverts.KindVaultNotActive, "vault %v is %v", addr, vault.Status)
	}
	return vault, nil
}

// Credit moves amount from an account controlled by fromAuthority into the vault.
func (v *Vaults) Credit(addr, from, fromAuthority thor.Address, amount uint64) error {
	vault, err := v.active(addr)
	if err != nil {
		return err
	}
	return v.ledger.Transfer(vault.Asset, from, addr, fromAuthority, amount)
}

// Debit moves amount out of the vault. authority must be the vault's authority.
func (v *Vaults) Debit(addr, to, authority thor.Address, amount uint64) error {
	vault, err := v.active(addr)
	if err != nil {
		return err
	}
	if authority != vault.Authority {
		return reverts.Newf(reverts.KindUnauthorized, "%v is not the authority of vault %v", authority, addr)
	}
	return v.ledger.Transfer(vault.Asset, addr, to, authority, amount)
}

// Close returns any residual balance to beneficiary and closes the vault.
func (v *Vaults) Close(addr, beneficiary, authority thor.Address) error {
	vault, err := v.active(addr)
	if err != nil {
		return err
	}
	if authority != vault.Authority {
		return reverts.Newf(reverts.KindUnauthorized, "%v is not the authority of vault %v", authority, addr)
	}
	residual, err := v.ledger.Balance(vault.Asset, addr)
	if err != nil {
		return err
	}
	if residual > 0 {
		if err := v.ledger.Transfer(vault.Asset, addr, beneficiary, authority, residual); err != nil {
			return err
		}
	}
	if err := v.ledger.Close(vault.Asset, addr, authority); err != nil {
		return err
	}
	vault.Status = StatusClosed
	logger.Debug("vault closed", "vault", addr, "residual", residual)
	return v.vaults.Set(addr, vault)
}
