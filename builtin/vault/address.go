// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"github.com/vechain/stakevault/cache"
	"github.com/vechain/stakevault/thor"
)

type derivation struct {
	seed string
	from thor.Address
}

var derived = func() *cache.LRU[derivation, thor.Address] {
	c, err := cache.NewLRU[derivation, thor.Address](4096)
	if err != nil {
		panic(err)
	}
	return c
}()

func derive(seed []byte, from thor.Address) thor.Address {
	addr, _ := derived.GetOrLoad(derivation{string(seed), from}, func(d derivation) (thor.Address, error) {
		return thor.DeriveAddress([]byte(d.seed), d.from.Bytes()), nil
	})
	return addr
}

// RewardVaultAddress returns the address of the reward vault of asset.
func RewardVaultAddress(asset thor.Address) thor.Address {
	return derive(thor.SeedRewardVault, asset)
}

// StakeVaultAddress returns the address of the stake vault controlled by authority.
func StakeVaultAddress(authority thor.Address) thor.Address {
	return derive(thor.SeedStakeVault, authority)
}
