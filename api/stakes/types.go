// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/builtin/vault"
	"github.com/vechain/stakevault/logdb"
	"github.com/vechain/stakevault/thor"
)

type AmountRequest struct {
	Amount uint64 `json:"amount"`
}

type FundRequest struct {
	Funder thor.Address `json:"funder"`
	Amount uint64       `json:"amount"`
}

// Stake is the view of a stake position.
type Stake struct {
	Staker        thor.Address `json:"staker"`
	Asset         thor.Address `json:"asset"`
	StakedAmount  uint64       `json:"stakedAmount"`
	IsStaked      bool         `json:"isStaked"`
	LastEventTime uint64       `json:"lastEventTime"`
	Vault         thor.Address `json:"vault"`
	VaultStatus   string       `json:"vaultStatus"`
	VaultBalance  uint64       `json:"vaultBalance"`
	PendingReward uint64       `json:"pendingReward"`
}

func convertStake(info *staker.StakeInfo) *Stake {
	return &Stake{
		Staker:        info.Staker,
		Asset:         info.Asset,
		StakedAmount:  info.StakedAmount,
		IsStaked:      info.IsStaked,
		LastEventTime: info.LastEventTime,
		Vault:         info.Vault,
		VaultStatus:   info.VaultStatus.String(),
		VaultBalance:  info.VaultBalance,
		PendingReward: info.PendingReward,
	}
}

type RewardVault struct {
	Address thor.Address `json:"address"`
	Status  string       `json:"status"`
	Balance uint64       `json:"balance"`
}

func convertRewardVault(addr thor.Address, status vault.Status, balance uint64) *RewardVault {
	return &RewardVault{
		Address: addr,
		Status:  status.String(),
		Balance: balance,
	}
}

type Events []*logdb.Event
