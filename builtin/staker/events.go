// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakevault/thor"
)

// EventKind names what happened.
type EventKind string

const (
	EventRewardVaultOpened EventKind = "RewardVaultOpened"
	EventRewardVaultFunded EventKind = "RewardVaultFunded"
	EventStaked            EventKind = "Staked"
	EventUnstaked          EventKind = "Unstaked"
	EventMinted            EventKind = "Minted"
)

// Event is emitted for every committed operation.
type Event struct {
	Kind    EventKind    `json:"kind"`
	Asset   thor.Address `json:"asset"`
	Account thor.Address `json:"account"` // staker, funder, mint recipient or the opened vault
	Amount  uint64       `json:"amount"`
	// Principal is the amount released from escrow by an unstake.
	Principal uint64 `json:"principal,omitempty"`
	Reward    uint64 `json:"reward,omitempty"`
	// StakedAmount is the principal still recorded after the event.
	StakedAmount uint64 `json:"stakedAmount"`
	VaultClosed  bool   `json:"vaultClosed,omitempty"`
	Time         uint64 `json:"time"`
}
