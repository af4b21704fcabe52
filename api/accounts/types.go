// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import "github.com/vechain/stakevault/thor"

// Account for marshal account
type Account struct {
	Asset   thor.Address `json:"asset"`
	Owner   thor.Address `json:"owner"`
	Balance uint64       `json:"balance"`
}

type Asset struct {
	Asset  thor.Address `json:"asset"`
	Supply uint64       `json:"supply"`
}

type MintRequest struct {
	Amount uint64 `json:"amount"`
}
