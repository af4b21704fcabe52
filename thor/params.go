// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Reward rate applied per slot to the staked principal: 1000 / 100000, i.e. 1%.
const (
	RewardRateNumerator   uint64 = 1000
	RewardRateDenominator uint64 = 100000
)

// SlotInterval default wall-clock duration of one logical slot, in seconds.
const SlotInterval uint64 = 10

// Seeds used to derive engine controlled addresses.
var (
	SeedStakeInfo   = []byte("stake_info")
	SeedStakeVault  = []byte("vault")
	SeedRewardVault = []byte("reward")
)
