// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakevault/builtin/reverts"
	"github.com/vechain/stakevault/thor"
)

var (
	numerator   = uint256.NewInt(thor.RewardRateNumerator)
	denominator = uint256.NewInt(thor.RewardRateDenominator)
)

// Elapsed returns now - last, failing if the clock went backwards.
func Elapsed(last, now uint64) (uint64, error) {
	if now < last {
		return 0, reverts.Newf(reverts.KindClockRegression, "clock regression: now %d < last %d", now, last)
	}
	return now - last, nil
}

// RatePerSlot returns floor(staked * numerator / denominator).
// The intermediate product must fit in 64 bits.
func RatePerSlot(staked uint64) (uint64, error) {
	scaled := new(uint256.Int).Mul(uint256.NewInt(staked), numerator)
	if !scaled.IsUint64() {
		return 0, reverts.Newf(reverts.KindRewardOverflow, "reward overflow: %d * %d", staked, thor.RewardRateNumerator)
	}
	return scaled.Div(scaled, denominator).Uint64(), nil
}

// CalcReward returns elapsed * RatePerSlot(staked).
func CalcReward(staked, elapsed uint64) (uint64, error) {
	rate, err := RatePerSlot(staked)
	if err != nil {
		return 0, err
	}
	reward := new(uint256.Int).Mul(uint256.NewInt(rate), uint256.NewInt(elapsed))
	if !reward.IsUint64() {
		return 0, reverts.Newf(reverts.KindRewardOverflow, "reward overflow: %d * %d", rate, elapsed)
	}
	return reward.Uint64(), nil
}
