// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math"

	"github.com/vechain/stakevault/metrics"
)

var (
	metricOpCount    = metrics.LazyLoadCounterVec("staker_op_count", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("staker_op_duration_ms", []string{"op"}, metrics.BucketOps)
	metricRetries    = metrics.LazyLoadCounterVec("staker_op_retries", []string{"op"})
	metricFlows      = metrics.LazyLoadCounterVec("staker_flow_amount", []string{"flow"})
)

// addFlow counts amount under flow. Amounts past MaxInt64 saturate.
func addFlow(flow string, amount uint64) {
	v := int64(math.MaxInt64)
	if amount < math.MaxInt64 {
		v = int64(amount)
	}
	metricFlows().AddWithLabel(v, map[string]string{"flow": flow})
}
