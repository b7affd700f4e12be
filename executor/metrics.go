// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import "github.com/simfork/simfork/metrics"

var (
	metricOutcomeCount = metrics.LazyLoadCounterVec("executor_outcome_count", []string{"status"})
	metricGasUsed      = metrics.LazyLoadHistogram("executor_gas_used", metrics.BucketGas)
)
