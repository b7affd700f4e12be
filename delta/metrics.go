// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delta

import "github.com/simfork/simfork/metrics"

var (
	metricCommitCount = metrics.LazyLoadCounter("delta_commit_count")
	metricCommitOps   = metrics.LazyLoadCounter("delta_commit_ops_count")
)
