// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import "github.com/simfork/simfork/metrics"

var (
	metricFetchCount    = metrics.LazyLoadCounterVec("remote_fetch_count", []string{"result"})
	metricRetryCount    = metrics.LazyLoadCounter("remote_retry_count")
	metricFetchDuration = metrics.LazyLoadHistogram("remote_fetch_duration_ms", metrics.BucketFetchMs)
)
