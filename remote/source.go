// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/simfork/simfork/cache"
	"github.com/simfork/simfork/simfork"
)

const (
	defaultMemoSize      = 4096
	defaultPrefetchLimit = 8
)

type memoEntry struct {
	value []byte
	found bool
}

// Source reads state at a frozen baseline version.
// Results, including absence, are memoized in process and never persisted.
type Source struct {
	client  *Client
	version uint64
	memo    *cache.LRU[string, memoEntry]
}

// NewSource pins the client to version. memoSize <= 0 selects the default size.
func NewSource(client *Client, version uint64, memoSize int) (*Source, error) {
	if memoSize <= 0 {
		memoSize = defaultMemoSize
	}
	memo, err := cache.NewLRU[string, memoEntry](memoSize)
	if err != nil {
		return nil, err
	}
	return &Source{client, version, memo}, nil
}

// Version returns the baseline version.
func (s *Source) Version() uint64 {
	return s.version
}

// Client returns the underlying client.
func (s *Source) Client() *Client {
	return s.client
}

// Stats returns memo hit/miss counters.
func (s *Source) Stats() *cache.Stats {
	return s.memo.Stats()
}

// Fetch returns the value of key at the baseline version.
// The returned slice must not be modified.
func (s *Source) Fetch(ctx context.Context, key simfork.StateKey) ([]byte, bool, error) {
	if entry, ok := s.memo.Get(key.String()); ok {
		metricFetchCount().AddWithLabel(1, map[string]string{"result": "hit"})
		return entry.value, entry.found, nil
	}

	value, found, err := s.client.StateValue(ctx, key, s.version)
	if err != nil {
		metricFetchCount().AddWithLabel(1, map[string]string{"result": "error"})
		logger.Warn("remote fetch failed", "key", key, "version", s.version, "err", err)
		return nil, false, err
	}
	if found {
		metricFetchCount().AddWithLabel(1, map[string]string{"result": "miss"})
	} else {
		metricFetchCount().AddWithLabel(1, map[string]string{"result": "absent"})
	}
	s.memo.Add(key.String(), memoEntry{value, found})
	return value, found, nil
}

// Prefetch warms the memo for keys concurrently. The first error is returned.
func (s *Source) Prefetch(ctx context.Context, keys []simfork.StateKey) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultPrefetchLimit)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			_, _, err := s.Fetch(ctx, key)
			return err
		})
	}
	return g.Wait()
}
