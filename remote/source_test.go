// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfork/simfork/remote"
	"github.com/simfork/simfork/remote/remotetest"
	"github.com/simfork/simfork/simfork"
)

func TestSourceMemoizes(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.Set(accountKey, 20, []byte{1, 2, 3})

	src, err := remote.NewSource(remote.NewClient(node.URL, fastOptions()), 50, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), src.Version())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		value, found, err := src.Fetch(ctx, accountKey)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte{1, 2, 3}, value)
	}
	assert.Equal(t, 1, node.Requests())

	// absence is memoized as well
	missing := simfork.ResourceKey(simfork.MustParseAddress("0xb0b"), accountKey.Tag)
	for i := 0; i < 2; i++ {
		_, found, err := src.Fetch(ctx, missing)
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, 2, node.Requests())

	hit, miss := src.Stats().Counts()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(2), miss)
}

func TestSourceFrozenVersion(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.Set(accountKey, 20, []byte{1})
	node.Set(accountKey, 60, []byte{2})

	src, err := remote.NewSource(remote.NewClient(node.URL, fastOptions()), 50, 0)
	require.NoError(t, err)
	value, _, err := src.Fetch(context.Background(), accountKey)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, value)
}

func TestSourceErrorNotMemoized(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.Set(accountKey, 1, []byte{9})
	node.FailNext(400)

	src, err := remote.NewSource(remote.NewClient(node.URL, fastOptions()), 1, 0)
	require.NoError(t, err)

	_, _, err = src.Fetch(context.Background(), accountKey)
	assert.ErrorIs(t, err, simfork.ErrFetch)

	value, found, err := src.Fetch(context.Background(), accountKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{9}, value)
}

func TestSourcePrefetch(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()

	var keys []simfork.StateKey
	for i := 0; i < 20; i++ {
		key := simfork.ResourceKey(simfork.MustParseAddress(fmt.Sprintf("0x%x", i+100)), accountKey.Tag)
		node.Set(key, 1, []byte{byte(i)})
		keys = append(keys, key)
	}

	src, err := remote.NewSource(remote.NewClient(node.URL, fastOptions()), 1, 0)
	require.NoError(t, err)
	require.NoError(t, src.Prefetch(context.Background(), keys))
	assert.Equal(t, 20, node.Requests())

	for i, key := range keys {
		value, found, err := src.Fetch(context.Background(), key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte{byte(i)}, value)
	}
	assert.Equal(t, 20, node.Requests())
}
