// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfork/simfork/remote"
	"github.com/simfork/simfork/remote/remotetest"
	"github.com/simfork/simfork/simfork"
)

var accountKey = simfork.ResourceKey(simfork.MustParseAddress("0xa11ce"), simfork.MustParseStructTag("0x1::account::Account"))

func fastOptions() remote.Options {
	return remote.Options{
		Timeout:        time.Second,
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestClientLedgerInfo(t *testing.T) {
	node := remotetest.NewNode(2, 10, 100)
	defer node.Close()

	info, err := remote.NewClient(node.URL, fastOptions()).LedgerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(2), info.ChainID)
	assert.Equal(t, uint64(100), info.LedgerVersion)
	assert.Equal(t, uint64(10), info.OldestLedgerVersion)
}

func TestClientStateValue(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.Set(accountKey, 10, []byte{1})
	node.Set(accountKey, 50, []byte{2})

	client := remote.NewClient(node.URL, fastOptions())
	ctx := context.Background()

	tests := []struct {
		version uint64
		want    []byte
		found   bool
	}{
		{5, nil, false},
		{10, []byte{1}, true},
		{49, []byte{1}, true},
		{100, []byte{2}, true},
	}
	for _, tt := range tests {
		value, found, err := client.StateValue(ctx, accountKey, tt.version)
		require.NoError(t, err)
		assert.Equal(t, tt.found, found, tt.version)
		assert.Equal(t, tt.want, value, tt.version)
	}
}

func TestClientRequestPath(t *testing.T) {
	key := simfork.ResourceKey(simfork.CoreAddress, simfork.MustParseStructTag("0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>"))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/"+simfork.CoreAddress.LongString()+"/resource/0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("ledger_version"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-bcs", r.Header.Get("Accept"))
		w.Write([]byte{0xc0})
	}))
	defer ts.Close()

	opts := fastOptions()
	opts.APIKey = "secret"
	value, found, err := remote.NewClient(ts.URL, opts).StateValue(context.Background(), key, 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{0xc0}, value)
}

func TestClientRetry(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.Set(accountKey, 1, []byte{7})

	// transient failures are retried
	node.FailNext(http.StatusServiceUnavailable, http.StatusTooManyRequests)
	value, found, err := remote.NewClient(node.URL, fastOptions()).StateValue(context.Background(), accountKey, 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{7}, value)
	assert.Equal(t, 3, node.Requests())
}

func TestClientRetryExhausted(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.FailNext(500, 500, 500, 500, 500, 500)

	_, _, err := remote.NewClient(node.URL, fastOptions()).StateValue(context.Background(), accountKey, 1)
	assert.ErrorIs(t, err, simfork.ErrFetch)
	assert.ErrorIs(t, err, remote.ErrNot200Status)
	// one attempt plus MaxRetries
	assert.Equal(t, 4, node.Requests())
}

func TestClientPermanentError(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.RequireAPIKey("key")

	_, _, err := remote.NewClient(node.URL, fastOptions()).StateValue(context.Background(), accountKey, 1)
	assert.ErrorIs(t, err, simfork.ErrFetch)
	assert.Equal(t, 1, node.Requests())
}

func TestClientUnreachable(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	url := node.URL
	node.Close()

	_, err := remote.NewClient(url, fastOptions()).LedgerInfo(context.Background())
	assert.ErrorIs(t, err, simfork.ErrFetch)
}

func TestClientContextCanceled(t *testing.T) {
	node := remotetest.NewNode(2, 0, 100)
	defer node.Close()
	node.FailNext(500, 500, 500)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := remote.NewClient(node.URL, fastOptions()).StateValue(ctx, accountKey, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, simfork.ErrFetch)
}

func TestConfirmVersion(t *testing.T) {
	node := remotetest.NewNode(2, 10, 100)
	defer node.Close()
	client := remote.NewClient(node.URL, fastOptions())
	ctx := context.Background()

	info, err := remote.ConfirmVersion(ctx, client, 50)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), info.ChainID)

	_, err = remote.ConfirmVersion(ctx, client, 100)
	assert.NoError(t, err)
	_, err = remote.ConfirmVersion(ctx, client, 101)
	assert.ErrorIs(t, err, simfork.ErrInvalidBaseline)
	_, err = remote.ConfirmVersion(ctx, client, 9)
	assert.ErrorIs(t, err, simfork.ErrInvalidBaseline)
}
