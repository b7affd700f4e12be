// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructTag(t *testing.T) {
	tag, err := ParseStructTag("0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>")
	require.NoError(t, err)
	assert.Equal(t, CoreAddress, tag.Address)
	assert.Equal(t, "coin", tag.Module)
	assert.Equal(t, "CoinStore", tag.Name)
	require.Len(t, tag.TypeParams, 1)
	assert.Equal(t, "AptosCoin", tag.TypeParams[0].Struct.Name)
	assert.Equal(t, "0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>", tag.String())

	tag, err = ParseStructTag("0x00000000000000000000000000000001::table::Pair<u64, vector<address>>")
	require.NoError(t, err)
	assert.Equal(t, "0x1::table::Pair<u64, vector<address>>", tag.String())
}

func TestParseStructTagErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"0x1",
		"0x1::coin",
		"coin::CoinStore",
		"0x1::coin::CoinStore<",
		"0x1::coin::CoinStore<u7>",
		"0x1::coin::CoinStore>",
		"0x1::coin::CoinStore<u64> x",
	} {
		_, err := ParseStructTag(s)
		assert.Error(t, err, s)
	}
}

func TestParseTypeTag(t *testing.T) {
	tag, err := ParseTypeTag("vector<0x1::string::String>")
	require.NoError(t, err)
	require.NotNil(t, tag.Vector)
	assert.Equal(t, "String", tag.Vector.Struct.Name)

	_, err = ParseTypeTag("vector<u8")
	assert.Error(t, err)
}
