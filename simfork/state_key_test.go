// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateKeyText(t *testing.T) {
	addr := MustParseAddress("0xbeef")
	key := ResourceKey(addr, MustParseStructTag("0x1::account::Account"))

	s := key.String()
	assert.Equal(t, addr.LongString()+"/resource/0x1::account::Account", s)

	parsed, err := ParseStateKey(s)
	require.NoError(t, err)
	assert.True(t, key.Equal(parsed))

	group := GroupKey(addr, MustParseStructTag("0x1::object::ObjectGroup"))
	parsed, err = ParseStateKey(group.String())
	require.NoError(t, err)
	assert.Equal(t, KindResourceGroup, parsed.Kind)
	assert.False(t, key.Equal(group))
}

func TestParseStateKeyErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"0x1/resource",
		"nope/resource/0x1::account::Account",
		"0x1/table/0x1::account::Account",
		"0x1/resource/account",
	} {
		_, err := ParseStateKey(s)
		assert.Error(t, err, s)
	}
}
