// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package codec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfork/simfork/delta"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/state"
)

func TestGroupRoundTrip(t *testing.T) {
	core, _ := Encode(&ObjectCore{Owner: simfork.CoreAddress})
	store, _ := Encode(&FungibleStore{Balance: 10})

	blob, err := EncodeGroup(map[string][]byte{
		FungibleStoreTag.String(): store,
		ObjectCoreTag.String():    core,
	})
	require.NoError(t, err)

	members, err := DecodeGroup(blob)
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, core, members[ObjectCoreTag.String()])

	data, ok, err := GroupMember(blob, FungibleStoreTag)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, store, data)

	_, ok, err = GroupMember(blob, AccountTag)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeGroupRejectsUnsorted(t *testing.T) {
	blob, err := rlp.EncodeToBytes([]groupMember{
		{ObjectCoreTag.String(), []byte{1}},
		{FungibleStoreTag.String(), []byte{2}},
	})
	require.NoError(t, err)
	_, err = DecodeGroup(blob)
	assert.ErrorIs(t, err, simfork.ErrDecode)

	_, err = DecodeGroup([]byte{0x01})
	assert.ErrorIs(t, err, simfork.ErrDecode)
}

func TestReadWriteGroupMember(t *testing.T) {
	ctx := context.Background()
	d, err := delta.Create(filepath.Join(t.TempDir(), "delta.json"))
	require.NoError(t, err)
	view := state.New(d, nil)
	owner := simfork.MustParseAddress("0xa11ce")
	obj := simfork.DeriveObjectAddress(owner, simfork.CoreAddress)

	stage := state.NewStage(view)
	require.NoError(t, Store(ctx, stage, obj, ObjectCoreTag, &ObjectCore{Owner: owner}))
	require.NoError(t, Store(ctx, stage, obj, FungibleStoreTag, &FungibleStore{Metadata: simfork.CoreAddress, Balance: 42}))
	require.NoError(t, Store(ctx, stage, owner, AccountTag, &Account{}))
	require.NoError(t, d.ApplyWriteSet(stage.WriteSet()))

	// both members live in the one group key
	_, ok := d.Get(simfork.GroupKey(obj, ObjectGroupTag))
	assert.True(t, ok)
	_, ok = d.Get(simfork.ResourceKey(obj, FungibleStoreTag))
	assert.False(t, ok)

	fs, found, err := Load[FungibleStore](ctx, view, obj, FungibleStoreTag)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(42), fs.Balance)

	v, found, err := ViewResource(ctx, view, obj, ObjectCoreTag)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, owner, v.(*ObjectCore).Owner)

	group, found, err := ViewResourceGroup(ctx, view, obj, ObjectGroupTag)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, group, 2)
	assert.Equal(t, uint64(42), group[FungibleStoreTag.String()].(*FungibleStore).Balance)

	_, found, err = ViewResourceGroup(ctx, view, owner, ObjectGroupTag)
	require.NoError(t, err)
	assert.False(t, found)
}
