// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfork/simfork/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	disk, err := New(filepath.Join(t.TempDir(), "db"), Options{16, 16})
	require.NoError(t, err)
	defer disk.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{disk, mem} {
		assert.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBulkAndIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	b := db.Bulk()
	for _, k := range []string{"a1", "a2", "a3", "b1"} {
		assert.NoError(t, b.Put([]byte(k), []byte("v"+k)))
	}
	assert.Equal(t, 4, b.Len())

	// nothing visible before write
	has, _ := db.Has([]byte("a1"))
	assert.False(t, has)
	require.NoError(t, b.Write())

	it := db.Iterate(kv.PrefixRange([]byte("a")))
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.NoError(t, it.Error())
	it.Release()
	assert.Equal(t, []string{"a1", "a2", "a3"}, keys)

	it = db.Iterate(kv.PrefixRange([]byte("a")))
	require.True(t, it.Last())
	assert.Equal(t, "a3", string(it.Key()))
	assert.Equal(t, "va3", string(it.Value()))
	it.Release()

	it = kv.Bucket("a").Iterate(db, kv.Range{})
	require.True(t, it.First())
	assert.Equal(t, "1", string(it.Key()))
	it.Release()
}

func TestLevelDBReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))

	_, err = New(path, Options{})
	assert.Error(t, err, "path is locked while open")

	require.NoError(t, db.Close())

	db, err = New(path, Options{})
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
