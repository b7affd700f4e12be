// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(k []byte) []byte {
	return append([]byte(b), k...)
}

// Get reads the key under the bucket.
func (b Bucket) Get(src Getter, key []byte) ([]byte, error) {
	return src.Get(b.key(key))
}

// Has checks the key under the bucket.
func (b Bucket) Has(src Getter, key []byte) (bool, error) {
	return src.Has(b.key(key))
}

// Put writes the key under the bucket.
func (b Bucket) Put(dst Putter, key, val []byte) error {
	return dst.Put(b.key(key), val)
}

// Delete removes the key under the bucket.
func (b Bucket) Delete(dst Putter, key []byte) error {
	return dst.Delete(b.key(key))
}

// Iterate iterates keys of the bucket within r. Keys returned by the iterator
// have the bucket prefix stripped.
func (b Bucket) Iterate(src Store, r Range) Iterator {
	rng := PrefixRange([]byte(b))
	if len(r.Start) > 0 {
		rng.Start = b.key(r.Start)
	}
	if len(r.Limit) > 0 {
		rng.Limit = b.key(r.Limit)
	}
	return &bucketIterator{src.Iterate(rng), len(b)}
}

type bucketIterator struct {
	Iterator
	prefixLen int
}

func (i *bucketIterator) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}
