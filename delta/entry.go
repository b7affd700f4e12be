// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delta

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/simfork/simfork/simfork"
)

// Entry is either a value or a tombstone.
// A tombstone hides the remote value of its key.
type Entry struct {
	Value   []byte
	Deleted bool
}

// Value makes a value entry.
func Value(v []byte) Entry {
	if v == nil {
		v = []byte{}
	}
	return Entry{Value: v}
}

// Tombstone makes a deletion entry.
func Tombstone() Entry {
	return Entry{Deleted: true}
}

// Equal reports whether both entries are the same value or both are tombstones.
func (e Entry) Equal(other Entry) bool {
	if e.Deleted || other.Deleted {
		return e.Deleted == other.Deleted
	}
	return bytes.Equal(e.Value, other.Value)
}

func (e Entry) validate() error {
	if e.Deleted && e.Value != nil {
		return errors.New("tombstone carries a value")
	}
	if !e.Deleted && e.Value == nil {
		return errors.New("entry has neither value nor tombstone")
	}
	return nil
}

func (e Entry) clone() Entry {
	if e.Deleted {
		return e
	}
	return Entry{Value: append([]byte{}, e.Value...)}
}

// WriteOp is a single change of a write set.
type WriteOp struct {
	Key   simfork.StateKey
	Entry Entry
}

// WriteSet is an ordered list of changes. Later ops on the same key win.
type WriteSet []WriteOp

// Put appends a value op.
func (ws *WriteSet) Put(key simfork.StateKey, value []byte) {
	*ws = append(*ws, WriteOp{key, Value(value)})
}

// Delete appends a tombstone op.
func (ws *WriteSet) Delete(key simfork.StateKey) {
	*ws = append(*ws, WriteOp{key, Tombstone()})
}

// Lookup returns the last op of the write set touching key.
func (ws WriteSet) Lookup(key simfork.StateKey) (Entry, bool) {
	k := key.String()
	for i := len(ws) - 1; i >= 0; i-- {
		if ws[i].Key.String() == k {
			return ws[i].Entry, true
		}
	}
	return Entry{}, false
}

// Validate checks every op of the write set.
func (ws WriteSet) Validate() error {
	for i, op := range ws {
		if err := validateKey(op.Key); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
		if err := op.Entry.validate(); err != nil {
			return fmt.Errorf("op %d %v: %w", i, op.Key, err)
		}
	}
	return nil
}

func validateKey(key simfork.StateKey) error {
	parsed, err := simfork.ParseStateKey(key.String())
	if err != nil {
		return err
	}
	if !parsed.Equal(key) {
		return fmt.Errorf("key %v does not round trip", key)
	}
	return nil
}
