// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"context"

	"github.com/simfork/simfork/delta"
	"github.com/simfork/simfork/simfork"
)

// Stage buffers writes on top of a reader. Reads observe the buffered writes.
// Nothing reaches the underlying state until the collected write set is applied.
type Stage struct {
	base     Reader
	ws       delta.WriteSet
	journal  []int
	modified map[string]delta.Entry
}

var _ Reader = (*Stage)(nil)

// NewStage creates a stage over base.
func NewStage(base Reader) *Stage {
	return &Stage{base: base, modified: make(map[string]delta.Entry)}
}

// Get reads key through the buffered writes.
func (s *Stage) Get(ctx context.Context, key simfork.StateKey) ([]byte, bool, error) {
	if e, ok := s.modified[key.String()]; ok {
		if e.Deleted {
			return nil, false, nil
		}
		return e.Value, true, nil
	}
	return s.base.Get(ctx, key)
}

// Put buffers a value.
func (s *Stage) Put(key simfork.StateKey, value []byte) {
	s.ws.Put(key, value)
	s.modified[key.String()] = delta.Value(value)
}

// Delete buffers a tombstone.
func (s *Stage) Delete(key simfork.StateKey) {
	s.ws.Delete(key)
	s.modified[key.String()] = delta.Tombstone()
}

// Checkpoint marks the current write position and returns its id.
func (s *Stage) Checkpoint() int {
	s.journal = append(s.journal, len(s.ws))
	return len(s.journal) - 1
}

// RevertTo drops every write made after the checkpoint.
func (s *Stage) RevertTo(id int) {
	if id < 0 || id >= len(s.journal) {
		return
	}
	s.ws = s.ws[:s.journal[id]]
	s.journal = s.journal[:id]

	s.modified = make(map[string]delta.Entry, len(s.ws))
	for _, op := range s.ws {
		s.modified[op.Key.String()] = op.Entry
	}
}

// WriteSet returns the collected writes in order.
func (s *Stage) WriteSet() delta.WriteSet {
	return append(delta.WriteSet(nil), s.ws...)
}
