// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delta keeps the local overlay of a session: every change made on top of the
// remote baseline, persisted as one document.
package delta

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/simfork/simfork/fileutil"
	"github.com/simfork/simfork/simfork"
)

var logger = log.New("pkg", "delta")

type record struct {
	key   simfork.StateKey
	entry Entry
}

// Store is the persisted overlay. Every mutation is written through to the
// document before it becomes visible.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]record

	write func(path string, data []byte) error
}

func writeDocument(path string, data []byte) error {
	return fileutil.WriteFileAtomic(path, data, 0o600)
}

// Create creates an empty delta document at path.
func Create(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]record),
		write:   writeDocument,
	}
	if err := s.persist(s.entries); err != nil {
		return nil, err
	}
	return s, nil
}

// Open loads the delta document at path. A missing or unreadable document is corrupt state.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read delta: %w", simfork.ErrCorruptState, err)
	}
	entries, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse delta %s: %w", simfork.ErrCorruptState, path, err)
	}
	logger.Debug("delta loaded", "path", path, "entries", len(entries))
	return &Store{
		path:    path,
		entries: entries,
		write:   writeDocument,
	}, nil
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the entry of key. ok is false when the delta has no opinion on key.
func (s *Store) Get(key simfork.StateKey) (entry Entry, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.entries[key.String()]
	if !ok {
		return Entry{}, false
	}
	return r.entry.clone(), true
}

// Len returns the number of entries, tombstones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns all keys in their text order.
func (s *Store) Keys() []simfork.StateKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for k := range s.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	keys := make([]simfork.StateKey, 0, len(names))
	for _, k := range names {
		keys = append(keys, s.entries[k].key)
	}
	return keys
}

// Put sets the value of key and persists it.
func (s *Store) Put(key simfork.StateKey, value []byte) error {
	return s.ApplyWriteSet(WriteSet{{key, Value(value)}})
}

// Delete records a tombstone for key and persists it.
func (s *Store) Delete(key simfork.StateKey) error {
	return s.ApplyWriteSet(WriteSet{{key, Tombstone()}})
}

// ApplyWriteSet applies all ops and persists the result. Either all ops become
// visible and durable, or none does. An empty write set is a no-op.
func (s *Store) ApplyWriteSet(ws WriteSet) error {
	if len(ws) == 0 {
		return nil
	}
	if err := ws.Validate(); err != nil {
		return fmt.Errorf("invalid write set: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]record, len(s.entries)+len(ws))
	for k, r := range s.entries {
		next[k] = r
	}
	for _, op := range ws {
		next[op.Key.String()] = record{op.Key, op.Entry.clone()}
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.entries = next

	metricCommitCount().Add(1)
	metricCommitOps().Add(int64(len(ws)))
	return nil
}

func (s *Store) persist(entries map[string]record) error {
	data, err := encodeDocument(entries)
	if err != nil {
		return fmt.Errorf("%w: encode delta: %w", simfork.ErrPersistence, err)
	}
	if err := s.write(s.path, data); err != nil {
		if errors.Is(err, fileutil.ErrDirSync) {
			// document already replaced
			logger.Warn("delta written but not synced", "path", s.path, "err", err)
			return nil
		}
		logger.Warn("failed to persist delta", "path", s.path, "err", err)
		return fmt.Errorf("%w: write delta: %w", simfork.ErrPersistence, err)
	}
	return nil
}
