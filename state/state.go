// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state resolves reads against the session delta first and the remote baseline second.
package state

import (
	"context"
	"fmt"

	"github.com/simfork/simfork/delta"
	"github.com/simfork/simfork/simfork"
)

// Reader reads state values. It is the only read path handed to the executor.
type Reader interface {
	Get(ctx context.Context, key simfork.StateKey) ([]byte, bool, error)
}

// Source is the read-only fallback behind the delta.
type Source interface {
	Fetch(ctx context.Context, key simfork.StateKey) ([]byte, bool, error)
}

// Error is the error caused by state access failure.
type Error struct {
	key   simfork.StateKey
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: read %v: %v", e.key, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// View is the combined view of a session.
type View struct {
	delta  *delta.Store
	source Source
}

var _ Reader = (*View)(nil)

// New creates the view. source is nil for sessions that are not forked.
func New(d *delta.Store, source Source) *View {
	return &View{d, source}
}

// Get resolves key. A delta entry always wins: a tombstone reads as absent without
// consulting the source.
func (v *View) Get(ctx context.Context, key simfork.StateKey) ([]byte, bool, error) {
	if entry, ok := v.delta.Get(key); ok {
		if entry.Deleted {
			return nil, false, nil
		}
		return entry.Value, true, nil
	}
	if v.source == nil {
		return nil, false, nil
	}
	value, found, err := v.source.Fetch(ctx, key)
	if err != nil {
		return nil, false, &Error{key, err}
	}
	return value, found, nil
}
