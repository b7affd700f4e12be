// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package executor runs transactions through a VM against a state view and commits their effects.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/simfork/simfork/codec"
	"github.com/simfork/simfork/delta"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/state"
	"github.com/simfork/simfork/tx"
)

var logger = log.New("pkg", "executor")

// Output is what the VM produced for a transaction.
type Output struct {
	Status   Status         `json:"status"`
	WriteSet delta.WriteSet `json:"-"`
	GasUsed  uint64         `json:"gas_used,string"`
}

// VM executes one transaction against a read-only view.
// It must not mutate state: all effects are returned in the write set.
type VM interface {
	Execute(ctx context.Context, view state.Reader, txn *tx.Transaction) (*Output, error)
}

// Committer makes a write set durable, e.g. a *delta.Store.
type Committer interface {
	ApplyWriteSet(ws delta.WriteSet) error
}

// FailurePolicy decides what happens with the write set of a kept failure.
type FailurePolicy uint8

const (
	// DiscardFailedWrites drops every effect of a failed transaction.
	DiscardFailedWrites FailurePolicy = iota
	// ApplyFailedWrites applies the failure write set (gas charge and sequence bump), as a chain would.
	ApplyFailedWrites
)

// Options configures the executor.
type Options struct {
	// Simulate skips signature verification.
	Simulate      bool
	FailurePolicy FailurePolicy
	// Prefetch, when set, is given the keys a transaction is known to read before it runs.
	Prefetch func(ctx context.Context, keys []simfork.StateKey)
}

// Executor adapts a VM to the session state.
type Executor struct {
	vm   VM
	opts Options
}

// New creates an executor.
func New(vm VM, opts Options) *Executor {
	return &Executor{vm, opts}
}

// Execute runs txn against view and commits a kept write set to c.
//
// A kept failure returns the output together with an error matching
// simfork.ErrExecutionFailed. A discarded transaction returns its output and an
// error matching simfork.ErrExecutionDiscarded; nothing is committed.
func (e *Executor) Execute(ctx context.Context, view state.Reader, c Committer, txn *tx.Transaction) (*Output, error) {
	if !e.opts.Simulate {
		if err := tx.Verify(txn); err != nil {
			return e.finish(&Output{Status: Discarded(CodeInvalidSignature, "%v", err)})
		}
	}

	if e.opts.Prefetch != nil {
		e.opts.Prefetch(ctx, prefetchKeys(txn))
	}

	out, err := e.vm.Execute(ctx, view, txn)
	if err != nil {
		return nil, fmt.Errorf("execute transaction %v: %w", txn.Hash(), err)
	}
	if out == nil {
		return nil, fmt.Errorf("execute transaction %v: vm returned no output", txn.Hash())
	}

	switch out.Status.Kind {
	case KeepSuccess:
		if err := checkSequenceNumber(ctx, view, txn.Sender(), out.WriteSet); err != nil {
			var se *StatusError
			if !errors.As(err, &se) {
				return nil, err
			}
			return e.finish(&Output{Status: se.Status, GasUsed: out.GasUsed})
		}
		if err := c.ApplyWriteSet(out.WriteSet); err != nil {
			return nil, err
		}
	case KeepFailure:
		if e.opts.FailurePolicy == ApplyFailedWrites {
			if err := c.ApplyWriteSet(out.WriteSet); err != nil {
				return nil, err
			}
		}
	}
	return e.finish(out)
}

func (e *Executor) finish(out *Output) (*Output, error) {
	metricOutcomeCount().AddWithLabel(1, map[string]string{"status": out.Status.Kind.String()})
	metricGasUsed().Observe(int64(out.GasUsed))

	if out.Status.Kind == KeepSuccess {
		logger.Debug("transaction executed", "gas", out.GasUsed, "writes", len(out.WriteSet))
		return out, nil
	}
	logger.Debug("transaction not successful", "status", out.Status)
	return out, &StatusError{out.Status}
}

func prefetchKeys(txn *tx.Transaction) []simfork.StateKey {
	return []simfork.StateKey{
		simfork.ResourceKey(txn.Sender(), codec.AccountTag),
		simfork.ResourceKey(txn.Sender(), codec.CoinStoreTag),
		simfork.ResourceKey(simfork.CoreAddress, codec.TimestampTag),
	}
}

// checkSequenceNumber rejects write sets that lower the sender's sequence number.
func checkSequenceNumber(ctx context.Context, view state.Reader, sender simfork.Address, ws delta.WriteSet) error {
	entry, ok := ws.Lookup(simfork.ResourceKey(sender, codec.AccountTag))
	if !ok {
		return nil
	}
	before, found, err := codec.Load[codec.Account](ctx, view, sender, codec.AccountTag)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if entry.Deleted {
		return &StatusError{Discarded(CodeSequenceNumberDecreased, "write set deletes the sender account")}
	}
	after, err := codec.DecodeAs[codec.Account](entry.Value)
	if err != nil {
		return err
	}
	if after.SequenceNumber < before.SequenceNumber {
		return &StatusError{Discarded(CodeSequenceNumberDecreased,
			"sequence number of %v would go from %d to %d", sender, before.SequenceNumber, after.SequenceNumber)}
	}
	return nil
}
