// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vm is a small builtin VM implementing the framework functions needed
// to create accounts and move the native coin. It is not a general purpose VM.
package vm

import (
	"bytes"
	"context"
	"math"
	"time"

	"github.com/simfork/simfork/codec"
	"github.com/simfork/simfork/executor"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/state"
	"github.com/simfork/simfork/tx"
)

// Gas schedule.
const (
	BaseGas     uint64 = 5
	WriteOpGas  uint64 = 3
	microPerSec uint64 = 1_000_000
)

var _ executor.VM = (*VM)(nil)

// Options configures the VM.
type Options struct {
	// Clock is used for expiration checks when the chain has no timestamp resource.
	Clock func() time.Time
}

// VM executes entry functions of the framework.
type VM struct {
	chainID uint8
	clock   func() time.Time
}

// New creates a VM for the chain.
func New(chainID uint8, opts Options) *VM {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &VM{chainID, clock}
}

// abort is raised by entry functions to fail the transaction while keeping it.
type abort struct {
	status executor.Status
}

// Execute implements executor.VM.
func (vm *VM) Execute(ctx context.Context, view state.Reader, txn *tx.Transaction) (*executor.Output, error) {
	sender := txn.Sender()
	status, account, err := vm.prologue(ctx, view, txn)
	if err != nil {
		return nil, err
	}
	if status != nil {
		return &executor.Output{Status: *status}, nil
	}

	payload := txn.Payload()
	fn, found := functions[payload.ID()]
	var args []any
	if found {
		var s *executor.Status
		if args, s = fn.decode(&payload); s != nil {
			return &executor.Output{Status: *s}, nil
		}
	}

	stage := state.NewStage(view)
	cp := stage.Checkpoint()
	result := executor.Success()
	if !found {
		result = executor.Failure(executor.CodeLinkerError, "function %s not found", payload.ID())
	} else {
		ab, err := fn.run(ctx, &call{stage: stage, txn: txn, typeArgs: payload.TypeArgs, args: args})
		if err != nil {
			return nil, err
		}
		if ab != nil {
			result = ab.status
		}
	}

	gasUsed := BaseGas + WriteOpGas*uint64(len(stage.WriteSet()))
	if result.Kind == executor.KeepSuccess && gasUsed > txn.MaxGasAmount() {
		result = executor.Failure(executor.CodeOutOfGas, "used %d of %d gas units", gasUsed, txn.MaxGasAmount())
		gasUsed = txn.MaxGasAmount()
	}
	if result.Kind != executor.KeepSuccess {
		stage.RevertTo(cp)
		if gasUsed > txn.MaxGasAmount() {
			gasUsed = txn.MaxGasAmount()
		}
	}

	if err := vm.epilogue(ctx, stage, sender, account, gasUsed*txn.GasUnitPrice()); err != nil {
		return nil, err
	}
	return &executor.Output{
		Status:   result,
		WriteSet: stage.WriteSet(),
		GasUsed:  gasUsed,
	}, nil
}

// prologue validates the transaction against the sender account. A non nil
// status discards the transaction.
func (vm *VM) prologue(ctx context.Context, view state.Reader, txn *tx.Transaction) (*executor.Status, *codec.Account, error) {
	discard := func(code, format string, args ...any) (*executor.Status, *codec.Account, error) {
		s := executor.Discarded(code, format, args...)
		return &s, nil, nil
	}

	if txn.MaxGasAmount() < simfork.MinTransactionGasUnits {
		return discard(executor.CodeMaxGasBelowMin, "max gas %d", txn.MaxGasAmount())
	}
	if txn.MaxGasAmount() > simfork.MaxTransactionGasUnits {
		return discard(executor.CodeMaxGasAboveBound, "max gas %d", txn.MaxGasAmount())
	}
	if txn.ChainID() != vm.chainID {
		return discard(executor.CodeBadChainID, "chain id %d, want %d", txn.ChainID(), vm.chainID)
	}

	now, err := vm.now(ctx, view)
	if err != nil {
		return nil, nil, err
	}
	if now >= txn.ExpirationTimestampSecs() {
		return discard(executor.CodeTransactionExpired, "expired at %d, now %d", txn.ExpirationTimestampSecs(), now)
	}

	account, found, err := codec.Load[codec.Account](ctx, view, txn.Sender(), codec.AccountTag)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return discard(executor.CodeSendingAccountDoesNotExist, "%v", txn.Sender())
	}
	authKey := tx.AuthenticationKey(txn.PublicKey())
	if !bytes.Equal(authKey[:], account.AuthenticationKey) {
		return discard(executor.CodeInvalidAuthKey, "%v", txn.Sender())
	}
	if txn.SequenceNumber() < account.SequenceNumber {
		return discard(executor.CodeSequenceNumberTooOld, "got %d, account at %d", txn.SequenceNumber(), account.SequenceNumber)
	}
	if txn.SequenceNumber() > account.SequenceNumber {
		return discard(executor.CodeSequenceNumberTooNew, "got %d, account at %d", txn.SequenceNumber(), account.SequenceNumber)
	}

	store, found, err := codec.Load[codec.CoinStore](ctx, view, txn.Sender(), codec.CoinStoreTag)
	if err != nil {
		return nil, nil, err
	}
	maxFee, ok := mul(txn.MaxGasAmount(), txn.GasUnitPrice())
	if !ok || !found || store.Coin < maxFee {
		return discard(executor.CodeInsufficientBalanceForFee, "max fee %d", maxFee)
	}
	return nil, account, nil
}

// epilogue charges the fee and bumps the sequence number.
func (vm *VM) epilogue(ctx context.Context, stage *state.Stage, sender simfork.Address, account *codec.Account, fee uint64) error {
	store, _, err := codec.Load[codec.CoinStore](ctx, stage, sender, codec.CoinStoreTag)
	if err != nil {
		return err
	}
	// prologue and transfer guarantee the fee is affordable
	store.Coin -= fee
	if err := codec.Store(ctx, stage, sender, codec.CoinStoreTag, store); err != nil {
		return err
	}
	next := *account
	next.SequenceNumber++
	return codec.Store(ctx, stage, sender, codec.AccountTag, &next)
}

func (vm *VM) now(ctx context.Context, view state.Reader) (uint64, error) {
	ts, found, err := codec.Load[codec.CurrentTimeMicroseconds](ctx, view, simfork.CoreAddress, codec.TimestampTag)
	if err != nil {
		return 0, err
	}
	if found {
		return ts.Microseconds / microPerSec, nil
	}
	return uint64(vm.clock().Unix()), nil
}

func mul(a, b uint64) (uint64, bool) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, false
	}
	return a * b, true
}
