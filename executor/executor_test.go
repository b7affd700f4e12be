// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfork/simfork/codec"
	"github.com/simfork/simfork/delta"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/state"
	"github.com/simfork/simfork/tx"
)

type vmFunc func(ctx context.Context, view state.Reader, txn *tx.Transaction) (*Output, error)

func (f vmFunc) Execute(ctx context.Context, view state.Reader, txn *tx.Transaction) (*Output, error) {
	return f(ctx, view, txn)
}

var markerKey = simfork.ResourceKey(simfork.MustParseAddress("0xfeed"), codec.CoinStoreTag)

func fixedVM(status Status) VM {
	return vmFunc(func(context.Context, state.Reader, *tx.Transaction) (*Output, error) {
		var ws delta.WriteSet
		ws.Put(markerKey, []byte{1})
		return &Output{Status: status, WriteSet: ws, GasUsed: 7}, nil
	})
}

func setup(t *testing.T) (*delta.Store, *state.View, *tx.Transaction) {
	d, err := delta.Create(filepath.Join(t.TempDir(), "delta.json"))
	require.NoError(t, err)

	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	f, err := tx.NewEntryFunction("0x1::aptos_account::create_account", nil, [][]byte{tx.MustEncodeArg(simfork.CoreAddress)})
	require.NoError(t, err)
	txn := tx.MustSign(tx.NewBuilder().Sender(tx.AccountAddress(pk)).Payload(f).MustBuild(), pk)
	return d, state.New(d, nil), txn
}

func TestExecuteSuccess(t *testing.T) {
	d, view, txn := setup(t)

	out, err := New(fixedVM(Success()), Options{}).Execute(context.Background(), view, d, txn)
	require.NoError(t, err)
	assert.Equal(t, KeepSuccess, out.Status.Kind)
	assert.Equal(t, uint64(7), out.GasUsed)

	e, ok := d.Get(markerKey)
	assert.True(t, ok)
	assert.Equal(t, []byte{1}, e.Value)
}

func TestExecuteSignature(t *testing.T) {
	d, view, txn := setup(t)
	unsigned := txn.WithSignature(txn.PublicKey(), make([]byte, 65))

	out, err := New(fixedVM(Success()), Options{}).Execute(context.Background(), view, d, unsigned)
	assert.ErrorIs(t, err, simfork.ErrExecutionDiscarded)
	assert.Equal(t, CodeInvalidSignature, out.Status.Code)
	assert.Zero(t, d.Len())

	// simulation bypasses verification
	_, err = New(fixedVM(Success()), Options{Simulate: true}).Execute(context.Background(), view, d, unsigned)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}

func TestExecuteKeptFailure(t *testing.T) {
	d, view, txn := setup(t)
	failure := Failure(CodeAborted, "insufficient balance")

	out, err := New(fixedVM(failure), Options{}).Execute(context.Background(), view, d, txn)
	assert.ErrorIs(t, err, simfork.ErrExecutionFailed)
	assert.NotErrorIs(t, err, simfork.ErrExecutionDiscarded)
	require.NotNil(t, out)
	assert.Equal(t, CodeAborted, out.Status.Code)
	assert.Zero(t, d.Len())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, failure, se.Status)

	_, err = New(fixedVM(failure), Options{FailurePolicy: ApplyFailedWrites}).Execute(context.Background(), view, d, txn)
	assert.ErrorIs(t, err, simfork.ErrExecutionFailed)
	assert.Equal(t, 1, d.Len())
}

func TestExecuteDiscarded(t *testing.T) {
	d, view, txn := setup(t)

	out, err := New(fixedVM(Discarded(CodeSequenceNumberTooOld, "")), Options{FailurePolicy: ApplyFailedWrites}).
		Execute(context.Background(), view, d, txn)
	assert.ErrorIs(t, err, simfork.ErrExecutionDiscarded)
	assert.Equal(t, CodeSequenceNumberTooOld, out.Status.Code)
	assert.Zero(t, d.Len())
}

func TestExecuteVMError(t *testing.T) {
	d, view, txn := setup(t)
	boom := errors.New("boom")
	vm := vmFunc(func(context.Context, state.Reader, *tx.Transaction) (*Output, error) { return nil, boom })

	_, err := New(vm, Options{}).Execute(context.Background(), view, d, txn)
	assert.ErrorIs(t, err, boom)
}

func TestExecuteRejectsDecreasingSequence(t *testing.T) {
	d, view, txn := setup(t)
	key := simfork.ResourceKey(txn.Sender(), codec.AccountTag)
	before, _ := codec.Encode(&codec.Account{SequenceNumber: 5})
	require.NoError(t, d.Put(key, before))

	vm := vmFunc(func(context.Context, state.Reader, *tx.Transaction) (*Output, error) {
		after, _ := codec.Encode(&codec.Account{SequenceNumber: 4})
		var ws delta.WriteSet
		ws.Put(key, after)
		return &Output{Status: Success(), WriteSet: ws}, nil
	})
	out, err := New(vm, Options{}).Execute(context.Background(), view, d, txn)
	assert.ErrorIs(t, err, simfork.ErrExecutionDiscarded)
	assert.Equal(t, CodeSequenceNumberDecreased, out.Status.Code)

	e, _ := d.Get(key)
	assert.Equal(t, before, e.Value)
}

func TestExecutePrefetch(t *testing.T) {
	d, view, txn := setup(t)
	var got []simfork.StateKey
	opts := Options{Prefetch: func(_ context.Context, keys []simfork.StateKey) { got = keys }}

	_, err := New(fixedVM(Success()), opts).Execute(context.Background(), view, d, txn)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, simfork.ResourceKey(txn.Sender(), codec.AccountTag), got[0])
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Discarded(CodeBadChainID, "want %d", 4)}
	assert.Equal(t, "transaction discarded: BAD_CHAIN_ID: want 4", err.Error())
	assert.Equal(t, "success: EXECUTED", Success().String())
}

func TestExecuteNilOutput(t *testing.T) {
	d, view, txn := setup(t)
	vm := vmFunc(func(context.Context, state.Reader, *tx.Transaction) (*Output, error) {
		return nil, nil
	})
	out, err := New(vm, Options{Simulate: true}).Execute(context.Background(), view, d, txn)
	assert.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 0, d.Len())
}
