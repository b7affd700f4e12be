// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package session_test

import (
	"context"
	"crypto/ecdsa"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfork/simfork/codec"
	"github.com/simfork/simfork/executor"
	"github.com/simfork/simfork/remote"
	"github.com/simfork/simfork/session"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/tx"
)

const now = 1_700_000_000

var (
	ctx = context.Background()
	bob = simfork.MustParseAddress("0xb0b")
)

func options() session.Options {
	return session.Options{
		Remote: remote.Options{
			Timeout:        time.Second,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		},
		Clock: func() time.Time { return time.Unix(now, 0) },
	}
}

func newKey(t *testing.T) (*ecdsa.PrivateKey, simfork.Address) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	return pk, tx.AccountAddress(pk)
}

func transferTx(t *testing.T, pk *ecdsa.PrivateKey, seq uint64, chainID uint8, to simfork.Address, amount uint64) *tx.Transaction {
	f, err := tx.NewEntryFunction("0x1::aptos_account::transfer", nil, [][]byte{tx.MustEncodeArg(to), tx.MustEncodeArg(amount)})
	require.NoError(t, err)
	b := tx.NewBuilder().
		Sender(tx.AccountAddress(pk)).
		SequenceNumber(seq).
		Payload(f).
		Expiration(now + simfork.DefaultExpirationSecs).
		ChainID(chainID)
	return tx.MustSign(b.MustBuild(), pk)
}

func balance(t *testing.T, s *session.Session, addr simfork.Address) uint64 {
	v, found, err := s.ViewResource(ctx, addr, codec.CoinStoreTag)
	require.NoError(t, err)
	if !found {
		return 0
	}
	return v.(*codec.CoinStore).Coin
}

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "s")

	s, err := session.Init(dir, options())
	require.NoError(t, err)
	assert.False(t, s.IsForked())
	assert.Equal(t, simfork.LocalChainID, s.Config().ChainID)
	assert.Equal(t, dir, s.Path())
	require.NoError(t, s.Close())

	_, err = session.Init(dir, options())
	assert.ErrorIs(t, err, simfork.ErrDuplicateSession)

	s, err = session.Load(dir, options())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	// closing twice is fine
	require.NoError(t, s.Close())
}

func TestLoadNotFound(t *testing.T) {
	_, err := session.Load(filepath.Join(t.TempDir(), "missing"), options())
	assert.ErrorIs(t, err, simfork.ErrSessionNotFound)

	dir := t.TempDir()
	_, err = session.Load(dir, options())
	assert.ErrorIs(t, err, simfork.ErrSessionNotFound)
}

func TestLockExclusive(t *testing.T) {
	dir := t.TempDir()
	s, err := session.Init(dir, options())
	require.NoError(t, err)

	_, err = session.Load(dir, options())
	assert.ErrorIs(t, err, session.ErrSessionLocked)

	require.NoError(t, s.Close())
	s, err = session.Load(dir, options())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestCorruptState(t *testing.T) {
	tests := []struct {
		name   string
		damage func(t *testing.T, dir string)
	}{
		{"truncated delta", func(t *testing.T, dir string) {
			p := filepath.Join(dir, "delta.json")
			data, err := os.ReadFile(p)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(p, data[:len(data)/2], 0o600))
		}},
		{"missing delta", func(t *testing.T, dir string) {
			require.NoError(t, os.Remove(filepath.Join(dir, "delta.json")))
		}},
		{"unknown config field", func(t *testing.T, dir string) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"chain_id":4,"extra":1}`), 0o600))
		}},
		{"config without chain id", func(t *testing.T, dir string) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{}`), 0o600))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s, err := session.Init(dir, options())
			require.NoError(t, err)
			_, addr := newKey(t)
			require.NoError(t, s.FundAccount(ctx, addr, 10))
			require.NoError(t, s.Close())

			tt.damage(t, dir)
			_, err = session.Load(dir, options())
			assert.ErrorIs(t, err, simfork.ErrCorruptState)

			// a failed load releases the lock
			_, err = session.Init(dir, options())
			assert.NotErrorIs(t, err, session.ErrSessionLocked)
		})
	}
}

func TestFundAccount(t *testing.T) {
	s, err := session.Init(t.TempDir(), options())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.FundAccount(ctx, bob, 100))
	require.NoError(t, s.FundAccount(ctx, bob, 50))
	assert.Equal(t, uint64(150), balance(t, s, bob))

	err = s.FundAccount(ctx, bob, math.MaxUint64)
	assert.ErrorIs(t, err, session.ErrBalanceOverflow)
	assert.Equal(t, uint64(150), balance(t, s, bob))

	seq, err := s.GetSequenceNumber(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func TestReplayProtection(t *testing.T) {
	opts := options()
	s, err := session.Init(t.TempDir(), opts)
	require.NoError(t, err)
	defer s.Close()

	pk, alice := newKey(t)
	require.NoError(t, s.CreateAndFundAccount(ctx, alice, tx.PublicKey(pk), 1_000_000_000))

	txn := transferTx(t, pk, 0, simfork.LocalChainID, bob, 1000)
	out, err := s.ExecuteTransaction(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, executor.KeepSuccess, out.Status.Kind)
	assert.Equal(t, uint64(1000), balance(t, s, bob))

	out, err = s.ExecuteTransaction(ctx, txn)
	assert.ErrorIs(t, err, simfork.ErrExecutionDiscarded)
	assert.Equal(t, executor.CodeSequenceNumberTooOld, out.Status.Code)
	assert.Equal(t, uint64(1000), balance(t, s, bob))

	seq, err := s.GetSequenceNumber(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}

func TestSignatureRequiredUnlessSimulating(t *testing.T) {
	dir := t.TempDir()
	s, err := session.Init(dir, options())
	require.NoError(t, err)

	pk, alice := newKey(t)
	require.NoError(t, s.CreateAndFundAccount(ctx, alice, tx.PublicKey(pk), 1_000_000_000))
	txn := transferTx(t, pk, 0, simfork.LocalChainID, bob, 1)
	forged := txn.WithSignature(txn.PublicKey(), make([]byte, 65))

	out, err := s.ExecuteTransaction(ctx, forged)
	assert.ErrorIs(t, err, simfork.ErrExecutionDiscarded)
	assert.Equal(t, executor.CodeInvalidSignature, out.Status.Code)
	require.NoError(t, s.Close())

	opts := options()
	opts.Simulate = true
	s, err = session.Load(dir, opts)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.ExecuteTransaction(ctx, forged)
	require.NoError(t, err)
}

func TestKeptFailurePolicy(t *testing.T) {
	unknown := func(t *testing.T, pk *ecdsa.PrivateKey) *tx.Transaction {
		f, err := tx.NewEntryFunction("0x1::missing::call", nil, nil)
		require.NoError(t, err)
		b := tx.NewBuilder().Sender(tx.AccountAddress(pk)).Payload(f).Expiration(now + 60)
		return tx.MustSign(b.MustBuild(), pk)
	}

	for _, policy := range []executor.FailurePolicy{executor.DiscardFailedWrites, executor.ApplyFailedWrites} {
		opts := options()
		opts.FailurePolicy = policy
		s, err := session.Init(t.TempDir(), opts)
		require.NoError(t, err)

		pk, alice := newKey(t)
		require.NoError(t, s.CreateAndFundAccount(ctx, alice, tx.PublicKey(pk), 1_000_000_000))

		out, err := s.ExecuteTransaction(ctx, unknown(t, pk))
		assert.ErrorIs(t, err, simfork.ErrExecutionFailed)
		assert.Equal(t, executor.CodeLinkerError, out.Status.Code)

		seq, err := s.GetSequenceNumber(ctx, alice)
		require.NoError(t, err)
		if policy == executor.ApplyFailedWrites {
			assert.Equal(t, uint64(1), seq)
			assert.Equal(t, 1_000_000_000-out.GasUsed*simfork.DefaultGasUnitPrice, balance(t, s, alice))
		} else {
			assert.Zero(t, seq)
			assert.Equal(t, uint64(1_000_000_000), balance(t, s, alice))
		}
		require.NoError(t, s.Close())
	}
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	s, err := session.Init(dir, options())
	require.NoError(t, err)

	pk, alice := newKey(t)
	require.NoError(t, s.CreateAndFundAccount(ctx, alice, tx.PublicKey(pk), 1_000_000_000))
	require.NoError(t, s.FundAccount(ctx, bob, 7))
	_, err = s.ExecuteTransaction(ctx, transferTx(t, pk, 0, simfork.LocalChainID, bob, 1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = session.Load(dir, options())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.FundAccount(ctx, bob, 1))

	records, err := s.History()
	require.NoError(t, err)
	require.Len(t, records, 5)

	var ops []string
	for i, r := range records {
		assert.Equal(t, uint64(i), r.Seq)
		assert.True(t, time.Unix(now, 0).Equal(r.Time))
		ops = append(ops, r.Op)
	}
	assert.Equal(t, []string{session.OpInit, session.OpCreateAccount, session.OpFund, session.OpExecute, session.OpFund}, ops)

	exec := records[3]
	assert.Equal(t, alice, *exec.Address)
	assert.Equal(t, "0x1::aptos_account::transfer", exec.Function)
	assert.Equal(t, executor.KeepSuccess, exec.Status.Kind)
	assert.NotEmpty(t, exec.TxHash)
}
