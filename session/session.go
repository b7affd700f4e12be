// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package session binds a directory to a forked or local ledger state and runs
// funding, views and transactions against it.
package session

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/simfork/simfork/cache"
	"github.com/simfork/simfork/codec"
	"github.com/simfork/simfork/delta"
	"github.com/simfork/simfork/executor"
	"github.com/simfork/simfork/fileutil"
	"github.com/simfork/simfork/remote"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/state"
	"github.com/simfork/simfork/tx"
	"github.com/simfork/simfork/vm"
)

var logger = log.New("pkg", "session")

const (
	configFile = "config.json"
	deltaFile  = "delta.json"
	historyDir = "history"
	lockFile   = ".lock"
)

var (
	// ErrSessionLocked is returned when another process holds the session.
	ErrSessionLocked = errors.New("session is locked by another process")
	// ErrBalanceOverflow is returned when funding would overflow a balance.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Options configures how a session is opened. The zero value is usable.
type Options struct {
	// Remote controls the node client of forked sessions. APIKey is taken from the config.
	Remote remote.Options
	// MemoSize bounds the remote read memo.
	MemoSize int
	// Simulate skips signature verification of executed transactions.
	Simulate      bool
	FailurePolicy executor.FailurePolicy
	// VM overrides the builtin VM.
	VM executor.VM
	// Clock is used for history timestamps and by the builtin VM.
	Clock func() time.Time
}

func (o *Options) remoteOptions(apiKey string) remote.Options {
	ropts := o.Remote
	if ropts == (remote.Options{}) {
		ropts = remote.DefaultOptions()
	}
	ropts.APIKey = apiKey
	return ropts
}

// Session is an open session directory. Its methods are serialized.
type Session struct {
	path string
	cfg  Config
	opts Options

	mu      sync.Mutex
	lock    *flock.Flock
	delta   *delta.Store
	source  *remote.Source
	view    *state.View
	vm      executor.VM
	history *history
}

// Init creates a local session at path.
func Init(path string, opts Options) (*Session, error) {
	return create(path, &Config{ChainID: simfork.LocalChainID}, opts)
}

// InitWithRemoteState creates a session forked from the node at url, frozen at version.
// The version is confirmed with the node before anything is written.
func InitWithRemoteState(ctx context.Context, path, url string, version uint64, apiKey string, opts Options) (*Session, error) {
	exists, err := fileutil.Exists(filepath.Join(path, configFile))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", simfork.ErrDuplicateSession, path)
	}
	info, err := remote.ConfirmVersion(ctx, remote.NewClient(url, opts.remoteOptions(apiKey)), version)
	if err != nil {
		return nil, err
	}
	return create(path, &Config{
		Remote:  &RemoteConfig{URL: url, Version: version, APIKey: apiKey},
		ChainID: info.ChainID,
	}, opts)
}

func create(path string, cfg *Config, opts Options) (*Session, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create session dir: %w", simfork.ErrPersistence, err)
	}
	lock, err := acquire(path)
	if err != nil {
		return nil, err
	}
	s, err := func() (*Session, error) {
		exists, err := fileutil.Exists(filepath.Join(path, configFile))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", simfork.ErrDuplicateSession, path)
		}
		d, err := delta.Create(filepath.Join(path, deltaFile))
		if err != nil {
			return nil, err
		}
		// the config marks the session as initialized, so it goes last
		if err := writeConfig(filepath.Join(path, configFile), cfg); err != nil {
			return nil, err
		}
		return open(path, cfg, d, lock, opts)
	}()
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	rec := Record{Op: OpInit}
	if cfg.Remote != nil {
		rec.Function = fmt.Sprintf("%s@%d", cfg.Remote.URL, cfg.Remote.Version)
	}
	s.record(rec)
	logger.Info("session initialized", "path", path, "chain", cfg.ChainID, "forked", s.IsForked())
	return s, nil
}

// Load opens the existing session at path.
func Load(path string, opts Options) (*Session, error) {
	exists, err := fileutil.Exists(filepath.Join(path, configFile))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", simfork.ErrSessionNotFound, path)
	}
	lock, err := acquire(path)
	if err != nil {
		return nil, err
	}
	s, err := func() (*Session, error) {
		cfg, err := readConfig(filepath.Join(path, configFile))
		if err != nil {
			return nil, err
		}
		d, err := delta.Open(filepath.Join(path, deltaFile))
		if err != nil {
			return nil, err
		}
		return open(path, cfg, d, lock, opts)
	}()
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	logger.Debug("session loaded", "path", path, "entries", s.delta.Len())
	return s, nil
}

func acquire(path string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(path, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "lock session")
	}
	if !ok {
		return nil, errors.Wrap(ErrSessionLocked, path)
	}
	return lock, nil
}

func open(path string, cfg *Config, d *delta.Store, lock *flock.Flock, opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Session{
		path:  path,
		cfg:   cfg.clone(),
		opts:  opts,
		lock:  lock,
		delta: d,
		vm:    opts.VM,
	}
	if cfg.Remote != nil {
		client := remote.NewClient(cfg.Remote.URL, opts.remoteOptions(cfg.Remote.APIKey))
		source, err := remote.NewSource(client, cfg.Remote.Version, opts.MemoSize)
		if err != nil {
			return nil, err
		}
		s.source = source
		s.view = state.New(d, source)
	} else {
		s.view = state.New(d, nil)
	}
	if s.vm == nil {
		s.vm = vm.New(cfg.ChainID, vm.Options{Clock: opts.Clock})
	}

	h, err := openHistory(filepath.Join(path, historyDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", simfork.ErrCorruptState, err)
	}
	s.history = h
	return s, nil
}

// Close releases the session directory.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock == nil {
		return nil
	}
	err := s.history.close()
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	s.lock = nil
	return err
}

// Path returns the session directory.
func (s *Session) Path() string {
	return s.path
}

// Config returns a copy of the session configuration.
func (s *Session) Config() Config {
	return s.cfg.clone()
}

// IsForked reports whether the session reads through to a remote node.
func (s *Session) IsForked() bool {
	return s.cfg.Remote != nil
}

// RemoteStats returns the remote memo counters, or nil for local sessions.
func (s *Session) RemoteStats() *cache.Stats {
	if s.source == nil {
		return nil
	}
	return s.source.Stats()
}

// FundAccount credits amount coins to addr, creating the coin store when absent.
func (s *Session) FundAccount(ctx context.Context, addr simfork.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage := state.NewStage(s.view)
	if err := fund(ctx, stage, addr, amount); err != nil {
		return err
	}
	if err := s.delta.ApplyWriteSet(stage.WriteSet()); err != nil {
		return err
	}
	s.record(Record{Op: OpFund, Address: &addr, Amount: amount})
	return nil
}

// CreateAndFundAccount creates the account of pubKey at addr when absent and
// funds it. Both happen in one write set.
func (s *Session) CreateAndFundAccount(ctx context.Context, addr simfork.Address, pubKey []byte, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage := state.NewStage(s.view)
	_, found, err := stage.Get(ctx, simfork.ResourceKey(addr, codec.AccountTag))
	if err != nil {
		return err
	}
	if !found {
		authKey := tx.AuthenticationKey(pubKey)
		if err := codec.Store(ctx, stage, addr, codec.AccountTag, &codec.Account{AuthenticationKey: authKey.Bytes()}); err != nil {
			return err
		}
	}
	if err := fund(ctx, stage, addr, amount); err != nil {
		return err
	}
	if err := s.delta.ApplyWriteSet(stage.WriteSet()); err != nil {
		return err
	}
	s.record(Record{Op: OpCreateAccount, Address: &addr, Amount: amount})
	return nil
}

func fund(ctx context.Context, stage *state.Stage, addr simfork.Address, amount uint64) error {
	store, found, err := codec.Load[codec.CoinStore](ctx, stage, addr, codec.CoinStoreTag)
	if err != nil {
		return err
	}
	if !found {
		store = &codec.CoinStore{}
	}
	if store.Coin > math.MaxUint64-amount {
		return fmt.Errorf("%w: fund %v with %d", ErrBalanceOverflow, addr, amount)
	}
	store.Coin += amount
	return codec.Store(ctx, stage, addr, codec.CoinStoreTag, store)
}

// ViewResource reads and decodes a resource through the combined view.
func (s *Session) ViewResource(ctx context.Context, addr simfork.Address, tag simfork.StructTag) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codec.ViewResource(ctx, s.view, addr, tag)
}

// ViewResourceGroup reads every member of a resource group. With derived set,
// the group is read from the object address derived from addr and *derived.
func (s *Session) ViewResourceGroup(ctx context.Context, addr simfork.Address, group simfork.StructTag, derived *simfork.Address) (map[string]any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if derived != nil {
		addr = simfork.DeriveObjectAddress(addr, *derived)
	}
	return codec.ViewResourceGroup(ctx, s.view, addr, group)
}

// GetSequenceNumber returns the sequence number of addr, zero when the account is absent.
func (s *Session) GetSequenceNumber(ctx context.Context, addr simfork.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, found, err := codec.Load[codec.Account](ctx, s.view, addr, codec.AccountTag)
	if err != nil || !found {
		return 0, err
	}
	return acc.SequenceNumber, nil
}

// ExecuteTransaction runs txn and commits its kept effects.
// Non successful outcomes return the output with an *executor.StatusError.
func (s *Session) ExecuteTransaction(ctx context.Context, txn *tx.Transaction) (*executor.Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exec := executor.New(s.vm, executor.Options{
		Simulate:      s.opts.Simulate,
		FailurePolicy: s.opts.FailurePolicy,
		Prefetch:      s.prefetch,
	})
	out, err := exec.Execute(ctx, s.view, s.delta, txn)
	if out != nil {
		sender := txn.Sender()
		payload := txn.Payload()
		status := out.Status
		s.record(Record{
			Op:       OpExecute,
			Address:  &sender,
			TxHash:   txn.Hash().String(),
			Function: payload.ID(),
			Status:   &status,
			GasUsed:  out.GasUsed,
		})
	}
	return out, err
}

// prefetch warms the remote memo for keys the delta does not cover.
func (s *Session) prefetch(ctx context.Context, keys []simfork.StateKey) {
	if s.source == nil {
		return
	}
	var missing []simfork.StateKey
	for _, key := range keys {
		if _, ok := s.delta.Get(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := s.source.Prefetch(ctx, missing); err != nil {
		logger.Debug("prefetch failed", "keys", len(missing), "err", err)
	}
}

// History returns the recorded operations in order.
func (s *Session) History() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.records()
}

// record appends to the history. The state is already committed, so failures are only logged.
func (s *Session) record(r Record) {
	r.Time = s.opts.Clock().UTC()
	if err := s.history.append(r); err != nil {
		logger.Warn("failed to record operation", "op", r.Op, "err", err)
	}
}
