// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"context"
	"math"
	"sort"

	"github.com/simfork/simfork/codec"
	"github.com/simfork/simfork/executor"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/state"
	"github.com/simfork/simfork/tx"
)

// argument types understood by the builtin functions
const (
	argAddress = "address"
	argU64     = "u64"
)

// call is the context of a running entry function.
type call struct {
	stage    *state.Stage
	txn      *tx.Transaction
	typeArgs []string
	args     []any
}

func (c *call) maxFee() uint64 {
	fee, _ := mul(c.txn.MaxGasAmount(), c.txn.GasUnitPrice())
	return fee
}

type function struct {
	typeArgs int
	params   []string
	run      func(ctx context.Context, c *call) (*abort, error)
}

// decode checks the arity of the payload and decodes its arguments.
func (f *function) decode(p *tx.EntryFunction) ([]any, *executor.Status) {
	if len(p.TypeArgs) != f.typeArgs {
		s := executor.Discarded(executor.CodeNumberOfTypeArgumentsMismatch, "%s takes %d type arguments, got %d", p.ID(), f.typeArgs, len(p.TypeArgs))
		return nil, &s
	}
	if len(p.Args) != len(f.params) {
		s := executor.Discarded(executor.CodeFailedToDeserializeArgument, "%s takes %d arguments, got %d", p.ID(), len(f.params), len(p.Args))
		return nil, &s
	}
	args := make([]any, len(f.params))
	for i, typ := range f.params {
		var err error
		switch typ {
		case argAddress:
			var addr simfork.Address
			err = tx.DecodeArg(p.Args[i], &addr)
			args[i] = addr
		case argU64:
			var n uint64
			err = tx.DecodeArg(p.Args[i], &n)
			args[i] = n
		}
		if err != nil {
			s := executor.Discarded(executor.CodeFailedToDeserializeArgument, "argument %d of %s: %v", i, p.ID(), err)
			return nil, &s
		}
	}
	return args, nil
}

var functions = map[string]*function{
	"0x1::aptos_account::create_account": {
		params: []string{argAddress},
		run: func(ctx context.Context, c *call) (*abort, error) {
			return createAccount(ctx, c.stage, c.args[0].(simfork.Address))
		},
	},
	"0x1::aptos_account::transfer": {
		params: []string{argAddress, argU64},
		run: func(ctx context.Context, c *call) (*abort, error) {
			return transfer(ctx, c, true)
		},
	},
	"0x1::aptos_account::transfer_coins": {
		typeArgs: 1,
		params:   []string{argAddress, argU64},
		run: func(ctx context.Context, c *call) (*abort, error) {
			if ab := requireNativeCoin(c); ab != nil {
				return ab, nil
			}
			return transfer(ctx, c, true)
		},
	},
	"0x1::coin::transfer": {
		typeArgs: 1,
		params:   []string{argAddress, argU64},
		run: func(ctx context.Context, c *call) (*abort, error) {
			if ab := requireNativeCoin(c); ab != nil {
				return ab, nil
			}
			return transfer(ctx, c, false)
		},
	},
}

func aborted(format string, args ...any) *abort {
	return &abort{executor.Failure(executor.CodeAborted, format, args...)}
}

func requireNativeCoin(c *call) *abort {
	if c.typeArgs[0] != codec.AptosCoinTag.String() {
		return aborted("coin type %s is not supported", c.typeArgs[0])
	}
	return nil
}

func createAccount(ctx context.Context, stage *state.Stage, addr simfork.Address) (*abort, error) {
	if addr.IsSpecial() {
		return aborted("cannot create account at reserved address %v", addr), nil
	}
	_, found, err := stage.Get(ctx, simfork.ResourceKey(addr, codec.AccountTag))
	if err != nil {
		return nil, err
	}
	if found {
		return aborted("account %v already exists", addr), nil
	}
	if err := codec.Store(ctx, stage, addr, codec.AccountTag, &codec.Account{AuthenticationKey: addr.Bytes()}); err != nil {
		return nil, err
	}
	return nil, registerCoinStore(ctx, stage, addr)
}

func registerCoinStore(ctx context.Context, stage *state.Stage, addr simfork.Address) error {
	_, found, err := stage.Get(ctx, simfork.ResourceKey(addr, codec.CoinStoreTag))
	if err != nil || found {
		return err
	}
	return codec.Store(ctx, stage, addr, codec.CoinStoreTag, &codec.CoinStore{})
}

// transfer moves coins from the sender. With create set, a missing recipient
// account is created on the fly.
func transfer(ctx context.Context, c *call, create bool) (*abort, error) {
	var (
		from   = c.txn.Sender()
		to     = c.args[0].(simfork.Address)
		amount = c.args[1].(uint64)
	)

	src, found, err := codec.Load[codec.CoinStore](ctx, c.stage, from, codec.CoinStoreTag)
	if err != nil {
		return nil, err
	}
	if !found {
		return aborted("%v has no coin store", from), nil
	}
	if src.Frozen {
		return aborted("coin store of %v is frozen", from), nil
	}
	// the transfer must leave enough to pay the maximum fee
	if src.Coin < amount || src.Coin-amount < c.maxFee() {
		return aborted("insufficient balance: have %d, need %d plus fee", src.Coin, amount), nil
	}
	src.Coin -= amount
	if err := codec.Store(ctx, c.stage, from, codec.CoinStoreTag, src); err != nil {
		return nil, err
	}

	if create {
		_, exists, err := c.stage.Get(ctx, simfork.ResourceKey(to, codec.AccountTag))
		if err != nil {
			return nil, err
		}
		if !exists {
			if ab, err := createAccount(ctx, c.stage, to); ab != nil || err != nil {
				return ab, err
			}
		} else if err := registerCoinStore(ctx, c.stage, to); err != nil {
			return nil, err
		}
	}

	dst, found, err := codec.Load[codec.CoinStore](ctx, c.stage, to, codec.CoinStoreTag)
	if err != nil {
		return nil, err
	}
	if !found {
		return aborted("%v has no coin store", to), nil
	}
	if dst.Frozen {
		return aborted("coin store of %v is frozen", to), nil
	}
	if dst.Coin > math.MaxUint64-amount {
		return aborted("balance of %v overflows", to), nil
	}
	dst.Coin += amount
	if err := codec.Store(ctx, c.stage, to, codec.CoinStoreTag, dst); err != nil {
		return nil, err
	}
	return nil, nil
}

// Functions returns the ids of the builtin entry functions, sorted.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
