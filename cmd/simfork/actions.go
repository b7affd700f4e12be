// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/simfork/simfork/executor"
	"github.com/simfork/simfork/profile"
	"github.com/simfork/simfork/remote"
	"github.com/simfork/simfork/session"
	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/tx"
)

func initAction(ctx *cli.Context) error {
	dir, err := requireString(ctx, sessionFlag)
	if err != nil {
		return err
	}
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	var s *session.Session
	if network := ctx.String(networkFlag.Name); network == "" {
		if s, err = session.Init(dir, session.Options{}); err != nil {
			return err
		}
	} else {
		url, ok := simfork.NetworkURL(network)
		if !ok {
			return fmt.Errorf("unknown network %q", network)
		}
		apiKey := ctx.String(apiKeyFlag.Name)
		ledgerVersion := ctx.Uint64(ledgerVersionFlag.Name)
		if !ctx.IsSet(ledgerVersionFlag.Name) {
			opts := remote.DefaultOptions()
			opts.APIKey = apiKey
			info, err := remote.NewClient(url, opts).LedgerInfo(exitCtx)
			if err != nil {
				return err
			}
			ledgerVersion = info.LedgerVersion
		}
		if s, err = session.InitWithRemoteState(exitCtx, dir, url, ledgerVersion, apiKey, session.Options{}); err != nil {
			return err
		}
	}
	defer s.Close()
	return printJSON(os.Stdout, s.Config())
}

func fundAction(ctx *cli.Context) error {
	s, err := loadSession(ctx, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	addr, err := parseAddressFlag(ctx, accountFlag)
	if err != nil {
		return err
	}
	amount := ctx.Uint64(amountFlag.Name)
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	pubKey, err := fundingKey(ctx, s.Path())
	if err != nil {
		return err
	}
	if pubKey == nil {
		err = s.FundAccount(exitCtx, addr, amount)
	} else {
		err = s.CreateAndFundAccount(exitCtx, addr, pubKey, amount)
	}
	if err != nil {
		return err
	}
	log.Info("account funded", "account", addr, "amount", amount)
	return nil
}

// fundingKey returns the public key given on the command line or found in the profile.
// It returns nil when neither carries a key.
func fundingKey(ctx *cli.Context, dir string) ([]byte, error) {
	if v := ctx.String(publicKeyFlag.Name); v != "" {
		v = strings.TrimPrefix(v, "secp256k1-pub-")
		pub, err := hexutil.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", publicKeyFlag.Name, err)
		}
		if _, err := crypto.DecompressPubkey(pub); err != nil {
			return nil, fmt.Errorf("--%s: %w", publicKeyFlag.Name, err)
		}
		return pub, nil
	}
	p, err := profile.Load(dir, ctx.String(profileFlag.Name))
	if err != nil || p == nil {
		return nil, err
	}
	if p.PublicKey == "" && p.PrivateKey == "" {
		return nil, nil
	}
	return p.PublicKeyBytes()
}

type summary struct {
	Hash           string          `json:"transaction_hash"`
	Sender         simfork.Address `json:"sender"`
	SequenceNumber uint64          `json:"sequence_number,string"`
	Status         executor.Status `json:"vm_status"`
	Success        *bool           `json:"success"`
	GasUsed        uint64          `json:"gas_used,string"`
	GasUnitPrice   uint64          `json:"gas_unit_price,string"`
}

func runAction(ctx *cli.Context) error {
	opts := session.Options{Simulate: ctx.Bool(simulateFlag.Name)}
	if ctx.Bool(applyFailedFlag.Name) {
		opts.FailurePolicy = executor.ApplyFailedWrites
	}
	s, err := loadSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := requireString(ctx, functionFlag)
	if err != nil {
		return err
	}
	var args [][]byte
	for _, a := range ctx.StringSlice(argsFlag.Name) {
		arg, err := tx.ParseArg(a)
		if err != nil {
			return err
		}
		args = append(args, arg)
	}
	payload, err := tx.NewEntryFunction(id, ctx.StringSlice(typeArgsFlag.Name), args)
	if err != nil {
		return err
	}

	key, sender, err := senderKey(ctx, s.Path())
	if err != nil {
		return err
	}
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	seq, err := s.GetSequenceNumber(exitCtx, sender)
	if err != nil {
		return err
	}
	txn, err := tx.NewBuilder().
		Sender(sender).
		SequenceNumber(seq).
		Payload(payload).
		MaxGasAmount(ctx.Uint64(maxGasFlag.Name)).
		GasUnitPrice(ctx.Uint64(gasUnitPriceFlag.Name)).
		Expiration(uint64(time.Now().Unix()) + simfork.DefaultExpirationSecs).
		ChainID(s.Config().ChainID).
		Build()
	if err != nil {
		return err
	}
	if txn, err = tx.Sign(txn, key); err != nil {
		return err
	}

	out, err := s.ExecuteTransaction(exitCtx, txn)
	var se *executor.StatusError
	if err != nil && !errors.As(err, &se) {
		return err
	}

	res := summary{
		Hash:           txn.Hash().String(),
		Sender:         sender,
		SequenceNumber: seq,
		Status:         out.Status,
		GasUsed:        out.GasUsed,
		GasUnitPrice:   txn.GasUnitPrice(),
	}
	// discarded transactions have no success flag
	if out.Status.Kind != executor.Discard {
		ok := out.Status.Kind == executor.KeepSuccess
		res.Success = &ok
	}
	return printJSON(os.Stdout, &res)
}

// senderKey resolves the signing key and sender. Without a profile a throwaway
// key signs, which only passes for accounts created from it.
func senderKey(ctx *cli.Context, dir string) (*ecdsa.PrivateKey, simfork.Address, error) {
	var (
		key    *ecdsa.PrivateKey
		sender simfork.Address
	)
	p, err := profile.Load(dir, ctx.String(profileFlag.Name))
	if err != nil {
		return nil, sender, err
	}
	if p != nil {
		if key, err = p.Key(); err != nil {
			return nil, sender, err
		}
		if sender, err = p.Address(); err != nil {
			return nil, sender, err
		}
	} else {
		if key, err = crypto.GenerateKey(); err != nil {
			return nil, sender, err
		}
		sender = tx.AccountAddress(key)
		log.Warn("no profile found, signing with a generated key", "sender", sender)
	}

	if ctx.IsSet(senderAccountFlag.Name) {
		if sender, err = parseAddressFlag(ctx, senderAccountFlag); err != nil {
			return nil, sender, err
		}
	}
	return key, sender, nil
}

func viewResourceAction(ctx *cli.Context) error {
	s, err := loadSession(ctx, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	addr, err := parseAddressFlag(ctx, accountFlag)
	if err != nil {
		return err
	}
	tagStr, err := requireString(ctx, resourceFlag)
	if err != nil {
		return err
	}
	tag, err := simfork.ParseStructTag(tagStr)
	if err != nil {
		return err
	}
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	v, found, err := s.ViewResource(exitCtx, addr, tag)
	if err != nil {
		return err
	}
	if !found {
		return printJSON(os.Stdout, nil)
	}
	return printJSON(os.Stdout, v)
}

func viewResourceGroupAction(ctx *cli.Context) error {
	s, err := loadSession(ctx, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	addr, err := parseAddressFlag(ctx, accountFlag)
	if err != nil {
		return err
	}
	tagStr, err := requireString(ctx, resourceGroupFlag)
	if err != nil {
		return err
	}
	group, err := simfork.ParseStructTag(tagStr)
	if err != nil {
		return err
	}
	var derived *simfork.Address
	if ctx.IsSet(derivedObjectAddressFlag.Name) {
		d, err := parseAddressFlag(ctx, derivedObjectAddressFlag)
		if err != nil {
			return err
		}
		derived = &d
	}
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	members, found, err := s.ViewResourceGroup(exitCtx, addr, group, derived)
	if err != nil {
		return err
	}
	if !found {
		return printJSON(os.Stdout, nil)
	}
	return printJSON(os.Stdout, members)
}

func historyAction(ctx *cli.Context) error {
	s, err := loadSession(ctx, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.History()
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, records)
}
