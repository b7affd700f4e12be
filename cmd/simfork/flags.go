// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/simfork/simfork/simfork"
)

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	metricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "print collected metrics in prometheus text format on exit",
	}

	sessionFlag = cli.StringFlag{
		Name:  "session",
		Usage: "path to the session directory",
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "network to fork (mainnet|testnet|devnet) or a full node url; omit for a local session",
	}
	ledgerVersionFlag = cli.Uint64Flag{
		Name:  "version",
		Usage: "ledger version to fork at, the latest version when omitted",
	}
	apiKeyFlag = cli.StringFlag{
		Name:   "api-key",
		Usage:  "api key sent to the full node",
		EnvVar: "SIMFORK_API_KEY",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "account address",
	}
	amountFlag = cli.Uint64Flag{
		Name:  "amount",
		Usage: "amount of coins in octas",
	}
	publicKeyFlag = cli.StringFlag{
		Name:  "public-key",
		Usage: "public key of the account to create, read from the session profile when omitted",
	}
	profileFlag = cli.StringFlag{
		Name:  "profile",
		Value: "default",
		Usage: "profile of the session .movement/config.yaml",
	}
	resourceFlag = cli.StringFlag{
		Name:  "resource",
		Usage: "struct tag of the resource",
	}
	resourceGroupFlag = cli.StringFlag{
		Name:  "resource-group",
		Usage: "struct tag of the resource group",
	}
	derivedObjectAddressFlag = cli.StringFlag{
		Name:  "derived-object-address",
		Usage: "derive the object address from the account and this address",
	}
	functionFlag = cli.StringFlag{
		Name:  "function-id",
		Usage: "entry function, e.g. 0x1::aptos_account::transfer",
	}
	typeArgsFlag = cli.StringSliceFlag{
		Name:  "type-args",
		Usage: "type arguments of the function",
	}
	argsFlag = cli.StringSliceFlag{
		Name:  "args",
		Usage: "arguments as <type>:<value>, e.g. address:0x1 u64:100",
	}
	senderAccountFlag = cli.StringFlag{
		Name:  "sender-account",
		Usage: "sender address, the profile account when omitted",
	}
	maxGasFlag = cli.Uint64Flag{
		Name:  "max-gas",
		Value: simfork.DefaultMaxGasAmount,
		Usage: "maximum gas units",
	}
	gasUnitPriceFlag = cli.Uint64Flag{
		Name:  "gas-unit-price",
		Value: simfork.DefaultGasUnitPrice,
		Usage: "gas unit price in octas",
	}
	simulateFlag = cli.BoolFlag{
		Name:  "simulate",
		Usage: "skip signature verification",
	}
	applyFailedFlag = cli.BoolFlag{
		Name:  "apply-failed",
		Usage: "commit the gas charge of failed transactions",
	}
)
