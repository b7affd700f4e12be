// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// simfork simulates transactions against local or forked ledger sessions.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "simfork"
	app.Version = fullVersion()
	app.Usage = "simulate transactions against a forked ledger session"
	app.Flags = []cli.Flag{verbosityFlag, jsonLogsFlag, metricsFlag}
	app.Before = func(ctx *cli.Context) error {
		return setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		return teardown(ctx)
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "create a session, optionally forked from a network",
			Flags:  []cli.Flag{sessionFlag, networkFlag, ledgerVersionFlag, apiKeyFlag},
			Action: initAction,
		},
		{
			Name:   "fund",
			Usage:  "fund an account, creating it when a public key is known",
			Flags:  []cli.Flag{sessionFlag, accountFlag, amountFlag, publicKeyFlag, profileFlag},
			Action: fundAction,
		},
		{
			Name:  "run",
			Usage: "run an entry function transaction",
			Flags: []cli.Flag{
				sessionFlag,
				functionFlag,
				typeArgsFlag,
				argsFlag,
				senderAccountFlag,
				profileFlag,
				maxGasFlag,
				gasUnitPriceFlag,
				simulateFlag,
				applyFailedFlag,
			},
			Action: runAction,
		},
		{
			Name:   "view-resource",
			Usage:  "view a resource",
			Flags:  []cli.Flag{sessionFlag, accountFlag, resourceFlag},
			Action: viewResourceAction,
		},
		{
			Name:   "view-resource-group",
			Usage:  "view a resource group",
			Flags:  []cli.Flag{sessionFlag, accountFlag, resourceGroupFlag, derivedObjectAddressFlag},
			Action: viewResourceGroupAction,
		},
		{
			Name:   "history",
			Usage:  "list the operations applied to a session",
			Flags:  []cli.Flag{sessionFlag},
			Action: historyAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
