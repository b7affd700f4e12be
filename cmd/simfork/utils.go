// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/simfork/simfork/metrics"
	"github.com/simfork/simfork/session"
	"github.com/simfork/simfork/simfork"
)

func setup(ctx *cli.Context) error {
	lvl := ctx.Int(verbosityFlag.Name)
	if lvl < 0 || lvl > 9 {
		return fmt.Errorf("invalid verbosity %d", lvl)
	}
	initLogger(os.Stderr, log.FromLegacyLevel(lvl), ctx.Bool(jsonLogsFlag.Name))
	if ctx.Bool(metricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}
	return nil
}

func teardown(ctx *cli.Context) error {
	if ctx.Bool(metricsFlag.Name) {
		return metrics.WriteText(os.Stderr)
	}
	return nil
}

func initLogger(w io.Writer, lvl slog.Level, jsonLogs bool) {
	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(w, lvl)
	} else {
		useColor := false
		if f, ok := w.(*os.File); ok {
			useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		handler = log.NewTerminalHandlerWithLevel(w, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

// handleExitSignal returns a context canceled on SIGINT or SIGTERM.
func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func requireString(ctx *cli.Context, flag cli.StringFlag) (string, error) {
	v := ctx.String(flag.Name)
	if v == "" {
		return "", fmt.Errorf("flag --%s is required", flag.Name)
	}
	return v, nil
}

func parseAddressFlag(ctx *cli.Context, flag cli.StringFlag) (simfork.Address, error) {
	v, err := requireString(ctx, flag)
	if err != nil {
		return simfork.Address{}, err
	}
	addr, err := simfork.ParseAddress(v)
	if err != nil {
		return simfork.Address{}, errors.Wrap(err, "--"+flag.Name)
	}
	return addr, nil
}

func loadSession(ctx *cli.Context, opts session.Options) (*session.Session, error) {
	dir, err := requireString(ctx, sessionFlag)
	if err != nil {
		return nil, err
	}
	return session.Load(dir, opts)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
