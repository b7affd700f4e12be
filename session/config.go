// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/simfork/simfork/fileutil"
	"github.com/simfork/simfork/simfork"
)

// RemoteConfig pins a forked session to a node and a ledger version.
type RemoteConfig struct {
	URL     string `json:"url"`
	Version uint64 `json:"version"`
	APIKey  string `json:"api_key,omitempty"`
}

// Config is the persisted session configuration.
type Config struct {
	// Remote is nil for local sessions.
	Remote  *RemoteConfig `json:"remote,omitempty"`
	ChainID uint8         `json:"chain_id"`
}

func (c *Config) validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("chain_id is required")
	}
	if c.Remote != nil && c.Remote.URL == "" {
		return fmt.Errorf("remote.url is required")
	}
	return nil
}

func (c Config) clone() Config {
	if c.Remote != nil {
		r := *c.Remote
		c.Remote = &r
	}
	return c
}

func readConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %w", simfork.ErrCorruptState, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config %s: %w", simfork.ErrCorruptState, path, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: parse config %s: trailing data", simfork.ErrCorruptState, path)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: config %s: %w", simfork.ErrCorruptState, path, err)
	}
	return &cfg, nil
}

func writeConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("%w: write config: %w", simfork.ErrPersistence, err)
	}
	return nil
}
