// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package profile loads account profiles from a session's .movement/config.yaml.
package profile

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"

	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/tx"
)

// DefaultName is the profile used when none is named.
const DefaultName = "default"

const (
	privateKeyPrefix = "secp256k1-priv-"
	publicKeyPrefix  = "secp256k1-pub-"
)

// Path returns the profile file of the session directory.
func Path(sessionDir string) string {
	return filepath.Join(sessionDir, ".movement", "config.yaml")
}

// Profile is one named account profile.
type Profile struct {
	PrivateKey string `yaml:"private_key,omitempty"`
	PublicKey  string `yaml:"public_key,omitempty"`
	Account    string `yaml:"account,omitempty"`
	RestURL    string `yaml:"rest_url,omitempty"`
	FaucetURL  string `yaml:"faucet_url,omitempty"`
	Network    string `yaml:"network,omitempty"`
}

type file struct {
	Profiles map[string]*Profile `yaml:"profiles"`
}

// Load reads the named profile. A missing file yields (nil, nil).
func Load(sessionDir, name string) (*Profile, error) {
	data, err := os.ReadFile(Path(sessionDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return Parse(data, name)
}

// Parse decodes the profile file strictly and returns the named profile.
func Parse(data []byte, name string) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: parse profile: %w", simfork.ErrCorruptState, err)
	}
	p, ok := f.Profiles[name]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: profile %q not found", simfork.ErrCorruptState, name)
	}
	return p, nil
}

// Key decodes the private key. The account, when present, must match it.
func (p *Profile) Key() (*ecdsa.PrivateKey, error) {
	if p.PrivateKey == "" {
		return nil, fmt.Errorf("profile has no private key")
	}
	raw, err := decodeHex(p.PrivateKey, privateKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	pk, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if p.Account != "" {
		addr, err := p.Address()
		if err != nil {
			return nil, err
		}
		if addr != tx.AccountAddress(pk) {
			return nil, fmt.Errorf("account %v does not match the private key", addr)
		}
	}
	return pk, nil
}

// PublicKeyBytes returns the compressed public key, derived from the private key when not given.
func (p *Profile) PublicKeyBytes() ([]byte, error) {
	if p.PublicKey != "" {
		raw, err := decodeHex(p.PublicKey, publicKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("invalid public key: %w", err)
		}
		if _, err := crypto.DecompressPubkey(raw); err != nil {
			return nil, fmt.Errorf("invalid public key: %w", err)
		}
		return raw, nil
	}
	pk, err := p.Key()
	if err != nil {
		return nil, err
	}
	return tx.PublicKey(pk), nil
}

// Address returns the profile account.
func (p *Profile) Address() (simfork.Address, error) {
	if p.Account == "" {
		pk, err := p.Key()
		if err != nil {
			return simfork.Address{}, err
		}
		return tx.AccountAddress(pk), nil
	}
	account := p.Account
	if !strings.HasPrefix(account, "0x") {
		account = "0x" + account
	}
	return simfork.ParseAddress(account)
}

func decodeHex(s, prefix string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), prefix)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
