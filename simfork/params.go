// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

import "strings"

// Chain ids of the public networks.
const (
	MainnetChainID uint8 = 1
	TestnetChainID uint8 = 2
	DevnetChainID  uint8 = 3
	// LocalChainID is used by sessions that are not forked from a remote network.
	LocalChainID uint8 = 4
)

// Gas parameters.
const (
	MinTransactionGasUnits uint64 = 2
	MaxTransactionGasUnits uint64 = 2_000_000
	DefaultMaxGasAmount    uint64 = 100_000
	DefaultGasUnitPrice    uint64 = 100
	// DefaultExpirationSecs is the lifetime of transactions built without an explicit expiration.
	DefaultExpirationSecs uint64 = 600
)

// Networks maps the well known network names to their full node urls.
var Networks = map[string]string{
	"mainnet": "https://mainnet.aptoslabs.com",
	"testnet": "https://testnet.aptoslabs.com",
	"devnet":  "https://devnet.aptoslabs.com",
}

// NetworkURL resolves a network name or returns the argument itself when it is already an url.
func NetworkURL(network string) (string, bool) {
	if u, ok := Networks[strings.ToLower(network)]; ok {
		return u, true
	}
	if strings.HasPrefix(network, "http://") || strings.HasPrefix(network, "https://") {
		return strings.TrimSuffix(network, "/"), true
	}
	return "", false
}
