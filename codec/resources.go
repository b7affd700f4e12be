// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package codec

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/simfork/simfork/simfork"
)

// Tags of the framework resources known to the codec.
var (
	AccountTag       = simfork.MustParseStructTag("0x1::account::Account")
	AptosCoinTag     = simfork.MustParseStructTag("0x1::aptos_coin::AptosCoin")
	CoinStoreTag     = simfork.MustParseStructTag("0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>")
	ObjectGroupTag   = simfork.MustParseStructTag("0x1::object::ObjectGroup")
	ObjectCoreTag    = simfork.MustParseStructTag("0x1::object::ObjectCore")
	FungibleStoreTag = simfork.MustParseStructTag("0x1::fungible_asset::FungibleStore")
	TimestampTag     = simfork.MustParseStructTag("0x1::timestamp::CurrentTimeMicroseconds")
)

// Account is the per account resource holding replay protection and auth data.
type Account struct {
	SequenceNumber    uint64        `json:"sequence_number,string"`
	AuthenticationKey hexutil.Bytes `json:"authentication_key"`
}

// CoinStore holds the native coin balance of an account.
type CoinStore struct {
	Coin   uint64 `json:"coin,string"`
	Frozen bool   `json:"frozen"`
}

// ObjectCore is the core resource of every object.
type ObjectCore struct {
	Owner                simfork.Address `json:"owner"`
	AllowUngatedTransfer bool            `json:"allow_ungated_transfer"`
	GUIDCreationNum      uint64          `json:"guid_creation_num,string"`
}

// FungibleStore holds a fungible asset balance inside an object.
type FungibleStore struct {
	Metadata simfork.Address `json:"metadata"`
	Balance  uint64          `json:"balance,string"`
	Frozen   bool            `json:"frozen"`
}

// CurrentTimeMicroseconds is the on-chain clock.
type CurrentTimeMicroseconds struct {
	Microseconds uint64 `json:"microseconds,string"`
}

func init() {
	Register(AccountTag, nil, func() any { return new(Account) })
	Register(CoinStoreTag, nil, func() any { return new(CoinStore) })
	Register(ObjectCoreTag, &ObjectGroupTag, func() any { return new(ObjectCore) })
	Register(FungibleStoreTag, &ObjectGroupTag, func() any { return new(FungibleStore) })
	Register(TimestampTag, nil, func() any { return new(CurrentTimeMicroseconds) })
}
