// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"errors"

	"github.com/simfork/simfork/simfork"
)

// Builder to make it easy to build transaction.
type Builder struct {
	raw raw
	set bool
}

// NewBuilder creates a builder with default gas settings.
func NewBuilder() *Builder {
	return &Builder{raw: raw{
		MaxGasAmount: simfork.DefaultMaxGasAmount,
		GasUnitPrice: simfork.DefaultGasUnitPrice,
		ChainID:      simfork.LocalChainID,
	}}
}

// Sender sets the sending account.
func (b *Builder) Sender(addr simfork.Address) *Builder {
	b.raw.Sender = addr
	return b
}

// SequenceNumber sets the sequence number.
func (b *Builder) SequenceNumber(seq uint64) *Builder {
	b.raw.SequenceNumber = seq
	return b
}

// Payload sets the entry function call.
func (b *Builder) Payload(f *EntryFunction) *Builder {
	b.raw.Payload = f.copy()
	b.set = true
	return b
}

// MaxGasAmount sets the gas limit.
func (b *Builder) MaxGasAmount(gas uint64) *Builder {
	b.raw.MaxGasAmount = gas
	return b
}

// GasUnitPrice sets the gas unit price.
func (b *Builder) GasUnitPrice(price uint64) *Builder {
	b.raw.GasUnitPrice = price
	return b
}

// Expiration sets the expiration timestamp in seconds.
func (b *Builder) Expiration(secs uint64) *Builder {
	b.raw.ExpirationTimestampSecs = secs
	return b
}

// ChainID sets the chain id.
func (b *Builder) ChainID(id uint8) *Builder {
	b.raw.ChainID = id
	return b
}

// Build build an unsigned tx object.
func (b *Builder) Build() (*Transaction, error) {
	if !b.set {
		return nil, errors.New("payload is not set")
	}
	tx := Transaction{body: body{Raw: b.raw}}
	tx.body.Raw.Payload = b.raw.Payload.copy()
	return &tx, nil
}

// MustBuild builds and panics on error.
func (b *Builder) MustBuild() *Transaction {
	tx, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tx
}
