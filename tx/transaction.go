// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/simfork/simfork/simfork"
)

// signingPrefix domain separates the signing hash of transactions.
var signingPrefix = simfork.SHA3([]byte("SIMFORK::RawTransaction"))

// Transaction is an immutable signed transaction.
type Transaction struct {
	body body

	cache struct {
		hash *simfork.Bytes32
	}
}

// raw holds the signed part of a transaction.
type raw struct {
	Sender                  simfork.Address
	SequenceNumber          uint64
	Payload                 EntryFunction
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	ChainID                 uint8
}

type body struct {
	Raw       raw
	PublicKey []byte
	Signature []byte
}

// Hash returns hash of the whole transaction, authenticator included.
func (t *Transaction) Hash() simfork.Bytes32 {
	if cached := t.cache.hash; cached != nil {
		return *cached
	}
	h := simfork.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, &t.body)
	})
	t.cache.hash = &h
	return h
}

// SigningHash returns the hash the sender signs. It excludes the authenticator.
func (t *Transaction) SigningHash() simfork.Bytes32 {
	return simfork.Blake2bFn(func(w io.Writer) {
		w.Write(signingPrefix[:])
		rlp.Encode(w, &t.body.Raw)
	})
}

// Sender returns the sending account.
func (t *Transaction) Sender() simfork.Address { return t.body.Raw.Sender }

// SequenceNumber returns the sequence number the sender's account must have.
func (t *Transaction) SequenceNumber() uint64 { return t.body.Raw.SequenceNumber }

// Payload returns a copy of the entry function payload.
func (t *Transaction) Payload() EntryFunction { return t.body.Raw.Payload.copy() }

// MaxGasAmount returns the gas units the sender is willing to spend.
func (t *Transaction) MaxGasAmount() uint64 { return t.body.Raw.MaxGasAmount }

// GasUnitPrice returns the price per gas unit.
func (t *Transaction) GasUnitPrice() uint64 { return t.body.Raw.GasUnitPrice }

// ExpirationTimestampSecs returns the time after which the transaction is rejected.
func (t *Transaction) ExpirationTimestampSecs() uint64 { return t.body.Raw.ExpirationTimestampSecs }

// ChainID returns the chain the transaction is meant for.
func (t *Transaction) ChainID() uint8 { return t.body.Raw.ChainID }

// PublicKey returns the compressed public key of the authenticator.
func (t *Transaction) PublicKey() []byte {
	return append([]byte(nil), t.body.PublicKey...)
}

// Signature returns signature.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// WithSignature create a new tx with the authenticator set.
func (t *Transaction) WithSignature(pubKey, sig []byte) *Transaction {
	newTx := Transaction{body: t.body}
	newTx.body.Raw.Payload = t.body.Raw.Payload.copy()
	newTx.body.PublicKey = append([]byte(nil), pubKey...)
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	return nil
}

// MarshalBinary returns the canonical encoding of the transaction.
func (t *Transaction) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(t)
}

// UnmarshalBinary decodes the canonical encoding.
func (t *Transaction) UnmarshalBinary(b []byte) error {
	return rlp.DecodeBytes(b, t)
}
