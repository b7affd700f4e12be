// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/simfork/simfork/simfork"
)

// ErrInvalidSignature is returned when the authenticator does not verify.
var ErrInvalidSignature = errors.New("invalid signature")

// PublicKey returns the compressed encoding of the key's public part.
func PublicKey(pk *ecdsa.PrivateKey) []byte {
	return crypto.CompressPubkey(&pk.PublicKey)
}

// AuthenticationKey returns the authentication key of a compressed public key.
func AuthenticationKey(pubKey []byte) simfork.Bytes32 {
	return simfork.AuthenticationKey(pubKey, simfork.Secp256k1Scheme)
}

// AccountAddress returns the address of an account created for the key.
func AccountAddress(pk *ecdsa.PrivateKey) simfork.Address {
	return simfork.Address(AuthenticationKey(PublicKey(pk)))
}

// MustSign signs a transaction using the provided private key.
// It panics if the signing process fails, returning a signed transaction upon success.
func MustSign(tx *Transaction, pk *ecdsa.PrivateKey) *Transaction {
	trx, err := Sign(tx, pk)
	if err != nil {
		panic(err)
	}
	return trx
}

// Sign signs a transaction using the provided private key.
// It returns the signed transaction or an error if the signing process fails.
func Sign(tx *Transaction, pk *ecdsa.PrivateKey) (*Transaction, error) {
	sig, err := crypto.Sign(tx.SigningHash().Bytes(), pk)
	if err != nil {
		return nil, fmt.Errorf("unable to sign transaction: %w", err)
	}
	return tx.WithSignature(PublicKey(pk), sig), nil
}

// Verify checks the signature against the public key of the authenticator.
// Whether the key is authorized for the sender is left to the VM.
func Verify(tx *Transaction) error {
	pub := tx.body.PublicKey
	sig := tx.body.Signature
	if len(sig) != crypto.SignatureLength {
		return errors.Wrapf(ErrInvalidSignature, "signature length %d", len(sig))
	}
	if _, err := crypto.DecompressPubkey(pub); err != nil {
		return errors.Wrap(ErrInvalidSignature, "malformed public key")
	}
	hash := tx.SigningHash()
	if !crypto.VerifySignature(pub, hash[:], sig[:crypto.RecoveryIDOffset]) {
		return ErrInvalidSignature
	}
	return nil
}
