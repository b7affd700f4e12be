// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

// Domain separators appended to the preimage of derived addresses.
const (
	ObjectFromSeedScheme        byte = 0xFE
	ObjectDerivedFromAddrScheme byte = 0xFC
)

// Authentication key schemes appended to the public key.
const (
	Ed25519Scheme   byte = 0x00
	Secp256k1Scheme byte = 0x02
)

// DeriveObjectAddress derives the address of an object owned by owner from another address.
// It is deterministic and collision resistant: sha3-256(owner || seed || 0xFC).
func DeriveObjectAddress(owner, seed Address) Address {
	return Address(SHA3(owner[:], seed[:], []byte{ObjectDerivedFromAddrScheme}))
}

// CreateObjectAddress derives a named object address from arbitrary seed bytes.
func CreateObjectAddress(owner Address, seed []byte) Address {
	return Address(SHA3(owner[:], seed, []byte{ObjectFromSeedScheme}))
}

// AuthenticationKey computes the authentication key of the public key under the scheme.
// A freshly created account uses its authentication key as address.
func AuthenticationKey(pubKey []byte, scheme byte) Bytes32 {
	return SHA3(pubKey, []byte{scheme})
}
