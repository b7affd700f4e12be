// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	// AddressLength length of address in bytes.
	AddressLength = 32
)

// Address address of account or object.
type Address [AddressLength]byte

// Well known framework addresses.
var (
	CoreAddress = Address{AddressLength - 1: 0x1}
)

// String implements the stringer interface.
// Special addresses (0x0 to 0xf) are printed in short form, others in long form.
func (a Address) String() string {
	if a.IsSpecial() {
		return "0x" + hex.EncodeToString(a[AddressLength-1:])[1:]
	}
	return a.LongString()
}

// LongString returns the 0x prefixed, zero padded hex form.
func (a Address) LongString() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsSpecial returns whether the address is one of 0x0 to 0xf.
func (a Address) IsSpecial() bool {
	for _, b := range a[:AddressLength-1] {
		if b != 0 {
			return false
		}
	}
	return a[AddressLength-1] < 0x10
}

// IsZero returns whether the address is all zero.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Bytes returns byte slice form of address.
func (a Address) Bytes() []byte {
	return a[:]
}

// Compare compares two addresses lexicographically.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress converts the hex presented address into Address type.
// The 0x prefix is required. Short forms like 0x1 are left padded with zeros.
func ParseAddress(s string) (Address, error) {
	if len(s) < 2 || strings.ToLower(s[:2]) != "0x" {
		return Address{}, errors.New("invalid prefix")
	}
	s = s[2:]
	if len(s) == 0 {
		return Address{}, errors.New("empty address")
	}
	if len(s) > AddressLength*2 {
		return Address{}, errors.New("invalid length")
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, err
	}
	return BytesToAddress(b), nil
}

// MustParseAddress parses the address and panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// BytesToAddress converts bytes slice into address.
// If b is larger than address length, b will be cropped (from the left).
// If b is smaller than address length, b will be extended (from the left).
func BytesToAddress(b []byte) (a Address) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return
}
