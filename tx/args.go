// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/simfork/simfork/simfork"
)

// EncodeArg encodes one entry function argument.
func EncodeArg(v any) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

// MustEncodeArg encodes the argument and panics on error.
func MustEncodeArg(v any) []byte {
	b, err := EncodeArg(v)
	if err != nil {
		panic(err)
	}
	return b
}

// DecodeArg decodes one argument into v.
func DecodeArg(data []byte, v any) error {
	return rlp.DecodeBytes(data, v)
}

// ParseArg parses a typed command line argument like "u64:100" or "address:0x1".
func ParseArg(s string) ([]byte, error) {
	typ, value, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("argument %q must be <type>:<value>", s)
	}
	switch typ {
	case "address":
		addr, err := simfork.ParseAddress(value)
		if err != nil {
			return nil, err
		}
		return EncodeArg(addr)
	case "u8", "u16", "u32", "u64":
		bits, _ := strconv.Atoi(typ[1:])
		n, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return nil, err
		}
		return EncodeArg(n)
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, err
		}
		return EncodeArg(b)
	case "hex":
		b, err := hexutil.Decode(value)
		if err != nil {
			return nil, err
		}
		return EncodeArg(b)
	case "string":
		return EncodeArg([]byte(value))
	}
	return nil, fmt.Errorf("unsupported argument type %q", typ)
}
