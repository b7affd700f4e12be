// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"strings"

	"github.com/simfork/simfork/simfork"
)

// ModuleID names a module published under an address.
type ModuleID struct {
	Address simfork.Address
	Name    string
}

func (m ModuleID) String() string {
	return m.Address.String() + "::" + m.Name
}

// EntryFunction is the payload calling a public entry function.
// TypeArgs hold canonical type tags, Args hold RLP encoded arguments.
type EntryFunction struct {
	Module   ModuleID
	Function string
	TypeArgs []string
	Args     [][]byte
}

// ID returns the fully qualified function name, e.g. 0x1::aptos_account::transfer.
func (f EntryFunction) ID() string {
	return f.Module.String() + "::" + f.Function
}

// NewEntryFunction parses the qualified function id and type args.
func NewEntryFunction(id string, typeArgs []string, args [][]byte) (*EntryFunction, error) {
	parts := strings.Split(id, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("invalid function id %q", id)
	}
	addr, err := simfork.ParseAddress(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid function id %q: %w", id, err)
	}
	canonical := make([]string, 0, len(typeArgs))
	for _, ta := range typeArgs {
		tag, err := simfork.ParseTypeTag(ta)
		if err != nil {
			return nil, err
		}
		canonical = append(canonical, tag.String())
	}
	return &EntryFunction{
		Module:   ModuleID{addr, parts[1]},
		Function: parts[2],
		TypeArgs: canonical,
		Args:     args,
	}, nil
}

func (f EntryFunction) copy() EntryFunction {
	cpy := EntryFunction{
		Module:   f.Module,
		Function: f.Function,
		TypeArgs: append([]string(nil), f.TypeArgs...),
		Args:     make([][]byte, len(f.Args)),
	}
	for i, a := range f.Args {
		cpy.Args[i] = append([]byte(nil), a...)
	}
	return cpy
}
