// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

import (
	"fmt"
	"strings"
)

// KeyKind distinguishes what a state key addresses under an account.
type KeyKind uint8

const (
	// KindResource is a single resource stored under its struct tag.
	KindResource KeyKind = iota
	// KindResourceGroup is a group blob multiplexing several member resources.
	KindResourceGroup
)

func (k KeyKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindResourceGroup:
		return "resource_group"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func parseKind(s string) (KeyKind, error) {
	switch s {
	case "resource":
		return KindResource, nil
	case "resource_group":
		return KindResourceGroup, nil
	}
	return 0, fmt.Errorf("unknown key kind %q", s)
}

// StateKey identifies one ledger state item.
type StateKey struct {
	Address Address
	Kind    KeyKind
	Tag     StructTag
}

// ResourceKey builds the key of a resource.
func ResourceKey(addr Address, tag StructTag) StateKey {
	return StateKey{addr, KindResource, tag}
}

// GroupKey builds the key of a resource group.
func GroupKey(addr Address, tag StructTag) StateKey {
	return StateKey{addr, KindResourceGroup, tag}
}

// String returns <address>/<kind>/<tag>.
// This form is used both as the delta document key and in remote request paths.
func (k StateKey) String() string {
	return k.Address.String() + "/" + k.Kind.String() + "/" + k.Tag.String()
}

// Equal reports whether two keys address the same item.
func (k StateKey) Equal(other StateKey) bool {
	return k.String() == other.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k StateKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *StateKey) UnmarshalText(text []byte) error {
	key, err := ParseStateKey(string(text))
	if err != nil {
		return err
	}
	*k = key
	return nil
}

// ParseStateKey parses the text form produced by StateKey.String.
func ParseStateKey(s string) (StateKey, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 {
		return StateKey{}, fmt.Errorf("invalid state key %q", s)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return StateKey{}, fmt.Errorf("invalid state key %q: %w", s, err)
	}
	kind, err := parseKind(parts[1])
	if err != nil {
		return StateKey{}, fmt.Errorf("invalid state key %q: %w", s, err)
	}
	tag, err := ParseStructTag(parts[2])
	if err != nil {
		return StateKey{}, err
	}
	return StateKey{addr, kind, tag}, nil
}
