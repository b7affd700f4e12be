// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package codec converts raw state values to structured resources.
//
// Values are RLP encoded. Resources of registered layouts decode to their Go
// type, any other value decodes to its generic shape: byte strings as hex and
// lists as arrays.
package codec

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/simfork/simfork/simfork"
)

// Layout describes how a resource type is decoded.
type Layout struct {
	Tag   simfork.StructTag
	Group *simfork.StructTag // set for members of a resource group
	new   func() any
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Layout)
)

// Register adds a layout. group is the enclosing resource group tag, if any.
func Register(tag simfork.StructTag, group *simfork.StructTag, prototype func() any) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag.String()] = &Layout{tag, group, prototype}
}

// Lookup returns the layout registered for tag.
func Lookup(tag simfork.StructTag) (*Layout, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := registry[tag.String()]
	return l, ok
}

// GroupOf returns the resource group tag is stored in, if any.
func GroupOf(tag simfork.StructTag) (simfork.StructTag, bool) {
	if l, ok := Lookup(tag); ok && l.Group != nil {
		return *l.Group, true
	}
	return simfork.StructTag{}, false
}

// Encode encodes a resource value.
func Encode(v any) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

// Decode decodes data as a resource of type tag.
func Decode(data []byte, tag simfork.StructTag) (any, error) {
	if l, ok := Lookup(tag); ok {
		v := l.new()
		if err := rlp.DecodeBytes(data, v); err != nil {
			return nil, fmt.Errorf("%w: %v: %w", simfork.ErrDecode, tag, err)
		}
		return v, nil
	}
	v, err := decodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %w", simfork.ErrDecode, tag, err)
	}
	return v, nil
}

// DecodeAs decodes data into the Go type T.
func DecodeAs[T any](data []byte) (*T, error) {
	var v T
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %T: %w", simfork.ErrDecode, v, err)
	}
	return &v, nil
}

// decodeRaw decodes one RLP item without a layout.
func decodeRaw(data []byte) (any, error) {
	v, rest, err := splitRaw(data)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, rlp.ErrMoreThanOneValue
	}
	return v, nil
}

func splitRaw(data []byte) (any, []byte, error) {
	kind, content, rest, err := rlp.Split(data)
	if err != nil {
		return nil, nil, err
	}
	if kind != rlp.List {
		return hexutil.Bytes(content), rest, nil
	}
	items := []any{}
	for len(content) > 0 {
		var item any
		item, content, err = splitRaw(content)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, rest, nil
}
