// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package codec

import (
	"context"

	"github.com/simfork/simfork/simfork"
	"github.com/simfork/simfork/state"
)

// Writer is a reader that also buffers writes, e.g. a *state.Stage.
type Writer interface {
	state.Reader
	Put(key simfork.StateKey, value []byte)
	Delete(key simfork.StateKey)
}

// ReadResource reads the raw resource tag under addr.
// Members of a resource group are read from their group.
func ReadResource(ctx context.Context, r state.Reader, addr simfork.Address, tag simfork.StructTag) ([]byte, bool, error) {
	group, ok := GroupOf(tag)
	if !ok {
		return r.Get(ctx, simfork.ResourceKey(addr, tag))
	}
	blob, found, err := r.Get(ctx, simfork.GroupKey(addr, group))
	if err != nil || !found {
		return nil, false, err
	}
	return GroupMember(blob, tag)
}

// WriteResource writes the raw resource tag under addr. Group members are
// written by re-encoding the whole group.
func WriteResource(ctx context.Context, w Writer, addr simfork.Address, tag simfork.StructTag, value []byte) error {
	group, ok := GroupOf(tag)
	if !ok {
		w.Put(simfork.ResourceKey(addr, tag), value)
		return nil
	}
	key := simfork.GroupKey(addr, group)
	members := make(map[string][]byte)
	blob, found, err := w.Get(ctx, key)
	if err != nil {
		return err
	}
	if found {
		if members, err = DecodeGroup(blob); err != nil {
			return err
		}
	}
	members[tag.String()] = value
	blob, err = EncodeGroup(members)
	if err != nil {
		return err
	}
	w.Put(key, blob)
	return nil
}

// Load reads and decodes the resource tag under addr into T.
func Load[T any](ctx context.Context, r state.Reader, addr simfork.Address, tag simfork.StructTag) (*T, bool, error) {
	data, found, err := ReadResource(ctx, r, addr, tag)
	if err != nil || !found {
		return nil, false, err
	}
	v, err := DecodeAs[T](data)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Store encodes v and writes it as the resource tag under addr.
func Store(ctx context.Context, w Writer, addr simfork.Address, tag simfork.StructTag, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	return WriteResource(ctx, w, addr, tag, data)
}

// ViewResource reads and decodes the resource tag under addr.
func ViewResource(ctx context.Context, r state.Reader, addr simfork.Address, tag simfork.StructTag) (any, bool, error) {
	data, found, err := ReadResource(ctx, r, addr, tag)
	if err != nil || !found {
		return nil, false, err
	}
	v, err := Decode(data, tag)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// ViewResourceGroup reads and decodes every member of the group under addr.
func ViewResourceGroup(ctx context.Context, r state.Reader, addr simfork.Address, group simfork.StructTag) (map[string]any, bool, error) {
	blob, found, err := r.Get(ctx, simfork.GroupKey(addr, group))
	if err != nil || !found {
		return nil, false, err
	}
	members, err := DecodeGroup(blob)
	if err != nil {
		return nil, false, err
	}
	out := make(map[string]any, len(members))
	for tag, data := range members {
		st, _ := simfork.ParseStructTag(tag)
		v, err := Decode(data, st)
		if err != nil {
			return nil, false, err
		}
		out[tag] = v
	}
	return out, true, nil
}
