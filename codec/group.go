// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package codec

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/simfork/simfork/simfork"
)

// groupMember is one encoded member of a group blob.
// Members are encoded as a list sorted by tag, tags unique.
type groupMember struct {
	Tag  string
	Data []byte
}

// DecodeGroup splits a group blob into its members keyed by canonical tag.
func DecodeGroup(blob []byte) (map[string][]byte, error) {
	var members []groupMember
	if err := rlp.DecodeBytes(blob, &members); err != nil {
		return nil, fmt.Errorf("%w: resource group: %w", simfork.ErrDecode, err)
	}
	out := make(map[string][]byte, len(members))
	for i, m := range members {
		tag, err := simfork.ParseStructTag(m.Tag)
		if err != nil {
			return nil, fmt.Errorf("%w: resource group member %d: %w", simfork.ErrDecode, i, err)
		}
		if tag.String() != m.Tag {
			return nil, fmt.Errorf("%w: resource group member %q is not canonical", simfork.ErrDecode, m.Tag)
		}
		if i > 0 && members[i-1].Tag >= m.Tag {
			return nil, fmt.Errorf("%w: resource group members are not sorted", simfork.ErrDecode)
		}
		out[m.Tag] = m.Data
	}
	return out, nil
}

// EncodeGroup builds a group blob from members keyed by tag.
func EncodeGroup(members map[string][]byte) ([]byte, error) {
	list := make([]groupMember, 0, len(members))
	for tag, data := range members {
		st, err := simfork.ParseStructTag(tag)
		if err != nil {
			return nil, err
		}
		list = append(list, groupMember{st.String(), data})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Tag < list[j].Tag })
	return rlp.EncodeToBytes(list)
}

// GroupMember extracts one member from a group blob.
func GroupMember(blob []byte, tag simfork.StructTag) ([]byte, bool, error) {
	members, err := DecodeGroup(blob)
	if err != nil {
		return nil, false, err
	}
	data, ok := members[tag.String()]
	return data, ok, nil
}
