// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/simfork/simfork/simfork"
)

const documentVersion = 1

// document is the persisted form. Map keys are emitted sorted, so equal
// deltas produce byte-identical files.
type document struct {
	Version int                      `json:"version"`
	Entries map[string]documentEntry `json:"entries"`
}

type documentEntry struct {
	Value   *hexutil.Bytes `json:"value,omitempty"`
	Deleted bool           `json:"deleted,omitempty"`
}

func encodeDocument(entries map[string]record) ([]byte, error) {
	doc := document{
		Version: documentVersion,
		Entries: make(map[string]documentEntry, len(entries)),
	}
	for k, r := range entries {
		if r.entry.Deleted {
			doc.Entries[k] = documentEntry{Deleted: true}
		} else {
			v := hexutil.Bytes(r.entry.Value)
			doc.Entries[k] = documentEntry{Value: &v}
		}
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeDocument(data []byte) (map[string]record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	if doc.Entries == nil {
		return nil, errors.New("missing entries")
	}

	entries := make(map[string]record, len(doc.Entries))
	for k, e := range doc.Entries {
		key, err := simfork.ParseStateKey(k)
		if err != nil {
			return nil, err
		}
		// keys are stored canonically
		if key.String() != k {
			return nil, fmt.Errorf("non canonical key %q", k)
		}
		var entry Entry
		switch {
		case e.Deleted && e.Value == nil:
			entry = Tombstone()
		case !e.Deleted && e.Value != nil:
			entry = Value(*e.Value)
		default:
			return nil, fmt.Errorf("entry %q must have exactly one of value and deleted", k)
		}
		entries[k] = record{key, entry}
	}
	return entries, nil
}
