// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package session

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/simfork/simfork/executor"
	"github.com/simfork/simfork/kv"
	"github.com/simfork/simfork/lvldb"
	"github.com/simfork/simfork/simfork"
)

// Operation names recorded in the history.
const (
	OpInit          = "init"
	OpFund          = "fund"
	OpCreateAccount = "create_account"
	OpExecute       = "execute"
)

var historyBucket = kv.Bucket("h")

// Record summarizes one session operation.
type Record struct {
	Seq      uint64           `json:"seq"`
	Op       string           `json:"op"`
	Time     time.Time        `json:"time"`
	Address  *simfork.Address `json:"address,omitempty"`
	Amount   uint64           `json:"amount,omitempty,string"`
	TxHash   string           `json:"tx_hash,omitempty"`
	Function string           `json:"function,omitempty"`
	Status   *executor.Status `json:"status,omitempty"`
	GasUsed  uint64           `json:"gas_used,omitempty"`
}

// history is the append only operation log of a session.
type history struct {
	db   *lvldb.LevelDB
	next uint64
}

func openHistory(path string) (*history, error) {
	db, err := lvldb.New(path, lvldb.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open history")
	}
	h := &history{db: db}

	it := historyBucket.Iterate(db, kv.Range{})
	defer it.Release()
	if it.Last() {
		h.next = binary.BigEndian.Uint64(it.Key()) + 1
	}
	if err := it.Error(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "scan history")
	}
	return h, nil
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}

func (h *history) append(r Record) error {
	r.Seq = h.next
	data, err := json.Marshal(&r)
	if err != nil {
		return err
	}
	if err := historyBucket.Put(h.db, seqKey(r.Seq), data); err != nil {
		return errors.Wrap(err, "append history")
	}
	h.next++
	return nil
}

func (h *history) records() ([]Record, error) {
	it := historyBucket.Iterate(h.db, kv.Range{})
	defer it.Release()

	var records []Record
	for it.Next() {
		var r Record
		if err := json.Unmarshal(it.Value(), &r); err != nil {
			return nil, errors.Wrapf(err, "decode history record %x", it.Key())
		}
		records = append(records, r)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "read history")
	}
	return records, nil
}

func (h *history) close() error {
	return h.db.Close()
}
