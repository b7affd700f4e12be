// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package remotetest provides an in-process full node serving versioned state for tests.
package remotetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/simfork/simfork/remote"
	"github.com/simfork/simfork/simfork"
)

type versioned struct {
	version uint64
	value   []byte // nil means deleted at version
}

// Node is a fake full node. Values are kept with their write version so that
// reads at any version see the latest write at or before it.
type Node struct {
	*httptest.Server

	mu       sync.Mutex
	info     remote.LedgerInfo
	values   map[string][]versioned
	failures []int
	apiKey   string
	requests atomic.Int64
}

// NewNode starts a node with ledger versions in [oldest, latest].
func NewNode(chainID uint8, oldest, latest uint64) *Node {
	n := &Node{
		info: remote.LedgerInfo{
			ChainID:             chainID,
			LedgerVersion:       latest,
			OldestLedgerVersion: oldest,
			LedgerTimestamp:     1_700_000_000_000_000,
		},
		values: make(map[string][]versioned),
	}

	router := mux.NewRouter()
	router.Use(n.middleware)
	router.HandleFunc("/v1", n.handleLedgerInfo).Methods(http.MethodGet)
	router.HandleFunc("/v1/accounts/{address}/{kind:resource|resource_group}/{tag}", n.handleState).Methods(http.MethodGet)
	n.Server = httptest.NewServer(router)
	return n
}

// Set writes value under key at version. A nil value deletes the key from version on.
func (n *Node) Set(key simfork.StateKey, version uint64, value []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()

	k := key.String()
	list := append(n.values[k], versioned{version, value})
	sort.SliceStable(list, func(i, j int) bool { return list[i].version < list[j].version })
	n.values[k] = list
}

// FailNext makes the next requests fail with the given statuses, in order.
func (n *Node) FailNext(statuses ...int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, statuses...)
}

// RequireAPIKey rejects requests without the bearer key.
func (n *Node) RequireAPIKey(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.apiKey = key
}

// Requests returns the number of requests served so far.
func (n *Node) Requests() int {
	return int(n.requests.Load())
}

func (n *Node) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.requests.Add(1)

		n.mu.Lock()
		var status int
		if len(n.failures) > 0 {
			status, n.failures = n.failures[0], n.failures[1:]
		}
		apiKey := n.apiKey
		n.mu.Unlock()

		if status != 0 {
			http.Error(w, "injected failure", status)
			return
		}
		if apiKey != "" && r.Header.Get("Authorization") != "Bearer "+apiKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (n *Node) handleLedgerInfo(w http.ResponseWriter, _ *http.Request) {
	n.mu.Lock()
	info := n.info
	n.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (n *Node) handleState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	addr, err := simfork.ParseAddress(vars["address"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key, err := simfork.ParseStateKey(addr.String() + "/" + vars["kind"] + "/" + vars["tag"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	version, err := strconv.ParseUint(r.URL.Query().Get("ledger_version"), 10, 64)
	if err != nil {
		http.Error(w, "invalid ledger_version", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if version > n.info.LedgerVersion || version < n.info.OldestLedgerVersion {
		http.Error(w, "version not available", http.StatusGone)
		return
	}
	var value []byte
	for _, v := range n.values[key.String()] {
		if v.version > version {
			break
		}
		value = v.value
	}
	if value == nil {
		http.Error(w, "resource not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-bcs")
	w.Write(value)
}
