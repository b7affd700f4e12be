// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package remote reads ledger state from a full node REST endpoint.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/log"

	"github.com/simfork/simfork/simfork"
)

var logger = log.New("pkg", "remote")

// ErrNot200Status is wrapped by errors of requests answered with an unexpected status.
var ErrNot200Status = errors.New("not 200 status code")

// Options controls timeouts and retries of the client.
type Options struct {
	APIKey         string
	Timeout        time.Duration // per attempt
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Timeout:        10 * time.Second,
		MaxRetries:     5,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// LedgerInfo is the summary returned by the node index endpoint.
type LedgerInfo struct {
	ChainID             uint8  `json:"chain_id"`
	LedgerVersion       uint64 `json:"ledger_version,string"`
	OldestLedgerVersion uint64 `json:"oldest_ledger_version,string"`
	LedgerTimestamp     uint64 `json:"ledger_timestamp,string"`
}

// Client talks to one full node.
type Client struct {
	url  string
	c    *http.Client
	opts Options
}

// NewClient creates a client for the node at url.
func NewClient(url string, opts Options) *Client {
	return NewClientWithHTTP(url, opts, &http.Client{})
}

// NewClientWithHTTP creates a client using the provided http client.
func NewClientWithHTTP(url string, opts Options, c *http.Client) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = def.InitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = def.MaxBackoff
	}
	return &Client{
		url:  strings.TrimSuffix(url, "/"),
		c:    c,
		opts: opts,
	}
}

// URL returns the node url.
func (c *Client) URL() string {
	return c.url
}

// LedgerInfo retrieves the node's current ledger summary.
func (c *Client) LedgerInfo(ctx context.Context) (*LedgerInfo, error) {
	body, found, err := c.get(ctx, c.url+"/v1")
	if err != nil {
		return nil, fmt.Errorf("%w: unable to retrieve ledger info: %w", simfork.ErrFetch, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: unable to retrieve ledger info: endpoint not found", simfork.ErrFetch)
	}
	var info LedgerInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: unable to unmarshal ledger info: %w", simfork.ErrFetch, err)
	}
	return &info, nil
}

// StateValue retrieves the raw value of key at version.
// A missing item is reported by found == false and no error.
func (c *Client) StateValue(ctx context.Context, key simfork.StateKey, version uint64) ([]byte, bool, error) {
	body, found, err := c.get(ctx, c.stateURL(key, version))
	if err != nil {
		return nil, false, fmt.Errorf("%w: unable to retrieve %v at version %d: %w", simfork.ErrFetch, key, version, err)
	}
	return body, found, nil
}

func (c *Client) stateURL(key simfork.StateKey, version uint64) string {
	return c.url + "/v1/accounts/" + key.Address.LongString() +
		"/" + key.Kind.String() +
		"/" + url.PathEscape(key.Tag.String()) +
		"?ledger_version=" + strconv.FormatUint(version, 10)
}

// get performs the request with retries. 404 is reported as not found.
func (c *Client) get(ctx context.Context, target string) ([]byte, bool, error) {
	var (
		body    []byte
		found   bool
		attempt int
	)
	op := func() error {
		attempt++
		b, status, err := c.attempt(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		switch {
		case status == http.StatusOK:
			body, found = b, true
			return nil
		case status == http.StatusNotFound:
			body, found = nil, false
			return nil
		case status == http.StatusTooManyRequests || status >= 500:
			return fmt.Errorf("http error - Status Code %d - %s - %w", status, b, ErrNot200Status)
		default:
			return backoff.Permanent(fmt.Errorf("http error - Status Code %d - %s - %w", status, b, ErrNot200Status))
		}
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.opts.InitialBackoff
	exp.MaxInterval = c.opts.MaxBackoff
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.opts.MaxRetries), ctx)

	start := time.Now()
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		metricRetryCount().Add(1)
		logger.Debug("retrying remote request", "url", target, "attempt", attempt, "wait", wait, "err", err)
	})
	metricFetchDuration().Observe(time.Since(start).Milliseconds())
	if err != nil {
		return nil, false, err
	}
	return body, found, nil
}

func (c *Client) attempt(ctx context.Context, target string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, backoff.Permanent(fmt.Errorf("error creating request: %w", err))
	}
	req.Header.Set("Accept", "application/x-bcs")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// ConfirmVersion checks that version is served by the node and returns the ledger summary.
func ConfirmVersion(ctx context.Context, c *Client, version uint64) (*LedgerInfo, error) {
	info, err := c.LedgerInfo(ctx)
	if err != nil {
		return nil, err
	}
	if version > info.LedgerVersion {
		return nil, fmt.Errorf("%w: version %d is newer than ledger version %d", simfork.ErrInvalidBaseline, version, info.LedgerVersion)
	}
	if version < info.OldestLedgerVersion {
		return nil, fmt.Errorf("%w: version %d is pruned, oldest available is %d", simfork.ErrInvalidBaseline, version, info.OldestLedgerVersion)
	}
	return info, nil
}
