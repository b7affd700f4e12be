// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

import "errors"

// Error kinds surfaced by sessions. Match them with errors.Is.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrDuplicateSession   = errors.New("session already exists")
	ErrCorruptState       = errors.New("corrupt session state")
	ErrInvalidBaseline    = errors.New("invalid baseline version")
	ErrFetch              = errors.New("remote fetch failed")
	ErrDecode             = errors.New("decode resource failed")
	ErrExecutionDiscarded = errors.New("transaction discarded")
	ErrExecutionFailed    = errors.New("transaction failed")
	ErrPersistence        = errors.New("persist session state failed")
)
