// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import (
	"fmt"

	"github.com/simfork/simfork/simfork"
)

// StatusKind is the outcome class of a transaction.
type StatusKind uint8

const (
	// KeepSuccess means the transaction ran and its write set is applied.
	KeepSuccess StatusKind = iota
	// KeepFailure means the transaction ran and failed. It would be committed on chain.
	KeepFailure
	// Discard means the transaction was rejected before or during execution and has no effect.
	Discard
)

func (k StatusKind) String() string {
	switch k {
	case KeepSuccess:
		return "success"
	case KeepFailure:
		return "failure"
	case Discard:
		return "discarded"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k StatusKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *StatusKind) UnmarshalText(text []byte) error {
	for _, kind := range []StatusKind{KeepSuccess, KeepFailure, Discard} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown status kind %q", text)
}

// Status codes produced by the adapter and the builtin VM.
const (
	CodeExecuted                      = "EXECUTED"
	CodeInvalidSignature              = "INVALID_SIGNATURE"
	CodeInvalidAuthKey                = "INVALID_AUTH_KEY"
	CodeSendingAccountDoesNotExist    = "SENDING_ACCOUNT_DOES_NOT_EXIST"
	CodeSequenceNumberTooOld          = "SEQUENCE_NUMBER_TOO_OLD"
	CodeSequenceNumberTooNew          = "SEQUENCE_NUMBER_TOO_NEW"
	CodeTransactionExpired            = "TRANSACTION_EXPIRED"
	CodeBadChainID                    = "BAD_CHAIN_ID"
	CodeInsufficientBalanceForFee     = "INSUFFICIENT_BALANCE_FOR_TRANSACTION_FEE"
	CodeMaxGasBelowMin                = "MAX_GAS_UNITS_BELOW_MIN_TRANSACTION_GAS_UNITS"
	CodeMaxGasAboveBound              = "MAX_GAS_UNITS_EXCEEDS_MAX_GAS_UNITS_BOUND"
	CodeFailedToDeserializeArgument   = "FAILED_TO_DESERIALIZE_ARGUMENT"
	CodeNumberOfTypeArgumentsMismatch = "NUMBER_OF_TYPE_ARGUMENTS_MISMATCH"
	CodeLinkerError                   = "LINKER_ERROR"
	CodeOutOfGas                      = "OUT_OF_GAS"
	CodeAborted                       = "ABORTED"
	CodeSequenceNumberDecreased       = "SEQUENCE_NUMBER_DECREASED"
)

// Status is the VM verdict of a transaction.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Code    string     `json:"code"`
	Message string     `json:"message,omitempty"`
}

// Success returns the status of an executed transaction.
func Success() Status {
	return Status{Kind: KeepSuccess, Code: CodeExecuted}
}

// Failure returns a kept failure status.
func Failure(code, format string, args ...any) Status {
	return Status{KeepFailure, code, fmt.Sprintf(format, args...)}
}

// Discarded returns a discard status.
func Discarded(code, format string, args ...any) Status {
	return Status{Discard, code, fmt.Sprintf(format, args...)}
}

func (s Status) String() string {
	if s.Message == "" {
		return s.Kind.String() + ": " + s.Code
	}
	return s.Kind.String() + ": " + s.Code + ": " + s.Message
}

// StatusError reports a transaction that did not succeed.
// It matches simfork.ErrExecutionDiscarded or simfork.ErrExecutionFailed.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return "transaction " + e.Status.String()
}

// Is implements errors.Is.
func (e *StatusError) Is(target error) bool {
	switch target {
	case simfork.ErrExecutionDiscarded:
		return e.Status.Kind == Discard
	case simfork.ErrExecutionFailed:
		return e.Status.Kind == KeepFailure
	}
	return false
}
