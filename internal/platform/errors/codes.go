// Package errors provides structured domain errors with machine-readable codes.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// Move errors
	CodeMoveInvalid Code = "MOVE_INVALID"

	// Ledger errors
	CodeLedgerCapacityExceeded Code = "LEDGER_CAPACITY_EXCEEDED"
	CodeLedgerOutOfRange       Code = "LEDGER_OUT_OF_RANGE"
	CodeLedgerInvalidRecord    Code = "LEDGER_INVALID_RECORD"
	CodeLedgerInvalidCapacity  Code = "LEDGER_INVALID_CAPACITY"

	// Strategy errors
	CodeStrategyInsufficientHistory Code = "STRATEGY_INSUFFICIENT_HISTORY"
	CodeStrategyUnknown             Code = "STRATEGY_UNKNOWN"
	CodeStrategySourceRequired      Code = "STRATEGY_SOURCE_REQUIRED"

	// Decision errors
	CodePolicyUnknown   Code = "POLICY_UNKNOWN"
	CodePolicyExhausted Code = "POLICY_EXHAUSTED"
	CodeSideUnknown     Code = "SIDE_UNKNOWN"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeConfigInvalid,
		CodeMoveInvalid,
		CodeLedgerInvalidRecord,
		CodeLedgerInvalidCapacity,
		CodeStrategyUnknown,
		CodePolicyUnknown,
		CodeSideUnknown:
		return codes.InvalidArgument

	// FailedPrecondition - history doesn't allow the operation
	case CodeStrategyInsufficientHistory,
		CodeStrategySourceRequired,
		CodePolicyExhausted:
		return codes.FailedPrecondition

	case CodeLedgerCapacityExceeded:
		return codes.ResourceExhausted

	case CodeLedgerOutOfRange:
		return codes.OutOfRange

	case CodeNotFound:
		return codes.NotFound

	case CodeAlreadyExists:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
