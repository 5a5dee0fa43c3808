package model

import "fmt"

var (
	ErrDanglingEndpoint = Error{Type: ErrorDanglingEndpoint}
	ErrDuplicateId      = Error{Type: ErrorDuplicateId}
	ErrFormat           = Error{Type: ErrorFormat}
	ErrNegativeDeadline = Error{Type: ErrorNegativeDeadline}
	ErrNotFound         = Error{Type: ErrorNotFound}
	ErrPayloadMismatch  = Error{Type: ErrorPayloadMismatch}
	ErrSelfLoop         = Error{Type: ErrorSelfLoop}
	ErrUnknownType      = Error{Type: ErrorUnknownType}
)

// Error is a hard failure, which aborts a document operation.
type Error struct {
	Type   ErrorType
	Title  string
	Detail string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Title, e.Detail)
}

// Is reports if the target is an [Error] of the same type.
// This allows checks like errors.Is(err, model.ErrNotFound).
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Type == e.Type
}

type ErrorType int

const (
	ErrorDanglingEndpoint ErrorType = iota + 1
	ErrorDuplicateId
	ErrorFormat
	ErrorNegativeDeadline
	ErrorNotFound
	ErrorPayloadMismatch
	ErrorSelfLoop
	ErrorUnknownType
)

func MapErrorType(s string) ErrorType {
	switch s {
	case "DANGLING_ENDPOINT":
		return ErrorDanglingEndpoint
	case "DUPLICATE_ID":
		return ErrorDuplicateId
	case "FORMAT":
		return ErrorFormat
	case "NEGATIVE_DEADLINE":
		return ErrorNegativeDeadline
	case "NOT_FOUND":
		return ErrorNotFound
	case "PAYLOAD_MISMATCH":
		return ErrorPayloadMismatch
	case "SELF_LOOP":
		return ErrorSelfLoop
	case "UNKNOWN_TYPE":
		return ErrorUnknownType
	default:
		return 0
	}
}

func (v ErrorType) String() string {
	switch v {
	case ErrorDanglingEndpoint:
		return "DANGLING_ENDPOINT"
	case ErrorDuplicateId:
		return "DUPLICATE_ID"
	case ErrorFormat:
		return "FORMAT"
	case ErrorNegativeDeadline:
		return "NEGATIVE_DEADLINE"
	case ErrorNotFound:
		return "NOT_FOUND"
	case ErrorPayloadMismatch:
		return "PAYLOAD_MISMATCH"
	case ErrorSelfLoop:
		return "SELF_LOOP"
	case ErrorUnknownType:
		return "UNKNOWN_TYPE"
	default:
		return "UNKNOWN"
	}
}
