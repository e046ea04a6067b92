package memo

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed set of failure kinds reported to the host. Codes
// start at the custom program error base and follow declaration order.
type ErrorCode uint32

// ErrorCodeOffset is the first custom program error code.
const ErrorCodeOffset = 6000

const (
	MemoTooLarge ErrorCode = iota + ErrorCodeOffset
	MissingSigner
	FirstAccountNotSigner
	InvalidSystemProgram
	InvalidDerivedAddress
	HashingFailed
	SerializationFailed
	InvalidInputData
)

var codeNames = map[ErrorCode]string{
	MemoTooLarge:          "MemoTooLarge",
	MissingSigner:         "MissingSigner",
	FirstAccountNotSigner: "FirstAccountNotSigner",
	InvalidSystemProgram:  "InvalidSystemProgram",
	InvalidDerivedAddress: "InvalidDerivedAddress",
	HashingFailed:         "HashingFailed",
	SerializationFailed:   "SerializationFailed",
	InvalidInputData:      "InvalidInputData",
}

var codeMessages = map[ErrorCode]string{
	MemoTooLarge:          "Memo exceeds maximum allowed size",
	MissingSigner:         "At least one signer is required",
	FirstAccountNotSigner: "The first account must be a signer",
	InvalidSystemProgram:  "Invalid system program account",
	InvalidDerivedAddress: "Derived address does not match PDA",
	HashingFailed:         "Failed to hash input data",
	SerializationFailed:   "Failed to serialize account data",
	InvalidInputData:      "Invalid input data",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint32(c))
}

// Message is the human readable text attached to the code.
func (c ErrorCode) Message() string {
	return codeMessages[c]
}

// Error is a tagged failure. Two errors match under errors.Is when their codes
// match and the target either has no reason or the same reason.
type Error struct {
	Code   ErrorCode
	reason string
	cause  error
}

var (
	ErrMemoTooLarge          = &Error{Code: MemoTooLarge}
	ErrMissingSigner         = &Error{Code: MissingSigner}
	ErrFirstAccountNotSigner = &Error{Code: FirstAccountNotSigner}
	ErrInvalidSystemProgram  = &Error{Code: InvalidSystemProgram}
	ErrInvalidDerivedAddress = &Error{Code: InvalidDerivedAddress}
	ErrHashingFailed         = &Error{Code: HashingFailed}
	ErrSerializationFailed   = &Error{Code: SerializationFailed}
	ErrInvalidInputData      = &Error{Code: InvalidInputData}

	// ErrInvalidEncoding is a payload that is not UTF-8. It is reported as
	// MemoTooLarge.
	ErrInvalidEncoding = &Error{Code: MemoTooLarge, reason: "invalid utf-8"}
)

func (e *Error) Error() string {
	msg := e.Code.String() + ": " + e.Code.Message()
	if e.reason != "" {
		msg += " (" + e.reason + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.reason == "" || t.reason == e.reason)
}

// wrap derives a new error of base's kind carrying cause.
func wrap(base *Error, cause error) *Error {
	return &Error{Code: base.Code, reason: base.reason, cause: cause}
}

// CodeOf extracts the reported code from err.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
