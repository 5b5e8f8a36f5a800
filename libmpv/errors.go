// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package libmpv

import (
	"errors"
	"fmt"
)

// ErrorCode is the integer result of a boundary call. Negative values are
// failures, anything else is success.
type ErrorCode int

const (
	Success                ErrorCode = 0
	ErrEventQueueFull      ErrorCode = -1
	ErrNoMem               ErrorCode = -2
	ErrUninitialized       ErrorCode = -3
	ErrInvalidParameter    ErrorCode = -4
	ErrOptionNotFound      ErrorCode = -5
	ErrOptionFormat        ErrorCode = -6
	ErrOptionError         ErrorCode = -7
	ErrPropertyNotFound    ErrorCode = -8
	ErrPropertyFormat      ErrorCode = -9
	ErrPropertyUnavailable ErrorCode = -10
	ErrPropertyError       ErrorCode = -11
	ErrCommand             ErrorCode = -12
	ErrLoadingFailed       ErrorCode = -13
	ErrAOInitFailed        ErrorCode = -14
	ErrVOInitFailed        ErrorCode = -15
	ErrNothingToPlay       ErrorCode = -16
	ErrUnknownFormat       ErrorCode = -17
	ErrUnsupported         ErrorCode = -18
	ErrNotImplemented      ErrorCode = -19
	ErrGeneric             ErrorCode = -20
)

var (
	// ErrUnavailable is returned by Create when no instance can be allocated,
	// including builds without libmpv linked in.
	ErrUnavailable        = errors.New("libmpv not available")
	ErrDestroyed          = errors.New("mpv handle already destroyed")
	ErrAlreadyInitialized = errors.New("mpv handle already initialized")
	// ErrFormatMismatch means the Go value does not match the format tag.
	ErrFormatMismatch = errors.New("value does not match format")
)

// same wording as libmpv's own table
var errorStrings = map[ErrorCode]string{
	Success:                "success",
	ErrEventQueueFull:      "event queue full",
	ErrNoMem:               "memory allocation failed",
	ErrUninitialized:       "core not uninitialized",
	ErrInvalidParameter:    "invalid parameter",
	ErrOptionNotFound:      "option not found",
	ErrOptionFormat:        "unsupported format for accessing option",
	ErrOptionError:         "error setting option",
	ErrPropertyNotFound:    "property not found",
	ErrPropertyFormat:      "unsupported format for accessing property",
	ErrPropertyUnavailable: "property unavailable",
	ErrPropertyError:       "error accessing property",
	ErrCommand:             "error running command",
	ErrLoadingFailed:       "loading failed",
	ErrAOInitFailed:        "audio output initialization failed",
	ErrVOInitFailed:        "video output initialization failed",
	ErrNothingToPlay:       "no audio or video data played",
	ErrUnknownFormat:       "unrecognized file format",
	ErrUnsupported:         "not supported",
	ErrNotImplemented:      "operation not implemented",
	ErrGeneric:             "something happened",
}

const unknownError = "unknown error"

// ErrorString translates code into a message. It never returns an empty
// string; codes the library doesn't know map to "unknown error".
func ErrorString(code ErrorCode) string {
	if s := nativeErrorString(code); s != "" {
		return s
	}
	if s, ok := errorStrings[code]; ok {
		return s
	}
	return unknownError
}

// Codes lists the named error codes from Success down to ErrGeneric.
func Codes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(errorStrings))
	for c := Success; c >= ErrGeneric; c-- {
		codes = append(codes, c)
	}
	return codes
}

func (c ErrorCode) Error() string {
	return ErrorString(c)
}

// CallError is a failed boundary call.
type CallError struct {
	Op   string // boundary call, e.g. "set_property"
	Name string // option or property name, or the command verb
	Code ErrorCode
}

func (e *CallError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("mpv_%s failed: %s", e.Op, ErrorString(e.Code))
	}
	return fmt.Sprintf("mpv_%s(%s) failed: %s", e.Op, e.Name, ErrorString(e.Code))
}

func (e *CallError) Unwrap() error {
	return e.Code
}

func check(op, name string, code ErrorCode) error {
	if code >= 0 {
		return nil
	}
	return &CallError{Op: op, Name: name, Code: code}
}
