// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

//go:build !cgo || !libmpv

package libmpv

import "unsafe"

// Available reports whether this build links libmpv.
func Available() bool { return false }

// CheckABI has no header to compare against in this build.
func CheckABI() error { return ErrUnavailable }

// Free is a no-op: nothing in this build hands out library memory.
func Free(ptr unsafe.Pointer) {}

func nativeErrorString(ErrorCode) string { return "" }

func createCore() (core, error) {
	return nil, ErrUnavailable
}
