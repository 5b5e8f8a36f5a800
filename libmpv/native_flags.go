// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

//go:build cgo && libmpv && !mpvshim

package libmpv

// #cgo pkg-config: mpv
import "C"
