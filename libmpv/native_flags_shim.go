// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

//go:build cgo && libmpv && mpvshim

package libmpv

// Compile against the bundled placeholder header instead of the system one.
// The shared library is still required at link time.

/*
#cgo CFLAGS: -I${SRCDIR}/include
#cgo windows LDFLAGS: -L${SRCDIR} -lmpv
#cgo linux LDFLAGS: -lmpv
#cgo darwin LDFLAGS: -L/opt/homebrew/lib -L/usr/local/lib -lmpv
*/
import "C"
