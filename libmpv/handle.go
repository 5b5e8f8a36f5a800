// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package libmpv is the boundary to the libmpv client API: an opaque player
// handle, the value format tags and the calls that cross into the library.
//
// Builds with the "libmpv" tag (and cgo) link the real library. Without it the
// package compiles to a stand-in whose Create always fails with ErrUnavailable.
package libmpv

import (
	"sync"
)

// Client is the part of a Handle the player layer needs.
type Client interface {
	Initialize() error
	Destroy()
	SetOptionString(name, value string) error
	Command(args ...string) error
	SetProperty(name string, format Format, value any) error
	GetProperty(name string, format Format) (any, error)
}

var _ Client = (*Handle)(nil)

// core is one native player instance. Values handed to it are already
// normalized to string, bool, int64 or float64.
type core interface {
	initialize() ErrorCode
	destroy()
	setOptionString(name, value string) ErrorCode
	command(args []string) ErrorCode
	setProperty(name string, format Format, value any) ErrorCode
	getProperty(name string, format Format) (any, ErrorCode)
}

type state int

const (
	stateCreated state = iota
	stateInitialized
	stateDestroyed
)

// Handle owns one player instance. It is created by Create, must be released
// by exactly one Destroy, and is unusable afterwards. Calls are serialized.
type Handle struct {
	mu    sync.Mutex
	core  core
	state state
}

// Create allocates a new player instance.
func Create() (*Handle, error) {
	c, err := createCore()
	if err != nil {
		return nil, err
	}
	return newHandle(c), nil
}

func newHandle(c core) *Handle {
	return &Handle{core: c}
}

// Initialize starts the player. Options that only apply at startup must be
// set before this.
func (h *Handle) Initialize() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.gone():
		return ErrDestroyed
	case h.state == stateInitialized:
		return ErrAlreadyInitialized
	}

	if err := check("initialize", "", h.core.initialize()); err != nil {
		return err
	}
	h.state = stateInitialized
	return nil
}

// Destroy releases the instance. Calling it again is a no-op.
func (h *Handle) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gone() {
		h.state = stateDestroyed
		return
	}
	h.core.destroy()
	h.core = nil
	h.state = stateDestroyed
}

// Initialized reports whether Initialize succeeded and Destroy hasn't run.
func (h *Handle) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == stateInitialized
}

func (h *Handle) SetOptionString(name, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gone() {
		return ErrDestroyed
	}
	return check("set_option_string", name, h.core.setOptionString(name, value))
}

// Command runs a single command given as its tokens, e.g. "loadfile", url.
func (h *Handle) Command(args ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(); err != nil {
		return err
	}
	if len(args) == 0 {
		return check("command", "", ErrInvalidParameter)
	}
	return check("command", args[0], h.core.command(args))
}

func (h *Handle) SetProperty(name string, format Format, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(); err != nil {
		return err
	}
	v, err := normalize(format, value)
	if err != nil {
		return err
	}
	return check("set_property", name, h.core.setProperty(name, format, v))
}

// GetProperty reads a property as the given format. The result is a string,
// bool, int64 or float64 respectively.
func (h *Handle) GetProperty(name string, format Format) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(); err != nil {
		return nil, err
	}
	if format == FormatNone || !format.Valid() {
		return nil, ErrPropertyFormat
	}
	v, code := h.core.getProperty(name, format)
	if err := check("get_property", name, code); err != nil {
		return nil, err
	}
	return v, nil
}

func (h *Handle) ready() error {
	switch {
	case h.gone():
		return ErrDestroyed
	case h.state == stateCreated:
		return ErrUninitialized
	}
	return nil
}

// gone reports that there is no native instance behind h, either because it
// was destroyed or because h did not come from Create.
func (h *Handle) gone() bool {
	return h.state == stateDestroyed || h.core == nil
}
